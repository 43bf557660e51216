package domain

import (
	"fmt"
	"time"
)

type PeriodPreset string

const (
	PresetToday      PeriodPreset = "today"
	PresetYesterday  PeriodPreset = "yesterday"
	PresetLast7Days  PeriodPreset = "last7days"
	PresetLast30Days PeriodPreset = "last30days"
	PresetLast90Days PeriodPreset = "last90days"
	PresetThisMonth  PeriodPreset = "thisMonth"
	PresetLastMonth  PeriodPreset = "lastMonth"
	PresetCustom     PeriodPreset = "custom"
)

// DateRange é um intervalo inclusivo de dias de calendário em UTC
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Days retorna a quantidade de dias do intervalo, contando as duas pontas
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// EachDay retorna todos os dias do intervalo em ordem crescente
func (r DateRange) EachDay() []time.Time {
	days := make([]time.Time, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) Contains(date time.Time) bool {
	day := DayOf(date)
	return !day.Before(r.Start) && !day.After(r.End)
}

func (r DateRange) Equal(other DateRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
}

// DayOf normaliza um instante para o dia de calendário correspondente em UTC.
// Todo o cálculo de datas do serviço acontece nesse fuso, nunca no local.
func DayOf(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

func ParsePeriodPreset(s string) (PeriodPreset, error) {
	switch PeriodPreset(s) {
	case PresetToday, PresetYesterday, PresetLast7Days, PresetLast30Days,
		PresetLast90Days, PresetThisMonth, PresetLastMonth, PresetCustom:
		return PeriodPreset(s), nil
	}
	return "", fmt.Errorf("período desconhecido: %q", s)
}

// ResolvePreset converte um preset em um intervalo concreto de datas.
// Determinístico para um referenceNow fixo.
func ResolvePreset(preset PeriodPreset, referenceNow time.Time) (DateRange, error) {
	today := DayOf(referenceNow)
	yesterday := today.AddDate(0, 0, -1)

	switch preset {
	case PresetToday:
		return DateRange{Start: today, End: today}, nil

	case PresetYesterday:
		return DateRange{Start: yesterday, End: yesterday}, nil

	case PresetLast7Days:
		return lastNDays(7, yesterday), nil

	case PresetLast30Days:
		return lastNDays(30, yesterday), nil

	case PresetLast90Days:
		return lastNDays(90, yesterday), nil

	case PresetThisMonth:
		firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DateRange{Start: firstOfMonth, End: today}, nil

	case PresetLastMonth:
		firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DateRange{
			Start: firstOfMonth.AddDate(0, -1, 0),
			End:   firstOfMonth.AddDate(0, 0, -1),
		}, nil

	case PresetCustom:
		return DateRange{}, fmt.Errorf("preset %q exige datas explícitas", preset)
	}

	return DateRange{}, fmt.Errorf("período desconhecido: %q", preset)
}

// lastNDays monta o intervalo inclusivo de n dias terminando em end
func lastNDays(n int, end time.Time) DateRange {
	return DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// PresetValidation é o resultado da conferência entre preset e datas explícitas
type PresetValidation struct {
	Valid    bool       `json:"valid"`
	Expected *DateRange `json:"expected,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// ValidatePresetMatch confere se as datas informadas correspondem à semântica
// do preset declarado. Presets custom sempre validam. Uma divergência indica
// que o chamador rotulou o intervalo errado e deve ser tratada como aviso,
// nunca silenciosamente ignorada.
func ValidatePresetMatch(preset PeriodPreset, startDate, endDate, referenceNow time.Time) PresetValidation {
	if preset == PresetCustom {
		return PresetValidation{Valid: true}
	}

	expected, err := ResolvePreset(preset, referenceNow)
	if err != nil {
		return PresetValidation{Valid: false, Error: err.Error()}
	}

	supplied := DateRange{Start: DayOf(startDate), End: DayOf(endDate)}
	if supplied.Equal(expected) {
		return PresetValidation{Valid: true, Expected: &expected}
	}

	return PresetValidation{
		Valid:    false,
		Expected: &expected,
		Error: fmt.Sprintf("intervalo %s não corresponde ao preset %q (esperado %s)",
			supplied, preset, expected),
	}
}
