package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePreset_DeterministicoParaReferenciaFixa(t *testing.T) {
	// Meio da tarde em um fuso qualquer: o cálculo tem que normalizar para UTC
	reference := time.Date(2024, 3, 15, 14, 30, 0, 0, time.FixedZone("BRT", -3*3600))

	first, err := ResolvePreset(PresetLast7Days, reference)
	require.NoError(t, err)

	second, err := ResolvePreset(PresetLast7Days, reference)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}

func TestResolvePreset_Yesterday(t *testing.T) {
	reference := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	dateRange, err := ResolvePreset(PresetYesterday, reference)
	require.NoError(t, err)

	expected := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	assert.True(t, dateRange.Start.Equal(expected))
	assert.True(t, dateRange.End.Equal(expected))
	assert.Equal(t, 1, dateRange.Days())
}

func TestResolvePreset_Last7DaysTerminaOntem(t *testing.T) {
	reference := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	dateRange, err := ResolvePreset(PresetLast7Days, reference)
	require.NoError(t, err)

	assert.True(t, dateRange.End.Equal(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.True(t, dateRange.Start.Equal(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 7, dateRange.Days())
}

func TestResolvePreset_LastMonthCobreOMesInteiro(t *testing.T) {
	reference := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	dateRange, err := ResolvePreset(PresetLastMonth, reference)
	require.NoError(t, err)

	assert.True(t, dateRange.Start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, dateRange.End.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
}

func TestResolvePreset_ThisMonthTerminaHoje(t *testing.T) {
	reference := time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)

	dateRange, err := ResolvePreset(PresetThisMonth, reference)
	require.NoError(t, err)

	assert.True(t, dateRange.Start.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, dateRange.End.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
}

func TestResolvePreset_CustomExigeDatasExplicitas(t *testing.T) {
	_, err := ResolvePreset(PresetCustom, time.Now())
	assert.Error(t, err)
}

func TestValidatePresetMatch_IntervaloCorreto(t *testing.T) {
	reference := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	validation := ValidatePresetMatch(
		PresetLast7Days,
		time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		reference,
	)

	assert.True(t, validation.Valid)
	assert.Empty(t, validation.Error)
}

func TestValidatePresetMatch_IntervaloDivergenteViraAviso(t *testing.T) {
	reference := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	validation := ValidatePresetMatch(
		PresetYesterday,
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		reference,
	)

	assert.False(t, validation.Valid)
	assert.NotEmpty(t, validation.Error)
	require.NotNil(t, validation.Expected)
	assert.True(t, validation.Expected.Start.Equal(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)))
}

func TestValidatePresetMatch_CustomSempreValida(t *testing.T) {
	validation := ValidatePresetMatch(
		PresetCustom,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Now(),
	)

	assert.True(t, validation.Valid)
}

func TestDayOf_NormalizaParaUTC(t *testing.T) {
	// 23h de 14/03 em UTC-3 já é 15/03 em UTC
	local := time.Date(2024, 3, 14, 23, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	day := DayOf(local)

	assert.True(t, day.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
}

func TestDateRange_EachDayCobreAsDuasPontas(t *testing.T) {
	dateRange := DateRange{
		Start: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
	}

	days := dateRange.EachDay()

	require.Len(t, days, 3)
	assert.True(t, days[0].Equal(dateRange.Start))
	assert.True(t, days[2].Equal(dateRange.End))
}

func TestParsePeriodPreset_RejeitaDesconhecido(t *testing.T) {
	_, err := ParsePeriodPreset("last14days")
	assert.Error(t, err)

	preset, err := ParsePeriodPreset("last30days")
	require.NoError(t, err)
	assert.Equal(t, PresetLast30Days, preset)
}
