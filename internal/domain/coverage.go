package domain

import (
	"time"

	"github.com/vfg2006/metrics-sync-api/pkg/utils"
)

// CoverageReport descreve quanto de um intervalo pedido já existe no cache
// local. Calculado na leitura, nunca persistido.
type CoverageReport struct {
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	DatesPresent    []string `json:"dates_present"`
	ExpectedCount   int      `json:"expected_count"`
	CoveragePercent float64  `json:"coverage_percent"`
	MissingDays     []string `json:"missing_days"`
	IsComplete      bool     `json:"is_complete"`
}

// BuildCoverageReport monta o relatório comparando os dias presentes com o
// intervalo inclusivo esperado
func BuildCoverageReport(dateRange DateRange, present map[string]bool) *CoverageReport {
	report := &CoverageReport{
		StartDate:    dateRange.Start.Format(time.DateOnly),
		EndDate:      dateRange.End.Format(time.DateOnly),
		DatesPresent: make([]string, 0, len(present)),
		MissingDays:  make([]string, 0),
	}

	for _, day := range dateRange.EachDay() {
		key := day.Format(time.DateOnly)
		if present[key] {
			report.DatesPresent = append(report.DatesPresent, key)
		} else {
			report.MissingDays = append(report.MissingDays, key)
		}
		report.ExpectedCount++
	}

	if report.ExpectedCount > 0 {
		report.CoveragePercent = utils.RoundWithTwoDecimalPlace(100 * float64(len(report.DatesPresent)) / float64(report.ExpectedCount))
	}

	report.IsComplete = len(report.MissingDays) == 0

	return report
}

// MissingRanges agrupa os dias ausentes em intervalos contíguos, na ordem do
// calendário. Útil para reenfileirar apenas os buracos de um intervalo.
func (c *CoverageReport) MissingRanges() []DateRange {
	ranges := make([]DateRange, 0)

	var current *DateRange
	for _, missing := range c.MissingDays {
		day, err := time.Parse(time.DateOnly, missing)
		if err != nil {
			continue
		}
		day = day.UTC()

		if current != nil && day.Sub(current.End) == 24*time.Hour {
			current.End = day
			continue
		}

		if current != nil {
			ranges = append(ranges, *current)
		}
		current = &DateRange{Start: day, End: day}
	}

	if current != nil {
		ranges = append(ranges, *current)
	}

	return ranges
}
