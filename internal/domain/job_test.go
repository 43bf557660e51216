package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobID_DeterministicoParaMesmosCampos(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	first := JobID("4018223765", EntityTypeCampaign, start, end)
	second := JobID("4018223765", EntityTypeCampaign, start, end)

	assert.Equal(t, first, second)
	assert.Equal(t, "4018223765:CAMPAIGN:2024-03-01:2024-03-07", first)

	// Qualquer campo diferente muda o ID
	assert.NotEqual(t, first, JobID("4018223765", EntityTypeAdGroup, start, end))
	assert.NotEqual(t, first, JobID("4018223765", EntityTypeCampaign, start, end.AddDate(0, 0, 1)))
}

func TestRefreshJob_ValidateExigeParentParaNiveisFilhos(t *testing.T) {
	job := &RefreshJob{
		CustomerID:  "4018223765",
		EntityType:  EntityTypeAdGroup,
		Priority:    PriorityNormal,
		StartDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		RequestedAt: time.Now().UTC(),
	}

	require.Error(t, job.Validate())

	job.ParentEntityID = "111222333"
	assert.NoError(t, job.Validate())
}

func TestRefreshJob_ValidateRejeitaIntervaloInvertido(t *testing.T) {
	job := &RefreshJob{
		CustomerID: "4018223765",
		EntityType: EntityTypeCampaign,
		Priority:   PriorityHigh,
		StartDate:  time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.Error(t, job.Validate())
}

func TestMetricTotals_AddRowAcumula(t *testing.T) {
	totals := &MetricTotals{}

	totals.AddRow(&DailyMetricRow{Impressions: 1000, Clicks: 100, CostMicros: 500, Conversions: 2, ConversionsValue: 10})
	totals.AddRow(&DailyMetricRow{Impressions: 2000, Clicks: 50, CostMicros: 300, Conversions: 1, ConversionsValue: 5})

	assert.Equal(t, int64(3000), totals.Impressions)
	assert.Equal(t, int64(150), totals.Clicks)
	assert.Equal(t, int64(800), totals.CostMicros)
	assert.Equal(t, 3.0, totals.Conversions)
	assert.Equal(t, 15.0, totals.ConversionsValue)
	assert.Equal(t, 2, totals.Rows)
}
