package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-sync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func campaignRow(d int, impressions, clicks, costMicros int64) *domain.DailyMetricRow {
	return &domain.DailyMetricRow{
		Date:        day(d),
		CustomerID:  "4018223765",
		AccountID:   "abc123",
		EntityType:  domain.EntityTypeCampaign,
		EntityID:    "555",
		Impressions: impressions,
		Clicks:      clicks,
		CostMicros:  costMicros,
	}
}

func TestStoreDailyMetrics_GravaLoteValido(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDailyMetricRepository(ctrl)
	service := NewService(repo)

	rows := []*domain.DailyMetricRow{
		campaignRow(1, 1000, 100, 500),
		campaignRow(2, 2000, 200, 800),
		campaignRow(2, 500, 50, 100), // outra entidade no mesmo dia
	}
	rows[2].EntityID = "556"

	repo.EXPECT().SaveOrUpdateBatch(gomock.Any(), rows).Return(nil)

	result := service.StoreDailyMetrics(context.Background(), rows)

	require.True(t, result.Success)
	assert.Equal(t, 3, result.RowsWritten)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, result.DatesWritten)
	assert.Equal(t, "daily", result.Granularity)
}

func TestStoreDailyMetrics_LinhaSemDataRejeitaOLoteInteiro(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDailyMetricRepository(ctrl)
	service := NewService(repo)

	rows := []*domain.DailyMetricRow{
		campaignRow(1, 1000, 100, 500),
		{
			// Sem data: agregado de intervalo disfarçado de linha diária
			CustomerID: "4018223765",
			EntityType: domain.EntityTypeCampaign,
			EntityID:   "555",
		},
	}

	// Nenhuma escrita pode acontecer
	result := service.StoreDailyMetrics(context.Background(), rows)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, ErrRowWithoutDate.Error())
	assert.Equal(t, 0, result.RowsWritten)
	assert.Empty(t, result.DatesWritten)
}

func TestStoreDailyMetrics_LoteVazioEhSucesso(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDailyMetricRepository(ctrl)
	service := NewService(repo)

	result := service.StoreDailyMetrics(context.Background(), nil)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.RowsWritten)
}

func TestStoreDailyMetrics_ErroDoBancoNaoViraSucesso(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDailyMetricRepository(ctrl)
	service := NewService(repo)

	rows := []*domain.DailyMetricRow{campaignRow(1, 1000, 100, 500)}

	repo.EXPECT().SaveOrUpdateBatch(gomock.Any(), rows).Return(errors.New("conexão recusada"))

	result := service.StoreDailyMetrics(context.Background(), rows)

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "conexão recusada")
}

func TestReadAndAggregate_SomaLinhaALinha(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDailyMetricRepository(ctrl)
	service := NewService(repo)

	dateRange := domain.DateRange{Start: day(1), End: day(7)}

	rows := make([]*domain.DailyMetricRow, 0, 7)
	for d := 1; d <= 7; d++ {
		rows = append(rows, campaignRow(d, 1000, 100, 500))
	}

	repo.EXPECT().
		GetByRange("4018223765", domain.EntityTypeCampaign, "555", dateRange.Start, dateRange.End).
		Return(rows, nil)

	totals, err := service.ReadAndAggregate("4018223765", domain.EntityTypeCampaign, "555", dateRange)
	require.NoError(t, err)

	assert.Equal(t, int64(7000), totals.Impressions)
	assert.Equal(t, int64(700), totals.Clicks)
	assert.Equal(t, int64(3500), totals.CostMicros)
	assert.Equal(t, 7, totals.Rows)
	assert.Equal(t, 7, totals.Days)
}

func TestReadAndAggregate_IntervaloInvertidoEhErro(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDailyMetricRepository(ctrl)
	service := NewService(repo)

	dateRange := domain.DateRange{Start: day(7), End: day(1)}

	_, err := service.ReadAndAggregate("4018223765", domain.EntityTypeCampaign, "555", dateRange)

	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestReadAndAggregate_SemLinhasRetornaTotaisZerados(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDailyMetricRepository(ctrl)
	service := NewService(repo)

	dateRange := domain.DateRange{Start: day(1), End: day(7)}

	repo.EXPECT().
		GetByRange("4018223765", domain.EntityTypeCampaign, "555", dateRange.Start, dateRange.End).
		Return(nil, nil)

	totals, err := service.ReadAndAggregate("4018223765", domain.EntityTypeCampaign, "555", dateRange)
	require.NoError(t, err)

	assert.True(t, totals.IsEmpty())
	assert.Equal(t, 0, totals.Days)
}

func TestCheckDailyCoverage_ReportaBuracos(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDailyMetricRepository(ctrl)
	service := NewService(repo)

	dateRange := domain.DateRange{Start: day(1), End: day(7)}

	present := map[string]bool{
		"2024-03-01": true,
		"2024-03-02": true,
		"2024-03-03": true,
		"2024-03-06": true,
		"2024-03-07": true,
	}

	repo.EXPECT().
		GetDatesPresent("4018223765", domain.EntityTypeCampaign, "555", dateRange.Start, dateRange.End).
		Return(present, nil)

	report, err := service.CheckDailyCoverage("4018223765", domain.EntityTypeCampaign, "555", dateRange)
	require.NoError(t, err)

	assert.Equal(t, 7, report.ExpectedCount)
	assert.InDelta(t, 71.43, report.CoveragePercent, 0.01)
	assert.Equal(t, []string{"2024-03-04", "2024-03-05"}, report.MissingDays)
	assert.False(t, report.IsComplete)
}
