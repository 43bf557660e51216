package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	repositorymocks "github.com/vfg2006/metrics-sync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	metricsmocks "github.com/vfg2006/metrics-sync-api/internal/usecases/metrics/mocks"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/syncing"
	syncingmocks "github.com/vfg2006/metrics-sync-api/internal/usecases/syncing/mocks"
	"go.uber.org/mock/gomock"
)

type backfillFixture struct {
	service        *BackfillSyncService
	accountRepo    *repositorymocks.MockAccountRepository
	syncService    *syncingmocks.MockSyncService
	metricsService *metricsmocks.MockMetricsService
}

func newBackfillFixture(t *testing.T) *backfillFixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{
		BackfillSync: config.BackfillSync{
			CronSchedule:      "0 3 * * *",
			LookbackDays:      90,
			ChunkDays:         30,
			MaxConcurrentJobs: 2,
			Enabled:           true,
		},
	}

	fixture := &backfillFixture{
		accountRepo:    repositorymocks.NewMockAccountRepository(ctrl),
		syncService:    syncingmocks.NewMockSyncService(ctrl),
		metricsService: metricsmocks.NewMockMetricsService(ctrl),
	}

	fixture.service = NewBackfillSyncService(fixture.accountRepo, fixture.syncService, fixture.metricsService, cfg)

	return fixture
}

func activeAccount(customerID string) *domain.Account {
	return &domain.Account{
		CustomerID: customerID,
		ID:         "acc-" + customerID,
		Name:       "Conta " + customerID,
		Status:     domain.AccountStatusActive,
	}
}

func backfillRange() domain.DateRange {
	return domain.DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestEnqueueAccountBackfill_EnfileiraApenasOsBuracosDeCobertura(t *testing.T) {
	fixture := newBackfillFixture(t)
	dateRange := backfillRange()

	// Dias 3-4 e 8 ausentes no cache local
	present := map[string]bool{}
	for _, day := range dateRange.EachDay() {
		present[day.Format(time.DateOnly)] = true
	}
	delete(present, "2024-03-03")
	delete(present, "2024-03-04")
	delete(present, "2024-03-08")

	report := domain.BuildCoverageReport(dateRange, present)

	fixture.metricsService.EXPECT().
		CheckDailyCoverage("4018223765", domain.EntityTypeCampaign, "", dateRange).
		Return(report, nil)

	enqueued := make([]domain.DateRange, 0)
	fixture.syncService.EXPECT().
		EnqueueBackfill(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, request *syncing.BackfillRequest) (*domain.EnqueueResult, error) {
			assert.Equal(t, "4018223765", request.CustomerID)
			assert.Equal(t, domain.EntityTypeCampaign, request.EntityType)
			enqueued = append(enqueued, request.DateRange)
			return &domain.EnqueueResult{Status: domain.EnqueueStatusQueued, Jobs: 1}, nil
		}).
		Times(2)

	fixture.service.enqueueAccountBackfill(activeAccount("4018223765"), dateRange)

	// Só os intervalos ausentes são enfileirados, agrupados por contiguidade
	require.Len(t, enqueued, 2)
	assert.Equal(t, "2024-03-03", enqueued[0].Start.Format(time.DateOnly))
	assert.Equal(t, "2024-03-04", enqueued[0].End.Format(time.DateOnly))
	assert.Equal(t, "2024-03-08", enqueued[1].Start.Format(time.DateOnly))
	assert.Equal(t, "2024-03-08", enqueued[1].End.Format(time.DateOnly))
}

func TestEnqueueAccountBackfill_CoberturaCompletaNaoEnfileiraNada(t *testing.T) {
	fixture := newBackfillFixture(t)
	dateRange := backfillRange()

	present := map[string]bool{}
	for _, day := range dateRange.EachDay() {
		present[day.Format(time.DateOnly)] = true
	}

	fixture.metricsService.EXPECT().
		CheckDailyCoverage("4018223765", domain.EntityTypeCampaign, "", dateRange).
		Return(domain.BuildCoverageReport(dateRange, present), nil)

	// Nenhuma expectativa de EnqueueBackfill: conta coberta não gera job

	fixture.service.enqueueAccountBackfill(activeAccount("4018223765"), dateRange)
}

func TestEnqueueAccountBackfill_ErroDeCoberturaEnfileiraOPeriodoCompleto(t *testing.T) {
	fixture := newBackfillFixture(t)
	dateRange := backfillRange()

	fixture.metricsService.EXPECT().
		CheckDailyCoverage("4018223765", domain.EntityTypeCampaign, "", dateRange).
		Return(nil, errors.New("banco de dados indisponível"))

	// A deduplicação da fila e os upserts idempotentes absorvem o excesso
	fixture.syncService.EXPECT().
		EnqueueBackfill(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, request *syncing.BackfillRequest) (*domain.EnqueueResult, error) {
			assert.Equal(t, dateRange, request.DateRange)
			return &domain.EnqueueResult{Status: domain.EnqueueStatusQueued, Jobs: 1}, nil
		})

	fixture.service.enqueueAccountBackfill(activeAccount("4018223765"), dateRange)
}
