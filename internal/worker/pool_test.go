package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	googleadsmocks "github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads/mocks"
	"github.com/vfg2006/metrics-sync-api/infrastructure/queue"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	metricsmocks "github.com/vfg2006/metrics-sync-api/internal/usecases/metrics/mocks"
	syncingmocks "github.com/vfg2006/metrics-sync-api/internal/usecases/syncing/mocks"
	"go.uber.org/mock/gomock"
)

type poolFixture struct {
	pool           *Pool
	backend        queue.Backend
	adsService     *googleadsmocks.MockAdsIntegrator
	metricsService *metricsmocks.MockMetricsService
	syncService    *syncingmocks.MockSyncService
}

func newPoolFixture(t *testing.T, jobTTLMinutes int) *poolFixture {
	ctrl := gomock.NewController(t)

	cfg := &config.Config{
		WorkerPool: config.WorkerPool{
			Size:                1,
			PollIntervalSeconds: 1,
			FetchTimeoutSeconds: 5,
			Enabled:             true,
		},
		Queue: config.Queue{
			JobTTLMinutes: jobTTLMinutes,
		},
	}

	backend := queue.NewMemoryBackend(queue.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	})

	fixture := &poolFixture{
		backend:        backend,
		adsService:     googleadsmocks.NewMockAdsIntegrator(ctrl),
		metricsService: metricsmocks.NewMockMetricsService(ctrl),
		syncService:    syncingmocks.NewMockSyncService(ctrl),
	}

	fixture.pool = NewPool(cfg, backend, fixture.adsService, fixture.metricsService, fixture.syncService)

	return fixture
}

func (f *poolFixture) enqueue(t *testing.T, job *domain.RefreshJob) {
	job.ComputeID()
	_, err := f.backend.Enqueue(context.Background(), job)
	require.NoError(t, err)
}

func campaignJob(customerID string) *domain.RefreshJob {
	return &domain.RefreshJob{
		CustomerID:  customerID,
		AccountID:   "abc123",
		EntityType:  domain.EntityTypeCampaign,
		Priority:    domain.PriorityNormal,
		StartDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		RequestedAt: time.Now().UTC(),
	}
}

func TestProcessNext_CicloCompletoComSucesso(t *testing.T) {
	fixture := newPoolFixture(t, 0)
	ctx := context.Background()

	fixture.enqueue(t, campaignJob("4018223765"))

	rows := []*domain.DailyMetricRow{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), CustomerID: "4018223765", EntityType: domain.EntityTypeCampaign, EntityID: "555"},
	}

	fixture.adsService.EXPECT().SearchDailyMetrics(gomock.Any(), gomock.Any()).Return(rows, nil)
	fixture.metricsService.EXPECT().StoreDailyMetrics(gomock.Any(), rows).Return(&domain.StoreResult{
		Success:      true,
		RowsWritten:  1,
		DatesWritten: []string{"2024-03-01"},
		Granularity:  "daily",
	})
	fixture.syncService.EXPECT().RecordSyncResult("4018223765", domain.SyncOutcomeSuccess).Return(nil)

	processed := fixture.pool.processNext(ctx, 1)
	assert.True(t, processed)

	pending, err := fixture.backend.PendingJobs(ctx, "4018223765")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestProcessNext_FilaVaziaNaoProcessa(t *testing.T) {
	fixture := newPoolFixture(t, 0)

	processed := fixture.pool.processNext(context.Background(), 1)

	assert.False(t, processed)
}

func TestProcessNext_FalhaDeBuscaReagendaComBackoff(t *testing.T) {
	fixture := newPoolFixture(t, 0)
	ctx := context.Background()

	fixture.enqueue(t, campaignJob("4018223765"))

	fixture.adsService.EXPECT().SearchDailyMetrics(gomock.Any(), gomock.Any()).Return(nil, errors.New("API fora do ar"))
	fixture.syncService.EXPECT().RecordSyncResult("4018223765", domain.SyncOutcomeFailed).Return(nil)

	processed := fixture.pool.processNext(ctx, 1)
	assert.True(t, processed)

	// O job voltou para a fila com a tentativa incrementada
	pending, err := fixture.backend.PendingJobs(ctx, "4018223765")
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	dead, err := fixture.backend.DeadJobs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, dead)
}

func TestProcessNext_SucessoParcialGravaEReagenda(t *testing.T) {
	fixture := newPoolFixture(t, 0)
	ctx := context.Background()

	fixture.enqueue(t, campaignJob("4018223765"))

	partialRows := []*domain.DailyMetricRow{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), CustomerID: "4018223765", EntityType: domain.EntityTypeCampaign, EntityID: "555"},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), CustomerID: "4018223765", EntityType: domain.EntityTypeCampaign, EntityID: "555"},
	}

	// A API devolveu parte dos dias e depois falhou no meio da paginação
	fixture.adsService.EXPECT().SearchDailyMetrics(gomock.Any(), gomock.Any()).Return(partialRows, errors.New("timeout na página 3"))

	// Os dias recebidos são gravados mesmo assim
	fixture.metricsService.EXPECT().StoreDailyMetrics(gomock.Any(), partialRows).Return(&domain.StoreResult{
		Success:      true,
		RowsWritten:  2,
		DatesWritten: []string{"2024-03-01", "2024-03-02"},
		Granularity:  "daily",
	})

	fixture.syncService.EXPECT().RecordSyncResult("4018223765", domain.SyncOutcomeFailed).Return(nil)

	processed := fixture.pool.processNext(ctx, 1)
	assert.True(t, processed)

	// E o job volta para a fila para completar os dias restantes
	pending, err := fixture.backend.PendingJobs(ctx, "4018223765")
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestProcessNext_FalhaAoGravarReagenda(t *testing.T) {
	fixture := newPoolFixture(t, 0)
	ctx := context.Background()

	fixture.enqueue(t, campaignJob("4018223765"))

	rows := []*domain.DailyMetricRow{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), CustomerID: "4018223765", EntityType: domain.EntityTypeCampaign, EntityID: "555"},
	}

	fixture.adsService.EXPECT().SearchDailyMetrics(gomock.Any(), gomock.Any()).Return(rows, nil)
	fixture.metricsService.EXPECT().StoreDailyMetrics(gomock.Any(), rows).Return(&domain.StoreResult{
		Success: false,
		Error:   "banco de dados indisponível",
	})
	fixture.syncService.EXPECT().RecordSyncResult("4018223765", domain.SyncOutcomeFailed).Return(nil)

	processed := fixture.pool.processNext(ctx, 1)
	assert.True(t, processed)

	pending, err := fixture.backend.PendingJobs(ctx, "4018223765")
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestProcessNext_JobExpiradoPeloTTLEhDescartado(t *testing.T) {
	fixture := newPoolFixture(t, 30)
	ctx := context.Background()

	job := campaignJob("4018223765")
	job.RequestedAt = time.Now().UTC().Add(-time.Hour)
	fixture.enqueue(t, job)

	// Nenhuma chamada à API externa é esperada

	processed := fixture.pool.processNext(ctx, 1)
	assert.True(t, processed)

	pending, err := fixture.backend.PendingJobs(ctx, "4018223765")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)

	dead, err := fixture.backend.DeadJobs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, dead)
}

func TestProcessNext_PanicoNaoDerrubaOWorker(t *testing.T) {
	fixture := newPoolFixture(t, 0)
	ctx := context.Background()

	fixture.enqueue(t, campaignJob("4018223765"))

	fixture.adsService.EXPECT().
		SearchDailyMetrics(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *domain.RefreshJob) ([]*domain.DailyMetricRow, error) {
			panic("payload inesperado")
		})

	assert.NotPanics(t, func() {
		fixture.pool.processNext(ctx, 1)
	})

	// O job foi devolvido para a fila pelo tratamento de pânico
	pending, err := fixture.backend.PendingJobs(ctx, "4018223765")
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestJobsEsgotadosVaoParaFilaDeMortos(t *testing.T) {
	fixture := newPoolFixture(t, 0)
	ctx := context.Background()

	fixture.enqueue(t, campaignJob("4018223765"))

	fixture.adsService.EXPECT().SearchDailyMetrics(gomock.Any(), gomock.Any()).Return(nil, errors.New("API fora do ar")).Times(3)
	fixture.syncService.EXPECT().RecordSyncResult("4018223765", domain.SyncOutcomeFailed).Return(nil).Times(3)

	for attempt := 0; attempt < 3; attempt++ {
		// Espera o backoff em milissegundos do reagendamento anterior
		require.Eventually(t, func() bool {
			return fixture.pool.processNext(ctx, 1)
		}, time.Second, time.Millisecond)
	}

	dead, err := fixture.backend.DeadJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, 3, dead[0].Attempt)

	pending, err := fixture.backend.PendingJobs(ctx, "4018223765")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestGetStatus_ReportaConfiguracaoEBackend(t *testing.T) {
	fixture := newPoolFixture(t, 45)

	status := fixture.pool.GetStatus()

	assert.Equal(t, true, status["enabled"])
	assert.Equal(t, 1, status["size"])
	assert.Equal(t, 45, status["job_ttl_minutes"])
	assert.Equal(t, "memory", status["backend"])
}

func TestProcessNext_LoteRejeitadoNaValidacaoNaoEhReagendado(t *testing.T) {
	fixture := newPoolFixture(t, 0)
	ctx := context.Background()

	fixture.enqueue(t, campaignJob("4018223765"))

	rows := []*domain.DailyMetricRow{
		{CustomerID: "4018223765", EntityType: domain.EntityTypeCampaign, EntityID: "555"},
	}

	// A resposta veio sem data: repetir a busca devolve o mesmo lote inválido
	fixture.adsService.EXPECT().SearchDailyMetrics(gomock.Any(), gomock.Any()).Return(rows, nil)
	fixture.metricsService.EXPECT().StoreDailyMetrics(gomock.Any(), rows).Return(&domain.StoreResult{
		Success:  false,
		Rejected: true,
		Error:    "linha 0 (entidade 555): linha sem data",
	})
	fixture.syncService.EXPECT().RecordSyncResult("4018223765", domain.SyncOutcomeFailed).Return(nil)

	processed := fixture.pool.processNext(ctx, 1)
	assert.True(t, processed)

	// Direto para a fila de mortos, sem queimar tentativas com backoff
	pending, err := fixture.backend.PendingJobs(ctx, "4018223765")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)

	dead, err := fixture.backend.DeadJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "4018223765", dead[0].CustomerID)
	assert.Equal(t, 0, dead[0].Attempt)
}
