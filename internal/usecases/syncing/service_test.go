package syncing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-sync-api/infrastructure/queue"
	"github.com/vfg2006/metrics-sync-api/infrastructure/repository/mocks"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func testConfig() *config.Config {
	return &config.Config{
		SyncRateLimit: config.SyncRateLimit{
			SuccessCooldownMinutes: 60,
			FailureCooldownMinutes: 15,
			ForceFloorMinutes:      5,
		},
		BackfillSync: config.BackfillSync{
			ChunkDays: 30,
		},
	}
}

func newTestService(t *testing.T) (SyncService, *mocks.MockSyncCooldownRepository, queue.Backend) {
	ctrl := gomock.NewController(t)
	cooldownRepo := mocks.NewMockSyncCooldownRepository(ctrl)
	backend := queue.NewMemoryBackend(queue.DefaultRetryPolicy())

	return NewService(testConfig(), cooldownRepo, backend), cooldownRepo, backend
}

func refreshRequest(customerID string) *RefreshRequest {
	return &RefreshRequest{
		CustomerID: customerID,
		AccountID:  "abc123",
		EntityType: domain.EntityTypeCampaign,
		DateRange: domain.DateRange{
			Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestCanSync_ClienteNuncaSincronizadoPodeSempre(t *testing.T) {
	service, cooldownRepo, _ := newTestService(t)

	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(nil, nil)

	decision, err := service.CanSync("4018223765", false)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.Nil(t, decision.NextSyncAt)
}

func TestCanSync_DentroDoCooldownNega(t *testing.T) {
	service, cooldownRepo, _ := newTestService(t)

	now := time.Now().UTC()
	nextAllowed := now.Add(30 * time.Minute)

	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(&domain.SyncCooldown{
		CustomerID:     "4018223765",
		LastSyncAt:     now.Add(-30 * time.Minute),
		LastSyncStatus: domain.SyncOutcomeSuccess,
		NextAllowedAt:  nextAllowed,
	}, nil)

	decision, err := service.CanSync("4018223765", false)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.NotEmpty(t, decision.Reason)
	require.NotNil(t, decision.NextSyncAt)
	assert.True(t, decision.NextSyncAt.Equal(nextAllowed))
	require.NotNil(t, decision.LastSyncedAt)
}

func TestCanSync_ForceIgnoraCooldownMasRespeitaOPiso(t *testing.T) {
	service, cooldownRepo, _ := newTestService(t)

	now := time.Now().UTC()

	// Última sincronização há 2 minutos: dentro do piso de 5 minutos
	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(&domain.SyncCooldown{
		CustomerID:     "4018223765",
		LastSyncAt:     now.Add(-2 * time.Minute),
		LastSyncStatus: domain.SyncOutcomeSuccess,
		NextAllowedAt:  now.Add(58 * time.Minute),
	}, nil)

	decision, err := service.CanSync("4018223765", true)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	require.NotNil(t, decision.NextSyncAt)

	// Última sincronização há 10 minutos: piso vencido, cooldown ignorado
	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(&domain.SyncCooldown{
		CustomerID:     "4018223765",
		LastSyncAt:     now.Add(-10 * time.Minute),
		LastSyncStatus: domain.SyncOutcomeSuccess,
		NextAllowedAt:  now.Add(50 * time.Minute),
	}, nil)

	decision, err = service.CanSync("4018223765", true)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRecordSyncResult_FalhaEncurtaOCooldown(t *testing.T) {
	service, cooldownRepo, _ := newTestService(t)

	var saved *domain.SyncCooldown
	cooldownRepo.EXPECT().
		SaveOrUpdate(gomock.Any()).
		DoAndReturn(func(cooldown *domain.SyncCooldown) error {
			saved = cooldown
			return nil
		})

	require.NoError(t, service.RecordSyncResult("4018223765", domain.SyncOutcomeFailed))

	require.NotNil(t, saved)
	assert.Equal(t, domain.SyncOutcomeFailed, saved.LastSyncStatus)

	window := saved.NextAllowedAt.Sub(saved.LastSyncAt)
	assert.Equal(t, 15*time.Minute, window)
}

func TestEnqueueRefresh_EnfileiraEDeduplicaRepetido(t *testing.T) {
	service, cooldownRepo, _ := newTestService(t)
	ctx := context.Background()

	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(nil, nil).Times(2)

	result, err := service.EnqueueRefresh(ctx, refreshRequest("4018223765"))
	require.NoError(t, err)
	assert.Equal(t, domain.EnqueueStatusQueued, result.Status)
	assert.NotEmpty(t, result.JobID)

	// Mesmo cliente, entidade e intervalo: colapsa no job pendente
	result, err = service.EnqueueRefresh(ctx, refreshRequest("4018223765"))
	require.NoError(t, err)
	assert.Equal(t, domain.EnqueueStatusAlreadyPending, result.Status)
}

func TestEnqueueRefresh_RateLimitedNaoEnfileira(t *testing.T) {
	service, cooldownRepo, backend := newTestService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(&domain.SyncCooldown{
		CustomerID:     "4018223765",
		LastSyncAt:     now.Add(-5 * time.Minute),
		LastSyncStatus: domain.SyncOutcomeSuccess,
		NextAllowedAt:  now.Add(55 * time.Minute),
	}, nil)

	result, err := service.EnqueueRefresh(ctx, refreshRequest("4018223765"))
	require.NoError(t, err)

	assert.Equal(t, domain.EnqueueStatusRateLimited, result.Status)
	require.NotNil(t, result.NextSyncAt)

	pending, err := backend.PendingJobs(ctx, "4018223765")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestEnqueueRefresh_RequestInvalidoEhErro(t *testing.T) {
	service, _, _ := newTestService(t)

	request := refreshRequest("4018223765")
	request.EntityType = domain.EntityTypeAdGroup // exige parent

	_, err := service.EnqueueRefresh(context.Background(), request)

	assert.ErrorIs(t, err, ErrInvalidRefreshRequest)
}

func TestEnqueueRefresh_PrioridadePadraoEhNormal(t *testing.T) {
	service, cooldownRepo, backend := newTestService(t)
	ctx := context.Background()

	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(nil, nil)

	result, err := service.EnqueueRefresh(ctx, refreshRequest("4018223765"))
	require.NoError(t, err)
	require.Equal(t, domain.EnqueueStatusQueued, result.Status)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, domain.PriorityNormal, job.Priority)
}

func TestEnqueueBackfill_FatiaEmChunksDePrioridadeBaixa(t *testing.T) {
	service, cooldownRepo, backend := newTestService(t)
	ctx := context.Background()

	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(nil, nil)

	result, err := service.EnqueueBackfill(ctx, &BackfillRequest{
		CustomerID: "4018223765",
		AccountID:  "abc123",
		EntityType: domain.EntityTypeCampaign,
		DateRange: domain.DateRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), // 70 dias
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.EnqueueStatusQueued, result.Status)
	assert.Equal(t, 3, result.Jobs) // 30 + 30 + 10

	for i := 0; i < 3; i++ {
		job, err := backend.Claim(ctx)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, domain.PriorityLow, job.Priority)
		assert.Equal(t, i+1, job.BatchNumber)
		assert.Equal(t, 3, job.TotalBatches)
	}
}

func TestEnqueueBackfill_IntervaloInvalidoEhErro(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.EnqueueBackfill(context.Background(), &BackfillRequest{
		CustomerID: "4018223765",
		AccountID:  "abc123",
		EntityType: domain.EntityTypeCampaign,
		DateRange: domain.DateRange{
			Start: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	})

	assert.ErrorIs(t, err, ErrInvalidBackfillRange)
}

func TestGetSyncStatus_CombinaCooldownEFila(t *testing.T) {
	service, cooldownRepo, _ := newTestService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(&domain.SyncCooldown{
		CustomerID:     "4018223765",
		LastSyncAt:     now.Add(-time.Hour),
		LastSyncStatus: domain.SyncOutcomeSuccess,
		NextAllowedAt:  now.Add(-time.Minute),
	}, nil).Times(2)

	_, err := service.EnqueueRefresh(ctx, refreshRequest("4018223765"))
	require.NoError(t, err)

	report, err := service.GetSyncStatus(ctx, "4018223765")
	require.NoError(t, err)

	assert.Equal(t, "4018223765", report.CustomerID)
	assert.Equal(t, domain.SyncOutcomeSuccess, report.LastSyncStatus)
	require.NotNil(t, report.LastSyncAt)
	require.NotNil(t, report.CooldownUntil)
	assert.Equal(t, 1, report.PendingJobs)
}

func TestCanSync_ErroDeBancoViraSyncError(t *testing.T) {
	service, cooldownRepo, _ := newTestService(t)

	cooldownRepo.EXPECT().GetByCustomerID("4018223765").Return(nil, errors.New("conexão recusada"))

	_, err := service.CanSync("4018223765", false)

	assert.ErrorIs(t, err, ErrCooldownLookup)
}
