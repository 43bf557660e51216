package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

func newTestRedisBackend(t *testing.T, policy RetryPolicy) Backend {
	t.Helper()

	mr := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisBackend(client, policy)
}

func newTestJob(customerID string, priority domain.JobPriority, startDay int) *domain.RefreshJob {
	start := time.Date(2024, 3, startDay, 0, 0, 0, 0, time.UTC)

	return &domain.RefreshJob{
		CustomerID:  customerID,
		AccountID:   customerID,
		EntityType:  domain.EntityTypeCampaign,
		Priority:    priority,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 6),
		RequestedAt: time.Now().UTC(),
	}
}

func TestRedisBackend_Enqueue_DeduplicaJobsIdenticos(t *testing.T) {
	backend := newTestRedisBackend(t, DefaultRetryPolicy())
	ctx := context.Background()

	outcome, err := backend.Enqueue(ctx, newTestJob("123-456-7890", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)

	// Mesmo cliente, mesma entidade e mesmo período geram o mesmo id
	outcome, err = backend.Enqueue(ctx, newTestJob("123-456-7890", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	pending, err := backend.PendingJobs(ctx, "123-456-7890")
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestRedisBackend_Enqueue_PeriodosDiferentesNaoDeduplicam(t *testing.T) {
	backend := newTestRedisBackend(t, DefaultRetryPolicy())
	ctx := context.Background()

	outcome, err := backend.Enqueue(ctx, newTestJob("123-456-7890", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)

	outcome, err = backend.Enqueue(ctx, newTestJob("123-456-7890", domain.PriorityNormal, 10))
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)

	pending, err := backend.PendingJobs(ctx, "123-456-7890")
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
}

func TestRedisBackend_Claim_RespeitaPrioridadeEOrdem(t *testing.T) {
	backend := newTestRedisBackend(t, DefaultRetryPolicy())
	ctx := context.Background()

	low := newTestJob("111", domain.PriorityLow, 1)
	normal := newTestJob("222", domain.PriorityNormal, 1)
	highFirst := newTestJob("333", domain.PriorityHigh, 1)
	highSecond := newTestJob("444", domain.PriorityHigh, 1)

	for _, job := range []*domain.RefreshJob{low, normal, highFirst, highSecond} {
		_, err := backend.Enqueue(ctx, job)
		require.NoError(t, err)
	}

	// Alta prioridade drena primeiro, em ordem de chegada
	expected := []string{"333", "444", "222", "111"}

	for _, customerID := range expected {
		job, err := backend.Claim(ctx)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, customerID, job.CustomerID)
	}

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestRedisBackend_Complete_LiberaDeduplicacao(t *testing.T) {
	backend := newTestRedisBackend(t, DefaultRetryPolicy())
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, backend.Complete(ctx, job))

	pending, err := backend.PendingJobs(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)

	// Depois de concluído, o mesmo período pode ser reenfileirado
	outcome, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)
}

func TestRedisBackend_Fail_ReagendaComBackoff(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: 30 * time.Second, MaxDelay: time.Minute}
	backend := newTestRedisBackend(t, policy)
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	requeued, err := backend.Fail(ctx, job, errors.New("timeout na API"))
	require.NoError(t, err)
	assert.True(t, requeued)
	assert.Equal(t, 1, job.Attempt)

	// O job continua pendente para deduplicação, mas ainda não está pronto
	pending, err := backend.PendingJobs(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	claimed, err := backend.Claim(ctx)
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestRedisBackend_Fail_PromoveAposVencerOAtraso(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	backend := newTestRedisBackend(t, policy)
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	requeued, err := backend.Fail(ctx, job, errors.New("timeout na API"))
	require.NoError(t, err)
	assert.True(t, requeued)

	time.Sleep(50 * time.Millisecond)

	claimed, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, 1, claimed.Attempt)
	assert.Equal(t, "timeout na API", claimed.LastError)
}

func TestRedisBackend_Fail_EsgotaTentativasEMoveParaMortos(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	backend := newTestRedisBackend(t, policy)
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	requeued, err := backend.Fail(ctx, job, errors.New("erro transitório"))
	require.NoError(t, err)
	assert.True(t, requeued)

	requeued, err = backend.Fail(ctx, job, errors.New("erro definitivo"))
	require.NoError(t, err)
	assert.False(t, requeued)

	dead, err := backend.DeadJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "123", dead[0].CustomerID)
	assert.Equal(t, 2, dead[0].Attempt)
	assert.Equal(t, "erro definitivo", dead[0].LastError)

	// Job morto libera a deduplicação para um novo enfileiramento manual
	pending, err := backend.PendingJobs(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)

	outcome, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)
}

func TestRedisBackend_PendingJobs_ContaPorCliente(t *testing.T) {
	backend := newTestRedisBackend(t, DefaultRetryPolicy())
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("111", domain.PriorityNormal, 1))
	require.NoError(t, err)

	_, err = backend.Enqueue(ctx, newTestJob("111", domain.PriorityNormal, 10))
	require.NoError(t, err)

	_, err = backend.Enqueue(ctx, newTestJob("222", domain.PriorityLow, 1))
	require.NoError(t, err)

	pending, err := backend.PendingJobs(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	pending, err = backend.PendingJobs(ctx, "222")
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	pending, err = backend.PendingJobs(ctx, "333")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestRedisBackend_ReleaseStaleClaims_ReenfileiraAbandonados(t *testing.T) {
	backend := newTestRedisBackend(t, DefaultRetryPolicy())
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityHigh, 1))
	require.NoError(t, err)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	// Com o claim ativo, não há mais nada para outro worker pegar
	claimed, err := backend.Claim(ctx)
	require.NoError(t, err)
	assert.Nil(t, claimed)

	time.Sleep(5 * time.Millisecond)

	released, err := backend.ReleaseStaleClaims(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	claimed, err = backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "123", claimed.CustomerID)
}

func TestRedisBackend_Enqueue_RetomaReservaSemPayload(t *testing.T) {
	mr := miniredis.RunT(t)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backend := NewRedisBackend(client, DefaultRetryPolicy())
	ctx := context.Background()

	// Um enfileiramento interrompido entre a reserva de deduplicação e a
	// gravação do payload deixa só o id no conjunto pendente
	job := newTestJob("123-456-7890", domain.PriorityNormal, 1)
	job.ComputeID()
	require.NoError(t, client.SAdd(ctx, "queue:pending", job.ID).Err())

	// A reserva órfã não pode recusar o mesmo pedido para sempre
	outcome, err := backend.Enqueue(ctx, newTestJob("123-456-7890", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)

	claimed, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "123-456-7890", claimed.CustomerID)

	// Com o payload gravado, a deduplicação volta a valer
	outcome, err = backend.Enqueue(ctx, newTestJob("123-456-7890", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
}

func TestRedisBackend_Discard_MoveDiretoParaMortos(t *testing.T) {
	backend := newTestRedisBackend(t, DefaultRetryPolicy())
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, backend.Discard(ctx, job, errors.New("lote rejeitado na validação")))

	// Sem novas tentativas: nada pronto, nada pendente, job estacionado
	claimed, err := backend.Claim(ctx)
	require.NoError(t, err)
	assert.Nil(t, claimed)

	pending, err := backend.PendingJobs(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)

	dead, err := backend.DeadJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "123", dead[0].CustomerID)
	assert.Equal(t, "lote rejeitado na validação", dead[0].LastError)
}
