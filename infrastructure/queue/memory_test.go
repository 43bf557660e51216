package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

func TestMemoryBackend_MesmaSemanticaDeDeduplicacao(t *testing.T) {
	backend := NewMemoryBackend(DefaultRetryPolicy())
	ctx := context.Background()

	outcome, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)

	outcome, err = backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, backend.Complete(ctx, job))

	outcome, err = backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)
}

func TestMemoryBackend_ClaimRespeitaPrioridadeEOrdem(t *testing.T) {
	backend := NewMemoryBackend(DefaultRetryPolicy())
	ctx := context.Background()

	jobs := []*domain.RefreshJob{
		newTestJob("111", domain.PriorityLow, 1),
		newTestJob("222", domain.PriorityNormal, 1),
		newTestJob("333", domain.PriorityHigh, 1),
		newTestJob("444", domain.PriorityHigh, 1),
	}

	for _, job := range jobs {
		_, err := backend.Enqueue(ctx, job)
		require.NoError(t, err)
	}

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

func TestMemoryBackend_FailReagendaEDepoisEsgota(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	backend := NewMemoryBackend(policy)
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	requeued, err := backend.Fail(ctx, job, errors.New("erro transitório"))
	require.NoError(t, err)
	assert.True(t, requeued)

	time.Sleep(20 * time.Millisecond)

	job, err = backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, 1, job.Attempt)
	assert.Equal(t, "erro transitório", job.LastError)

	requeued, err = backend.Fail(ctx, job, errors.New("erro definitivo"))
	require.NoError(t, err)
	assert.False(t, requeued)

	dead, err := backend.DeadJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, 2, dead[0].Attempt)
	assert.Equal(t, "erro definitivo", dead[0].LastError)

	pending, err := backend.PendingJobs(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestMemoryBackend_ReleaseStaleClaimsReenfileira(t *testing.T) {
	backend := NewMemoryBackend(DefaultRetryPolicy())
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityHigh, 1))
	require.NoError(t, err)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	time.Sleep(5 * time.Millisecond)

	released, err := backend.ReleaseStaleClaims(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	claimed, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, "123", claimed.CustomerID)
}

func TestMemoryBackend_PendingJobsContaPorCliente(t *testing.T) {
	backend := NewMemoryBackend(DefaultRetryPolicy())
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("111", domain.PriorityNormal, 1))
	require.NoError(t, err)

	_, err = backend.Enqueue(ctx, newTestJob("111", domain.PriorityLow, 10))
	require.NoError(t, err)

	pending, err := backend.PendingJobs(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	pending, err = backend.PendingJobs(ctx, "999")
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestMemoryBackend_ReleaseStaleClaimsPreservaOrdemDeReivindicacao(t *testing.T) {
	backend := NewMemoryBackend(DefaultRetryPolicy())
	ctx := context.Background()

	for _, customerID := range []string{"111", "222", "333"} {
		_, err := backend.Enqueue(ctx, newTestJob(customerID, domain.PriorityNormal, 1))
		require.NoError(t, err)
	}

	// Reivindica em ordem FIFO, com instantes de claim distintos
	for i := 0; i < 3; i++ {
		job, err := backend.Claim(ctx)
		require.NoError(t, err)
		require.NotNil(t, job)
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(5 * time.Millisecond)

	released, err := backend.ReleaseStaleClaims(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, released)

	// Liberados juntos, voltam na ordem em que foram reivindicados
	for _, customerID := range []string{"111", "222", "333"} {
		job, err := backend.Claim(ctx)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, customerID, job.CustomerID)
	}
}

func TestMemoryBackend_DiscardMoveDiretoParaMortos(t *testing.T) {
	backend := NewMemoryBackend(DefaultRetryPolicy())
	ctx := context.Background()

	_, err := backend.Enqueue(ctx, newTestJob("123", domain.PriorityNormal, 1))
	require.NoError(t, err)

	job, err := backend.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, backend.Discard(ctx, job, errors.New("lote rejeitado na validação")))

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
	assert.Equal(t, 0, dead[0].Attempt)
	assert.Equal(t, "lote rejeitado na validação", dead[0].LastError)
}
