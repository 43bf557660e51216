package queue

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

type memoryBackend struct {
	mutex   sync.Mutex
	policy  RetryPolicy
	jobs    map[string]*domain.RefreshJob
	pending map[string]bool
	ready   map[domain.JobPriority][]string
	delayed map[string]time.Time
	active  map[string]time.Time
	dead    []*domain.RefreshJob
}

// NewMemoryBackend cria o backend de fila em memória, usado quando o Redis
// não está disponível. Mantém a mesma semântica do backend Redis, mas os
// jobs não sobrevivem ao restart do processo
func NewMemoryBackend(policy RetryPolicy) Backend {
	return &memoryBackend{
		policy:  policy,
		jobs:    make(map[string]*domain.RefreshJob),
		pending: make(map[string]bool),
		ready:   make(map[domain.JobPriority][]string),
		delayed: make(map[string]time.Time),
		active:  make(map[string]time.Time),
	}
}

func cloneJob(job *domain.RefreshJob) *domain.RefreshJob {
	clone := *job
	return &clone
}

func (b *memoryBackend) Enqueue(_ context.Context, job *domain.RefreshJob) (EnqueueOutcome, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	job.ComputeID()

	if b.pending[job.ID] {
		return OutcomeDuplicate, nil
	}

	b.pending[job.ID] = true
	b.jobs[job.ID] = cloneJob(job)
	b.ready[job.Priority] = append(b.ready[job.Priority], job.ID)

	return OutcomeQueued, nil
}

func (b *memoryBackend) Claim(_ context.Context) (*domain.RefreshJob, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.promoteDue(time.Now())

	for _, priority := range domain.PriorityOrder {
		for len(b.ready[priority]) > 0 {
			jobID := b.ready[priority][0]
			b.ready[priority] = b.ready[priority][1:]

			job, ok := b.jobs[jobID]
			if !ok {
				delete(b.pending, jobID)
				continue
			}

			b.active[jobID] = time.Now()

			return cloneJob(job), nil
		}
	}

	return nil, nil
}

func (b *memoryBackend) promoteDue(now time.Time) {
	due := make([]string, 0)

	for jobID, readyAt := range b.delayed {
		if !readyAt.After(now) {
			due = append(due, jobID)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return b.delayed[due[i]].Before(b.delayed[due[j]])
	})

	for _, jobID := range due {
		delete(b.delayed, jobID)

		job, ok := b.jobs[jobID]
		if !ok {
			continue
		}

		b.ready[job.Priority] = append(b.ready[job.Priority], jobID)
	}
}

func (b *memoryBackend) Complete(_ context.Context, job *domain.RefreshJob) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	delete(b.pending, job.ID)
	delete(b.active, job.ID)
	delete(b.jobs, job.ID)

	return nil
}

func (b *memoryBackend) Fail(_ context.Context, job *domain.RefreshJob, cause error) (bool, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	job.Attempt++
	if cause != nil {
		job.LastError = cause.Error()
	}

	if b.policy.Exhausted(job.Attempt) {
		delete(b.pending, job.ID)
		delete(b.active, job.ID)
		delete(b.jobs, job.ID)
		b.dead = append(b.dead, cloneJob(job))

		return false, nil
	}

	b.jobs[job.ID] = cloneJob(job)
	delete(b.active, job.ID)
	b.delayed[job.ID] = time.Now().Add(b.policy.NextDelay(job.Attempt))

	return true, nil
}

// Discard move o job direto para a fila de mortos, sem reagendar. Usado para
// falhas que novas tentativas não resolvem
func (b *memoryBackend) Discard(_ context.Context, job *domain.RefreshJob, cause error) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if cause != nil {
		job.LastError = cause.Error()
	}

	delete(b.pending, job.ID)
	delete(b.active, job.ID)
	delete(b.jobs, job.ID)
	b.dead = append(b.dead, cloneJob(job))

	return nil
}

func (b *memoryBackend) PendingJobs(_ context.Context, customerID string) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	count := 0
	prefix := customerID + ":"

	for jobID := range b.pending {
		if strings.HasPrefix(jobID, prefix) {
			count++
		}
	}

	return count, nil
}

func (b *memoryBackend) DeadJobs(_ context.Context, limit int) ([]*domain.RefreshJob, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if limit <= 0 {
		limit = 50
	}

	start := len(b.dead) - limit
	if start < 0 {
		start = 0
	}

	jobs := make([]*domain.RefreshJob, 0, len(b.dead)-start)

	for _, job := range b.dead[start:] {
		jobs = append(jobs, cloneJob(job))
	}

	return jobs, nil
}

func (b *memoryBackend) ReleaseStaleClaims(_ context.Context, olderThan time.Duration) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	cutoff := time.Now().Add(-olderThan)

	stale := make([]string, 0)
	for jobID, claimedAt := range b.active {
		if !claimedAt.After(cutoff) {
			stale = append(stale, jobID)
		}
	}

	// Reenfileira na ordem em que foram reivindicados, como no backend Redis
	sort.Slice(stale, func(i, j int) bool {
		return b.active[stale[i]].Before(b.active[stale[j]])
	})

	released := 0

	for _, jobID := range stale {
		delete(b.active, jobID)

		job, ok := b.jobs[jobID]
		if !ok {
			delete(b.pending, jobID)
			continue
		}

		b.ready[job.Priority] = append(b.ready[job.Priority], jobID)
		released++
	}

	return released, nil
}

func (b *memoryBackend) Ping(_ context.Context) error {
	return nil
}

func (b *memoryBackend) Name() string {
	return "memory"
}
