package queue

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

const (
	jobsKey        = "queue:jobs"
	pendingKey     = "queue:pending"
	delayedKey     = "queue:delayed"
	activeKey      = "queue:active"
	deadKey        = "queue:dead"
	readyKeyPrefix = "queue:ready:"

	promoteBatchSize = 128
	releaseBatchSize = 256
)

type redisBackend struct {
	client *redis.Client
	policy RetryPolicy
}

// NewRedisBackend cria o backend de fila sobre Redis. Os jobs ficam em um
// hash indexado pelo id determinístico, o conjunto pendente garante a
// deduplicação e cada prioridade tem sua própria lista de prontos
func NewRedisBackend(client *redis.Client, policy RetryPolicy) Backend {
	return &redisBackend{
		client: client,
		policy: policy,
	}
}

func readyKey(priority domain.JobPriority) string {
	return readyKeyPrefix + string(priority)
}

func scoreOf(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func (b *redisBackend) Enqueue(ctx context.Context, job *domain.RefreshJob) (EnqueueOutcome, error) {
	job.ComputeID()

	payload, err := encodeJob(job)
	if err != nil {
		return "", err
	}

	added, err := b.client.SAdd(ctx, pendingKey, job.ID).Result()
	if err != nil {
		return "", err
	}

	if added == 0 {
		// Id reservado sem payload é resto de um enfileiramento interrompido
		// no meio; retoma a gravação em vez de recusar como duplicado
		exists, err := b.client.HExists(ctx, jobsKey, job.ID).Result()
		if err != nil {
			return "", err
		}

		if exists {
			return OutcomeDuplicate, nil
		}
	}

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, jobsKey, job.ID, payload)
		pipe.RPush(ctx, readyKey(job.Priority), job.ID)
		return nil
	})
	if err != nil {
		// Desfaz a reserva de deduplicação para não prender a chave
		b.client.SRem(ctx, pendingKey, job.ID)
		return "", err
	}

	return OutcomeQueued, nil
}

func (b *redisBackend) Claim(ctx context.Context) (*domain.RefreshJob, error) {
	if err := b.promoteDue(ctx); err != nil {
		return nil, err
	}

	for _, priority := range domain.PriorityOrder {
		jobID, err := b.client.LPop(ctx, readyKey(priority)).Result()
		if err == redis.Nil {
			continue
		}

		if err != nil {
			return nil, err
		}

		payload, err := b.client.HGet(ctx, jobsKey, jobID).Result()
		if err == redis.Nil {
			// Payload removido por outro caminho, descarta o id órfão
			b.client.SRem(ctx, pendingKey, jobID)
			continue
		}

		if err != nil {
			return nil, err
		}

		job, err := decodeJob(payload)
		if err != nil {
			return nil, err
		}

		if err := b.client.ZAdd(ctx, activeKey, redis.Z{Score: scoreOf(time.Now()), Member: jobID}).Err(); err != nil {
			return nil, err
		}

		return job, nil
	}

	return nil, nil
}

// promoteDue move os jobs agendados que já venceram para as listas de
// prontos da sua prioridade, preservando a ordem de vencimento
func (b *redisBackend) promoteDue(ctx context.Context) error {
	due, err := b.client.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(time.Now().UnixMilli(), 10),
		Count: promoteBatchSize,
	}).Result()
	if err != nil {
		return err
	}

	for _, jobID := range due {
		payload, err := b.client.HGet(ctx, jobsKey, jobID).Result()
		if err == redis.Nil {
			b.client.ZRem(ctx, delayedKey, jobID)
			continue
		}

		if err != nil {
			return err
		}

		job, err := decodeJob(payload)
		if err != nil {
			return err
		}

		_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZRem(ctx, delayedKey, jobID)
			pipe.RPush(ctx, readyKey(job.Priority), jobID)
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (b *redisBackend) Complete(ctx context.Context, job *domain.RefreshJob) error {
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, pendingKey, job.ID)
		pipe.ZRem(ctx, activeKey, job.ID)
		pipe.HDel(ctx, jobsKey, job.ID)
		return nil
	})

	return err
}

func (b *redisBackend) Fail(ctx context.Context, job *domain.RefreshJob, cause error) (bool, error) {
	job.Attempt++
	if cause != nil {
		job.LastError = cause.Error()
	}

	payload, err := encodeJob(job)
	if err != nil {
		return false, err
	}

	if b.policy.Exhausted(job.Attempt) {
		_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SRem(ctx, pendingKey, job.ID)
			pipe.ZRem(ctx, activeKey, job.ID)
			pipe.HDel(ctx, jobsKey, job.ID)
			pipe.RPush(ctx, deadKey, payload)
			return nil
		})
		if err != nil {
			return false, err
		}

		return false, nil
	}

	readyAt := time.Now().Add(b.policy.NextDelay(job.Attempt))

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, jobsKey, job.ID, payload)
		pipe.ZRem(ctx, activeKey, job.ID)
		pipe.ZAdd(ctx, delayedKey, redis.Z{Score: scoreOf(readyAt), Member: job.ID})
		return nil
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// Discard move o job direto para a fila de mortos, sem reagendar. Usado para
// falhas que novas tentativas não resolvem
func (b *redisBackend) Discard(ctx context.Context, job *domain.RefreshJob, cause error) error {
	if cause != nil {
		job.LastError = cause.Error()
	}

	payload, err := encodeJob(job)
	if err != nil {
		return err
	}

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, pendingKey, job.ID)
		pipe.ZRem(ctx, activeKey, job.ID)
		pipe.HDel(ctx, jobsKey, job.ID)
		pipe.RPush(ctx, deadKey, payload)
		return nil
	})

	return err
}

func (b *redisBackend) PendingJobs(ctx context.Context, customerID string) (int, error) {
	count := 0

	iter := b.client.SScan(ctx, pendingKey, 0, customerID+":*", 200).Iterator()
	for iter.Next(ctx) {
		count++
	}

	if err := iter.Err(); err != nil {
		return 0, err
	}

	return count, nil
}

func (b *redisBackend) DeadJobs(ctx context.Context, limit int) ([]*domain.RefreshJob, error) {
	if limit <= 0 {
		limit = 50
	}

	payloads, err := b.client.LRange(ctx, deadKey, int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]*domain.RefreshJob, 0, len(payloads))

	for _, payload := range payloads {
		job, err := decodeJob(payload)
		if err != nil {
			continue
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (b *redisBackend) ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	stale, err := b.client.ZRangeByScore(ctx, activeKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(cutoff.UnixMilli(), 10),
		Count: releaseBatchSize,
	}).Result()
	if err != nil {
		return 0, err
	}

	released := 0

	for _, jobID := range stale {
		payload, err := b.client.HGet(ctx, jobsKey, jobID).Result()
		if err == redis.Nil {
			b.client.ZRem(ctx, activeKey, jobID)
			continue
		}

		if err != nil {
			return released, err
		}

		job, err := decodeJob(payload)
		if err != nil {
			return released, err
		}

		_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZRem(ctx, activeKey, jobID)
			pipe.RPush(ctx, readyKey(job.Priority), jobID)
			return nil
		})
		if err != nil {
			return released, err
		}

		released++
	}

	return released, nil
}

func (b *redisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *redisBackend) Name() string {
	return "redis"
}
