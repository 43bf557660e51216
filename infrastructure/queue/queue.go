package queue

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EnqueueOutcome é o resultado de baixo nível de um enfileiramento. Limitação
// de taxa é decidida antes da fila, então aqui só existe fila ou duplicata.
type EnqueueOutcome string

const (
	OutcomeQueued    EnqueueOutcome = "queued"
	OutcomeDuplicate EnqueueOutcome = "duplicate"
)

var (
	// ErrJobNotFound indica que o payload do job não existe mais no backend
	ErrJobNotFound = errors.New("job não encontrado na fila")
)

// Backend é o contrato da fila de jobs de sincronização. Duas implementações
// são selecionadas na inicialização: Redis (compartilhada entre processos) e
// memória (efêmera, modo degradado quando o Redis está indisponível).
type Backend interface {
	// Enqueue registra o job respeitando a deduplicação por ID determinístico.
	// Um job com o mesmo ID aguardando ou em execução resulta em
	// OutcomeDuplicate sem criar uma segunda entrada.
	Enqueue(ctx context.Context, job *domain.RefreshJob) (EnqueueOutcome, error)

	// Claim entrega o próximo job elegível respeitando prioridade e ordem de
	// chegada dentro da mesma prioridade. Retorna nil quando a fila está
	// vazia. Cada job é entregue a no máximo um worker por vez.
	Claim(ctx context.Context) (*domain.RefreshJob, error)

	// Complete remove o job da fila após execução bem-sucedida
	Complete(ctx context.Context, job *domain.RefreshJob) error

	// Fail registra uma falha de execução. O job volta para a fila com
	// attempt incrementado e atraso de backoff exponencial, ou vai para o
	// estado morto quando o limite de tentativas é atingido.
	Fail(ctx context.Context, job *domain.RefreshJob, cause error) (requeued bool, err error)

	// Discard move o job direto para o estado morto, sem novas tentativas.
	// Usado para falhas determinísticas, como lote rejeitado na validação.
	Discard(ctx context.Context, job *domain.RefreshJob, cause error) error

	// PendingJobs conta os jobs aguardando ou em execução de um cliente
	PendingJobs(ctx context.Context, customerID string) (int, error)

	// DeadJobs lista os jobs estacionados após esgotarem as tentativas
	DeadJobs(ctx context.Context, limit int) ([]*domain.RefreshJob, error)

	// ReleaseStaleClaims reenfileira claims abandonados há mais tempo que
	// olderThan, para que um worker travado não prenda um job para sempre.
	// Como as escritas são idempotentes, reexecutar é seguro.
	ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) (int, error)

	// Ping verifica a disponibilidade do backend
	Ping(ctx context.Context) error

	// Name identifica a implementação nos logs e no status da API
	Name() string
}

func encodeJob(job *domain.RefreshJob) (string, error) {
	return json.MarshalToString(job)
}

func decodeJob(payload string) (*domain.RefreshJob, error) {
	job := &domain.RefreshJob{}
	if err := json.UnmarshalFromString(payload, job); err != nil {
		return nil, err
	}
	return job, nil
}
