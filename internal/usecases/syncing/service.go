package syncing

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/queue"
	"github.com/vfg2006/metrics-sync-api/infrastructure/repository"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"github.com/vfg2006/metrics-sync-api/pkg/apiErrors"
)

// SyncService controla quando uma sincronização pode acontecer e transforma
// pedidos de refresh em jobs na fila
type SyncService interface {
	CanSync(customerID string, force bool) (*domain.SyncDecision, error)
	RecordSyncResult(customerID string, outcome domain.SyncOutcome) error
	EnqueueRefresh(ctx context.Context, request *RefreshRequest) (*domain.EnqueueResult, error)
	EnqueueBackfill(ctx context.Context, request *BackfillRequest) (*domain.EnqueueResult, error)
	GetSyncStatus(ctx context.Context, customerID string) (*domain.SyncStatusReport, error)
	ListDeadJobs(ctx context.Context, limit int) ([]*domain.RefreshJob, error)
}

// RefreshRequest é um pedido de sincronização de uma entidade em um intervalo
type RefreshRequest struct {
	CustomerID     string
	AccountID      string
	EntityType     domain.EntityType
	ParentEntityID string
	DateRange      domain.DateRange
	Priority       domain.JobPriority
	Force          bool
}

// BackfillRequest é um pedido de sincronização histórica, fatiado em chunks
type BackfillRequest struct {
	CustomerID     string
	AccountID      string
	EntityType     domain.EntityType
	ParentEntityID string
	DateRange      domain.DateRange
}

type Service struct {
	cfg                    *config.Config
	syncCooldownRepository repository.SyncCooldownRepository
	queue                  queue.Backend
	chunker                *BackfillChunker
}

func NewService(
	cfg *config.Config,
	syncCooldownRepo repository.SyncCooldownRepository,
	queueBackend queue.Backend,
) SyncService {
	return &Service{
		cfg:                    cfg,
		syncCooldownRepository: syncCooldownRepo,
		queue:                  queueBackend,
		chunker:                NewBackfillChunker(cfg.BackfillSync.ChunkDays),
	}
}

// CanSync decide se uma nova sincronização pode ser disparada para o cliente.
// A negativa não é um erro: devolve o motivo e o horário da próxima janela.
func (s *Service) CanSync(customerID string, force bool) (*domain.SyncDecision, error) {
	cooldown, err := s.syncCooldownRepository.GetByCustomerID(customerID)
	if err != nil {
		logrus.WithError(err).WithField("customer_id", customerID).Error("Erro ao consultar cooldown de sincronização")
		return nil, NewSyncError(ErrCooldownLookup, apiErrors.ErrDatabaseOperation, customerID, "Falha ao consultar controle de frequência no banco de dados")
	}

	if cooldown == nil {
		// Cliente nunca sincronizado
		return &domain.SyncDecision{Allowed: true}, nil
	}

	now := time.Now().UTC()
	lastSyncAt := cooldown.LastSyncAt

	if force {
		// Forçar ignora o cooldown normal, mas respeita um piso mais
		// rígido entre sincronizações consecutivas
		floor := cooldown.LastSyncAt.Add(time.Duration(s.cfg.SyncRateLimit.ForceFloorMinutes) * time.Minute)
		if now.Before(floor) {
			return &domain.SyncDecision{
				Allowed:      false,
				Reason:       fmt.Sprintf("mesmo forçada, uma nova sincronização só é aceita após %s", floor.Format(time.RFC3339)),
				NextSyncAt:   &floor,
				LastSyncedAt: &lastSyncAt,
			}, nil
		}

		return &domain.SyncDecision{Allowed: true, LastSyncedAt: &lastSyncAt}, nil
	}

	if now.Before(cooldown.NextAllowedAt) {
		nextSyncAt := cooldown.NextAllowedAt
		return &domain.SyncDecision{
			Allowed:      false,
			Reason:       fmt.Sprintf("aguardando intervalo mínimo entre sincronizações, tente novamente após %s", nextSyncAt.Format(time.RFC3339)),
			NextSyncAt:   &nextSyncAt,
			LastSyncedAt: &lastSyncAt,
		}, nil
	}

	return &domain.SyncDecision{Allowed: true, LastSyncedAt: &lastSyncAt}, nil
}

// RecordSyncResult atualiza o controle de frequência após toda tentativa de
// sincronização. Falhas encurtam o cooldown para permitir nova tentativa mais
// cedo, sem liberar tentativas imediatas ilimitadas.
func (s *Service) RecordSyncResult(customerID string, outcome domain.SyncOutcome) error {
	now := time.Now().UTC()

	cooldownWindow := time.Duration(s.cfg.SyncRateLimit.SuccessCooldownMinutes) * time.Minute
	if outcome == domain.SyncOutcomeFailed {
		cooldownWindow = time.Duration(s.cfg.SyncRateLimit.FailureCooldownMinutes) * time.Minute
	}

	cooldown := &domain.SyncCooldown{
		CustomerID:     customerID,
		LastSyncAt:     now,
		LastSyncStatus: outcome,
		NextAllowedAt:  now.Add(cooldownWindow),
	}

	if err := s.syncCooldownRepository.SaveOrUpdate(cooldown); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"customer_id": customerID,
			"outcome":     outcome,
		}).Error("Erro ao atualizar cooldown de sincronização")
		return NewSyncError(ErrCooldownUpdate, apiErrors.ErrDatabaseOperation, customerID, "Falha ao atualizar controle de frequência no banco de dados")
	}

	return nil
}

// EnqueueRefresh transforma um pedido de refresh em um job na fila. O
// resultado é sempre um dos quatro status visíveis ao chamador; a
// indisponibilidade da fila não vira erro para não bloquear a leitura do que
// já existe em cache.
func (s *Service) EnqueueRefresh(ctx context.Context, request *RefreshRequest) (*domain.EnqueueResult, error) {
	job := &domain.RefreshJob{
		CustomerID:     request.CustomerID,
		AccountID:      request.AccountID,
		EntityType:     request.EntityType,
		ParentEntityID: request.ParentEntityID,
		Priority:       request.Priority,
		StartDate:      domain.DayOf(request.DateRange.Start),
		EndDate:        domain.DayOf(request.DateRange.End),
		RequestedAt:    time.Now().UTC(),
	}

	if job.Priority == "" {
		job.Priority = domain.PriorityNormal
	}

	job.ComputeID()

	if err := job.Validate(); err != nil {
		return nil, NewSyncError(ErrInvalidRefreshRequest, apiErrors.ErrInvalidRequest, request.CustomerID, err.Error())
	}

	decision, err := s.CanSync(request.CustomerID, request.Force)
	if err != nil {
		return nil, err
	}

	if !decision.Allowed {
		logrus.WithFields(logrus.Fields{
			"customer_id": request.CustomerID,
			"job_id":      job.ID,
			"reason":      decision.Reason,
		}).Info("Sincronização negada pelo controle de frequência")

		return &domain.EnqueueResult{
			Status:     domain.EnqueueStatusRateLimited,
			NextSyncAt: decision.NextSyncAt,
		}, nil
	}

	outcome, err := s.queue.Enqueue(ctx, job)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"customer_id": request.CustomerID,
			"job_id":      job.ID,
			"backend":     s.queue.Name(),
		}).Error("Erro ao enfileirar job de sincronização")

		return &domain.EnqueueResult{Status: domain.EnqueueStatusUnavailable}, nil
	}

	if outcome == queue.OutcomeDuplicate {
		return &domain.EnqueueResult{
			Status: domain.EnqueueStatusAlreadyPending,
			JobID:  job.ID,
		}, nil
	}

	return &domain.EnqueueResult{
		Status: domain.EnqueueStatusQueued,
		JobID:  job.ID,
		Jobs:   1,
	}, nil
}

// EnqueueBackfill fatia um intervalo histórico em chunks de prioridade baixa
// e enfileira cada um. Chunks já pendentes são contados como duplicados e não
// geram novos jobs.
func (s *Service) EnqueueBackfill(ctx context.Context, request *BackfillRequest) (*domain.EnqueueResult, error) {
	dateRange := domain.DateRange{
		Start: domain.DayOf(request.DateRange.Start),
		End:   domain.DayOf(request.DateRange.End),
	}

	if dateRange.Start.IsZero() || dateRange.End.Before(dateRange.Start) {
		return nil, NewSyncError(ErrInvalidBackfillRange, apiErrors.ErrInvalidRequest, request.CustomerID, dateRange.String())
	}

	decision, err := s.CanSync(request.CustomerID, false)
	if err != nil {
		return nil, err
	}

	if !decision.Allowed {
		return &domain.EnqueueResult{
			Status:     domain.EnqueueStatusRateLimited,
			NextSyncAt: decision.NextSyncAt,
		}, nil
	}

	jobs := s.chunker.Chunk(
		request.CustomerID,
		request.AccountID,
		request.EntityType,
		request.ParentEntityID,
		dateRange,
		time.Now().UTC(),
	)

	queued := 0
	duplicates := 0

	for _, job := range jobs {
		if err := job.Validate(); err != nil {
			return nil, NewSyncError(ErrInvalidBackfillRange, apiErrors.ErrInvalidRequest, request.CustomerID, err.Error())
		}

		outcome, err := s.queue.Enqueue(ctx, job)
		if err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"customer_id": request.CustomerID,
				"job_id":      job.ID,
				"backend":     s.queue.Name(),
			}).Error("Erro ao enfileirar chunk de backfill")

			if queued == 0 {
				return &domain.EnqueueResult{Status: domain.EnqueueStatusUnavailable}, nil
			}

			// Parte dos chunks já entrou: reporta o que foi agendado e
			// deixa o restante para a próxima rodada
			break
		}

		if outcome == queue.OutcomeDuplicate {
			duplicates++
			continue
		}

		queued++
	}

	logrus.WithFields(logrus.Fields{
		"customer_id": request.CustomerID,
		"entity_type": request.EntityType,
		"range":       dateRange.String(),
		"queued":      queued,
		"duplicates":  duplicates,
	}).Info("Backfill enfileirado")

	if queued == 0 {
		return &domain.EnqueueResult{Status: domain.EnqueueStatusAlreadyPending}, nil
	}

	return &domain.EnqueueResult{
		Status: domain.EnqueueStatusQueued,
		Jobs:   queued,
	}, nil
}

// GetSyncStatus devolve o estado de sincronização de um cliente. A contagem
// de jobs pendentes degrada para zero se a fila estiver fora do ar, sem
// bloquear o restante da resposta.
func (s *Service) GetSyncStatus(ctx context.Context, customerID string) (*domain.SyncStatusReport, error) {
	cooldown, err := s.syncCooldownRepository.GetByCustomerID(customerID)
	if err != nil {
		logrus.WithError(err).WithField("customer_id", customerID).Error("Erro ao consultar cooldown de sincronização")
		return nil, NewSyncError(ErrCooldownLookup, apiErrors.ErrDatabaseOperation, customerID, "Falha ao consultar controle de frequência no banco de dados")
	}

	report := &domain.SyncStatusReport{CustomerID: customerID}

	if cooldown != nil {
		lastSyncAt := cooldown.LastSyncAt
		cooldownUntil := cooldown.NextAllowedAt

		report.LastSyncAt = &lastSyncAt
		report.LastSyncStatus = cooldown.LastSyncStatus
		report.CooldownUntil = &cooldownUntil
	}

	pending, err := s.queue.PendingJobs(ctx, customerID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"customer_id": customerID,
			"backend":     s.queue.Name(),
		}).Warn("Erro ao contar jobs pendentes na fila")
	} else {
		report.PendingJobs = pending
	}

	return report, nil
}

// ListDeadJobs lista os jobs que esgotaram as tentativas, para inspeção
func (s *Service) ListDeadJobs(ctx context.Context, limit int) ([]*domain.RefreshJob, error) {
	jobs, err := s.queue.DeadJobs(ctx, limit)
	if err != nil {
		logrus.WithError(err).WithField("backend", s.queue.Name()).Error("Erro ao listar jobs mortos")
		return nil, NewSyncError(ErrQueueUnavailable, apiErrors.ErrExternalService, "", "Falha ao consultar jobs mortos na fila")
	}

	return jobs, nil
}
