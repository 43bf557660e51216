package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/queue"
	"github.com/vfg2006/metrics-sync-api/infrastructure/repository"
	"github.com/vfg2006/metrics-sync-api/internal/config"
)

// RetentionCleanupConfig representa a configuração do agendador de limpeza
type RetentionCleanupConfig struct {
	CronSchedule      string
	RetentionDays     int
	StaleClaimMinutes int
	CleanupEnabled    bool
}

// RetentionCleanupService cuida da manutenção periódica do armazenamento:
// apaga linhas diárias além da janela de retenção e devolve para a fila os
// jobs cujo worker morreu no meio da execução
type RetentionCleanupService struct {
	scheduler        *gocron.Scheduler
	config           RetentionCleanupConfig
	dailyMetricRepo  repository.DailyMetricRepository
	queueBackend     queue.Backend
	cleanupRunning   bool
	cleanupMutex     sync.Mutex
	lastCleanupRunAt time.Time
	lastReleaseRunAt time.Time
	lastRowsDeleted  int64
	lastJobsReleased int
}

// NewRetentionCleanupService cria uma nova instância do serviço de limpeza
func NewRetentionCleanupService(
	dailyMetricRepo repository.DailyMetricRepository,
	queueBackend queue.Backend,
	appConfig *config.Config,
) *RetentionCleanupService {
	cleanupConfig := RetentionCleanupConfig{
		CronSchedule:      appConfig.RetentionCleanup.CronSchedule,
		RetentionDays:     appConfig.RetentionCleanup.RetentionDays,
		StaleClaimMinutes: appConfig.Queue.StaleClaimMinutes,
		CleanupEnabled:    appConfig.RetentionCleanup.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       cleanupConfig.CronSchedule,
		"retention_days":      cleanupConfig.RetentionDays,
		"stale_claim_minutes": cleanupConfig.StaleClaimMinutes,
		"cleanup_enabled":     cleanupConfig.CleanupEnabled,
	}).Info("Configuração do agendador de limpeza carregada")

	return &RetentionCleanupService{
		scheduler:       scheduler,
		config:          cleanupConfig,
		dailyMetricRepo: dailyMetricRepo,
		queueBackend:    queueBackend,
	}
}

// Start inicia o agendador. A liberação de claims órfãos roda mesmo com a
// limpeza de retenção desabilitada, porque sem ela jobs de workers mortos
// ficariam presos para sempre.
func (s *RetentionCleanupService) Start(ctx context.Context) error {
	if s.config.StaleClaimMinutes > 0 {
		_, err := s.scheduler.Every(s.config.StaleClaimMinutes).Minutes().Do(func() {
			s.releaseStaleClaims()
		})
		if err != nil {
			return fmt.Errorf("erro ao agendar liberação de claims órfãos: %w", err)
		}
	}

	if s.config.CleanupEnabled {
		logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de limpeza de retenção")

		_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
			s.cleanupOldMetrics()
		})
		if err != nil {
			return fmt.Errorf("erro ao agendar limpeza de retenção: %w", err)
		}
	} else {
		logrus.Info("Limpeza de retenção desabilitada por configuração")
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de limpeza")
		s.scheduler.Stop()
	}()

	return nil
}

// cleanupOldMetrics apaga as linhas diárias além da janela de retenção
func (s *RetentionCleanupService) cleanupOldMetrics() {
	s.cleanupMutex.Lock()
	if s.cleanupRunning {
		s.cleanupMutex.Unlock()
		logrus.Info("Limpeza de retenção já em andamento, ignorando")
		return
	}
	s.cleanupRunning = true
	s.cleanupMutex.Unlock()

	defer func() {
		s.cleanupMutex.Lock()
		s.cleanupRunning = false
		s.cleanupMutex.Unlock()
	}()

	logrus.WithField("retention_days", s.config.RetentionDays).Info("Iniciando limpeza de métricas antigas")

	deleted, err := s.dailyMetricRepo.DeleteOlderThan(s.config.RetentionDays)
	if err != nil {
		logrus.WithError(err).Error("Erro ao apagar métricas além da retenção")
		return
	}

	s.lastCleanupRunAt = time.Now()
	s.lastRowsDeleted = deleted

	logrus.WithFields(logrus.Fields{
		"rows_deleted":   deleted,
		"retention_days": s.config.RetentionDays,
	}).Info("Limpeza de métricas antigas concluída")
}

// releaseStaleClaims devolve para a fila os jobs reivindicados há mais tempo
// que o limite, típico de worker que morreu no meio da execução
func (s *RetentionCleanupService) releaseStaleClaims() {
	olderThan := time.Duration(s.config.StaleClaimMinutes) * time.Minute

	released, err := s.queueBackend.ReleaseStaleClaims(context.Background(), olderThan)
	if err != nil {
		logrus.WithError(err).WithField("backend", s.queueBackend.Name()).Error("Erro ao liberar claims órfãos na fila")
		return
	}

	s.lastReleaseRunAt = time.Now()
	s.lastJobsReleased = released

	if released > 0 {
		logrus.WithFields(logrus.Fields{
			"released":   released,
			"older_than": olderThan.String(),
		}).Warn("Jobs com claim órfão devolvidos para a fila")
	}
}

// TriggerManualCleanup inicia manualmente uma limpeza de retenção
func (s *RetentionCleanupService) TriggerManualCleanup() {
	s.cleanupMutex.Lock()
	if s.cleanupRunning {
		s.cleanupMutex.Unlock()
		logrus.Info("Limpeza de retenção já em andamento, ignorando solicitação manual")
		return
	}
	s.cleanupMutex.Unlock()

	logrus.Info("Iniciando limpeza manual de retenção")
	go s.cleanupOldMetrics()
}

// GetStatus retorna o status atual do agendador
func (s *RetentionCleanupService) GetStatus() map[string]any {
	return map[string]any{
		"cleanup_enabled":     s.config.CleanupEnabled,
		"cleanup_cron":        s.config.CronSchedule,
		"retention_days":      s.config.RetentionDays,
		"stale_claim_minutes": s.config.StaleClaimMinutes,
		"last_cleanup_run_at": s.lastCleanupRunAt,
		"last_release_run_at": s.lastReleaseRunAt,
		"last_rows_deleted":   s.lastRowsDeleted,
		"last_jobs_released":  s.lastJobsReleased,
	}
}
