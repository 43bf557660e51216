package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/repository"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/metrics"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/syncing"
)

// BackfillSyncConfig representa a configuração do agendador de backfill
type BackfillSyncConfig struct {
	CronSchedule      string
	LookbackDays      int
	ChunkDays         int
	MaxConcurrentJobs int
	SyncEnabled       bool
}

// BackfillSyncService agenda a sincronização histórica de todas as contas
// ativas. Cada conta vira uma sequência de chunks de prioridade baixa na
// fila; quem executa são os workers, nunca o agendador.
type BackfillSyncService struct {
	scheduler           *gocron.Scheduler
	config              BackfillSyncConfig
	appConfig           *config.Config
	accountRepo         repository.AccountRepository
	syncService         syncing.SyncService
	metricsService      metrics.MetricsService
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewBackfillSyncService cria uma nova instância do agendador de backfill
func NewBackfillSyncService(
	accountRepo repository.AccountRepository,
	syncService syncing.SyncService,
	metricsService metrics.MetricsService,
	appConfig *config.Config,
) *BackfillSyncService {
	backfillConfig := BackfillSyncConfig{
		CronSchedule:      appConfig.BackfillSync.CronSchedule,
		LookbackDays:      appConfig.BackfillSync.LookbackDays,
		ChunkDays:         appConfig.BackfillSync.ChunkDays,
		MaxConcurrentJobs: appConfig.BackfillSync.MaxConcurrentJobs,
		SyncEnabled:       appConfig.BackfillSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       backfillConfig.CronSchedule,
		"lookback_days":       backfillConfig.LookbackDays,
		"chunk_days":          backfillConfig.ChunkDays,
		"max_concurrent_jobs": backfillConfig.MaxConcurrentJobs,
		"sync_enabled":        backfillConfig.SyncEnabled,
	}).Info("Configuração do agendador de backfill carregada")

	return &BackfillSyncService{
		scheduler:      scheduler,
		config:         backfillConfig,
		appConfig:      appConfig,
		accountRepo:    accountRepo,
		syncService:    syncService,
		metricsService: metricsService,
		syncRunning:    false,
	}
}

// Start inicia o agendador
func (s *BackfillSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Backfill de métricas desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de backfill de métricas")

	// Agendar o backfill de todas as contas
	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.backfillAllAccounts()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar backfill de métricas: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de backfill de métricas")
		s.scheduler.Stop()
	}()

	return nil
}

// backfillAllAccounts enfileira o backfill do período configurado para todas
// as contas ativas
func (s *BackfillSyncService) backfillAllAccounts() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Backfill de métricas já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando backfill de métricas para todas as contas ativas")

	activeAccounts, err := s.getActiveAccounts()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de contas para backfill de métricas")
		return
	}

	if len(activeAccounts) == 0 {
		logrus.Info("Nenhuma conta ativa encontrada para backfill de métricas")
		return
	}

	dateRange := s.getBackfillRange()

	logrus.WithFields(logrus.Fields{
		"days":       s.config.LookbackDays,
		"start_date": dateRange.Start.Format(time.DateOnly),
		"end_date":   dateRange.End.Format(time.DateOnly),
	}).Info("Período para backfill de métricas")

	s.enqueueBackfillForAccounts(activeAccounts, dateRange)

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration": duration.String(),
		"accounts": len(activeAccounts),
		"days":     s.config.LookbackDays,
	}).Info("Backfill de métricas enfileirado")

	s.lastSyncCompletedAt = time.Now()
}

// getActiveAccounts busca e filtra contas ativas
func (s *BackfillSyncService) getActiveAccounts() ([]*domain.Account, error) {
	activeAccounts, err := s.accountRepo.ListAccounts([]domain.AccountStatus{domain.AccountStatusActive})
	if err != nil {
		return nil, err
	}

	if len(activeAccounts) == 0 {
		logrus.Info("Nenhuma conta encontrada para backfill de métricas")
		return []*domain.Account{}, nil
	}

	logrus.WithFields(logrus.Fields{
		"active_accounts": len(activeAccounts),
	}).Info("Contas encontradas para backfill de métricas")

	return activeAccounts, nil
}

// getBackfillRange monta o intervalo histórico terminando ontem
func (s *BackfillSyncService) getBackfillRange() domain.DateRange {
	yesterday := domain.DayOf(time.Now()).AddDate(0, 0, -1)

	return domain.DateRange{
		Start: yesterday.AddDate(0, 0, -(s.config.LookbackDays - 1)),
		End:   yesterday,
	}
}

// enqueueBackfillForAccounts enfileira o backfill de cada conta, limitando a
// concorrência de enfileiramento
func (s *BackfillSyncService) enqueueBackfillForAccounts(accounts []*domain.Account, dateRange domain.DateRange) {
	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for _, account := range accounts {
		if account.CustomerID == "" {
			logrus.WithField("account_id", account.ID).Warn("Conta sem customer_id. Pulando.")
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{} // Adquirir semáforo

		go func(acc *domain.Account) {
			defer func() {
				<-semaphore // Liberar semáforo
				wg.Done()
			}()

			s.enqueueAccountBackfill(acc, dateRange)
		}(account)
	}

	wg.Wait()
}

// enqueueAccountBackfill verifica a cobertura da conta no período e enfileira
// chunks apenas para os intervalos ausentes. O backfill agendado cobre o
// nível de campanha; níveis mais profundos são sincronizados sob demanda.
func (s *BackfillSyncService) enqueueAccountBackfill(acc *domain.Account, dateRange domain.DateRange) {
	gaps := s.missingRanges(acc, dateRange)
	if len(gaps) == 0 {
		logrus.WithFields(logrus.Fields{
			"account_id":  acc.ID,
			"customer_id": acc.CustomerID,
		}).Info("Conta já coberta no período, nada a enfileirar")
		return
	}

	for _, gap := range gaps {
		result, err := s.syncService.EnqueueBackfill(context.Background(), &syncing.BackfillRequest{
			CustomerID: acc.CustomerID,
			AccountID:  acc.ID,
			EntityType: domain.EntityTypeCampaign,
			DateRange:  gap,
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id":  acc.ID,
				"customer_id": acc.CustomerID,
				"start_date":  gap.Start.Format(time.DateOnly),
				"end_date":    gap.End.Format(time.DateOnly),
				"error":       err.Error(),
			}).Error("Erro ao enfileirar backfill da conta")
			continue
		}

		logrus.WithFields(logrus.Fields{
			"account_id":  acc.ID,
			"customer_id": acc.CustomerID,
			"start_date":  gap.Start.Format(time.DateOnly),
			"end_date":    gap.End.Format(time.DateOnly),
			"status":      result.Status,
			"jobs":        result.Jobs,
		}).Info("Backfill da conta enfileirado")
	}
}

// missingRanges consulta a cobertura diária da conta e devolve só os buracos
// do período. Se a consulta falhar, devolve o período completo: a
// deduplicação da fila e o upsert idempotente absorvem o excesso.
func (s *BackfillSyncService) missingRanges(acc *domain.Account, dateRange domain.DateRange) []domain.DateRange {
	report, err := s.metricsService.CheckDailyCoverage(acc.CustomerID, domain.EntityTypeCampaign, "", dateRange)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id":  acc.ID,
			"customer_id": acc.CustomerID,
			"error":       err.Error(),
		}).Warn("Erro ao verificar cobertura da conta, enfileirando o período completo")
		return []domain.DateRange{dateRange}
	}

	if report.IsComplete {
		return nil
	}

	return report.MissingRanges()
}

// TriggerManualSync inicia manualmente um backfill de métricas
func (s *BackfillSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Backfill de métricas já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando backfill manual de métricas")
	go s.backfillAllAccounts()
}

// GetStatus retorna o status atual do agendador
func (s *BackfillSyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_chunk_days":        s.config.ChunkDays,
		"sync_max_concurrent":    s.config.MaxConcurrentJobs,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
