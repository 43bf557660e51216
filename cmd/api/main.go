package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/database/postgres"
	"github.com/vfg2006/metrics-sync-api/infrastructure/database/redis"
	"github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads"
	"github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads/adsclient"
	"github.com/vfg2006/metrics-sync-api/infrastructure/queue"
	"github.com/vfg2006/metrics-sync-api/infrastructure/repository"
	"github.com/vfg2006/metrics-sync-api/internal/api"
	"github.com/vfg2006/metrics-sync-api/internal/api/handler"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/scheduler"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/account"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/authenticating"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/metrics"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/syncing"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/validating"
	"github.com/vfg2006/metrics-sync-api/internal/worker"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	accountRepo := repository.NewAccountRepository(pgConn)
	userRepo := repository.NewUserRepository(pgConn)
	dailyMetricRepo := repository.NewDailyMetricRepository(pgConn)
	syncCooldownRepo := repository.NewSyncCooldownRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, accountRepo, cfg)

	tokenManager := adsclient.NewTokenManager(cfg)
	go tokenManager.StartAutoRefresh()
	defer tokenManager.StopAutoRefresh()

	adsClient := adsclient.NewClient(cfg, tokenManager)
	adsIntegrator := googleads.New(cfg, adsClient)

	// Seleciona o backend da fila: Redis quando disponível, memória como
	// modo degradado para o processo seguir aceitando pedidos de refresh
	queueBackend := newQueueBackend(ctx, cfg)

	metricsService := metrics.NewService(dailyMetricRepo)
	syncService := syncing.NewService(cfg, syncCooldownRepo, queueBackend)
	hierarchyValidator := validating.NewService(metricsService)
	accountService := account.NewService(accountRepo, adsIntegrator, cfg)

	// Pool de workers que consome a fila e executa as sincronizações
	workerPool := worker.NewPool(cfg, queueBackend, adsIntegrator, metricsService, syncService)
	workerPool.Start(ctx)

	// Agendadores de background
	backfillSyncService := scheduler.NewBackfillSyncService(accountRepo, syncService, metricsService, cfg)
	retentionCleanupService := scheduler.NewRetentionCleanupService(dailyMetricRepo, queueBackend, cfg)

	if err := backfillSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de backfill de métricas")
	} else {
		logrus.Info("Agendador de backfill de métricas iniciado com sucesso")
	}

	if err := retentionCleanupService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de limpeza de retenção")
	} else {
		logrus.Info("Agendador de limpeza de retenção iniciado com sucesso")
	}

	cronServices := handler.CronJobServices{
		BackfillSyncService:     backfillSyncService,
		RetentionCleanupService: retentionCleanupService,
		WorkerPool:              workerPool,
		QueueBackend:            queueBackend,
	}

	server, err := api.New(
		cfg,
		metricsService,
		syncService,
		hierarchyValidator,
		accountService,
		authenticator,
		cronServices,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}

	// Espera os workers soltarem os jobs em andamento antes de encerrar
	cancel()
	workerPool.Wait()
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

// newQueueBackend tenta o Redis e degrada para a fila em memória quando ele
// está indisponível. No modo degradado os jobs não sobrevivem ao restart, o
// que fica explícito nos logs e no status da API.
func newQueueBackend(ctx context.Context, cfg *config.Config) queue.Backend {
	policy := queue.RetryPolicy{
		MaxAttempts:    cfg.Queue.MaxAttempts,
		BaseDelay:      time.Duration(cfg.Queue.BaseDelaySeconds) * time.Second,
		MaxDelay:       time.Duration(cfg.Queue.MaxDelaySeconds) * time.Second,
		JitterFraction: cfg.Queue.JitterFraction,
	}

	redisConn, err := redis.NewConnection(ctx, cfg.Redis)
	if err != nil {
		logrus.WithError(err).Warn("Redis indisponível, usando fila em memória (jobs não sobrevivem ao restart)")
		return queue.NewMemoryBackend(policy)
	}

	logrus.Info("Conexão com Redis estabelecida com sucesso")
	return queue.NewRedisBackend(redisConn.Client, policy)
}
