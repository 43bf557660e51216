package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/integrator/googleads"
	"github.com/vfg2006/metrics-sync-api/infrastructure/queue"
	"github.com/vfg2006/metrics-sync-api/internal/config"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/metrics"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/syncing"
)

// PoolConfig representa a configuração do pool de workers de sincronização
type PoolConfig struct {
	Size                int
	PollIntervalSeconds int
	FetchTimeoutSeconds int
	JobTTLMinutes       int
	Enabled             bool
}

// Pool consome jobs da fila e executa o ciclo completo de sincronização:
// buscar na API externa, gravar as linhas diárias e atualizar o controle de
// frequência. Cada worker processa um job por vez, sem estado compartilhado
// além da fila.
type Pool struct {
	config         PoolConfig
	queue          queue.Backend
	adsService     googleads.AdsIntegrator
	metricsService metrics.MetricsService
	syncService    syncing.SyncService
	wg             sync.WaitGroup
}

// NewPool cria uma nova instância do pool de workers de sincronização
func NewPool(
	appConfig *config.Config,
	queueBackend queue.Backend,
	adsService googleads.AdsIntegrator,
	metricsService metrics.MetricsService,
	syncService syncing.SyncService,
) *Pool {
	poolConfig := PoolConfig{
		Size:                appConfig.WorkerPool.Size,
		PollIntervalSeconds: appConfig.WorkerPool.PollIntervalSeconds,
		FetchTimeoutSeconds: appConfig.WorkerPool.FetchTimeoutSeconds,
		JobTTLMinutes:       appConfig.Queue.JobTTLMinutes,
		Enabled:             appConfig.WorkerPool.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"size":                  poolConfig.Size,
		"poll_interval_seconds": poolConfig.PollIntervalSeconds,
		"fetch_timeout_seconds": poolConfig.FetchTimeoutSeconds,
		"job_ttl_minutes":       poolConfig.JobTTLMinutes,
		"enabled":               poolConfig.Enabled,
	}).Info("Configuração do pool de workers carregada")

	return &Pool{
		config:         poolConfig,
		queue:          queueBackend,
		adsService:     adsService,
		metricsService: metricsService,
		syncService:    syncService,
	}
}

// Start inicia os workers. Cada worker roda em sua própria goroutine até o
// contexto ser cancelado.
func (p *Pool) Start(ctx context.Context) {
	if !p.config.Enabled {
		logrus.Info("Pool de workers de sincronização desabilitado por configuração")
		return
	}

	logrus.WithFields(logrus.Fields{
		"workers": p.config.Size,
		"backend": p.queue.Name(),
	}).Info("Iniciando pool de workers de sincronização")

	for i := 1; i <= p.config.Size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Wait bloqueia até todos os workers finalizarem
func (p *Pool) Wait() {
	p.wg.Wait()
}

// GetStatus retorna o status atual do pool de workers
func (p *Pool) GetStatus() map[string]any {
	return map[string]any{
		"enabled":               p.config.Enabled,
		"size":                  p.config.Size,
		"poll_interval_seconds": p.config.PollIntervalSeconds,
		"fetch_timeout_seconds": p.config.FetchTimeoutSeconds,
		"job_ttl_minutes":       p.config.JobTTLMinutes,
		"backend":               p.queue.Name(),
	}
}

func (p *Pool) run(ctx context.Context, workerID int) {
	defer p.wg.Done()

	pollInterval := time.Duration(p.config.PollIntervalSeconds) * time.Second

	logrus.WithField("worker_id", workerID).Info("Worker de sincronização iniciado")

	for {
		processed := p.processNext(ctx, workerID)

		if processed {
			// Ainda pode haver jobs prontos, reivindicar o próximo sem esperar
			select {
			case <-ctx.Done():
				logrus.WithField("worker_id", workerID).Info("Worker de sincronização finalizado")
				return
			default:
				continue
			}
		}

		select {
		case <-ctx.Done():
			logrus.WithField("worker_id", workerID).Info("Worker de sincronização finalizado")
			return
		case <-time.After(pollInterval):
		}
	}
}

// processNext reivindica e executa no máximo um job. Retorna true se algum
// job foi processado.
func (p *Pool) processNext(ctx context.Context, workerID int) bool {
	job, err := p.queue.Claim(ctx)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"worker_id": workerID,
			"backend":   p.queue.Name(),
		}).Error("Erro ao reivindicar job na fila")
		return false
	}

	if job == nil {
		return false
	}

	p.execute(ctx, workerID, job)

	return true
}

func (p *Pool) execute(ctx context.Context, workerID int, job *domain.RefreshJob) {
	// Um job com defeito não pode derrubar o worker
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"worker_id": workerID,
				"job_id":    job.ID,
				"panic":     r,
			}).Error("Pânico ao processar job de sincronização")

			if _, err := p.queue.Fail(ctx, job, fmt.Errorf("pânico ao processar job: %v", r)); err != nil {
				logrus.WithError(err).WithField("job_id", job.ID).Error("Erro ao reportar falha do job na fila")
			}
		}
	}()

	if p.isExpired(job) {
		logrus.WithFields(logrus.Fields{
			"worker_id":    workerID,
			"job_id":       job.ID,
			"requested_at": job.RequestedAt.Format(time.RFC3339),
		}).Warn("Job expirado pelo TTL, descartado sem executar")

		if err := p.queue.Complete(ctx, job); err != nil {
			logrus.WithError(err).WithField("job_id", job.ID).Error("Erro ao descartar job expirado")
		}
		return
	}

	logrus.WithFields(logrus.Fields{
		"worker_id": workerID,
		"job_id":    job.ID,
		"priority":  job.Priority,
		"attempt":   job.Attempt,
		"range":     job.Range().String(),
	}).Info("Processando job de sincronização")

	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(p.config.FetchTimeoutSeconds)*time.Second)
	defer cancel()

	rows, fetchErr := p.adsService.SearchDailyMetrics(fetchCtx, job)

	if fetchErr != nil && len(rows) == 0 {
		p.reportFailure(ctx, workerID, job, fetchErr)
		return
	}

	result := p.metricsService.StoreDailyMetrics(ctx, rows)
	if !result.Success {
		cause := fmt.Errorf("falha ao gravar métricas diárias: %s", result.Error)

		// Lote rejeitado na validação não melhora com novas tentativas: a
		// resposta da API é a mesma. Vai direto para a fila de mortos.
		if result.Rejected {
			p.discardInvalid(ctx, workerID, job, cause)
			return
		}

		p.reportFailure(ctx, workerID, job, cause)
		return
	}

	if fetchErr != nil {
		// Sucesso parcial: os dias que vieram já estão gravados. O job
		// volta para a fila com backoff para completar os restantes; os
		// upserts idempotentes tornam o reprocessamento inofensivo.
		logrus.WithFields(logrus.Fields{
			"worker_id":    workerID,
			"job_id":       job.ID,
			"rows_written": result.RowsWritten,
			"error":        fetchErr.Error(),
		}).Warn("Resposta parcial da API, job reagendado para os dias restantes")

		p.reportFailure(ctx, workerID, job, fetchErr)
		return
	}

	if err := p.syncService.RecordSyncResult(job.CustomerID, domain.SyncOutcomeSuccess); err != nil {
		logrus.WithError(err).WithField("job_id", job.ID).Warn("Erro ao atualizar cooldown após sincronização")
	}

	if err := p.queue.Complete(ctx, job); err != nil {
		logrus.WithError(err).WithField("job_id", job.ID).Error("Erro ao concluir job na fila")
		return
	}

	logrus.WithFields(logrus.Fields{
		"worker_id":     workerID,
		"job_id":        job.ID,
		"rows_written":  result.RowsWritten,
		"dates_written": len(result.DatesWritten),
	}).Info("Job de sincronização concluído")
}

// discardInvalid registra a falha no controle de frequência e estaciona o job
// na fila de mortos sem novas tentativas
func (p *Pool) discardInvalid(ctx context.Context, workerID int, job *domain.RefreshJob, cause error) {
	if err := p.syncService.RecordSyncResult(job.CustomerID, domain.SyncOutcomeFailed); err != nil {
		logrus.WithError(err).WithField("job_id", job.ID).Warn("Erro ao atualizar cooldown após falha de sincronização")
	}

	if err := p.queue.Discard(ctx, job, cause); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"worker_id": workerID,
			"job_id":    job.ID,
		}).Error("Erro ao descartar job com lote inválido")
		return
	}

	logrus.WithFields(logrus.Fields{
		"worker_id": workerID,
		"job_id":    job.ID,
		"error":     cause.Error(),
	}).Error("Lote rejeitado na validação, job movido para a fila de mortos")
}

// reportFailure registra a falha no controle de frequência e devolve o job
// para a fila decidir entre reagendar e mover para a fila de mortos
func (p *Pool) reportFailure(ctx context.Context, workerID int, job *domain.RefreshJob, cause error) {
	if err := p.syncService.RecordSyncResult(job.CustomerID, domain.SyncOutcomeFailed); err != nil {
		logrus.WithError(err).WithField("job_id", job.ID).Warn("Erro ao atualizar cooldown após falha de sincronização")
	}

	requeued, err := p.queue.Fail(ctx, job, cause)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"worker_id": workerID,
			"job_id":    job.ID,
		}).Error("Erro ao reportar falha do job na fila")
		return
	}

	if requeued {
		logrus.WithFields(logrus.Fields{
			"worker_id": workerID,
			"job_id":    job.ID,
			"attempt":   job.Attempt,
			"error":     cause.Error(),
		}).Warn("Job de sincronização falhou, reagendado com backoff")
		return
	}

	logrus.WithFields(logrus.Fields{
		"worker_id": workerID,
		"job_id":    job.ID,
		"attempt":   job.Attempt,
		"error":     cause.Error(),
	}).Error("Job de sincronização esgotou as tentativas e foi movido para a fila de mortos")
}

// isExpired indica se o job ficou pendente além do TTL e não deve mais ser
// executado, já que o intervalo pedido pode não interessar mais
func (p *Pool) isExpired(job *domain.RefreshJob) bool {
	if p.config.JobTTLMinutes <= 0 {
		return false
	}

	ttl := time.Duration(p.config.JobTTLMinutes) * time.Minute

	return time.Since(job.RequestedAt) > ttl
}
