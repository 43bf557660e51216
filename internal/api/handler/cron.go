package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/queue"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"github.com/vfg2006/metrics-sync-api/internal/scheduler"
	"github.com/vfg2006/metrics-sync-api/internal/worker"
	"github.com/vfg2006/metrics-sync-api/pkg/apiErrors"
	"github.com/vfg2006/metrics-sync-api/pkg/middleware"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypeBackfill  = "backfill"
	CronJobTypeRetention = "retention-cleanup"
	CronJobTypeAll       = "all"
)

// CronJobServices contém os serviços de background necessários para disparo
// manual e consulta de status
type CronJobServices struct {
	BackfillSyncService     *scheduler.BackfillSyncService
	RetentionCleanupService *scheduler.RetentionCleanupService
	WorkerPool              *worker.Pool
	QueueBackend            queue.Backend
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		// Verificar permissões - apenas administradores podem executar cron jobs
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != 1 {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem executar cron jobs", nil)
			return
		}

		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		switch cronType {
		case CronJobTypeBackfill:
			if services.BackfillSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de backfill não disponível", nil)
				return
			}
			services.BackfillSyncService.TriggerManualSync()

		case CronJobTypeRetention:
			if services.RetentionCleanupService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de limpeza de retenção não disponível", nil)
				return
			}
			services.RetentionCleanupService.TriggerManualCleanup()

		case CronJobTypeAll:
			if services.BackfillSyncService != nil {
				services.BackfillSyncService.TriggerManualSync()
			}
			if services.RetentionCleanupService != nil {
				services.RetentionCleanupService.TriggerManualCleanup()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: backfill, retention-cleanup, all", nil)
			return
		}

		response := map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		}
		json.NewEncoder(w).Encode(response)
	}
}

// GetCronStatus retorna o status dos serviços de background: agendadores,
// pool de workers e backend da fila
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		// Verificar permissões - apenas administradores podem ver status das crons
		userClaims, ok := r.Context().Value(middleware.ContextKeyUser).(*domain.Claims)
		if !ok || userClaims.UserRoleID != 1 {
			apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Apenas administradores podem verificar status de cron jobs", nil)
			return
		}

		queueStatus := map[string]any{
			"backend":   services.QueueBackend.Name(),
			"available": services.QueueBackend.Ping(r.Context()) == nil,
		}

		status := map[string]any{
			"backfill":          services.BackfillSyncService.GetStatus(),
			"retention-cleanup": services.RetentionCleanupService.GetStatus(),
			"worker-pool":       services.WorkerPool.GetStatus(),
			"queue":             queueStatus,
		}

		json.NewEncoder(w).Encode(status)
	}
}
