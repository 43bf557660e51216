package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/syncing"
	"github.com/vfg2006/metrics-sync-api/pkg/apiErrors"
	"github.com/vfg2006/metrics-sync-api/pkg/log"
)

// RefreshRequestBody é o corpo do pedido manual de sincronização. As datas
// podem vir explícitas, por preset, ou ambos; quando ambos, as datas
// explícitas valem e a divergência com o preset vira aviso na resposta.
type RefreshRequestBody struct {
	CustomerID     string `json:"customer_id"`
	AccountID      string `json:"account_id"`
	EntityType     string `json:"entity_type"`
	ParentEntityID string `json:"parent_entity_id"`
	Preset         string `json:"preset"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Priority       string `json:"priority"`
	Force          bool   `json:"force"`
	Backfill       bool   `json:"backfill"`
}

type RefreshResponse struct {
	Status        domain.EnqueueStatus `json:"status"`
	JobID         string               `json:"job_id,omitempty"`
	Jobs          int                  `json:"jobs,omitempty"`
	NextSyncAt    *time.Time           `json:"next_sync_at,omitempty"`
	PresetWarning string               `json:"preset_warning,omitempty"`
}

// EnqueueRefresh agenda a sincronização de métricas de uma entidade. O
// resultado nunca bloqueia a leitura do que já existe em cache: a resposta é
// um dos status queued, already_pending, rate_limited ou unavailable.
func EnqueueRefresh(service syncing.SyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		var body RefreshRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido: "+err.Error(), nil)
			return
		}

		if body.CustomerID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "customer_id é obrigatório", nil)
			return
		}

		entityType := domain.EntityType(body.EntityType)
		if !entityType.Valid() {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "entity_type inválido: "+body.EntityType, nil)
			return
		}

		dateRange, presetWarning, err := resolveRequestRange(body.Preset, body.StartDate, body.EndDate)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrSyncInvalidPreset, err.Error(), nil)
			return
		}

		if presetWarning != "" {
			logger.WithFields(log.Fields{
				"customer_id": body.CustomerID,
				"preset":      body.Preset,
				"warning":     presetWarning,
			}).Warn("refresh: preset label does not match explicit dates, using explicit dates")
		}

		var result *domain.EnqueueResult

		if body.Backfill {
			result, err = service.EnqueueBackfill(r.Context(), &syncing.BackfillRequest{
				CustomerID:     body.CustomerID,
				AccountID:      body.AccountID,
				EntityType:     entityType,
				ParentEntityID: body.ParentEntityID,
				DateRange:      dateRange,
			})
		} else {
			result, err = service.EnqueueRefresh(r.Context(), &syncing.RefreshRequest{
				CustomerID:     body.CustomerID,
				AccountID:      body.AccountID,
				EntityType:     entityType,
				ParentEntityID: body.ParentEntityID,
				DateRange:      dateRange,
				Priority:       domain.JobPriority(body.Priority),
				Force:          body.Force,
			})
		}

		if err != nil {
			logger.WithFields(log.Fields{
				"customer_id": body.CustomerID,
				"entity_type": entityType,
				"error":       err.Error(),
			}).Error("refresh: failed to enqueue refresh job")

			var syncErr *syncing.SyncError
			if errors.As(err, &syncErr) {
				apiErrors.WriteError(w, syncErr.Code, syncErr.Error(), nil)
				return
			}

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao agendar sincronização", nil)
			return
		}

		response := &RefreshResponse{
			Status:        result.Status,
			JobID:         result.JobID,
			Jobs:          result.Jobs,
			NextSyncAt:    result.NextSyncAt,
			PresetWarning: presetWarning,
		}

		status := http.StatusAccepted
		switch result.Status {
		case domain.EnqueueStatusRateLimited:
			status = http.StatusTooManyRequests
		case domain.EnqueueStatusUnavailable:
			status = http.StatusServiceUnavailable
		case domain.EnqueueStatusAlreadyPending:
			status = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithField("error", err.Error()).Error("refresh: failed to encode response")
		}
	})
}

// GetSyncStatus retorna o estado de sincronização de um cliente: última
// execução, janela de cooldown e jobs aguardando na fila
func GetSyncStatus(service syncing.SyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		customerID := httprouter.ParamsFromContext(r.Context()).ByName("customer_id")
		if customerID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "customer_id é obrigatório", nil)
			return
		}

		report, err := service.GetSyncStatus(r.Context(), customerID)
		if err != nil {
			logger.WithFields(log.Fields{
				"customer_id": customerID,
				"error":       err.Error(),
			}).Error("sync-status: failed to get sync status")

			var syncErr *syncing.SyncError
			if errors.As(err, &syncErr) {
				apiErrors.WriteError(w, syncErr.Code, syncErr.Error(), nil)
				return
			}

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao consultar status de sincronização", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.WithField("error", err.Error()).Error("sync-status: failed to encode response")
		}
	})
}

// ListDeadJobs lista os jobs que esgotaram as tentativas de execução
func ListDeadJobs(service syncing.SyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		limit := 50
		if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
			parsed, err := strconv.Atoi(rawLimit)
			if err != nil || parsed < 1 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit inválido: "+rawLimit, nil)
				return
			}
			limit = parsed
		}

		jobs, err := service.ListDeadJobs(r.Context(), limit)
		if err != nil {
			logger.WithField("error", err.Error()).Error("dead-jobs: failed to list dead jobs")

			var syncErr *syncing.SyncError
			if errors.As(err, &syncErr) {
				apiErrors.WriteError(w, syncErr.Code, syncErr.Error(), nil)
				return
			}

			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao listar jobs mortos", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"jobs": jobs, "count": len(jobs)}); err != nil {
			logger.WithField("error", err.Error()).Error("dead-jobs: failed to encode response")
		}
	})
}

// resolveRequestRange monta o intervalo de datas de uma requisição a partir
// do preset e/ou das datas explícitas. Datas explícitas têm precedência; a
// divergência com o preset declarado volta como aviso, nunca como erro.
func resolveRequestRange(preset, rawStart, rawEnd string) (domain.DateRange, string, error) {
	now := time.Now().UTC()

	hasExplicit := rawStart != "" && rawEnd != ""

	if !hasExplicit {
		if preset == "" || preset == string(domain.PresetCustom) {
			return domain.DateRange{}, "", errors.New("informe start_date e end_date ou um preset de período")
		}

		parsed, err := domain.ParsePeriodPreset(preset)
		if err != nil {
			return domain.DateRange{}, "", err
		}

		resolved, err := domain.ResolvePreset(parsed, now)
		if err != nil {
			return domain.DateRange{}, "", err
		}

		return resolved, "", nil
	}

	startDate, err := time.Parse(time.DateOnly, rawStart)
	if err != nil {
		return domain.DateRange{}, "", errors.New("start_date inválido: " + rawStart)
	}

	endDate, err := time.Parse(time.DateOnly, rawEnd)
	if err != nil {
		return domain.DateRange{}, "", errors.New("end_date inválido: " + rawEnd)
	}

	dateRange := domain.DateRange{Start: domain.DayOf(startDate), End: domain.DayOf(endDate)}
	if dateRange.End.Before(dateRange.Start) {
		return domain.DateRange{}, "", errors.New("end_date anterior a start_date")
	}

	warning := ""
	if preset != "" && preset != string(domain.PresetCustom) {
		parsed, err := domain.ParsePeriodPreset(preset)
		if err != nil {
			return domain.DateRange{}, "", err
		}

		validation := domain.ValidatePresetMatch(parsed, dateRange.Start, dateRange.End, now)
		if !validation.Valid {
			warning = validation.Error
		}
	}

	return dateRange, warning, nil
}
