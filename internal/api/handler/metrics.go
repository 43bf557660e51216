package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/metrics"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/validating"
	"github.com/vfg2006/metrics-sync-api/pkg/apiErrors"
	"github.com/vfg2006/metrics-sync-api/pkg/log"
)

// GetCoverage informa quais dias do intervalo pedido já existem no cache
// local, sem tocar na API externa
func GetCoverage(service metrics.MetricsService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		query := r.URL.Query()

		customerID := query.Get("customer_id")
		if customerID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "customer_id é obrigatório", nil)
			return
		}

		entityType := domain.EntityType(query.Get("entity_type"))
		if !entityType.Valid() {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "entity_type inválido: "+query.Get("entity_type"), nil)
			return
		}

		dateRange, presetWarning, err := resolveRequestRange(query.Get("preset"), query.Get("start_date"), query.Get("end_date"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrSyncInvalidPreset, err.Error(), nil)
			return
		}

		if presetWarning != "" {
			logger.WithFields(log.Fields{
				"customer_id": customerID,
				"warning":     presetWarning,
			}).Warn("coverage: preset label does not match explicit dates, using explicit dates")
		}

		report, err := service.CheckDailyCoverage(customerID, entityType, query.Get("entity_id"), dateRange)
		if err != nil {
			logger.WithFields(log.Fields{
				"customer_id": customerID,
				"entity_type": entityType,
				"range":       dateRange.String(),
				"error":       err.Error(),
			}).Error("coverage: failed to check daily coverage")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao verificar cobertura de métricas", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.WithField("error", err.Error()).Error("coverage: failed to encode response")
		}
	})
}

// GetMetricTotals agrega as linhas diárias do intervalo pedido. Responde com
// o que existe no cache, mesmo que a cobertura seja parcial; o chamador usa
// o endpoint de cobertura para saber o quanto falta.
func GetMetricTotals(service metrics.MetricsService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		query := r.URL.Query()

		customerID := query.Get("customer_id")
		if customerID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "customer_id é obrigatório", nil)
			return
		}

		entityType := domain.EntityType(query.Get("entity_type"))
		if !entityType.Valid() {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "entity_type inválido: "+query.Get("entity_type"), nil)
			return
		}

		dateRange, presetWarning, err := resolveRequestRange(query.Get("preset"), query.Get("start_date"), query.Get("end_date"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrSyncInvalidPreset, err.Error(), nil)
			return
		}

		if presetWarning != "" {
			logger.WithFields(log.Fields{
				"customer_id": customerID,
				"warning":     presetWarning,
			}).Warn("totals: preset label does not match explicit dates, using explicit dates")
		}

		totals, err := service.ReadAndAggregate(customerID, entityType, query.Get("entity_id"), dateRange)
		if err != nil {
			logger.WithFields(log.Fields{
				"customer_id": customerID,
				"entity_type": entityType,
				"range":       dateRange.String(),
				"error":       err.Error(),
			}).Error("totals: failed to aggregate daily metrics")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao agregar métricas diárias", nil)
			return
		}

		response := map[string]any{
			"customer_id": customerID,
			"entity_type": entityType,
			"start_date":  dateRange.Start.Format("2006-01-02"),
			"end_date":    dateRange.End.Format("2006-01-02"),
			"totals":      totals,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithField("error", err.Error()).Error("totals: failed to encode response")
		}
	})
}

// GetHierarchyValidation compara os totais de uma entidade pai com a soma
// dos filhos diretos na mesma janela e aponta as divergências
func GetHierarchyValidation(service validating.HierarchyValidator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		query := r.URL.Query()

		customerID := query.Get("customer_id")
		if customerID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "customer_id é obrigatório", nil)
			return
		}

		parentType := domain.EntityType(query.Get("parent_type"))
		childType := domain.EntityType(query.Get("child_type"))
		if !parentType.Valid() || !childType.Valid() {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "parent_type ou child_type inválido", nil)
			return
		}

		parentID := query.Get("parent_id")
		if parentID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "parent_id é obrigatório", nil)
			return
		}

		dateRange, presetWarning, err := resolveRequestRange(query.Get("preset"), query.Get("start_date"), query.Get("end_date"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrSyncInvalidPreset, err.Error(), nil)
			return
		}

		if presetWarning != "" {
			logger.WithFields(log.Fields{
				"customer_id": customerID,
				"warning":     presetWarning,
			}).Warn("hierarchy: preset label does not match explicit dates, using explicit dates")
		}

		validation, err := service.ValidateHierarchy(&validating.ValidationRequest{
			CustomerID: customerID,
			ParentType: parentType,
			ParentID:   parentID,
			ChildType:  childType,
			DateRange:  dateRange,
		})
		if err != nil {
			logger.WithFields(log.Fields{
				"customer_id": customerID,
				"parent_type": parentType,
				"parent_id":   parentID,
				"child_type":  childType,
				"error":       err.Error(),
			}).Error("hierarchy: failed to validate hierarchy consistency")

			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(validation); err != nil {
			logger.WithField("error", err.Error()).Error("hierarchy: failed to encode response")
		}
	})
}
