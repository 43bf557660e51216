package metrics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/infrastructure/repository"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

// MetricsService é o único ponto de escrita e leitura agregada de métricas
// diárias. Toda gravação passa pela validação de granularidade daqui, nunca
// direto pelo repositório.
type MetricsService interface {
	StoreDailyMetrics(ctx context.Context, rows []*domain.DailyMetricRow) *domain.StoreResult
	ReadAndAggregate(customerID string, entityType domain.EntityType, entityID string, dateRange domain.DateRange) (*domain.MetricTotals, error)
	ReadChildrenAggregate(customerID string, childType domain.EntityType, parentEntityID string, dateRange domain.DateRange) (*domain.MetricTotals, error)
	CheckDailyCoverage(customerID string, entityType domain.EntityType, entityID string, dateRange domain.DateRange) (*domain.CoverageReport, error)
}

type Service struct {
	dailyMetricRepository repository.DailyMetricRepository
}

func NewService(dailyMetricRepo repository.DailyMetricRepository) MetricsService {
	return &Service{
		dailyMetricRepository: dailyMetricRepo,
	}
}

// StoreDailyMetrics valida e grava um lote de linhas diárias. A validação é
// tudo-ou-nada: qualquer linha sem data rejeita o lote inteiro antes de
// qualquer escrita. Falhas são devolvidas no resultado estruturado, nunca
// convertidas silenciosamente em sucesso com zero linhas.
func (s *Service) StoreDailyMetrics(ctx context.Context, rows []*domain.DailyMetricRow) *domain.StoreResult {
	result := &domain.StoreResult{
		Granularity:  "daily",
		DatesWritten: []string{},
	}

	if len(rows) == 0 {
		result.Success = true
		return result
	}

	if err := validateRows(rows); err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": rows[0].CustomerID,
			"rows":        len(rows),
			"error":       err.Error(),
		}).Warn("Lote de métricas diárias rejeitado na validação")

		result.Error = err.Error()
		result.Rejected = true
		return result
	}

	if err := s.dailyMetricRepository.SaveOrUpdateBatch(ctx, rows); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"customer_id": rows[0].CustomerID,
			"rows":        len(rows),
		}).Error("Erro ao gravar métricas diárias no banco de dados")

		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.RowsWritten = len(rows)
	result.DatesWritten = distinctDates(rows)

	return result
}

// validateRows confere o lote inteiro antes de qualquer escrita. A linha sem
// data é a violação central: valores agregados de intervalo nunca podem ser
// gravados como se fossem um único dia.
func validateRows(rows []*domain.DailyMetricRow) error {
	for i, row := range rows {
		if row == nil {
			return fmt.Errorf("linha %d: %w", i, ErrRowWithoutDate)
		}

		if row.Date.IsZero() {
			return fmt.Errorf("linha %d (entidade %s): %w", i, row.EntityID, ErrRowWithoutDate)
		}

		if row.CustomerID == "" {
			return fmt.Errorf("linha %d (entidade %s): %w", i, row.EntityID, ErrRowWithoutCustomer)
		}

		if !row.EntityType.Valid() {
			return fmt.Errorf("linha %d (entidade %s): %w: %q", i, row.EntityID, ErrRowInvalidEntity, row.EntityType)
		}

		if row.EntityID == "" {
			return fmt.Errorf("linha %d: %w", i, ErrRowInvalidEntity)
		}
	}

	return nil
}

func distinctDates(rows []*domain.DailyMetricRow) []string {
	seen := make(map[string]bool, len(rows))

	dates := make([]string, 0, len(rows))
	for _, row := range rows {
		key := row.Date.Format(time.DateOnly)
		if seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, key)
	}

	sort.Strings(dates)

	return dates
}

// ReadAndAggregate soma as linhas diárias do intervalo inclusivo. A soma é
// feita linha a linha sobre os valores persistidos, nunca lendo um valor
// pré-agregado.
func (s *Service) ReadAndAggregate(customerID string, entityType domain.EntityType, entityID string, dateRange domain.DateRange) (*domain.MetricTotals, error) {
	if dateRange.End.Before(dateRange.Start) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDateRange, dateRange)
	}

	rows, err := s.dailyMetricRepository.GetByRange(customerID, entityType, entityID, dateRange.Start, dateRange.End)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"customer_id": customerID,
			"entity_type": entityType,
			"start_date":  dateRange.Start.Format(time.DateOnly),
			"end_date":    dateRange.End.Format(time.DateOnly),
		}).Error("Erro ao buscar métricas diárias para agregação")
		return nil, err
	}

	return aggregateRows(rows), nil
}

// ReadChildrenAggregate soma as linhas diárias dos filhos diretos de uma
// entidade pai no mesmo intervalo, para conferência de consistência
func (s *Service) ReadChildrenAggregate(customerID string, childType domain.EntityType, parentEntityID string, dateRange domain.DateRange) (*domain.MetricTotals, error) {
	if dateRange.End.Before(dateRange.Start) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDateRange, dateRange)
	}

	rows, err := s.dailyMetricRepository.GetByParent(customerID, childType, parentEntityID, dateRange.Start, dateRange.End)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"customer_id":      customerID,
			"child_type":       childType,
			"parent_entity_id": parentEntityID,
		}).Error("Erro ao buscar métricas dos filhos para agregação")
		return nil, err
	}

	return aggregateRows(rows), nil
}

func aggregateRows(rows []*domain.DailyMetricRow) *domain.MetricTotals {
	totals := &domain.MetricTotals{}

	days := make(map[string]bool)
	for _, row := range rows {
		totals.AddRow(row)
		days[row.Date.Format(time.DateOnly)] = true
	}

	totals.Days = len(days)

	return totals
}

// CheckDailyCoverage informa quais dias do intervalo já existem no cache
// local, sem consultar a API externa
func (s *Service) CheckDailyCoverage(customerID string, entityType domain.EntityType, entityID string, dateRange domain.DateRange) (*domain.CoverageReport, error) {
	if dateRange.End.Before(dateRange.Start) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDateRange, dateRange)
	}

	present, err := s.dailyMetricRepository.GetDatesPresent(customerID, entityType, entityID, dateRange.Start, dateRange.End)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"customer_id": customerID,
			"entity_type": entityType,
			"start_date":  dateRange.Start.Format(time.DateOnly),
			"end_date":    dateRange.End.Format(time.DateOnly),
		}).Error("Erro ao verificar cobertura de métricas diárias")
		return nil, err
	}

	return domain.BuildCoverageReport(dateRange, present), nil
}
