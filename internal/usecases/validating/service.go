package validating

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/metrics"
)

// Limiares de severidade por magnitude do desvio percentual. Ajustáveis,
// desde que permaneçam monotônicos e iguais para todas as métricas.
const (
	warningThresholdPercent = 2.0
	errorThresholdPercent   = 10.0
)

type HierarchyValidator interface {
	ValidateHierarchy(request *ValidationRequest) (*domain.HierarchyValidation, error)
}

type ValidationRequest struct {
	CustomerID string
	ParentType domain.EntityType
	ParentID   string
	ChildType  domain.EntityType
	DateRange  domain.DateRange
}

type Service struct {
	metricsService metrics.MetricsService
}

func NewService(metricsService metrics.MetricsService) HierarchyValidator {
	return &Service{
		metricsService: metricsService,
	}
}

// ValidateHierarchy compara os totais de uma entidade pai com a soma dos
// filhos diretos na mesma janela, usando apenas o cache local. Responde por
// que os totais de campanha e grupo de anúncios divergem sem reconsultar a
// API externa.
func (s *Service) ValidateHierarchy(request *ValidationRequest) (*domain.HierarchyValidation, error) {
	if !ValidChildPair(request.ParentType, request.ChildType) {
		return nil, fmt.Errorf("%s não é filho direto de %s", request.ChildType, request.ParentType)
	}

	parentTotals, err := s.metricsService.ReadAndAggregate(
		request.CustomerID,
		request.ParentType,
		request.ParentID,
		request.DateRange,
	)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"customer_id": request.CustomerID,
			"parent_type": request.ParentType,
			"parent_id":   request.ParentID,
		}).Error("Erro ao agregar totais da entidade pai")
		return nil, err
	}

	childrenTotals, err := s.metricsService.ReadChildrenAggregate(
		request.CustomerID,
		request.ChildType,
		request.ParentID,
		request.DateRange,
	)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"customer_id": request.CustomerID,
			"child_type":  request.ChildType,
			"parent_id":   request.ParentID,
		}).Error("Erro ao agregar totais dos filhos")
		return nil, err
	}

	return &domain.HierarchyValidation{
		CustomerID:    request.CustomerID,
		ParentType:    request.ParentType,
		ParentID:      request.ParentID,
		ChildType:     request.ChildType,
		StartDate:     request.DateRange.Start.Format(time.DateOnly),
		EndDate:       request.DateRange.End.Format(time.DateOnly),
		Parent:        parentTotals,
		Children:      childrenTotals,
		Discrepancies: Compare(parentTotals, childrenTotals),
	}, nil
}

// ValidChildPair indica se childType é o nível imediatamente abaixo de
// parentType na hierarquia de entidades
func ValidChildPair(parentType, childType domain.EntityType) bool {
	switch parentType {
	case domain.EntityTypeCampaign:
		return childType == domain.EntityTypeAdGroup
	case domain.EntityTypeAdGroup:
		return childType == domain.EntityTypeKeyword || childType == domain.EntityTypeAd
	}
	return false
}

// Compare calcula o desvio percentual entre os totais do pai e a soma dos
// filhos para cada métrica. Métricas idênticas são omitidas do resultado;
// as demais recebem severidade pela magnitude do desvio.
func Compare(parent, children *domain.MetricTotals) []domain.MetricDiscrepancy {
	if parent == nil {
		parent = &domain.MetricTotals{}
	}
	if children == nil {
		children = &domain.MetricTotals{}
	}

	pairs := []struct {
		metric      string
		parentValue float64
		childSum    float64
	}{
		{"cost_micros", float64(parent.CostMicros), float64(children.CostMicros)},
		{"clicks", float64(parent.Clicks), float64(children.Clicks)},
		{"impressions", float64(parent.Impressions), float64(children.Impressions)},
		{"conversions", parent.Conversions, children.Conversions},
		{"conversions_value", parent.ConversionsValue, children.ConversionsValue},
	}

	discrepancies := make([]domain.MetricDiscrepancy, 0)

	for _, pair := range pairs {
		percentDiff := PercentDiff(pair.parentValue, pair.childSum)
		if percentDiff == 0 {
			continue
		}

		discrepancies = append(discrepancies, domain.MetricDiscrepancy{
			Metric:      pair.metric,
			ParentValue: pair.parentValue,
			ChildSum:    pair.childSum,
			PercentDiff: percentDiff,
			Severity:    classifySeverity(percentDiff),
		})
	}

	return discrepancies
}

// PercentDiff calcula (pai - somaFilhos) / somaFilhos * 100. Com soma dos
// filhos zerada, o desvio é 100% se o pai tem valor e 0% se ambos são zero.
func PercentDiff(parentValue, childSum float64) float64 {
	if childSum == 0 {
		if parentValue != 0 {
			return 100
		}
		return 0
	}

	return (parentValue - childSum) / childSum * 100
}

func classifySeverity(percentDiff float64) domain.DiscrepancySeverity {
	magnitude := math.Abs(percentDiff)

	switch {
	case magnitude > errorThresholdPercent:
		return domain.SeverityError
	case magnitude >= warningThresholdPercent:
		return domain.SeverityWarning
	}

	return domain.SeverityInfo
}
