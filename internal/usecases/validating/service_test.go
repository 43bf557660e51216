package validating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
	"github.com/vfg2006/metrics-sync-api/internal/usecases/metrics/mocks"
	"go.uber.org/mock/gomock"
)

func testRange() domain.DateRange {
	return domain.DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateHierarchy_DetectaDivergenciaEntrePaiEFilhos(t *testing.T) {
	ctrl := gomock.NewController(t)
	metricsService := mocks.NewMockMetricsService(ctrl)
	validator := NewService(metricsService)

	dateRange := testRange()

	parent := &domain.MetricTotals{Clicks: 110, Impressions: 1000}
	children := &domain.MetricTotals{Clicks: 100, Impressions: 1000}

	metricsService.EXPECT().
		ReadAndAggregate("4018223765", domain.EntityTypeCampaign, "555", dateRange).
		Return(parent, nil)

	metricsService.EXPECT().
		ReadChildrenAggregate("4018223765", domain.EntityTypeAdGroup, "555", dateRange).
		Return(children, nil)

	validation, err := validator.ValidateHierarchy(&ValidationRequest{
		CustomerID: "4018223765",
		ParentType: domain.EntityTypeCampaign,
		ParentID:   "555",
		ChildType:  domain.EntityTypeAdGroup,
		DateRange:  dateRange,
	})
	require.NoError(t, err)

	// Impressões idênticas são omitidas; só clicks divergem
	require.Len(t, validation.Discrepancies, 1)

	discrepancy := validation.Discrepancies[0]
	assert.Equal(t, "clicks", discrepancy.Metric)
	assert.Equal(t, 110.0, discrepancy.ParentValue)
	assert.Equal(t, 100.0, discrepancy.ChildSum)
	assert.InDelta(t, 10.0, discrepancy.PercentDiff, 0.001)
	assert.Equal(t, domain.SeverityWarning, discrepancy.Severity)
}

func TestValidateHierarchy_RejeitaParDeNiveisInvalido(t *testing.T) {
	ctrl := gomock.NewController(t)
	metricsService := mocks.NewMockMetricsService(ctrl)
	validator := NewService(metricsService)

	_, err := validator.ValidateHierarchy(&ValidationRequest{
		CustomerID: "4018223765",
		ParentType: domain.EntityTypeCampaign,
		ParentID:   "555",
		ChildType:  domain.EntityTypeKeyword, // keyword é neto, não filho
		DateRange:  testRange(),
	})

	assert.Error(t, err)
}

func TestValidChildPair(t *testing.T) {
	assert.True(t, ValidChildPair(domain.EntityTypeCampaign, domain.EntityTypeAdGroup))
	assert.True(t, ValidChildPair(domain.EntityTypeAdGroup, domain.EntityTypeKeyword))
	assert.True(t, ValidChildPair(domain.EntityTypeAdGroup, domain.EntityTypeAd))

	assert.False(t, ValidChildPair(domain.EntityTypeCampaign, domain.EntityTypeKeyword))
	assert.False(t, ValidChildPair(domain.EntityTypeKeyword, domain.EntityTypeAd))
	assert.False(t, ValidChildPair(domain.EntityTypeAd, domain.EntityTypeKeyword))
}

func TestPercentDiff_FilhosZerados(t *testing.T) {
	// Pai com valor e filhos zerados: desvio total
	assert.Equal(t, 100.0, PercentDiff(50, 0))

	// Ambos zerados: sem divergência
	assert.Equal(t, 0.0, PercentDiff(0, 0))
}

func TestCompare_ClassificaSeveridadePorMagnitude(t *testing.T) {
	parent := &domain.MetricTotals{
		Clicks:      101,  // ~1% acima -> info
		Impressions: 1050, // 5% acima -> warning
		CostMicros:  1200, // 20% acima -> error
	}
	children := &domain.MetricTotals{
		Clicks:      100,
		Impressions: 1000,
		CostMicros:  1000,
	}

	discrepancies := Compare(parent, children)
	require.Len(t, discrepancies, 3)

	bySeverity := make(map[string]domain.DiscrepancySeverity)
	for _, d := range discrepancies {
		bySeverity[d.Metric] = d.Severity
	}

	assert.Equal(t, domain.SeverityInfo, bySeverity["clicks"])
	assert.Equal(t, domain.SeverityWarning, bySeverity["impressions"])
	assert.Equal(t, domain.SeverityError, bySeverity["cost_micros"])
}

func TestCompare_TotaisNulosContamComoZerados(t *testing.T) {
	discrepancies := Compare(nil, nil)
	assert.Empty(t, discrepancies)
}
