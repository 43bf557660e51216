package domain

type DiscrepancySeverity string

const (
	SeverityInfo    DiscrepancySeverity = "info"
	SeverityWarning DiscrepancySeverity = "warning"
	SeverityError   DiscrepancySeverity = "error"
)

// MetricDiscrepancy registra a divergência entre o total reportado por uma
// entidade pai e a soma dos filhos para a mesma métrica e janela
type MetricDiscrepancy struct {
	Metric      string              `json:"metric"`
	ParentValue float64             `json:"parent_value"`
	ChildSum    float64             `json:"child_sum"`
	PercentDiff float64             `json:"percent_diff"`
	Severity    DiscrepancySeverity `json:"severity"`
}

// HierarchyValidation é a resposta da conferência pai vs filhos exposta na API
type HierarchyValidation struct {
	CustomerID    string              `json:"customer_id"`
	ParentType    EntityType          `json:"parent_type"`
	ParentID      string              `json:"parent_id"`
	ChildType     EntityType          `json:"child_type"`
	StartDate     string              `json:"start_date"`
	EndDate       string              `json:"end_date"`
	Parent        *MetricTotals       `json:"parent_totals"`
	Children      *MetricTotals       `json:"children_totals"`
	Discrepancies []MetricDiscrepancy `json:"discrepancies"`
}
