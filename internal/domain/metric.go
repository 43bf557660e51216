package domain

import (
	"time"
)

type EntityType string

const (
	EntityTypeCampaign EntityType = "CAMPAIGN"
	EntityTypeAdGroup  EntityType = "AD_GROUP"
	EntityTypeKeyword  EntityType = "KEYWORD"
	EntityTypeAd       EntityType = "AD"
)

// Valid indica se o tipo de entidade é um dos níveis conhecidos da hierarquia
func (e EntityType) Valid() bool {
	switch e {
	case EntityTypeCampaign, EntityTypeAdGroup, EntityTypeKeyword, EntityTypeAd:
		return true
	}
	return false
}

// RequiresParent indica se jobs dessa entidade precisam do ID da entidade pai
func (e EntityType) RequiresParent() bool {
	return e == EntityTypeAdGroup || e == EntityTypeKeyword || e == EntityTypeAd
}

// DailyMetricRow é a única unidade de métrica persistida: sempre um dia de
// calendário por entidade, nunca um intervalo pré-agregado.
type DailyMetricRow struct {
	Date             time.Time  `json:"date"`
	CustomerID       string     `json:"customer_id"`
	AccountID        string     `json:"account_id"`
	EntityType       EntityType `json:"entity_type"`
	EntityID         string     `json:"entity_id"`
	ParentEntityID   string     `json:"parent_entity_id,omitempty"`
	Impressions      int64      `json:"impressions"`
	Clicks           int64      `json:"clicks"`
	CostMicros       int64      `json:"cost_micros"`
	Conversions      float64    `json:"conversions"`
	ConversionsValue float64    `json:"conversions_value"`
}

// MetricTotals é o resultado agregado de uma leitura por intervalo
type MetricTotals struct {
	Impressions      int64   `json:"impressions"`
	Clicks           int64   `json:"clicks"`
	CostMicros       int64   `json:"cost_micros"`
	Conversions      float64 `json:"conversions"`
	ConversionsValue float64 `json:"conversions_value"`
	Rows             int     `json:"rows"`
	Days             int     `json:"days"`
}

// AddRow soma uma linha diária ao total. A soma é associativa e comutativa,
// então agregados parciais de conjuntos disjuntos podem ser combinados.
func (t *MetricTotals) AddRow(row *DailyMetricRow) {
	t.Impressions += row.Impressions
	t.Clicks += row.Clicks
	t.CostMicros += row.CostMicros
	t.Conversions += row.Conversions
	t.ConversionsValue += row.ConversionsValue
	t.Rows++
}

func (t *MetricTotals) IsEmpty() bool {
	if t == nil {
		return true
	}

	return t.Impressions == 0 && t.Clicks == 0 && t.CostMicros == 0 &&
		t.Conversions == 0 && t.ConversionsValue == 0
}

// StoreResult é o resultado estruturado de uma escrita de métricas diárias
type StoreResult struct {
	Success      bool     `json:"success"`
	RowsWritten  int      `json:"rows_written"`
	DatesWritten []string `json:"dates_written"`
	Granularity  string   `json:"granularity"`
	Error        string   `json:"error,omitempty"`

	// Rejected distingue lote recusado na validação de falha de
	// infraestrutura: só a segunda vale novas tentativas
	Rejected bool `json:"rejected,omitempty"`
}
