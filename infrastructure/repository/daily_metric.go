package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/metrics-sync-api/infrastructure/database/postgres"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

const (
	dailyMetricsTable = "daily_metrics dm"

	// Limite de linhas por INSERT para não estourar o número de parâmetros
	// do driver. Lotes maiores são divididos dentro da mesma transação.
	upsertChunkSize = 500
)

type DailyMetricRepository interface {
	SaveOrUpdateBatch(ctx context.Context, rows []*domain.DailyMetricRow) error
	GetByRange(customerID string, entityType domain.EntityType, entityID string, startDate, endDate time.Time) ([]*domain.DailyMetricRow, error)
	GetByParent(customerID string, childType domain.EntityType, parentEntityID string, startDate, endDate time.Time) ([]*domain.DailyMetricRow, error)
	GetDatesPresent(customerID string, entityType domain.EntityType, entityID string, startDate, endDate time.Time) (map[string]bool, error)
	DeleteOlderThan(days int) (int64, error)
}

type dailyMetricRepository struct {
	conn *postgres.Connection
}

func NewDailyMetricRepository(conn *postgres.Connection) DailyMetricRepository {
	return &dailyMetricRepository{
		conn: conn,
	}
}

// SaveOrUpdateBatch grava o lote inteiro em uma única transação. Ou todas as
// linhas são persistidas, ou nenhuma é. Linhas já existentes para a mesma
// chave (customer_id, entity_type, entity_id, date) são sobrescritas.
func (r *dailyMetricRepository) SaveOrUpdateBatch(ctx context.Context, rows []*domain.DailyMetricRow) error {
	if len(rows) == 0 {
		return nil
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(rows); start += upsertChunkSize {
			end := start + upsertChunkSize
			if end > len(rows) {
				end = len(rows)
			}

			if err := r.upsertChunk(tx, rows[start:end]); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *dailyMetricRepository) upsertChunk(tx *sql.Tx, rows []*domain.DailyMetricRow) error {
	query := squirrel.StatementBuilder.
		Insert("daily_metrics").
		Columns(
			"customer_id",
			"account_id",
			"entity_type",
			"entity_id",
			"parent_entity_id",
			"date",
			"impressions",
			"clicks",
			"cost_micros",
			"conversions",
			"conversions_value",
		).
		Suffix(`
			ON CONFLICT (customer_id, entity_type, entity_id, date) DO UPDATE SET
				account_id = EXCLUDED.account_id,
				parent_entity_id = EXCLUDED.parent_entity_id,
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				cost_micros = EXCLUDED.cost_micros,
				conversions = EXCLUDED.conversions,
				conversions_value = EXCLUDED.conversions_value,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	for _, row := range rows {
		query = query.Values(
			row.CustomerID,
			row.AccountID,
			row.EntityType,
			row.EntityID,
			row.ParentEntityID,
			row.Date.Format(time.DateOnly),
			row.Impressions,
			row.Clicks,
			row.CostMicros,
			row.Conversions,
			row.ConversionsValue,
		)
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = tx.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

// GetByRange retorna as linhas diárias de um cliente dentro do intervalo.
// Quando entityID é vazio, retorna todas as entidades do tipo informado.
func (r *dailyMetricRepository) GetByRange(customerID string, entityType domain.EntityType, entityID string, startDate, endDate time.Time) ([]*domain.DailyMetricRow, error) {
	builder := squirrel.
		Select(dailyMetricColumns).
		From(dailyMetricsTable).
		Where(squirrel.Eq{"dm.customer_id": customerID, "dm.entity_type": entityType}).
		Where(squirrel.GtOrEq{"dm.date": startDate.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"dm.date": endDate.Format(time.DateOnly)})

	if entityID != "" {
		builder = builder.Where(squirrel.Eq{"dm.entity_id": entityID})
	}

	query, args, err := builder.
		OrderBy("dm.date ASC", "dm.entity_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.queryRows(query, args...)
}

// GetByParent retorna as linhas diárias dos filhos diretos de uma entidade pai
func (r *dailyMetricRepository) GetByParent(customerID string, childType domain.EntityType, parentEntityID string, startDate, endDate time.Time) ([]*domain.DailyMetricRow, error) {
	query, args, err := squirrel.
		Select(dailyMetricColumns).
		From(dailyMetricsTable).
		Where(squirrel.Eq{
			"dm.customer_id":      customerID,
			"dm.entity_type":      childType,
			"dm.parent_entity_id": parentEntityID,
		}).
		Where(squirrel.GtOrEq{"dm.date": startDate.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"dm.date": endDate.Format(time.DateOnly)}).
		OrderBy("dm.date ASC", "dm.entity_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	return r.queryRows(query, args...)
}

// GetDatesPresent retorna o conjunto de datas do intervalo que possuem pelo
// menos uma linha persistida, no formato YYYY-MM-DD
func (r *dailyMetricRepository) GetDatesPresent(customerID string, entityType domain.EntityType, entityID string, startDate, endDate time.Time) (map[string]bool, error) {
	builder := squirrel.
		Select("DISTINCT dm.date").
		From(dailyMetricsTable).
		Where(squirrel.Eq{"dm.customer_id": customerID, "dm.entity_type": entityType}).
		Where(squirrel.GtOrEq{"dm.date": startDate.Format(time.DateOnly)}).
		Where(squirrel.LtOrEq{"dm.date": endDate.Format(time.DateOnly)})

	if entityID != "" {
		builder = builder.Where(squirrel.Eq{"dm.entity_id": entityID})
	}

	query, args, err := builder.
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)

	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("erro ao escanear data: %w", err)
		}

		present[date.Format(time.DateOnly)] = true
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return present, nil
}

func (r *dailyMetricRepository) DeleteOlderThan(days int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -days).Format(time.DateOnly)

	query, args, err := squirrel.
		Delete("daily_metrics").
		Where(squirrel.Lt{"date": cutoffDate}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

const dailyMetricColumns = "dm.customer_id, dm.account_id, dm.entity_type, dm.entity_id, dm.parent_entity_id, dm.date, dm.impressions, dm.clicks, dm.cost_micros, dm.conversions, dm.conversions_value"

func (r *dailyMetricRepository) queryRows(query string, args ...interface{}) ([]*domain.DailyMetricRow, error) {
	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	metrics := make([]*domain.DailyMetricRow, 0)

	for rows.Next() {
		metric, err := r.scanMetricRow(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear métricas diárias: %w", err)
		}
		metrics = append(metrics, metric)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return metrics, nil
}

func (r *dailyMetricRepository) scanMetricRow(rows *sql.Rows) (*domain.DailyMetricRow, error) {
	metric := &domain.DailyMetricRow{}
	var parentEntityID sql.NullString

	err := rows.Scan(
		&metric.CustomerID,
		&metric.AccountID,
		&metric.EntityType,
		&metric.EntityID,
		&parentEntityID,
		&metric.Date,
		&metric.Impressions,
		&metric.Clicks,
		&metric.CostMicros,
		&metric.Conversions,
		&metric.ConversionsValue,
	)
	if err != nil {
		return nil, err
	}

	if parentEntityID.Valid {
		metric.ParentEntityID = parentEntityID.String
	}

	return metric, nil
}
