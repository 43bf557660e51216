package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/metrics-sync-api/infrastructure/database/postgres"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

const (
	syncCooldownsTable = "sync_cooldowns sc"
)

type SyncCooldownRepository interface {
	GetByCustomerID(customerID string) (*domain.SyncCooldown, error)
	SaveOrUpdate(cooldown *domain.SyncCooldown) error
}

type syncCooldownRepository struct {
	conn *postgres.Connection
}

func NewSyncCooldownRepository(conn *postgres.Connection) SyncCooldownRepository {
	return &syncCooldownRepository{
		conn: conn,
	}
}

func (r *syncCooldownRepository) GetByCustomerID(customerID string) (*domain.SyncCooldown, error) {
	query, args, err := squirrel.
		Select("sc.customer_id, sc.last_sync_at, sc.last_sync_status, sc.next_allowed_at").
		From(syncCooldownsTable).
		Where(squirrel.Eq{"sc.customer_id": customerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	cooldown := &domain.SyncCooldown{}

	row := r.conn.QueryRow(query, args...)
	err = row.Scan(
		&cooldown.CustomerID,
		&cooldown.LastSyncAt,
		&cooldown.LastSyncStatus,
		&cooldown.NextAllowedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear cooldown: %w", err)
	}

	return cooldown, nil
}

func (r *syncCooldownRepository) SaveOrUpdate(cooldown *domain.SyncCooldown) error {
	query := squirrel.StatementBuilder.
		Insert("sync_cooldowns").
		Columns("customer_id", "last_sync_at", "last_sync_status", "next_allowed_at").
		Values(
			cooldown.CustomerID,
			cooldown.LastSyncAt,
			cooldown.LastSyncStatus,
			cooldown.NextAllowedAt,
		).
		Suffix(`
			ON CONFLICT (customer_id) DO UPDATE SET
				last_sync_at = EXCLUDED.last_sync_at,
				last_sync_status = EXCLUDED.last_sync_status,
				next_allowed_at = EXCLUDED.next_allowed_at,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
