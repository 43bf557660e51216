package domain

import "time"

type SyncOutcome string

const (
	SyncOutcomeSuccess SyncOutcome = "success"
	SyncOutcomeFailed  SyncOutcome = "failed"
)

// SyncCooldown guarda o controle de frequência de sincronização por cliente
type SyncCooldown struct {
	CustomerID     string      `json:"customer_id"`
	LastSyncAt     time.Time   `json:"last_sync_at"`
	LastSyncStatus SyncOutcome `json:"last_sync_status"`
	NextAllowedAt  time.Time   `json:"next_allowed_at"`
}

// SyncDecision é a resposta estruturada do limitador: permissão ou o motivo
// e horário em que uma nova tentativa será aceita. Não é um erro.
type SyncDecision struct {
	Allowed      bool       `json:"allowed"`
	Reason       string     `json:"reason,omitempty"`
	NextSyncAt   *time.Time `json:"next_sync_at,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// SyncStatusReport é o estado de sincronização exposto pela API por cliente
type SyncStatusReport struct {
	CustomerID     string      `json:"customer_id"`
	LastSyncAt     *time.Time  `json:"last_sync_at"`
	LastSyncStatus SyncOutcome `json:"last_sync_status,omitempty"`
	CooldownUntil  *time.Time  `json:"cooldown_until"`
	PendingJobs    int         `json:"pending_jobs"`
}
