package syncing

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de sincronização
var (
	// Erros de validação
	ErrInvalidRefreshRequest = errors.New("invalid refresh request")
	ErrInvalidBackfillRange  = errors.New("invalid backfill range")

	// Erros de banco de dados
	ErrCooldownLookup = errors.New("error reading sync cooldown")
	ErrCooldownUpdate = errors.New("error updating sync cooldown")

	// Erros de infraestrutura da fila
	ErrQueueUnavailable = errors.New("queue backend unavailable")
)

// SyncError é um erro com contexto adicional para sincronização
type SyncError struct {
	Err        error
	Code       string
	CustomerID string
	Details    string
}

func (e *SyncError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewSyncError(err error, code string, customerID string, details string) *SyncError {
	return &SyncError{
		Err:        err,
		Code:       code,
		CustomerID: customerID,
		Details:    details,
	}
}
