package metrics

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de métricas diárias
var (
	// Erros de validação
	ErrRowWithoutDate     = errors.New("metric row without date")
	ErrRowWithoutCustomer = errors.New("metric row without customer ID")
	ErrRowInvalidEntity   = errors.New("metric row with invalid entity type")
	ErrInvalidDateRange   = errors.New("invalid date range")

	// Erros de banco de dados
	ErrStoreOperation = errors.New("metrics store operation error")
)

// MetricsError é um erro com contexto adicional para operações de métricas
type MetricsError struct {
	Err     error
	Code    string
	Details string
}

func (e *MetricsError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *MetricsError) Unwrap() error {
	return e.Err
}

func NewMetricsError(err error, code string, details string) *MetricsError {
	return &MetricsError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
