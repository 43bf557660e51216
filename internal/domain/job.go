package domain

import (
	"fmt"
	"time"
)

type JobPriority string

const (
	PriorityHigh   JobPriority = "high"
	PriorityNormal JobPriority = "normal"
	PriorityLow    JobPriority = "low"
)

func (p JobPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// PriorityOrder lista as filas na ordem em que devem ser drenadas
var PriorityOrder = []JobPriority{PriorityHigh, PriorityNormal, PriorityLow}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusDead      JobStatus = "dead"
)

// RefreshJob é uma unidade de sincronização: buscar métricas de uma entidade
// em um intervalo de datas e gravar no cache local.
type RefreshJob struct {
	ID             string      `json:"id"`
	CustomerID     string      `json:"customer_id"`
	AccountID      string      `json:"account_id"`
	EntityType     EntityType  `json:"entity_type"`
	ParentEntityID string      `json:"parent_entity_id,omitempty"`
	Priority       JobPriority `json:"priority"`
	StartDate      time.Time   `json:"start_date"`
	EndDate        time.Time   `json:"end_date"`
	RequestedAt    time.Time   `json:"requested_at"`
	Attempt        int         `json:"attempt"`
	LastError      string      `json:"last_error,omitempty"`
	BatchNumber    int         `json:"batch_number,omitempty"`
	TotalBatches   int         `json:"total_batches,omitempty"`
}

// JobID deriva o identificador determinístico usado para deduplicação.
// Dois pedidos para o mesmo cliente, entidade e intervalo colapsam no mesmo ID.
func JobID(customerID string, entityType EntityType, startDate, endDate time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		customerID,
		entityType,
		startDate.Format(time.DateOnly),
		endDate.Format(time.DateOnly),
	)
}

// ComputeID preenche o ID determinístico do job a partir dos seus campos
func (j *RefreshJob) ComputeID() string {
	j.ID = JobID(j.CustomerID, j.EntityType, j.StartDate, j.EndDate)
	return j.ID
}

func (j *RefreshJob) Range() DateRange {
	return DateRange{Start: DayOf(j.StartDate), End: DayOf(j.EndDate)}
}

// Validate confere os campos obrigatórios antes do job entrar na fila
func (j *RefreshJob) Validate() error {
	if j.CustomerID == "" {
		return fmt.Errorf("job sem customer_id")
	}

	if !j.EntityType.Valid() {
		return fmt.Errorf("tipo de entidade inválido: %q", j.EntityType)
	}

	if j.EntityType.RequiresParent() && j.ParentEntityID == "" {
		return fmt.Errorf("jobs de %s exigem parent_entity_id", j.EntityType)
	}

	if !j.Priority.Valid() {
		return fmt.Errorf("prioridade inválida: %q", j.Priority)
	}

	if j.StartDate.IsZero() || j.EndDate.IsZero() {
		return fmt.Errorf("job sem intervalo de datas")
	}

	if j.EndDate.Before(j.StartDate) {
		return fmt.Errorf("data final anterior à data inicial")
	}

	return nil
}

// EnqueueStatus é o resultado visível ao chamador de um pedido de refresh
type EnqueueStatus string

const (
	EnqueueStatusQueued         EnqueueStatus = "queued"
	EnqueueStatusAlreadyPending EnqueueStatus = "already_pending"
	EnqueueStatusRateLimited    EnqueueStatus = "rate_limited"
	EnqueueStatusUnavailable    EnqueueStatus = "unavailable"
)

type EnqueueResult struct {
	Status     EnqueueStatus `json:"status"`
	JobID      string        `json:"job_id,omitempty"`
	NextSyncAt *time.Time    `json:"next_sync_at,omitempty"`
	Jobs       int           `json:"jobs,omitempty"`
}
