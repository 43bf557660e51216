package syncing

import (
	"time"

	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

// BackfillChunker divide intervalos históricos largos em jobs alinhados por
// dia. Os chunks saem sempre em prioridade baixa para nunca atrasarem os
// pedidos interativos.
type BackfillChunker struct {
	chunkDays int
}

func NewBackfillChunker(chunkDays int) *BackfillChunker {
	if chunkDays < 1 {
		chunkDays = 1
	}

	return &BackfillChunker{chunkDays: chunkDays}
}

// Chunk fatia o intervalo em jobs de até chunkDays dias, numerados na ordem
// do calendário. Um intervalo que cabe em um único chunk gera um único job.
func (c *BackfillChunker) Chunk(customerID, accountID string, entityType domain.EntityType, parentEntityID string, dateRange domain.DateRange, requestedAt time.Time) []*domain.RefreshJob {
	start := domain.DayOf(dateRange.Start)
	end := domain.DayOf(dateRange.End)

	if end.Before(start) {
		return nil
	}

	totalDays := domain.DateRange{Start: start, End: end}.Days()
	totalBatches := (totalDays + c.chunkDays - 1) / c.chunkDays

	jobs := make([]*domain.RefreshJob, 0, totalBatches)

	for batch := 0; batch < totalBatches; batch++ {
		chunkStart := start.AddDate(0, 0, batch*c.chunkDays)

		chunkEnd := chunkStart.AddDate(0, 0, c.chunkDays-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		job := &domain.RefreshJob{
			CustomerID:     customerID,
			AccountID:      accountID,
			EntityType:     entityType,
			ParentEntityID: parentEntityID,
			Priority:       domain.PriorityLow,
			StartDate:      chunkStart,
			EndDate:        chunkEnd,
			RequestedAt:    requestedAt,
			BatchNumber:    batch + 1,
			TotalBatches:   totalBatches,
		}
		job.ComputeID()

		jobs = append(jobs, job)
	}

	return jobs
}
