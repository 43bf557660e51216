package syncing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/metrics-sync-api/internal/domain"
)

func chunkRange(startDay, endDay int) domain.DateRange {
	return domain.DateRange{
		Start: time.Date(2024, 1, startDay, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, endDay, 0, 0, 0, 0, time.UTC),
	}
}

func TestChunk_IntervaloQueCabeEmUmChunkGeraUmJob(t *testing.T) {
	chunker := NewBackfillChunker(30)

	jobs := chunker.Chunk("4018223765", "abc123", domain.EntityTypeCampaign, "", chunkRange(1, 10), time.Now().UTC())

	require.Len(t, jobs, 1)
	assert.Equal(t, 1, jobs[0].BatchNumber)
	assert.Equal(t, 1, jobs[0].TotalBatches)
	assert.True(t, jobs[0].StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, jobs[0].EndDate.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
}

func TestChunk_UltimoChunkEhMaisCurto(t *testing.T) {
	chunker := NewBackfillChunker(7)

	// 17 dias: 7 + 7 + 3
	jobs := chunker.Chunk("4018223765", "abc123", domain.EntityTypeCampaign, "", chunkRange(1, 17), time.Now().UTC())

	require.Len(t, jobs, 3)

	assert.True(t, jobs[0].EndDate.Equal(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)))
	assert.True(t, jobs[1].StartDate.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
	assert.True(t, jobs[2].StartDate.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, jobs[2].EndDate.Equal(time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)))

	for i, job := range jobs {
		assert.Equal(t, i+1, job.BatchNumber)
		assert.Equal(t, 3, job.TotalBatches)
		assert.Equal(t, domain.PriorityLow, job.Priority)
		assert.NotEmpty(t, job.ID)
	}
}

func TestChunk_ChunksNaoSeSobrepoemNemDeixamBuracos(t *testing.T) {
	chunker := NewBackfillChunker(5)

	jobs := chunker.Chunk("4018223765", "abc123", domain.EntityTypeCampaign, "", chunkRange(1, 23), time.Now().UTC())
	require.NotEmpty(t, jobs)

	for i := 1; i < len(jobs); i++ {
		expectedStart := jobs[i-1].EndDate.AddDate(0, 0, 1)
		assert.True(t, jobs[i].StartDate.Equal(expectedStart),
			"chunk %d começa em %s, esperado %s", i+1, jobs[i].StartDate, expectedStart)
	}

	assert.True(t, jobs[len(jobs)-1].EndDate.Equal(time.Date(2024, 1, 23, 0, 0, 0, 0, time.UTC)))
}

func TestChunk_IntervaloInvertidoNaoGeraJobs(t *testing.T) {
	chunker := NewBackfillChunker(30)

	jobs := chunker.Chunk("4018223765", "abc123", domain.EntityTypeCampaign, "", chunkRange(10, 1), time.Now().UTC())

	assert.Empty(t, jobs)
}

func TestNewBackfillChunker_ChunkDaysMinimoEhUm(t *testing.T) {
	chunker := NewBackfillChunker(0)

	jobs := chunker.Chunk("4018223765", "abc123", domain.EntityTypeCampaign, "", chunkRange(1, 3), time.Now().UTC())

	assert.Len(t, jobs, 3)
}
