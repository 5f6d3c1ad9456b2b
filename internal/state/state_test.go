package state

import (
	"context"
	"testing"
	"time"

	"wbbot/parser/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleReportRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	manager := NewRedisStateManager(rdb)
	ctx := context.Background()

	last, err := manager.GetLastCycleReport(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	report := &domain.CycleReport{
		ID:         "cycle-1",
		StartedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC),
		Stack:      "products",
		Queued:     12,
	}
	report.Add(domain.FetchReport{Total: 20, PagesRequested: 1, RawProducts: 20, Products: 12,
		Dropped: map[domain.DropReason]int{domain.DropOutOfStock: 8}})

	require.NoError(t, manager.SaveCycleReport(ctx, report))
	assert.True(t, mr.Exists("wb:cycle:last"))

	last, err = manager.GetLastCycleReport(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "cycle-1", last.ID)
	assert.Equal(t, 12, last.Queued)
	assert.Equal(t, 1, last.Categories)
	assert.Equal(t, 8, last.Dropped[domain.DropOutOfStock])
	assert.True(t, last.StartedAt.Equal(report.StartedAt))
}

func TestGetLastCycleReportCorrupted(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	require.NoError(t, mr.Set("wb:cycle:last", "{"))

	_, err := NewRedisStateManager(rdb).GetLastCycleReport(context.Background())
	assert.Error(t, err)
}
