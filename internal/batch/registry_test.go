package batch

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/loadstone/internal/clock"
	"github.com/smallbiznis/loadstone/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T, c clock.Clock) *Registry {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&Control{}, &ControlLog{}))

	return NewRegistry(Params{DB: gdb, Log: zap.NewNop(), Clock: c})
}

func TestRegistry_CurrentUnavailable(t *testing.T) {
	r := newTestRegistry(t, clock.NewFakeClock(time.Now()))

	_, err := r.Current(context.Background())
	assert.ErrorIs(t, err, ErrBatchUnavailable)
}

func TestRegistry_StartAdvancesControl(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	r := newTestRegistry(t, fake)
	ctx := context.Background()

	require.NoError(t, r.Seed(ctx, 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

	batchDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.Start(ctx, 42, batchDate))

	current, err := r.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), current.EtlBatchNo)
	assert.True(t, batchDate.Equal(current.EtlBatchDate), "batch date round-trip")

	var entries []ControlLog
	require.NoError(t, r.db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusStarted, entries[0].Status)
	assert.Nil(t, entries[0].EndTime)
}

func TestRegistry_StartRejectsNonMonotonic(t *testing.T) {
	r := newTestRegistry(t, clock.NewFakeClock(time.Now()))
	ctx := context.Background()

	require.NoError(t, r.Seed(ctx, 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))

	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, r.Start(ctx, 44, date), ErrBatchNotMonotonic)
	assert.ErrorIs(t, r.Start(ctx, 41, date), ErrBatchNotMonotonic)

	current, err := r.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(41), current.EtlBatchNo)
}

func TestRegistry_CompleteClosesOpenEntry(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	r := newTestRegistry(t, fake)
	ctx := context.Background()

	require.NoError(t, r.Seed(ctx, 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, r.Start(ctx, 42, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))

	fake.Advance(45 * time.Minute)
	require.NoError(t, r.Complete(ctx, 42))

	var entry ControlLog
	require.NoError(t, r.db.Where("etl_batch_no = ?", 42).First(&entry).Error)
	assert.Equal(t, StatusCompleted, entry.Status)
	require.NotNil(t, entry.EndTime)
	assert.True(t, entry.EndTime.After(entry.StartTime))
}

func TestRegistry_CompleteUnknownBatch(t *testing.T) {
	r := newTestRegistry(t, clock.NewFakeClock(time.Now()))
	ctx := context.Background()

	require.NoError(t, r.Seed(ctx, 41, time.Now()))
	assert.ErrorIs(t, r.Complete(ctx, 99), ErrUnknownBatch)
}

func TestRegistry_FailedRunLeavesStartedEntry(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	r := newTestRegistry(t, fake)
	ctx := context.Background()

	require.NoError(t, r.Seed(ctx, 41, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, r.Start(ctx, 42, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))

	// No Complete call: the run is considered failed. The next batch
	// still opens on top of it and history keeps both entries.
	require.NoError(t, r.Start(ctx, 43, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))

	var entries []ControlLog
	require.NoError(t, r.db.Order("etl_batch_no").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, StatusStarted, entries[0].Status)
	assert.Equal(t, StatusStarted, entries[1].Status)
}
