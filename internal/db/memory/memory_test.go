package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbench/promptbench/internal/db"
	"github.com/promptbench/promptbench/internal/models"
)

func run(id string, ts time.Time, modelIDs ...string) *models.BenchmarkRun {
	return &models.BenchmarkRun{
		ID:        id,
		Timestamp: ts,
		Prompts:   []string{"p"},
		ModelIDs:  modelIDs,
	}
}

func TestCreateAndGetRun(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.Connect(ctx))
	defer store.Disconnect(ctx)

	now := time.Now().UTC()
	require.NoError(t, store.CreateRun(ctx, run("run-1", now, "m")))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)

	_, err = store.GetRun(ctx, "missing")
	assert.Error(t, err)
}

func TestCreateRunRejectsDuplicates(t *testing.T) {
	store := New()
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.CreateRun(ctx, run("run-1", now, "m")))
	assert.Error(t, store.CreateRun(ctx, run("run-1", now, "m")))
}

func TestListRunsNewestFirst(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.CreateRun(ctx, run("old", now.Add(-2*time.Hour), "a")))
	require.NoError(t, store.CreateRun(ctx, run("new", now, "a", "b")))
	require.NoError(t, store.CreateRun(ctx, run("mid", now.Add(-time.Hour), "b")))

	runs, err := store.ListRuns(ctx, db.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
	assert.Equal(t, "old", runs[2].ID)
}

func TestListRunsFilters(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.CreateRun(ctx, run("r1", now.Add(-2*time.Hour), "a")))
	require.NoError(t, store.CreateRun(ctx, run("r2", now.Add(-time.Hour), "a", "b")))
	require.NoError(t, store.CreateRun(ctx, run("r3", now, "b")))

	byModel, err := store.ListRuns(ctx, db.RunFilter{ModelID: "a"})
	require.NoError(t, err)
	assert.Len(t, byModel, 2)

	start := now.Add(-90 * time.Minute)
	byTime, err := store.ListRuns(ctx, db.RunFilter{StartTime: &start})
	require.NoError(t, err)
	assert.Len(t, byTime, 2)

	limited, err := store.ListRuns(ctx, db.RunFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "r3", limited[0].ID)
}

func TestCountRuns(t *testing.T) {
	store := New()
	ctx := context.Background()

	count, err := store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.CreateRun(ctx, run("r1", time.Now().UTC(), "a")))
	count, err = store.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
