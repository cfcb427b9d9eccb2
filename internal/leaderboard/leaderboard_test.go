package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbench/promptbench/internal/db/memory"
	"github.com/promptbench/promptbench/internal/metrics"
	"github.com/promptbench/promptbench/internal/models"
)

func aggregateWith(modelID, provider string, overall float64, metricScores map[string]models.MetricSummary) models.ModelAggregate {
	return models.ModelAggregate{
		ModelID:      modelID,
		Descriptor:   models.ModelDescriptor{ID: modelID, Provider: provider},
		Metrics:      metricScores,
		SuccessRate:  1,
		OverallScore: &overall,
	}
}

func storeRun(t *testing.T, service *Service, id string, ts time.Time, aggregates map[string]models.ModelAggregate) {
	t.Helper()

	modelIDs := make([]string, 0, len(aggregates))
	for modelID := range aggregates {
		modelIDs = append(modelIDs, modelID)
	}

	err := service.Record(context.Background(), &models.BenchmarkRun{
		ID:         id,
		Timestamp:  ts,
		Prompts:    []string{"p"},
		ModelIDs:   modelIDs,
		Metrics:    metrics.Supported(),
		Aggregates: aggregates,
	})
	require.NoError(t, err)
}

func floatPtr(f float64) *float64 { return &f }

func TestRankOrdersByScoreDescending(t *testing.T) {
	service := New(memory.New())
	now := time.Now().UTC()

	storeRun(t, service, "run-1", now, map[string]models.ModelAggregate{
		"openai_gpt-4":     aggregateWith("openai_gpt-4", "openai", 80, nil),
		"ollama_llama3":    aggregateWith("ollama_llama3", "ollama", 60, nil),
		"anthropic_claude": aggregateWith("anthropic_claude", "anthropic", 90, nil),
	})

	entries, err := service.Rank(context.Background(), metrics.MetricOverall)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "anthropic_claude", entries[0].ModelID)
	assert.Equal(t, "openai_gpt-4", entries[1].ModelID)
	assert.Equal(t, "ollama_llama3", entries[2].ModelID)
	assert.Equal(t, "anthropic", entries[0].Provider)
}

func TestRankTiesBreakByModelID(t *testing.T) {
	service := New(memory.New())
	now := time.Now().UTC()

	storeRun(t, service, "run-1", now, map[string]models.ModelAggregate{
		"zeta":  aggregateWith("zeta", "ollama", 75, nil),
		"alpha": aggregateWith("alpha", "ollama", 75, nil),
		"mid":   aggregateWith("mid", "ollama", 75, nil),
	})

	for i := 0; i < 5; i++ {
		entries, err := service.Rank(context.Background(), metrics.MetricOverall)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "alpha", entries[0].ModelID)
		assert.Equal(t, "mid", entries[1].ModelID)
		assert.Equal(t, "zeta", entries[2].ModelID)
	}
}

func TestRankAveragesAcrossRuns(t *testing.T) {
	service := New(memory.New())
	now := time.Now().UTC()

	storeRun(t, service, "run-1", now.Add(-time.Hour), map[string]models.ModelAggregate{
		"m": aggregateWith("m", "openai", 60, nil),
	})
	storeRun(t, service, "run-2", now, map[string]models.ModelAggregate{
		"m": aggregateWith("m", "openai", 80, nil),
	})

	entries, err := service.Rank(context.Background(), metrics.MetricOverall)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 70.0, entries[0].Score)
	assert.Equal(t, 2, entries[0].Runs)
}

func TestRankByLatencyCarriesRawAverage(t *testing.T) {
	service := New(memory.New())
	now := time.Now().UTC()

	storeRun(t, service, "run-1", now, map[string]models.ModelAggregate{
		"m": aggregateWith("m", "openai", 80, map[string]models.MetricSummary{
			metrics.MetricLatency: {Average: 90, Min: 80, Max: 100, Count: 2, AverageRaw: floatPtr(1.5)},
			metrics.MetricCost:    {Average: 70, Min: 70, Max: 70, Count: 2, AverageRaw: floatPtr(0.002)},
		}),
	})

	entries, err := service.Rank(context.Background(), metrics.MetricLatency)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 90.0, entries[0].Score)
	require.NotNil(t, entries[0].AvgLatency)
	assert.Equal(t, 1.5, *entries[0].AvgLatency)
	assert.Nil(t, entries[0].AvgCost, "cost average only populates for cost queries")

	entries, err = service.Rank(context.Background(), metrics.MetricCost)
	require.NoError(t, err)
	require.NotNil(t, entries[0].AvgCost)
	assert.Equal(t, 0.002, *entries[0].AvgCost)
	assert.Nil(t, entries[0].AvgLatency)
}

func TestRankDefaultsToOverall(t *testing.T) {
	service := New(memory.New())
	storeRun(t, service, "run-1", time.Now().UTC(), map[string]models.ModelAggregate{
		"m": aggregateWith("m", "openai", 42, nil),
	})

	entries, err := service.Rank(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 42.0, entries[0].Score)
}

func TestRankRejectsUnknownMetric(t *testing.T) {
	service := New(memory.New())

	_, err := service.Rank(context.Background(), "throughput")
	require.Error(t, err)

	verr, ok := models.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "metric", verr.Field)
}

func TestRankSkipsModelsWithoutSamples(t *testing.T) {
	service := New(memory.New())
	now := time.Now().UTC()

	noScore := models.ModelAggregate{
		ModelID:    "failed",
		Descriptor: models.ModelDescriptor{Provider: "openai"},
	}
	storeRun(t, service, "run-1", now, map[string]models.ModelAggregate{
		"failed":  noScore,
		"healthy": aggregateWith("healthy", "ollama", 50, nil),
	})

	entries, err := service.Rank(context.Background(), metrics.MetricOverall)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "healthy", entries[0].ModelID)
}

func TestRankEmptyHistory(t *testing.T) {
	service := New(memory.New())

	entries, err := service.Rank(context.Background(), metrics.MetricOverall)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStats(t *testing.T) {
	service := New(memory.New())
	now := time.Now().UTC().Truncate(time.Second)

	storeRun(t, service, "run-1", now.Add(-time.Hour), map[string]models.ModelAggregate{
		"a": aggregateWith("a", "openai", 90, map[string]models.MetricSummary{
			metrics.MetricLatency: {Average: 95, Count: 1, AverageRaw: floatPtr(0.8)},
		}),
		"b": aggregateWith("b", "ollama", 70, map[string]models.MetricSummary{
			metrics.MetricCost: {Average: 99, Count: 1, AverageRaw: floatPtr(0.0)},
		}),
	})
	storeRun(t, service, "run-2", now, map[string]models.ModelAggregate{
		"a": aggregateWith("a", "openai", 85, nil),
	})

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalModels)
	assert.Equal(t, 2, stats.TotalRuns)
	require.NotNil(t, stats.LastRun)
	assert.True(t, stats.LastRun.Equal(now))
	require.NotNil(t, stats.TopPerformer)
	assert.Equal(t, "a", stats.TopPerformer.ModelID)
	require.NotNil(t, stats.FastestModel)
	assert.Equal(t, "a", stats.FastestModel.ModelID)
	require.NotNil(t, stats.MostCostEffective)
	assert.Equal(t, "b", stats.MostCostEffective.ModelID)
}

func TestModelHistoryOldestFirst(t *testing.T) {
	service := New(memory.New())
	now := time.Now().UTC()

	storeRun(t, service, "run-2", now, map[string]models.ModelAggregate{
		"m": aggregateWith("m", "openai", 80, nil),
	})
	storeRun(t, service, "run-1", now.Add(-time.Hour), map[string]models.ModelAggregate{
		"m": aggregateWith("m", "openai", 60, nil),
	})

	history, err := service.ModelHistory(context.Background(), "m")
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "run-1", history[0].RunID)
	require.NotNil(t, history[0].OverallScore)
	assert.Equal(t, 60.0, *history[0].OverallScore)
	assert.Equal(t, "run-2", history[1].RunID)

	other, err := service.ModelHistory(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, other)
}
