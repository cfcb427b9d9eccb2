package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbench/promptbench/internal/metrics"
	"github.com/promptbench/promptbench/internal/models"
)

func scored(promptIndex int, scores map[string]float64) models.PromptResult {
	result := models.PromptResult{
		Raw:    models.RawResult{PromptIndex: promptIndex, Success: true},
		Scores: make(map[string]models.MetricScore, len(scores)),
	}
	for metric, score := range scores {
		result.Scores[metric] = models.MetricScore{Metric: metric, Score: score}
	}
	return result
}

func failed(promptIndex int) models.PromptResult {
	return models.PromptResult{
		Raw: models.RawResult{PromptIndex: promptIndex, Success: false, Error: "upstream error"},
	}
}

func TestAggregateMixedResults(t *testing.T) {
	results := []models.PromptResult{
		scored(0, map[string]float64{metrics.MetricLatency: 80, metrics.MetricQuality: 60}),
		failed(1),
		scored(2, map[string]float64{metrics.MetricLatency: 40, metrics.MetricQuality: 90}),
		failed(3),
	}

	aggregate := Aggregate("openai_gpt-4", models.ModelDescriptor{Provider: "openai"}, results,
		[]string{metrics.MetricLatency, metrics.MetricQuality})

	assert.Equal(t, "openai_gpt-4", aggregate.ModelID)
	assert.Equal(t, 0.5, aggregate.SuccessRate)
	assert.Len(t, aggregate.PromptResults, 4)

	latency := aggregate.Metrics[metrics.MetricLatency]
	assert.Equal(t, 60.0, latency.Average)
	assert.Equal(t, 40.0, latency.Min)
	assert.Equal(t, 80.0, latency.Max)
	assert.Equal(t, 2, latency.Count)

	quality := aggregate.Metrics[metrics.MetricQuality]
	assert.Equal(t, 75.0, quality.Average)

	// Overall is the mean of the metric averages: (60 + 75) / 2.
	require.NotNil(t, aggregate.OverallScore)
	assert.InDelta(t, 67.5, *aggregate.OverallScore, 0.001)
}

func TestAggregateOmitsMetricsWithoutSamples(t *testing.T) {
	// Cost was requested but no result could be scored for it.
	results := []models.PromptResult{
		scored(0, map[string]float64{metrics.MetricLatency: 100}),
		scored(1, map[string]float64{metrics.MetricLatency: 50}),
	}

	aggregate := Aggregate("ollama_llama3", models.ModelDescriptor{}, results,
		[]string{metrics.MetricLatency, metrics.MetricCost})

	assert.Contains(t, aggregate.Metrics, metrics.MetricLatency)
	assert.NotContains(t, aggregate.Metrics, metrics.MetricCost)

	require.NotNil(t, aggregate.OverallScore)
	assert.Equal(t, 75.0, *aggregate.OverallScore)
}

func TestAggregateAllFailures(t *testing.T) {
	results := []models.PromptResult{failed(0), failed(1)}

	aggregate := Aggregate("anthropic_claude", models.ModelDescriptor{}, results,
		[]string{metrics.MetricLatency, metrics.MetricQuality})

	assert.Equal(t, 0.0, aggregate.SuccessRate)
	assert.Empty(t, aggregate.Metrics)
	assert.Nil(t, aggregate.OverallScore)
}

func TestAggregateEmptyResults(t *testing.T) {
	aggregate := Aggregate("m", models.ModelDescriptor{}, nil, []string{metrics.MetricLatency})

	assert.Equal(t, 0.0, aggregate.SuccessRate)
	assert.Empty(t, aggregate.Metrics)
	assert.Nil(t, aggregate.OverallScore)
}

func TestAggregateAverageRaw(t *testing.T) {
	lat1, lat2 := 2.0, 4.0
	results := []models.PromptResult{
		{
			Raw: models.RawResult{PromptIndex: 0, Success: true},
			Scores: map[string]models.MetricScore{
				metrics.MetricLatency: {Metric: metrics.MetricLatency, Score: 80, RawValue: &lat1},
			},
		},
		{
			Raw: models.RawResult{PromptIndex: 1, Success: true},
			Scores: map[string]models.MetricScore{
				metrics.MetricLatency: {Metric: metrics.MetricLatency, Score: 60, RawValue: &lat2},
			},
		},
	}

	aggregate := Aggregate("m", models.ModelDescriptor{}, results, []string{metrics.MetricLatency})

	summary := aggregate.Metrics[metrics.MetricLatency]
	require.NotNil(t, summary.AverageRaw)
	assert.Equal(t, 3.0, *summary.AverageRaw)
}
