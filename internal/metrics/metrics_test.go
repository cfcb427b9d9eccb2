package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbench/promptbench/internal/models"
)

func successResult(latency float64, promptTokens, completionTokens int, response string) *models.RawResult {
	return &models.RawResult{
		Success:          true,
		Response:         response,
		LatencySeconds:   latency,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}
}

func TestLatencyScoreBoundaries(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	desc := models.ModelDescriptor{}

	tests := []struct {
		name    string
		latency float64
		want    float64
	}{
		{"at one second", 1.0, 100},
		{"below one second", 0.2, 100},
		{"midpoint", 5.5, 50},
		{"at ten seconds", 10.0, 0},
		{"beyond ten seconds", 25.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := engine.Score(MetricLatency, successResult(tt.latency, 10, 10, "ok"), desc)
			require.True(t, ok)
			assert.InDelta(t, tt.want, score.Score, 0.001)
			require.NotNil(t, score.RawValue)
			assert.Equal(t, tt.latency, *score.RawValue)
		})
	}
}

func TestLatencyScoreMonotonic(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	desc := models.ModelDescriptor{}

	prev := 101.0
	for _, latency := range []float64{0.5, 1, 2, 4, 6, 8, 10, 12} {
		score, ok := engine.Score(MetricLatency, successResult(latency, 1, 1, "ok"), desc)
		require.True(t, ok)
		assert.LessOrEqual(t, score.Score, prev, "latency %v", latency)
		prev = score.Score
	}
}

func TestCostScore(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	desc := models.ModelDescriptor{CostPer1KTokens: 0.03}

	// 1000 tokens at $0.03/1K = $0.03 against a $0.10 ceiling.
	score, ok := engine.Score(MetricCost, successResult(1, 600, 400, "ok"), desc)
	require.True(t, ok)
	assert.InDelta(t, 70, score.Score, 0.001)
	require.NotNil(t, score.RawValue)
	assert.InDelta(t, 0.03, *score.RawValue, 0.0001)
}

func TestCostScorePerfectForFreeModels(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	desc := models.ModelDescriptor{CostPer1KTokens: 0}

	score, ok := engine.Score(MetricCost, successResult(1, 100, 100, "ok"), desc)
	require.True(t, ok)
	assert.Equal(t, 100.0, score.Score)
}

func TestCostScoreOmittedWithoutTokens(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	desc := models.ModelDescriptor{CostPer1KTokens: 0.03}

	_, ok := engine.Score(MetricCost, successResult(1, 0, 0, "ok"), desc)
	assert.False(t, ok)
}

func TestCostScoreClampedAtCeiling(t *testing.T) {
	engine := NewEngine(Config{CostCeiling: 0.01, Quality: DefaultQualityWeights()})
	desc := models.ModelDescriptor{CostPer1KTokens: 0.075}

	// $0.075 cost against a $0.01 ceiling clamps to 0, never negative.
	score, ok := engine.Score(MetricCost, successResult(1, 500, 500, "ok"), desc)
	require.True(t, ok)
	assert.Equal(t, 0.0, score.Score)
}

func TestContextUtilizationScore(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	desc := models.ModelDescriptor{MaxContextLength: 1000}

	tests := []struct {
		name   string
		tokens int
		want   float64
	}{
		{"in band low edge", 200, 100},
		{"in band midpoint", 500, 100},
		{"in band high edge", 800, 100},
		{"under-utilized", 50, 25},
		{"over-utilized", 950, 25},
		{"at window", 1000, 0},
		{"past window", 1200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := engine.Score(MetricContextUtilization, successResult(1, tt.tokens, 0, "ok"), desc)
			require.True(t, ok)
			assert.InDelta(t, tt.want, score.Score, 0.001)
		})
	}
}

func TestContextUtilizationOmittedWithoutWindow(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	_, ok := engine.Score(MetricContextUtilization, successResult(1, 100, 100, "ok"), models.ModelDescriptor{})
	assert.False(t, ok)

	_, ok = engine.Score(MetricContextUtilization, successResult(1, 0, 0, "ok"), models.ModelDescriptor{MaxContextLength: 1000})
	assert.False(t, ok)
}

func TestUnknownMetricOmitted(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	_, ok := engine.Score("throughput", successResult(1, 10, 10, "ok"), models.ModelDescriptor{})
	assert.False(t, ok)
}

func TestSupported(t *testing.T) {
	for _, metric := range Supported() {
		assert.True(t, IsSupported(metric))
	}
	assert.False(t, IsSupported(MetricOverall), "overall is a query target, not a scorer")
	assert.False(t, IsSupported(""))
}

func TestAllScoresWithinBounds(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	desc := models.ModelDescriptor{MaxContextLength: 8192, CostPer1KTokens: 0.075}

	results := []*models.RawResult{
		successResult(0.01, 1, 1, "hi"),
		successResult(120, 9000, 9000, "word word word word word word"),
		successResult(3, 400, 600, "A full answer. It has sentences. It ends properly."),
	}

	for _, raw := range results {
		for _, metric := range Supported() {
			if score, ok := engine.Score(metric, raw, desc); ok {
				assert.GreaterOrEqual(t, score.Score, 0.0)
				assert.LessOrEqual(t, score.Score, 100.0)
			}
		}
	}
}
