package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbench/promptbench/internal/models"
)

func qualityOf(t *testing.T, engine *Engine, response string) float64 {
	t.Helper()
	score, ok := engine.Score(MetricQuality, successResult(1, 10, 10, response), models.ModelDescriptor{})
	require.True(t, ok)
	return score.Score
}

func TestQualityEmptyResponse(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	assert.Equal(t, 0.0, qualityOf(t, engine, ""))
	assert.Equal(t, 0.0, qualityOf(t, engine, "   \n\t  "))
}

func TestQualityWellFormedResponse(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// In-band length, multiple sentences, ends on a boundary:
	// 50 + 20 + 10 + 10 = 90.
	response := "The capital of France is Paris. It has been the capital since the tenth century. " +
		"Paris is also the country's largest city."
	assert.Equal(t, 90.0, qualityOf(t, engine, response))
}

func TestQualityShortResponse(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// Six words: near-band bonus only, one sentence, ends on a boundary.
	// 50 + 10 + 10 = 70.
	assert.Equal(t, 70.0, qualityOf(t, engine, "Paris is the capital of France."))
}

func TestQualityRefusalPenalty(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	with := qualityOf(t, engine, "I cannot help with that request. Please ask something else. Thanks for understanding.")
	without := qualityOf(t, engine, "I will help with that request. Please see the answer below. Thanks for reading.")
	assert.Equal(t, without-DefaultQualityWeights().RefusalPenalty, with)
}

func TestQualityTruncationPenalty(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	truncated := qualityOf(t, engine, "The answer is quite long and it keeps going until it stops abruptly...")
	clean := qualityOf(t, engine, "The answer is quite long and it keeps going until it finishes cleanly.")

	assert.Less(t, truncated, clean)

	// A trailing ellipsis is not a sentence boundary: no coherence or
	// completion bonus, plus the truncation penalty.
	w := DefaultQualityWeights()
	assert.Equal(t, w.Base+w.LengthInBand-w.RepetitionPenalty, truncated)
	assert.Equal(t, w.Base+w.LengthInBand+w.CompletionBonus, clean)
}

func TestQualityRepetitionPenalty(t *testing.T) {
	assert.True(t, looksTruncatedOrRepetitive("the cat cat cat sat"))
	assert.False(t, looksTruncatedOrRepetitive("the cat sat on the mat"))
}

func TestQualityClampedToBounds(t *testing.T) {
	weights := DefaultQualityWeights()
	weights.EmptyPenalty = 500
	engine := NewEngine(Config{CostCeiling: 0.1, Quality: weights})

	assert.Equal(t, 0.0, qualityOf(t, engine, ""))

	weights = DefaultQualityWeights()
	weights.LengthInBand = 500
	engine = NewEngine(Config{CostCeiling: 0.1, Quality: weights})

	long := strings.Repeat("word ", 20) + "end."
	assert.Equal(t, 100.0, qualityOf(t, engine, long))
}

func TestQualityCustomWeights(t *testing.T) {
	weights := QualityWeights{Base: 40, LengthInBand: 5}
	engine := NewEngine(Config{CostCeiling: 0.1, Quality: weights})

	// Twelve words in band, no other bonuses configured.
	response := strings.Repeat("alpha beta gamma delta ", 3)
	assert.Equal(t, 45.0, qualityOf(t, engine, strings.TrimSpace(response)))
}
