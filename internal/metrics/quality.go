package metrics

import (
	"strings"

	"github.com/promptbench/promptbench/internal/models"
)

// QualityWeights exposes the signed adjustments of the quality heuristic
// as configuration so the heuristic stays testable and tunable.
type QualityWeights struct {
	Base              float64 `yaml:"base"`
	LengthInBand      float64 `yaml:"length_in_band"`
	LengthNearBand    float64 `yaml:"length_near_band"`
	EmptyPenalty      float64 `yaml:"empty_penalty"`
	RefusalPenalty    float64 `yaml:"refusal_penalty"`
	RepetitionPenalty float64 `yaml:"repetition_penalty"`
	CoherenceBonus    float64 `yaml:"coherence_bonus"`
	CompletionBonus   float64 `yaml:"completion_bonus"`
}

// DefaultQualityWeights returns the default heuristic weights
func DefaultQualityWeights() QualityWeights {
	return QualityWeights{
		Base:              50,
		LengthInBand:      20,
		LengthNearBand:    10,
		EmptyPenalty:      50,
		RefusalPenalty:    10,
		RepetitionPenalty: 10,
		CoherenceBonus:    10,
		CompletionBonus:   10,
	}
}

// qualityScore is a composite heuristic over the response text: a base
// score adjusted for length appropriateness, emptiness, refusal and
// repetition markers, and simple structural coherence signals.
func (e *Engine) qualityScore(raw *models.RawResult) models.MetricScore {
	w := e.cfg.Quality
	response := strings.TrimSpace(raw.Response)

	if response == "" {
		return models.MetricScore{
			Metric: MetricQuality,
			Score:  clamp(w.Base - w.EmptyPenalty),
		}
	}

	score := w.Base

	// Length appropriateness: not too short, not excessively long.
	length := len(strings.Fields(response))
	switch {
	case length >= 10 && length <= 500:
		score += w.LengthInBand
	case (length >= 5 && length < 10) || (length > 500 && length <= 1000):
		score += w.LengthNearBand
	}

	// Ellipses mark truncation, not sentence boundaries; drop them
	// before counting so "..." earns neither bonus.
	sentences := strings.NewReplacer("...", "", "…", "").Replace(response)

	// Structural coherence: more than one sentence.
	if strings.Count(sentences, ".")+strings.Count(sentences, "!")+strings.Count(sentences, "?") > 1 {
		score += w.CoherenceBonus
	}

	// Ends on a sentence boundary.
	if strings.HasSuffix(sentences, ".") || strings.HasSuffix(sentences, "!") || strings.HasSuffix(sentences, "?") {
		score += w.CompletionBonus
	}

	if containsRefusal(response) {
		score -= w.RefusalPenalty
	}

	if looksTruncatedOrRepetitive(response) {
		score -= w.RepetitionPenalty
	}

	return models.MetricScore{
		Metric: MetricQuality,
		Score:  clamp(score),
	}
}

func containsRefusal(response string) bool {
	return strings.Contains(response, "I apologize") || strings.Contains(response, "I cannot")
}

// looksTruncatedOrRepetitive flags mid-word cutoffs and degenerate
// word-loop output
func looksTruncatedOrRepetitive(response string) bool {
	if strings.HasSuffix(response, "...") || strings.HasSuffix(response, "…") {
		return true
	}

	words := strings.Fields(strings.ToLower(response))
	repeats := 1
	for i := 1; i < len(words); i++ {
		if words[i] == words[i-1] {
			repeats++
			if repeats >= 3 {
				return true
			}
		} else {
			repeats = 1
		}
	}
	return false
}
