// Package metrics converts raw benchmark telemetry into normalized 0-100
// scores. Every scorer is pure: no I/O, no shared state, and a score is
// always within [0,100] or omitted entirely when the telemetry it needs
// is missing.
package metrics

import (
	"github.com/promptbench/promptbench/internal/models"
)

// Supported metric names
const (
	MetricLatency            = "latency"
	MetricCost               = "cost"
	MetricQuality            = "quality"
	MetricContextUtilization = "context_utilization"

	// MetricOverall is a leaderboard query target, not a per-result scorer.
	MetricOverall = "overall"
)

// Supported returns the metric names a benchmark request may ask for
func Supported() []string {
	return []string{MetricLatency, MetricCost, MetricQuality, MetricContextUtilization}
}

// IsSupported reports whether name is a requestable metric
func IsSupported(name string) bool {
	switch name {
	case MetricLatency, MetricCost, MetricQuality, MetricContextUtilization:
		return true
	}
	return false
}

// Config holds the tunable thresholds of the scoring functions
type Config struct {
	// CostCeiling is the per-response dollar cost that scores 0.
	CostCeiling float64        `yaml:"cost_ceiling"`
	Quality     QualityWeights `yaml:"quality"`
}

// DefaultConfig returns the scoring thresholds used when no configuration
// overrides them
func DefaultConfig() Config {
	return Config{
		CostCeiling: 0.1,
		Quality:     DefaultQualityWeights(),
	}
}

// Engine scores raw results against its configured thresholds
type Engine struct {
	cfg Config
}

// NewEngine creates a scoring engine. Non-positive thresholds fall back
// to defaults so misconfiguration can never produce unbounded scores.
func NewEngine(cfg Config) *Engine {
	if cfg.CostCeiling <= 0 {
		cfg.CostCeiling = DefaultConfig().CostCeiling
	}
	if cfg.Quality.Base <= 0 {
		cfg.Quality = DefaultQualityWeights()
	}
	return &Engine{cfg: cfg}
}

// Score computes one metric for one successful raw result. The second
// return is false when the metric cannot be computed from the available
// telemetry, in which case the score is omitted rather than zero-filled.
func (e *Engine) Score(metric string, raw *models.RawResult, desc models.ModelDescriptor) (models.MetricScore, bool) {
	switch metric {
	case MetricLatency:
		return e.latencyScore(raw), true
	case MetricCost:
		return e.costScore(raw, desc)
	case MetricQuality:
		return e.qualityScore(raw), true
	case MetricContextUtilization:
		return e.contextUtilizationScore(raw, desc)
	}
	return models.MetricScore{}, false
}

// latencyScore maps wall-clock latency onto [0,100]: 100 at one second or
// less, 0 at ten seconds or more, linear in between.
func (e *Engine) latencyScore(raw *models.RawResult) models.MetricScore {
	latency := raw.LatencySeconds
	score := clamp(100 - 100*(latency-1)/9)
	return models.MetricScore{
		Metric:   MetricLatency,
		Score:    score,
		RawValue: float64Ptr(latency),
	}
}

// costScore maps the response's dollar cost onto [0,100] against the
// configured ceiling. Omitted when token usage was not reported.
func (e *Engine) costScore(raw *models.RawResult, desc models.ModelDescriptor) (models.MetricScore, bool) {
	if raw.TotalTokens() <= 0 {
		return models.MetricScore{}, false
	}

	actualCost := float64(raw.TotalTokens()) / 1000 * desc.CostPer1KTokens
	score := clamp(100 * (1 - actualCost/e.cfg.CostCeiling))
	return models.MetricScore{
		Metric:   MetricCost,
		Score:    score,
		RawValue: float64Ptr(actualCost),
	}, true
}

// contextUtilizationScore rewards responses that use between 20% and 80%
// of the model's context window and penalizes both under- and
// over-utilization. A ratio at or past the window always scores 0.
func (e *Engine) contextUtilizationScore(raw *models.RawResult, desc models.ModelDescriptor) (models.MetricScore, bool) {
	if desc.MaxContextLength <= 0 || raw.TotalTokens() <= 0 {
		return models.MetricScore{}, false
	}

	ratio := float64(raw.TotalTokens()) / float64(desc.MaxContextLength)

	var score float64
	switch {
	case ratio >= 1:
		score = 0
	case ratio >= 0.2 && ratio <= 0.8:
		score = 100
	case ratio < 0.2:
		score = clamp(100 * ratio / 0.2)
	default:
		score = clamp(100 * (1 - ratio) / 0.2)
	}

	return models.MetricScore{
		Metric: MetricContextUtilization,
		Score:  score,
	}, true
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func float64Ptr(f float64) *float64 {
	return &f
}
