package models

import (
	"time"
)

// RawResult is the outcome of one (model, prompt) unit of work
type RawResult struct {
	ModelID          string    `json:"model_id" bson:"model_id"`
	PromptIndex      int       `json:"prompt_index" bson:"prompt_index"`
	Success          bool      `json:"success" bson:"success"`
	Response         string    `json:"response,omitempty" bson:"response,omitempty"`
	Error            string    `json:"error,omitempty" bson:"error,omitempty"`
	ErrorKind        string    `json:"error_kind,omitempty" bson:"error_kind,omitempty"`
	LatencySeconds   float64   `json:"latency_seconds" bson:"latency_seconds"`
	PromptTokens     int       `json:"prompt_tokens,omitempty" bson:"prompt_tokens,omitempty"`
	CompletionTokens int       `json:"completion_tokens,omitempty" bson:"completion_tokens,omitempty"`
	CompletedAt      time.Time `json:"completed_at" bson:"completed_at"`
}

// TotalTokens returns prompt plus completion token usage
func (r *RawResult) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

// MetricScore is a normalized 0-100 score for one metric on one result.
// RawValue carries the underlying measurement (seconds, dollars) when the
// metric has one.
type MetricScore struct {
	Metric   string   `json:"metric" bson:"metric"`
	Score    float64  `json:"score" bson:"score"`
	RawValue *float64 `json:"raw_value,omitempty" bson:"raw_value,omitempty"`
}

// PromptResult is one raw result plus its per-metric scores. Scores is
// empty for failed results.
type PromptResult struct {
	Raw    RawResult              `json:"raw" bson:"raw"`
	Scores map[string]MetricScore `json:"scores,omitempty" bson:"scores,omitempty"`
}

// MetricSummary aggregates one metric's scores over a model's successful
// results
type MetricSummary struct {
	Average    float64  `json:"average" bson:"average"`
	Min        float64  `json:"min" bson:"min"`
	Max        float64  `json:"max" bson:"max"`
	Count      int      `json:"count" bson:"count"`
	AverageRaw *float64 `json:"average_raw,omitempty" bson:"average_raw,omitempty"`
}

// ModelAggregate folds all of one model's prompt results for a run.
// Metrics holds only metrics with at least one successful sample;
// OverallScore is nil when Metrics is empty.
type ModelAggregate struct {
	ModelID       string                   `json:"model_id" bson:"model_id"`
	Descriptor    ModelDescriptor          `json:"descriptor" bson:"descriptor"`
	PromptResults []PromptResult           `json:"prompt_results" bson:"prompt_results"`
	Metrics       map[string]MetricSummary `json:"metrics,omitempty" bson:"metrics,omitempty"`
	SuccessRate   float64                  `json:"success_rate" bson:"success_rate"`
	OverallScore  *float64                 `json:"overall_score,omitempty" bson:"overall_score,omitempty"`
	Error         string                   `json:"error,omitempty" bson:"error,omitempty"`
}

// BenchmarkRun is one complete execution of a prompt set across a model
// set. Immutable once finalized.
type BenchmarkRun struct {
	ID         string                    `json:"id" bson:"_id"`
	Timestamp  time.Time                 `json:"timestamp" bson:"timestamp"`
	Prompts    []string                  `json:"prompts" bson:"prompts"`
	ModelIDs   []string                  `json:"model_ids" bson:"model_ids"`
	Metrics    []string                  `json:"metrics" bson:"metrics"`
	Aggregates map[string]ModelAggregate `json:"aggregates" bson:"aggregates"`
}
