package models

import (
	"time"
)

// LeaderboardEntry is one row of a ranking query. AvgLatency and AvgCost
// populate only for the latency and cost queries respectively.
type LeaderboardEntry struct {
	ModelID    string   `json:"model_id"`
	Provider   string   `json:"provider,omitempty"`
	Score      float64  `json:"score"`
	Runs       int      `json:"runs"`
	AvgLatency *float64 `json:"avg_latency,omitempty"`
	AvgCost    *float64 `json:"avg_cost,omitempty"`
}

// LeaderboardStats summarizes the accumulated benchmark history
type LeaderboardStats struct {
	TotalModels       int               `json:"total_models"`
	TotalRuns         int               `json:"total_runs"`
	LastRun           *time.Time        `json:"last_run,omitempty"`
	TopPerformer      *LeaderboardEntry `json:"top_performer,omitempty"`
	FastestModel      *LeaderboardEntry `json:"fastest_model,omitempty"`
	MostCostEffective *LeaderboardEntry `json:"most_cost_effective,omitempty"`
}

// ModelHistoryPoint is one run's scores for a single model, used for
// per-model history queries
type ModelHistoryPoint struct {
	RunID        string             `json:"run_id"`
	Timestamp    time.Time          `json:"timestamp"`
	OverallScore *float64           `json:"overall_score,omitempty"`
	MetricScores map[string]float64 `json:"metric_scores,omitempty"`
	SuccessRate  float64            `json:"success_rate"`
}
