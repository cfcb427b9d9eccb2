// Package leaderboard answers ranking queries over the accumulated
// benchmark history. Entries are derived from stored runs, never edited.
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/promptbench/promptbench/internal/db"
	"github.com/promptbench/promptbench/internal/metrics"
	"github.com/promptbench/promptbench/internal/models"
)

// Queryable ranking targets
var rankableMetrics = map[string]bool{
	metrics.MetricOverall:            true,
	metrics.MetricLatency:            true,
	metrics.MetricCost:               true,
	metrics.MetricQuality:            true,
	metrics.MetricContextUtilization: true,
}

// Service ranks models across stored benchmark runs
type Service struct {
	store db.RunStore
}

// New creates a leaderboard service over the given run store
func New(store db.RunStore) *Service {
	return &Service{store: store}
}

// Record persists a finalized run, refreshing every ranking that
// references its models
func (s *Service) Record(ctx context.Context, run *models.BenchmarkRun) error {
	if err := s.store.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record benchmark run: %w", err)
	}
	return nil
}

// modelTotals accumulates one model's scores across runs
type modelTotals struct {
	provider     string
	scoreSum     float64
	scoreCount   int
	latencySum   float64
	latencyCount int
	costSum      float64
	costCount    int
}

// Rank returns the models ordered by their accumulated score for the
// given metric, descending. Ties break by model id ascending so the
// ordering is reproducible. Supporting averages populate only for the
// latency and cost queries.
func (s *Service) Rank(ctx context.Context, metric string) ([]models.LeaderboardEntry, error) {
	if metric == "" {
		metric = metrics.MetricOverall
	}
	if !rankableMetrics[metric] {
		return nil, models.NewValidationError("metric", "unknown metric: %s", metric)
	}

	runs, err := s.store.ListRuns(ctx, db.RunFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmark runs: %w", err)
	}

	totals := make(map[string]*modelTotals)
	for _, run := range runs {
		for modelID, aggregate := range run.Aggregates {
			t, ok := totals[modelID]
			if !ok {
				t = &modelTotals{provider: aggregate.Descriptor.Provider}
				totals[modelID] = t
			}

			if score, ok := metricScore(metric, &aggregate); ok {
				t.scoreSum += score
				t.scoreCount++
			}
			if summary, ok := aggregate.Metrics[metrics.MetricLatency]; ok && summary.AverageRaw != nil {
				t.latencySum += *summary.AverageRaw
				t.latencyCount++
			}
			if summary, ok := aggregate.Metrics[metrics.MetricCost]; ok && summary.AverageRaw != nil {
				t.costSum += *summary.AverageRaw
				t.costCount++
			}
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(totals))
	for modelID, t := range totals {
		if t.scoreCount == 0 {
			continue
		}
		entry := models.LeaderboardEntry{
			ModelID:  modelID,
			Provider: t.provider,
			Score:    t.scoreSum / float64(t.scoreCount),
			Runs:     t.scoreCount,
		}
		if metric == metrics.MetricLatency && t.latencyCount > 0 {
			avg := t.latencySum / float64(t.latencyCount)
			entry.AvgLatency = &avg
		}
		if metric == metrics.MetricCost && t.costCount > 0 {
			avg := t.costSum / float64(t.costCount)
			entry.AvgCost = &avg
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score == entries[j].Score {
			return entries[i].ModelID < entries[j].ModelID
		}
		return entries[i].Score > entries[j].Score
	})

	return entries, nil
}

// Stats summarizes the accumulated benchmark history
func (s *Service) Stats(ctx context.Context) (*models.LeaderboardStats, error) {
	runs, err := s.store.ListRuns(ctx, db.RunFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmark runs: %w", err)
	}

	stats := &models.LeaderboardStats{}
	seen := make(map[string]bool)
	for _, run := range runs {
		stats.TotalRuns++
		if stats.LastRun == nil || run.Timestamp.After(*stats.LastRun) {
			ts := run.Timestamp
			stats.LastRun = &ts
		}
		for modelID := range run.Aggregates {
			seen[modelID] = true
		}
	}
	stats.TotalModels = len(seen)

	if overall, err := s.Rank(ctx, metrics.MetricOverall); err == nil && len(overall) > 0 {
		stats.TopPerformer = &overall[0]
	}
	if latency, err := s.Rank(ctx, metrics.MetricLatency); err == nil && len(latency) > 0 {
		stats.FastestModel = &latency[0]
	}
	if cost, err := s.Rank(ctx, metrics.MetricCost); err == nil && len(cost) > 0 {
		stats.MostCostEffective = &cost[0]
	}

	return stats, nil
}

// ModelHistory returns one model's per-run scores, oldest first
func (s *Service) ModelHistory(ctx context.Context, modelID string) ([]models.ModelHistoryPoint, error) {
	runs, err := s.store.ListRuns(ctx, db.RunFilter{ModelID: modelID})
	if err != nil {
		return nil, fmt.Errorf("failed to list benchmark runs: %w", err)
	}

	var history []models.ModelHistoryPoint
	for _, run := range runs {
		aggregate, ok := run.Aggregates[modelID]
		if !ok {
			continue
		}

		point := models.ModelHistoryPoint{
			RunID:        run.ID,
			Timestamp:    run.Timestamp,
			OverallScore: aggregate.OverallScore,
			SuccessRate:  aggregate.SuccessRate,
		}
		if len(aggregate.Metrics) > 0 {
			point.MetricScores = make(map[string]float64, len(aggregate.Metrics))
			for name, summary := range aggregate.Metrics {
				point.MetricScores[name] = summary.Average
			}
		}
		history = append(history, point)
	}

	// ListRuns returns newest first; history reads oldest first.
	sort.Slice(history, func(i, j int) bool {
		if history[i].Timestamp.Equal(history[j].Timestamp) {
			return history[i].RunID < history[j].RunID
		}
		return history[i].Timestamp.Before(history[j].Timestamp)
	})

	return history, nil
}

// metricScore extracts one aggregate's contribution to a ranking query
func metricScore(metric string, aggregate *models.ModelAggregate) (float64, bool) {
	if metric == metrics.MetricOverall {
		if aggregate.OverallScore == nil {
			return 0, false
		}
		return *aggregate.OverallScore, true
	}
	summary, ok := aggregate.Metrics[metric]
	if !ok {
		return 0, false
	}
	return summary.Average, true
}
