// Package stats folds per-prompt benchmark results into per-model
// aggregates.
package stats

import (
	"github.com/promptbench/promptbench/internal/models"
)

// Aggregate computes one model's statistics over its ordered prompt
// results. Metric summaries cover successful results only; a metric with
// zero successful samples is left out of the metric map entirely. The
// overall score is the mean of the present metric averages and is nil
// when no metric has a sample.
func Aggregate(modelID string, desc models.ModelDescriptor, results []models.PromptResult, requestedMetrics []string) models.ModelAggregate {
	aggregate := models.ModelAggregate{
		ModelID:       modelID,
		Descriptor:    desc,
		PromptResults: results,
		Metrics:       make(map[string]models.MetricSummary),
	}

	successes := 0
	for i := range results {
		if results[i].Raw.Success {
			successes++
		}
	}
	if len(results) > 0 {
		aggregate.SuccessRate = float64(successes) / float64(len(results))
	}

	for _, metric := range requestedMetrics {
		if summary, ok := summarize(metric, results); ok {
			aggregate.Metrics[metric] = summary
		}
	}

	if len(aggregate.Metrics) > 0 {
		total := 0.0
		for _, summary := range aggregate.Metrics {
			total += summary.Average
		}
		overall := total / float64(len(aggregate.Metrics))
		aggregate.OverallScore = &overall
	}

	return aggregate
}

func summarize(metric string, results []models.PromptResult) (models.MetricSummary, bool) {
	var scores []float64
	var rawValues []float64

	for i := range results {
		if !results[i].Raw.Success {
			continue
		}
		score, ok := results[i].Scores[metric]
		if !ok {
			continue
		}
		scores = append(scores, score.Score)
		if score.RawValue != nil {
			rawValues = append(rawValues, *score.RawValue)
		}
	}

	if len(scores) == 0 {
		return models.MetricSummary{}, false
	}

	summary := models.MetricSummary{
		Average: mean(scores),
		Min:     scores[0],
		Max:     scores[0],
		Count:   len(scores),
	}
	for _, s := range scores[1:] {
		if s < summary.Min {
			summary.Min = s
		}
		if s > summary.Max {
			summary.Max = s
		}
	}

	if len(rawValues) > 0 {
		avgRaw := mean(rawValues)
		summary.AverageRaw = &avgRaw
	}

	return summary, true
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
