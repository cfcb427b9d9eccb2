// Package runner executes a prompt set across a set of model backends
// and folds the results into a finalized benchmark run.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/promptbench/promptbench/internal/llm"
	"github.com/promptbench/promptbench/internal/logger"
	"github.com/promptbench/promptbench/internal/metrics"
	"github.com/promptbench/promptbench/internal/models"
	"github.com/promptbench/promptbench/internal/stats"
)

// Config bounds a run's parallelism and per-call budget
type Config struct {
	MaxConcurrent      int           `yaml:"max_concurrent"`       // global in-flight unit cap
	PerModelConcurrent int           `yaml:"per_model_concurrent"` // in-flight cap per model
	RequestTimeout     time.Duration `yaml:"request_timeout"`      // per connector call
	PerModelRPS        float64       `yaml:"per_model_rps"`        // 0 disables rate limiting
}

// DefaultConfig returns the runner bounds used when no configuration
// overrides them
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:      8,
		PerModelConcurrent: 2,
		RequestTimeout:     30 * time.Second,
		PerModelRPS:        0,
	}
}

// Request is one benchmark submission
type Request struct {
	Prompts  []string `json:"prompts"`
	ModelIDs []string `json:"model_ids"`
	Metrics  []string `json:"metrics,omitempty"`
}

// Runner fans a prompt set out across model backends with bounded
// parallelism and per-unit failure isolation
type Runner struct {
	registry *llm.Registry
	engine   *metrics.Engine
	cfg      Config
}

// New creates a runner. Non-positive config bounds fall back to defaults.
func New(registry *llm.Registry, engine *metrics.Engine, cfg Config) *Runner {
	defaults := DefaultConfig()
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaults.MaxConcurrent
	}
	if cfg.PerModelConcurrent <= 0 {
		cfg.PerModelConcurrent = defaults.PerModelConcurrent
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	return &Runner{
		registry: registry,
		engine:   engine,
		cfg:      cfg,
	}
}

// unit is one independent (model, prompt) pair of work
type unit struct {
	modelID     string
	promptIndex int
	prompt      string
}

// unitOutcome is the message a settled unit sends to the collector
type unitOutcome struct {
	modelID     string
	promptIndex int
	result      models.PromptResult
}

// Run executes the full (model x prompt) matrix and returns the
// finalized run. Validation failures reject the request before any unit
// is dispatched; per-unit connector failures are recorded as failed
// results and never abort sibling units. The run is finalized only after
// every unit has settled.
func (r *Runner) Run(ctx context.Context, req Request) (*models.BenchmarkRun, error) {
	connectors, requestedMetrics, err := r.validate(req)
	if err != nil {
		return nil, err
	}

	units := make([]unit, 0, len(req.ModelIDs)*len(req.Prompts))
	for _, modelID := range req.ModelIDs {
		for i, prompt := range req.Prompts {
			units = append(units, unit{modelID: modelID, promptIndex: i, prompt: prompt})
		}
	}

	logger.Info("Starting benchmark run: %d models x %d prompts = %d units",
		len(req.ModelIDs), len(req.Prompts), len(units))

	outcomes := r.dispatch(ctx, units, connectors, requestedMetrics)

	// The result buffer is written only here, from collector messages.
	buffer := make(map[string][]models.PromptResult, len(req.ModelIDs))
	for _, modelID := range req.ModelIDs {
		buffer[modelID] = make([]models.PromptResult, len(req.Prompts))
	}
	for outcome := range outcomes {
		buffer[outcome.modelID][outcome.promptIndex] = outcome.result
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("benchmark run cancelled: %w", ctx.Err())
	}

	run := &models.BenchmarkRun{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		Prompts:    req.Prompts,
		ModelIDs:   req.ModelIDs,
		Metrics:    requestedMetrics,
		Aggregates: make(map[string]models.ModelAggregate, len(req.ModelIDs)),
	}

	for _, modelID := range req.ModelIDs {
		run.Aggregates[modelID] = r.aggregateModel(modelID, connectors[modelID], buffer[modelID], requestedMetrics)
	}

	logger.Info("Benchmark run %s finalized", run.ID)
	return run, nil
}

// validate rejects malformed requests before any dispatch
func (r *Runner) validate(req Request) (map[string]llm.Connector, []string, error) {
	if len(req.Prompts) == 0 {
		return nil, nil, models.NewValidationError("prompts", "at least one prompt is required")
	}
	for i, prompt := range req.Prompts {
		if prompt == "" {
			return nil, nil, models.NewValidationError("prompts", "prompt at index %d is empty", i)
		}
	}

	if len(req.ModelIDs) == 0 {
		return nil, nil, models.NewValidationError("model_ids", "at least one model id is required")
	}
	connectors := make(map[string]llm.Connector, len(req.ModelIDs))
	for _, modelID := range req.ModelIDs {
		if _, dup := connectors[modelID]; dup {
			return nil, nil, models.NewValidationError("model_ids", "duplicate model id: %s", modelID)
		}
		connector, ok := r.registry.Get(modelID)
		if !ok {
			return nil, nil, models.NewValidationError("model_ids", "unknown model id: %s", modelID)
		}
		connectors[modelID] = connector
	}

	requestedMetrics := req.Metrics
	if len(requestedMetrics) == 0 {
		requestedMetrics = metrics.Supported()
	}
	seen := make(map[string]bool, len(requestedMetrics))
	for _, metric := range requestedMetrics {
		if !metrics.IsSupported(metric) {
			return nil, nil, models.NewValidationError("metrics", "unknown metric: %s", metric)
		}
		if seen[metric] {
			return nil, nil, models.NewValidationError("metrics", "duplicate metric: %s", metric)
		}
		seen[metric] = true
	}

	return connectors, requestedMetrics, nil
}

// dispatch runs every unit under the global and per-model in-flight caps
// and returns the channel the collector drains. The channel closes once
// every unit has settled.
func (r *Runner) dispatch(ctx context.Context, units []unit, connectors map[string]llm.Connector, requestedMetrics []string) <-chan unitOutcome {
	outcomes := make(chan unitOutcome, len(units))

	globalSem := make(chan struct{}, r.cfg.MaxConcurrent)
	modelSems := make(map[string]chan struct{}, len(connectors))
	limiters := make(map[string]*rate.Limiter, len(connectors))
	for modelID := range connectors {
		modelSems[modelID] = make(chan struct{}, r.cfg.PerModelConcurrent)
		if r.cfg.PerModelRPS > 0 {
			limiters[modelID] = rate.NewLimiter(rate.Limit(r.cfg.PerModelRPS), 1)
		}
	}

	var wg sync.WaitGroup
	for _, u := range units {
		wg.Add(1)
		go func(u unit) {
			defer wg.Done()
			outcomes <- unitOutcome{
				modelID:     u.modelID,
				promptIndex: u.promptIndex,
				result:      r.runUnit(ctx, u, connectors[u.modelID], modelSems[u.modelID], globalSem, limiters[u.modelID], requestedMetrics),
			}
		}(u)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	return outcomes
}

// runUnit executes one (model, prompt) pair under the concurrency caps
// and per-call timeout. Every failure mode yields a failed result; it
// never propagates an error to siblings.
func (r *Runner) runUnit(ctx context.Context, u unit, connector llm.Connector, modelSem, globalSem chan struct{}, limiter *rate.Limiter, requestedMetrics []string) models.PromptResult {
	start := time.Now()

	select {
	case globalSem <- struct{}{}:
		defer func() { <-globalSem }()
	case <-ctx.Done():
		return failedResult(u, start, ctx.Err())
	}

	select {
	case modelSem <- struct{}{}:
		defer func() { <-modelSem }()
	case <-ctx.Done():
		return failedResult(u, start, ctx.Err())
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return failedResult(u, start, err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	callStart := time.Now()
	generated, err := connector.Generate(callCtx, u.prompt, llm.DefaultOptions())
	if err != nil {
		logger.Debug("Unit failed: model=%s prompt=%d kind=%s: %v", u.modelID, u.promptIndex, llm.KindOf(err), err)
		return failedResult(u, callStart, err)
	}

	raw := models.RawResult{
		ModelID:          u.modelID,
		PromptIndex:      u.promptIndex,
		Success:          true,
		Response:         generated.Text,
		LatencySeconds:   generated.LatencySeconds,
		PromptTokens:     generated.PromptTokens,
		CompletionTokens: generated.CompletionTokens,
		CompletedAt:      time.Now().UTC(),
	}

	return models.PromptResult{
		Raw:    raw,
		Scores: r.scoreResult(&raw, connector.Describe(), requestedMetrics),
	}
}

// scoreResult computes the requested metrics for one successful result.
// Metrics the telemetry cannot support are omitted, never zero-filled.
func (r *Runner) scoreResult(raw *models.RawResult, desc models.ModelDescriptor, requestedMetrics []string) map[string]models.MetricScore {
	scores := make(map[string]models.MetricScore, len(requestedMetrics))
	for _, metric := range requestedMetrics {
		if score, ok := r.engine.Score(metric, raw, desc); ok {
			scores[metric] = score
		}
	}
	return scores
}

// aggregateModel folds one model's results, isolating aggregation faults
// so one model's failure cannot corrupt sibling aggregates.
func (r *Runner) aggregateModel(modelID string, connector llm.Connector, results []models.PromptResult, requestedMetrics []string) (aggregate models.ModelAggregate) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Aggregation failed for model %s: %v", modelID, rec)
			aggregate = models.ModelAggregate{
				ModelID:       modelID,
				PromptResults: results,
				Error:         fmt.Sprintf("aggregation failed: %v", rec),
			}
		}
	}()

	return stats.Aggregate(modelID, connector.Describe(), results, requestedMetrics)
}

func failedResult(u unit, start time.Time, err error) models.PromptResult {
	return models.PromptResult{
		Raw: models.RawResult{
			ModelID:        u.modelID,
			PromptIndex:    u.promptIndex,
			Success:        false,
			Error:          err.Error(),
			ErrorKind:      string(llm.KindOf(err)),
			LatencySeconds: time.Since(start).Seconds(),
			CompletedAt:    time.Now().UTC(),
		},
	}
}
