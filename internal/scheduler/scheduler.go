package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/promptbench/promptbench/internal/db"
	"github.com/promptbench/promptbench/internal/logger"
	"github.com/promptbench/promptbench/internal/models"
	"github.com/promptbench/promptbench/internal/runner"
)

// Scheduler executes benchmark schedules on their cron expressions
type Scheduler struct {
	configStore db.ConfigStore
	runStore    db.RunStore
	runner      *runner.Runner
	cron        *cron.Cron
	running     bool
	mu          sync.RWMutex
}

// New creates a new scheduler
func New(configStore db.ConfigStore, runStore db.RunStore, bench *runner.Runner) *Scheduler {
	return &Scheduler{
		configStore: configStore,
		runStore:    runStore,
		runner:      bench,
		cron:        cron.New(),
	}
}

// Start loads enabled schedules and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	schedules, err := s.configStore.ListSchedules(ctx, boolPtr(true))
	if err != nil {
		return fmt.Errorf("failed to load schedules: %w", err)
	}

	for _, schedule := range schedules {
		if err := s.registerSchedule(schedule); err != nil {
			logger.Error("Failed to register schedule %s: %v", schedule.ID, err)
		}
	}

	s.cron.Start()
	s.running = true

	logger.Info("Scheduler started with %d schedules", len(schedules))
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cron.Stop()
	s.running = false

	logger.Info("Scheduler stopped")
}

// Reload restarts the scheduler so edited schedules take effect
func (s *Scheduler) Reload(ctx context.Context) error {
	s.Stop()
	s.mu.Lock()
	s.cron = cron.New()
	s.mu.Unlock()
	return s.Start(ctx)
}

// registerSchedule adds a schedule to the cron loop
func (s *Scheduler) registerSchedule(schedule *models.Schedule) error {
	scheduleID := schedule.ID
	_, err := s.cron.AddFunc(schedule.CronExpr, func() {
		if err := s.ExecuteNow(context.Background(), scheduleID); err != nil {
			logger.Error("Failed to execute schedule %s: %v", scheduleID, err)
		}
	})

	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	logger.Info("Registered schedule %s with cron expression: %s", schedule.ID, schedule.CronExpr)
	return nil
}

// ExecuteNow runs a schedule's benchmark immediately and records the run.
// The schedule is re-read from the store so edits made after registration
// are picked up.
func (s *Scheduler) ExecuteNow(ctx context.Context, scheduleID string) error {
	schedule, err := s.configStore.GetSchedule(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to get schedule: %w", err)
	}

	logger.Info("Executing schedule %s: %d prompts across %d models", schedule.ID, len(schedule.Prompts), len(schedule.ModelIDs))

	start := time.Now()
	run, err := s.runner.Run(ctx, runner.Request{
		Prompts:  schedule.Prompts,
		ModelIDs: schedule.ModelIDs,
		Metrics:  schedule.Metrics,
	})
	if err != nil {
		return fmt.Errorf("benchmark failed for schedule %s: %w", schedule.ID, err)
	}

	logger.Info("Schedule %s completed in %v (run %s)", schedule.ID, time.Since(start).Round(time.Millisecond), run.ID)

	if err := s.runStore.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run for schedule %s: %w", schedule.ID, err)
	}

	now := time.Now().UTC()
	schedule.LastRun = &now
	if err := s.configStore.UpdateSchedule(ctx, schedule); err != nil {
		logger.Error("Failed to update schedule last run: %v", err)
	}

	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
