package db

import (
	"context"
	"time"

	"github.com/promptbench/promptbench/internal/models"
)

// ConfigStore persists registered model specs and benchmark schedules
type ConfigStore interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Model spec operations
	CreateModel(ctx context.Context, spec *models.ModelSpec) error
	GetModel(ctx context.Context, id string) (*models.ModelSpec, error)
	ListModels(ctx context.Context, enabled *bool) ([]*models.ModelSpec, error)
	UpdateModel(ctx context.Context, spec *models.ModelSpec) error
	DeleteModel(ctx context.Context, id string) error

	// Schedule operations
	CreateSchedule(ctx context.Context, schedule *models.Schedule) error
	GetSchedule(ctx context.Context, id string) (*models.Schedule, error)
	ListSchedules(ctx context.Context, enabled *bool) ([]*models.Schedule, error)
	UpdateSchedule(ctx context.Context, schedule *models.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

// RunFilter narrows a run listing
type RunFilter struct {
	ModelID   string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
}

// RunStore persists finalized benchmark runs. Runs are append-only:
// the interface deliberately has no update or delete operations.
type RunStore interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Run operations
	CreateRun(ctx context.Context, run *models.BenchmarkRun) error
	GetRun(ctx context.Context, id string) (*models.BenchmarkRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*models.BenchmarkRun, error)
	CountRuns(ctx context.Context) (int, error)
}
