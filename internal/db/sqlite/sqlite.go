package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/promptbench/promptbench/internal/models"
)

// SQLite implements the db.ConfigStore interface for SQLite
type SQLite struct {
	db     *sql.DB
	config *models.Config
}

// New creates a new SQLite store instance
func New(config *models.Config) (*SQLite, error) {
	return &SQLite{
		config: config,
	}, nil
}

// Connect establishes connection to SQLite
func (s *SQLite) Connect(ctx context.Context) error {
	// Expand the URI path (handle ~ and relative paths)
	dbPath := s.config.URI
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	} else if !filepath.IsAbs(dbPath) {
		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		dbPath = absPath
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database at path '%s': %w", dbPath, err)
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping SQLite database at path '%s': %w", dbPath, err)
	}

	s.db = db

	if err := s.createTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// Disconnect closes the SQLite connection
func (s *SQLite) Disconnect(ctx context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for migrations
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// createTables creates necessary tables
func (s *SQLite) createTables(ctx context.Context) error {
	createModelsTable := `
	CREATE TABLE IF NOT EXISTS model_specs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		api_key TEXT,
		base_url TEXT,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	createSchedulesTable := `
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		prompts TEXT NOT NULL,   -- JSON array of prompt strings
		model_ids TEXT NOT NULL, -- JSON array of model IDs
		metrics TEXT NOT NULL,   -- JSON array of metric names
		cron_expr TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT 1,
		last_run DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	for _, query := range []string{createModelsTable, createSchedulesTable} {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// CreateModel stores a new registered model spec
func (s *SQLite) CreateModel(ctx context.Context, spec *models.ModelSpec) error {
	now := time.Now()
	if spec.CreatedAt.IsZero() {
		spec.CreatedAt = now
	}
	spec.UpdatedAt = now

	query := `INSERT INTO model_specs (id, name, provider, model, api_key, base_url, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		spec.ID, spec.Name, spec.Provider, spec.Model, spec.APIKey, spec.BaseURL,
		spec.Enabled, spec.CreatedAt, spec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create model spec: %w", err)
	}
	return nil
}

// GetModel retrieves a model spec by ID
func (s *SQLite) GetModel(ctx context.Context, id string) (*models.ModelSpec, error) {
	query := `SELECT id, name, provider, model, api_key, base_url, enabled, created_at, updated_at
		FROM model_specs WHERE id = ?`

	spec := &models.ModelSpec{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&spec.ID, &spec.Name, &spec.Provider, &spec.Model, &spec.APIKey, &spec.BaseURL,
		&spec.Enabled, &spec.CreatedAt, &spec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("model spec not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model spec: %w", err)
	}
	return spec, nil
}

// ListModels lists model specs, optionally filtered by enabled state
func (s *SQLite) ListModels(ctx context.Context, enabled *bool) ([]*models.ModelSpec, error) {
	query := `SELECT id, name, provider, model, api_key, base_url, enabled, created_at, updated_at
		FROM model_specs`
	args := []interface{}{}
	if enabled != nil {
		query += ` WHERE enabled = ?`
		args = append(args, *enabled)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list model specs: %w", err)
	}
	defer rows.Close()

	var specs []*models.ModelSpec
	for rows.Next() {
		spec := &models.ModelSpec{}
		if err := rows.Scan(&spec.ID, &spec.Name, &spec.Provider, &spec.Model, &spec.APIKey,
			&spec.BaseURL, &spec.Enabled, &spec.CreatedAt, &spec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan model spec: %w", err)
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

// UpdateModel updates an existing model spec
func (s *SQLite) UpdateModel(ctx context.Context, spec *models.ModelSpec) error {
	spec.UpdatedAt = time.Now()

	query := `UPDATE model_specs SET name = ?, provider = ?, model = ?, api_key = ?, base_url = ?,
		enabled = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		spec.Name, spec.Provider, spec.Model, spec.APIKey, spec.BaseURL,
		spec.Enabled, spec.UpdatedAt, spec.ID)
	if err != nil {
		return fmt.Errorf("failed to update model spec: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("model spec not found: %s", spec.ID)
	}
	return nil
}

// DeleteModel removes a model spec
func (s *SQLite) DeleteModel(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM model_specs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete model spec: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("model spec not found: %s", id)
	}
	return nil
}

// CreateSchedule stores a new schedule
func (s *SQLite) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	now := time.Now()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	prompts, err := json.Marshal(schedule.Prompts)
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}
	modelIDs, err := json.Marshal(schedule.ModelIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal model ids: %w", err)
	}
	metricNames, err := json.Marshal(schedule.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	query := `INSERT INTO schedules (id, name, prompts, model_ids, metrics, cron_expr, enabled, last_run, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		schedule.ID, schedule.Name, string(prompts), string(modelIDs), string(metricNames),
		schedule.CronExpr, schedule.Enabled, schedule.LastRun, schedule.CreatedAt, schedule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// GetSchedule retrieves a schedule by ID
func (s *SQLite) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	query := `SELECT id, name, prompts, model_ids, metrics, cron_expr, enabled, last_run, created_at, updated_at
		FROM schedules WHERE id = ?`

	schedule, err := scanSchedule(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("schedule not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return schedule, nil
}

// ListSchedules lists schedules, optionally filtered by enabled state
func (s *SQLite) ListSchedules(ctx context.Context, enabled *bool) ([]*models.Schedule, error) {
	query := `SELECT id, name, prompts, model_ids, metrics, cron_expr, enabled, last_run, created_at, updated_at
		FROM schedules`
	args := []interface{}{}
	if enabled != nil {
		query += ` WHERE enabled = ?`
		args = append(args, *enabled)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

// UpdateSchedule updates an existing schedule
func (s *SQLite) UpdateSchedule(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now()

	prompts, err := json.Marshal(schedule.Prompts)
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}
	modelIDs, err := json.Marshal(schedule.ModelIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal model ids: %w", err)
	}
	metricNames, err := json.Marshal(schedule.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	query := `UPDATE schedules SET name = ?, prompts = ?, model_ids = ?, metrics = ?, cron_expr = ?,
		enabled = ?, last_run = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		schedule.Name, string(prompts), string(modelIDs), string(metricNames), schedule.CronExpr,
		schedule.Enabled, schedule.LastRun, schedule.UpdatedAt, schedule.ID)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("schedule not found: %s", schedule.ID)
	}
	return nil
}

// DeleteSchedule removes a schedule
func (s *SQLite) DeleteSchedule(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("schedule not found: %s", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	schedule := &models.Schedule{}
	var prompts, modelIDs, metricNames string
	var lastRun sql.NullTime

	err := row.Scan(&schedule.ID, &schedule.Name, &prompts, &modelIDs, &metricNames,
		&schedule.CronExpr, &schedule.Enabled, &lastRun, &schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(prompts), &schedule.Prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	if err := json.Unmarshal([]byte(modelIDs), &schedule.ModelIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model ids: %w", err)
	}
	if err := json.Unmarshal([]byte(metricNames), &schedule.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	if lastRun.Valid {
		schedule.LastRun = &lastRun.Time
	}

	return schedule, nil
}
