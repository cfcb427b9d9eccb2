// Package memory provides an in-process RunStore used for tests and for
// running without a document database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/promptbench/promptbench/internal/db"
	"github.com/promptbench/promptbench/internal/models"
)

// Memory implements the db.RunStore interface in process memory
type Memory struct {
	mu   sync.RWMutex
	runs map[string]*models.BenchmarkRun
}

// New creates an empty in-memory run store
func New() *Memory {
	return &Memory{
		runs: make(map[string]*models.BenchmarkRun),
	}
}

// Connect is a no-op for the in-memory store
func (m *Memory) Connect(ctx context.Context) error { return nil }

// Disconnect is a no-op for the in-memory store
func (m *Memory) Disconnect(ctx context.Context) error { return nil }

// Ping is a no-op for the in-memory store
func (m *Memory) Ping(ctx context.Context) error { return nil }

// CreateRun stores a finalized benchmark run
func (m *Memory) CreateRun(ctx context.Context, run *models.BenchmarkRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("benchmark run already exists: %s", run.ID)
	}
	m.runs[run.ID] = run
	return nil
}

// GetRun retrieves a benchmark run by ID
func (m *Memory) GetRun(ctx context.Context, id string) (*models.BenchmarkRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("benchmark run not found: %s", id)
	}
	return run, nil
}

// ListRuns lists benchmark runs matching the filter, newest first
func (m *Memory) ListRuns(ctx context.Context, filter db.RunFilter) ([]*models.BenchmarkRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var runs []*models.BenchmarkRun
	for _, run := range m.runs {
		if filter.ModelID != "" && !containsModel(run, filter.ModelID) {
			continue
		}
		if filter.StartTime != nil && run.Timestamp.Before(*filter.StartTime) {
			continue
		}
		if filter.EndTime != nil && run.Timestamp.After(*filter.EndTime) {
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	if filter.Limit > 0 && len(runs) > filter.Limit {
		runs = runs[:filter.Limit]
	}
	return runs, nil
}

// CountRuns returns the total number of stored runs
func (m *Memory) CountRuns(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs), nil
}

func containsModel(run *models.BenchmarkRun, modelID string) bool {
	for _, id := range run.ModelIDs {
		if id == modelID {
			return true
		}
	}
	return false
}
