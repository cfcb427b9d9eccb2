package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbench/promptbench/internal/db/memory"
	"github.com/promptbench/promptbench/internal/leaderboard"
	"github.com/promptbench/promptbench/internal/llm"
	"github.com/promptbench/promptbench/internal/metrics"
	"github.com/promptbench/promptbench/internal/models"
	"github.com/promptbench/promptbench/internal/runner"
)

type stubConnector struct {
	descriptor models.ModelDescriptor
}

func (s *stubConnector) Generate(ctx context.Context, prompt string, opts llm.Options) (*llm.GenerateResult, error) {
	return &llm.GenerateResult{
		Text:             "A complete answer. It has two sentences.",
		PromptTokens:     50,
		CompletionTokens: 100,
		LatencySeconds:   0.5,
	}, nil
}

func (s *stubConnector) Describe() models.ModelDescriptor {
	return s.descriptor
}

func (s *stubConnector) Probe(ctx context.Context) error {
	return nil
}

// memorylessConfigStore satisfies db.ConfigStore with empty results so
// handler tests need no SQLite fixture.
type memorylessConfigStore struct{}

func (memorylessConfigStore) Connect(ctx context.Context) error    { return nil }
func (memorylessConfigStore) Disconnect(ctx context.Context) error { return nil }
func (memorylessConfigStore) Ping(ctx context.Context) error       { return nil }
func (memorylessConfigStore) CreateModel(ctx context.Context, spec *models.ModelSpec) error {
	return nil
}
func (memorylessConfigStore) GetModel(ctx context.Context, id string) (*models.ModelSpec, error) {
	return nil, assert.AnError
}
func (memorylessConfigStore) ListModels(ctx context.Context, enabled *bool) ([]*models.ModelSpec, error) {
	return nil, nil
}
func (memorylessConfigStore) UpdateModel(ctx context.Context, spec *models.ModelSpec) error {
	return nil
}
func (memorylessConfigStore) DeleteModel(ctx context.Context, id string) error { return nil }
func (memorylessConfigStore) CreateSchedule(ctx context.Context, schedule *models.Schedule) error {
	return nil
}
func (memorylessConfigStore) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	return nil, assert.AnError
}
func (memorylessConfigStore) ListSchedules(ctx context.Context, enabled *bool) ([]*models.Schedule, error) {
	return nil, nil
}
func (memorylessConfigStore) UpdateSchedule(ctx context.Context, schedule *models.Schedule) error {
	return nil
}
func (memorylessConfigStore) DeleteSchedule(ctx context.Context, id string) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry := llm.NewRegistry(nil)
	registry.Add("ollama_llama3", &stubConnector{
		descriptor: models.ModelDescriptor{
			Provider:         "ollama",
			Name:             "llama3",
			MaxContextLength: 8192,
		},
	}, true)

	runStore := memory.New()
	engine := metrics.NewEngine(metrics.DefaultConfig())
	bench := runner.New(registry, engine, runner.DefaultConfig())
	board := leaderboard.New(runStore)

	return NewServer(registry, bench, board, memorylessConfigStore{}, runStore, nil, "*")
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestListModelsEndpoint(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/v1/models", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)

	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var descriptors []ModelResponse
	require.NoError(t, json.Unmarshal(data, &descriptors))
	require.Len(t, descriptors, 1)
	assert.Equal(t, "ollama_llama3", descriptors[0].ID)
	assert.True(t, descriptors[0].Connected)
}

func TestRunBenchmarkEndpoint(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/benchmarks", RunBenchmarkRequest{
		Prompts:  []string{"What is Go?"},
		ModelIDs: []string{"ollama_llama3"},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var response APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(t, response.Success)

	// The recorded run must now appear on the leaderboard.
	recorder = doJSON(t, server, http.MethodGet, "/api/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response = APIResponse{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var entries []models.LeaderboardEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "ollama_llama3", entries[0].ModelID)
}

func TestRunBenchmarkValidationError(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/benchmarks", RunBenchmarkRequest{
		Prompts:  []string{"hello"},
		ModelIDs: []string{"unknown_model"},
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response APIResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Contains(t, response.Message, "model_ids")
}

func TestLeaderboardUnknownMetric(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/v1/leaderboard?metric=throughput", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetBenchmarkNotFound(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/api/v1/benchmarks/missing", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
