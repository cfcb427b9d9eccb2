package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbench/promptbench/internal/models"
)

type stubConnector struct {
	descriptor models.ModelDescriptor
	probeErr   error
}

func (s *stubConnector) Generate(ctx context.Context, prompt string, opts Options) (*GenerateResult, error) {
	return &GenerateResult{Text: "ok"}, nil
}

func (s *stubConnector) Describe() models.ModelDescriptor {
	return s.descriptor
}

func (s *stubConnector) Probe(ctx context.Context) error {
	return s.probeErr
}

func stubFactory(probeErr error) Factory {
	return func(spec *models.ModelSpec) (Connector, error) {
		return &stubConnector{
			descriptor: models.ModelDescriptor{Provider: spec.Provider, Name: spec.Name},
			probeErr:   probeErr,
		}, nil
	}
}

func TestRegisterAssignsIDAndInstalls(t *testing.T) {
	registry := NewRegistry(stubFactory(nil))

	id, err := registry.Register(context.Background(), &models.ModelSpec{
		Name:     "GPT 4",
		Provider: "openai",
		Model:    "gpt-4",
		APIKey:   "sk-test",
	})
	require.NoError(t, err)
	assert.Equal(t, "openai_gpt-4", id)

	connector, ok := registry.Get(id)
	require.True(t, ok)
	assert.Equal(t, "GPT 4", connector.Describe().Name)
}

func TestRegisterEffectiveImmediately(t *testing.T) {
	registry := NewRegistry(stubFactory(nil))

	id, err := registry.Register(context.Background(), &models.ModelSpec{
		Name:     "llama3",
		Provider: "ollama",
	})
	require.NoError(t, err)

	descriptors := registry.List()
	require.Len(t, descriptors, 1)
	assert.Equal(t, id, descriptors[0].ID)
	assert.True(t, descriptors[0].Connected)
}

func TestRegisterNameCollision(t *testing.T) {
	registry := NewRegistry(stubFactory(nil))

	spec := &models.ModelSpec{Name: "gpt-4", Provider: "openai", APIKey: "sk-test"}
	_, err := registry.Register(context.Background(), spec)
	require.NoError(t, err)

	_, err = registry.Register(context.Background(), spec)
	require.Error(t, err)

	verr, ok := models.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "name", verr.Field)
}

func TestRegisterEmptyName(t *testing.T) {
	registry := NewRegistry(stubFactory(nil))

	_, err := registry.Register(context.Background(), &models.ModelSpec{Provider: "openai"})
	require.Error(t, err)

	verr, ok := models.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "name", verr.Field)
}

func TestRegisterProbeFailureStillRegisters(t *testing.T) {
	registry := NewRegistry(stubFactory(errors.New("connection refused")))

	id, err := registry.Register(context.Background(), &models.ModelSpec{
		Name:     "unreachable",
		Provider: "ollama",
	})
	require.NoError(t, err, "connectivity is advisory, not a registration gate")

	descriptors := registry.List()
	require.Len(t, descriptors, 1)
	assert.Equal(t, id, descriptors[0].ID)
	assert.False(t, descriptors[0].Connected)
}

func TestRefreshConnectivity(t *testing.T) {
	stub := &stubConnector{probeErr: errors.New("down")}
	registry := NewRegistry(nil)
	registry.Add("m", stub, true)

	connected, err := registry.RefreshConnectivity(context.Background(), "m")
	require.NoError(t, err)
	assert.False(t, connected)

	stub.probeErr = nil
	connected, err = registry.RefreshConnectivity(context.Background(), "m")
	require.NoError(t, err)
	assert.True(t, connected)

	_, err = registry.RefreshConnectivity(context.Background(), "ghost")
	require.Error(t, err)
}

func TestListSortedByID(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Add("zeta", &stubConnector{}, true)
	registry.Add("alpha", &stubConnector{}, false)
	registry.Add("mid", &stubConnector{}, true)

	descriptors := registry.List()
	require.Len(t, descriptors, 3)
	assert.Equal(t, "alpha", descriptors[0].ID)
	assert.Equal(t, "mid", descriptors[1].ID)
	assert.Equal(t, "zeta", descriptors[2].ID)
}

func TestAssignID(t *testing.T) {
	assert.Equal(t, "openai_gpt-4", AssignID("openai", "GPT 4"))
	assert.Equal(t, "ollama_llama3", AssignID("ollama", "  llama3  "))
	assert.Equal(t, "anthropic_claude-3-opus", AssignID("anthropic", "Claude 3 Opus"))
}
