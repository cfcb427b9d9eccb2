package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbench/promptbench/internal/models"
)

func TestNewBuildsEveryProvider(t *testing.T) {
	specs := []*models.ModelSpec{
		{Provider: "openai", Model: "gpt-4", APIKey: "sk-test"},
		{Provider: "anthropic", Model: "claude-3-opus-20240229", APIKey: "sk-ant-test"},
		{Provider: "ollama", Model: "llama3"},
		{Provider: "google", Model: "gemini-1.5-pro", APIKey: "AIza-test"},
	}

	for _, spec := range specs {
		t.Run(spec.Provider, func(t *testing.T) {
			connector, err := New(spec)
			require.NoError(t, err)
			assert.Equal(t, spec.Provider, connector.Describe().Provider)
		})
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(&models.ModelSpec{Provider: "perplexity", APIKey: "key"})
	require.Error(t, err)

	verr, ok := models.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "provider", verr.Field)
}

func TestNewRejectsMalformedCredentials(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
	}{
		{"missing", ""},
		{"blank", "   "},
		{"embedded whitespace", "sk-te st"},
		{"embedded newline", "sk-test\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&models.ModelSpec{Provider: "openai", Model: "gpt-4", APIKey: tt.apiKey})
			require.Error(t, err)

			verr, ok := models.IsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, "api_key", verr.Field)
		})
	}
}

func TestNewRejectsMalformedEndpoint(t *testing.T) {
	_, err := New(&models.ModelSpec{Provider: "ollama", Model: "llama3", BaseURL: "localhost:11434"})
	require.Error(t, err)

	verr, ok := models.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "endpoint", verr.Field)

	_, err = New(&models.ModelSpec{Provider: "ollama", Model: "llama3", BaseURL: "http://localhost:11434"})
	assert.NoError(t, err)
}
