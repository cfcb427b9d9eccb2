// Package factory builds connectors from registered model specs. It lives
// apart from the llm package so the registry does not import the provider
// implementations.
package factory

import (
	"strings"

	"github.com/promptbench/promptbench/internal/llm"
	"github.com/promptbench/promptbench/internal/llm/anthropic"
	"github.com/promptbench/promptbench/internal/llm/google"
	"github.com/promptbench/promptbench/internal/llm/ollama"
	"github.com/promptbench/promptbench/internal/llm/openai"
	"github.com/promptbench/promptbench/internal/models"
)

// Providers lists the supported provider names
var Providers = []string{"openai", "anthropic", "ollama", "google"}

// New builds a connector for spec.Provider. Malformed specs yield a
// *models.ValidationError.
func New(spec *models.ModelSpec) (llm.Connector, error) {
	switch spec.Provider {
	case "openai":
		if err := validateCredential(spec.APIKey); err != nil {
			return nil, err
		}
		return openai.New(spec.Model, spec.APIKey, spec.BaseURL), nil
	case "anthropic":
		if err := validateCredential(spec.APIKey); err != nil {
			return nil, err
		}
		return anthropic.New(spec.Model, spec.APIKey, spec.BaseURL), nil
	case "ollama":
		if err := validateEndpoint(spec.BaseURL); err != nil {
			return nil, err
		}
		return ollama.New(spec.Model, spec.BaseURL), nil
	case "google":
		if err := validateCredential(spec.APIKey); err != nil {
			return nil, err
		}
		return google.New(spec.Model, spec.APIKey), nil
	default:
		return nil, models.NewValidationError("provider",
			"unknown provider %q, must be one of: %s", spec.Provider, strings.Join(Providers, ", "))
	}
}

func validateCredential(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return models.NewValidationError("api_key", "api_key is required")
	}
	if strings.ContainsAny(apiKey, " \t\n") {
		return models.NewValidationError("api_key", "api_key must not contain whitespace")
	}
	return nil
}

func validateEndpoint(baseURL string) error {
	if baseURL == "" {
		return nil
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return models.NewValidationError("endpoint", "endpoint must be an http(s) URL")
	}
	return nil
}
