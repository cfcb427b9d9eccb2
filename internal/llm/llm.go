package llm

import (
	"context"

	"github.com/promptbench/promptbench/internal/models"
)

// Options controls a single generation call
type Options struct {
	Temperature float64
	MaxTokens   int
}

// DefaultOptions returns the generation options used when the caller does
// not override them
func DefaultOptions() Options {
	return Options{
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

// GenerateResult is the raw telemetry for one successful generation
type GenerateResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	LatencySeconds   float64
}

// Connector wraps one model backend. Implementations must be safe for
// concurrent Generate calls; each invocation is independent. Generate
// performs at most one internal retry for rate-limit and timeout errors,
// every other failure propagates immediately as a *Error.
type Connector interface {
	// Generate sends a prompt to the backend and returns its response
	// plus usage telemetry.
	Generate(ctx context.Context, prompt string, opts Options) (*GenerateResult, error)

	// Describe returns the backend's static descriptor. It must not
	// perform network I/O.
	Describe() models.ModelDescriptor

	// Probe performs one cheap connectivity check against the backend.
	Probe(ctx context.Context) error
}
