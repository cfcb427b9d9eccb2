package google

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/promptbench/promptbench/internal/llm"
	"github.com/promptbench/promptbench/internal/models"
)

// Connector implements the llm.Connector interface for Google AI
type Connector struct {
	apiKey string
	model  string
	client *genai.Client
}

// New creates a new Google connector for the given model
func New(model, apiKey string) *Connector {
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		client = nil
	}

	return &Connector{
		apiKey: apiKey,
		model:  model,
		client: client,
	}
}

// Generate sends a prompt to Google AI and returns the response
func (c *Connector) Generate(ctx context.Context, prompt string, opts llm.Options) (*llm.GenerateResult, error) {
	result, err := c.generate(ctx, prompt, opts)
	if err != nil && llm.Retryable(llm.KindOf(err)) {
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(time.Second):
		}
		return c.generate(ctx, prompt, opts)
	}
	return result, err
}

func (c *Connector) generate(ctx context.Context, prompt string, opts llm.Options) (*llm.GenerateResult, error) {
	startTime := time.Now()

	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	content := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	generationConfig := &genai.GenerateContentConfig{
		Temperature:     float32Ptr(float32(opts.Temperature)),
		MaxOutputTokens: int32(opts.MaxTokens),
	}

	result, err := client.Models.GenerateContent(ctx, c.model, content, generationConfig)
	if err != nil {
		return nil, llm.WrapError(llm.TransportKind(err), "google", err)
	}

	var generatedText string
	if len(result.Candidates) > 0 && len(result.Candidates[0].Content.Parts) > 0 {
		generatedText = result.Candidates[0].Content.Parts[0].Text
	}
	if generatedText == "" {
		return nil, llm.NewError(llm.KindInvalidResponse, "google", "no candidates returned from API")
	}

	promptTokens := 0
	completionTokens := 0
	if result.UsageMetadata != nil {
		promptTokens = int(result.UsageMetadata.PromptTokenCount)
		completionTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}

	return &llm.GenerateResult{
		Text:             generatedText,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		LatencySeconds:   time.Since(startTime).Seconds(),
	}, nil
}

func (c *Connector) ensureClient(ctx context.Context) (*genai.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}
	return client, nil
}

// Describe returns the static descriptor for the configured model
func (c *Connector) Describe() models.ModelDescriptor {
	return models.ModelDescriptor{
		Provider:         "google",
		Name:             c.model,
		MaxContextLength: contextLength(c.model),
		CostPer1KTokens:  costPer1KTokens(c.model),
		Modalities:       []string{"text", "image"},
	}
}

// Probe checks connectivity with a models listing call
func (c *Connector) Probe(ctx context.Context) error {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return err
	}

	if _, err := client.Models.List(ctx, &genai.ListModelsConfig{}); err != nil {
		return llm.WrapError(llm.TransportKind(err), "google", err)
	}
	return nil
}

func contextLength(model string) int {
	contextLengths := map[string]int{
		"gemini-1.5-pro":   2097152,
		"gemini-1.5-flash": 1048576,
		"gemini-1.0-pro":   32768,
	}
	if length, ok := contextLengths[model]; ok {
		return length
	}
	return 32768
}

func costPer1KTokens(model string) float64 {
	costs := map[string]float64{
		"gemini-1.5-pro":   0.00125,
		"gemini-1.5-flash": 0.000075,
		"gemini-1.0-pro":   0.0005,
	}
	if cost, ok := costs[model]; ok {
		return cost
	}
	return 0.0005
}

func float32Ptr(f float32) *float32 {
	return &f
}
