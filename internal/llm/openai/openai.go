package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/promptbench/promptbench/internal/llm"
	"github.com/promptbench/promptbench/internal/models"
)

// Connector implements the llm.Connector interface for OpenAI
type Connector struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New creates a new OpenAI connector for the given model
func New(model, apiKey, baseURL string) *Connector {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	return &Connector{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Generate sends a prompt to OpenAI and returns the response
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

	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": opts.Temperature,
		"max_tokens":  opts.MaxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, llm.WrapError(llm.TransportKind(err), "openai", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.WrapError(llm.KindInvalidResponse, "openai", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, llm.NewError(llm.StatusKind(resp.StatusCode), "openai", "API error (%d): %s", resp.StatusCode, string(body))
	}

	var openAIResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return nil, llm.WrapError(llm.KindInvalidResponse, "openai", err)
	}

	if len(openAIResp.Choices) == 0 {
		return nil, llm.NewError(llm.KindInvalidResponse, "openai", "no choices returned from API")
	}

	return &llm.GenerateResult{
		Text:             openAIResp.Choices[0].Message.Content,
		PromptTokens:     openAIResp.Usage.PromptTokens,
		CompletionTokens: openAIResp.Usage.CompletionTokens,
		LatencySeconds:   time.Since(startTime).Seconds(),
	}, nil
}

// Describe returns the static descriptor for the configured model
func (c *Connector) Describe() models.ModelDescriptor {
	return models.ModelDescriptor{
		Provider:         "openai",
		Name:             c.model,
		MaxContextLength: contextLength(c.model),
		CostPer1KTokens:  costPer1KTokens(c.model),
		Modalities:       []string{"text"},
	}
}

// Probe checks connectivity with a models listing call
func (c *Connector) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return llm.WrapError(llm.TransportKind(err), "openai", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return llm.NewError(llm.StatusKind(resp.StatusCode), "openai", "probe failed with status %d", resp.StatusCode)
	}
	return nil
}

func contextLength(model string) int {
	contextLengths := map[string]int{
		"gpt-4":             8192,
		"gpt-4-32k":         32768,
		"gpt-4-turbo":       128000,
		"gpt-4o":            128000,
		"gpt-3.5-turbo":     4096,
		"gpt-3.5-turbo-16k": 16384,
	}
	if length, ok := contextLengths[model]; ok {
		return length
	}
	return 4096
}

func costPer1KTokens(model string) float64 {
	costs := map[string]float64{
		"gpt-4":             0.03,
		"gpt-4-32k":         0.06,
		"gpt-4-turbo":       0.01,
		"gpt-4o":            0.005,
		"gpt-3.5-turbo":     0.002,
		"gpt-3.5-turbo-16k": 0.004,
	}
	if cost, ok := costs[model]; ok {
		return cost
	}
	return 0.002
}
