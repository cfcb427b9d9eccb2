package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/promptbench/promptbench/internal/llm"
	"github.com/promptbench/promptbench/internal/models"
)

// Connector implements the llm.Connector interface for Anthropic
type Connector struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New creates a new Anthropic connector for the given model
func New(model, apiKey, baseURL string) *Connector {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
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

// Generate sends a prompt to Anthropic and returns the response
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

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, llm.WrapError(llm.TransportKind(err), "anthropic", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.WrapError(llm.KindInvalidResponse, "anthropic", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, llm.NewError(llm.StatusKind(resp.StatusCode), "anthropic", "API error (%d): %s", resp.StatusCode, string(body))
	}

	var anthropicResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return nil, llm.WrapError(llm.KindInvalidResponse, "anthropic", err)
	}

	if len(anthropicResp.Content) == 0 {
		return nil, llm.NewError(llm.KindInvalidResponse, "anthropic", "no content returned from API")
	}

	return &llm.GenerateResult{
		Text:             anthropicResp.Content[0].Text,
		PromptTokens:     anthropicResp.Usage.InputTokens,
		CompletionTokens: anthropicResp.Usage.OutputTokens,
		LatencySeconds:   time.Since(startTime).Seconds(),
	}, nil
}

// Describe returns the static descriptor for the configured model
func (c *Connector) Describe() models.ModelDescriptor {
	modalities := []string{"text"}
	if strings.HasPrefix(c.model, "claude-3") {
		modalities = []string{"text", "image"}
	}

	return models.ModelDescriptor{
		Provider:         "anthropic",
		Name:             c.model,
		MaxContextLength: contextLength(c.model),
		CostPer1KTokens:  costPer1KTokens(c.model),
		Modalities:       modalities,
	}
}

// Probe checks connectivity with a minimal messages call. Anthropic has
// no public models listing endpoint.
func (c *Connector) Probe(ctx context.Context) error {
	_, err := c.generate(ctx, "ping", llm.Options{Temperature: 0, MaxTokens: 1})
	return err
}

func contextLength(model string) int {
	contextLengths := map[string]int{
		"claude-3-5-sonnet-20241022": 200000,
		"claude-3-5-haiku-20241022":  200000,
		"claude-3-opus-20240229":     200000,
		"claude-3-sonnet-20240229":   200000,
		"claude-3-haiku-20240307":    200000,
		"claude-2.1":                 200000,
		"claude-2.0":                 100000,
	}
	if length, ok := contextLengths[model]; ok {
		return length
	}
	return 100000
}

func costPer1KTokens(model string) float64 {
	costs := map[string]float64{
		"claude-3-5-sonnet-20241022": 0.015,
		"claude-3-5-haiku-20241022":  0.004,
		"claude-3-opus-20240229":     0.075,
		"claude-3-sonnet-20240229":   0.015,
		"claude-3-haiku-20240307":    0.0025,
		"claude-2.1":                 0.024,
		"claude-2.0":                 0.024,
	}
	if cost, ok := costs[model]; ok {
		return cost
	}
	return 0.024
}
