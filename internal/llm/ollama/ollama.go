package ollama

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

// Connector implements the llm.Connector interface for Ollama
type Connector struct {
	baseURL string
	model   string
	client  *http.Client
}

// New creates a new Ollama connector for the given model. Ollama runs
// locally and needs no API key.
func New(model, baseURL string) *Connector {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}

	return &Connector{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Generate sends a prompt to Ollama and returns the response
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
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, llm.WrapError(llm.TransportKind(err), "ollama", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.WrapError(llm.KindInvalidResponse, "ollama", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, llm.NewError(llm.StatusKind(resp.StatusCode), "ollama", "API error (%d): %s", resp.StatusCode, string(body))
	}

	var ollamaResp struct {
		Response        string `json:"response"`
		PromptEvalCount int    `json:"prompt_eval_count"`
		EvalCount       int    `json:"eval_count"`
	}

	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return nil, llm.WrapError(llm.KindInvalidResponse, "ollama", err)
	}

	return &llm.GenerateResult{
		Text:             ollamaResp.Response,
		PromptTokens:     ollamaResp.PromptEvalCount,
		CompletionTokens: ollamaResp.EvalCount,
		LatencySeconds:   time.Since(startTime).Seconds(),
	}, nil
}

// Describe returns the static descriptor for the configured model.
// Local inference carries no per-token cost.
func (c *Connector) Describe() models.ModelDescriptor {
	return models.ModelDescriptor{
		Provider:         "ollama",
		Name:             c.model,
		MaxContextLength: contextLength(c.model),
		CostPer1KTokens:  0,
		Modalities:       []string{"text"},
	}
}

// Probe checks that the local Ollama server is reachable
func (c *Connector) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return llm.WrapError(llm.TransportKind(err), "ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return llm.NewError(llm.StatusKind(resp.StatusCode), "ollama", "probe failed with status %d", resp.StatusCode)
	}
	return nil
}

func contextLength(model string) int {
	contextLengths := map[string]int{
		"llama3":    8192,
		"llama3.1":  131072,
		"mistral":   32768,
		"gemma2":    8192,
		"phi3":      131072,
		"codellama": 16384,
	}
	if length, ok := contextLengths[model]; ok {
		return length
	}
	return 4096
}
