package models

import (
	"time"
)

// Config holds database configuration
type Config struct {
	Provider string            // sqlite, mongodb, memory
	URI      string            // Connection URI
	Database string            // Database name
	Options  map[string]string // Provider-specific options
}

// ModelSpec is a registered model backend configuration
type ModelSpec struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"` // openai, anthropic, ollama, google
	Model     string    `json:"model"`
	APIKey    string    `json:"api_key,omitempty"`
	BaseURL   string    `json:"base_url,omitempty"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModelDescriptor describes a backend's static properties plus its
// last-known connectivity. Immutable once fetched; the connected flag is
// refreshed only by an explicit probe.
type ModelDescriptor struct {
	ID               string   `json:"id" bson:"id"`
	Provider         string   `json:"provider" bson:"provider"`
	Name             string   `json:"name" bson:"name"`
	MaxContextLength int      `json:"max_context_length" bson:"max_context_length"`
	CostPer1KTokens  float64  `json:"cost_per_1k_tokens" bson:"cost_per_1k_tokens"`
	Connected        bool     `json:"connected" bson:"connected"`
	Modalities       []string `json:"modalities" bson:"modalities"`
}

// Schedule is a recurring benchmark configuration
type Schedule struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Prompts   []string   `json:"prompts"`
	ModelIDs  []string   `json:"model_ids"`
	Metrics   []string   `json:"metrics"`
	CronExpr  string     `json:"cron_expr"`
	Enabled   bool       `json:"enabled"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
