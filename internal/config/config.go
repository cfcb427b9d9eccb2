package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/promptbench/promptbench/internal/metrics"
	"github.com/promptbench/promptbench/internal/runner"
)

// Config represents the application configuration
type Config struct {
	SQLDatabase DatabaseConfig `yaml:"sql_database"` // SQLite for model specs and schedules
	RunDatabase DatabaseConfig `yaml:"run_database"` // MongoDB for benchmark runs
	Server      ServerConfig   `yaml:"server"`
	Runner      RunnerConfig   `yaml:"runner"`
	Metrics     metrics.Config `yaml:"metrics"`
	LogLevel    string         `yaml:"log_level,omitempty"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Provider string            `yaml:"provider"` // sqlite, mongodb
	URI      string            `yaml:"uri"`
	Database string            `yaml:"database"`
	Options  map[string]string `yaml:"options,omitempty"`
}

// ServerConfig represents the API server configuration
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin,omitempty"`
}

// RunnerConfig represents benchmark execution limits. Timeout is an
// integer so it reads naturally from YAML.
type RunnerConfig struct {
	MaxConcurrent         int     `yaml:"max_concurrent"`
	PerModelConcurrent    int     `yaml:"per_model_concurrent"`
	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
	PerModelRPS           float64 `yaml:"per_model_rps,omitempty"`
}

// RunnerOptions converts the YAML section into the runner's config
func (r RunnerConfig) RunnerOptions() runner.Config {
	cfg := runner.DefaultConfig()
	if r.MaxConcurrent > 0 {
		cfg.MaxConcurrent = r.MaxConcurrent
	}
	if r.PerModelConcurrent > 0 {
		cfg.PerModelConcurrent = r.PerModelConcurrent
	}
	if r.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(r.RequestTimeoutSeconds) * time.Second
	}
	if r.PerModelRPS > 0 {
		cfg.PerModelRPS = r.PerModelRPS
	}
	return cfg
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		SQLDatabase: DatabaseConfig{
			Provider: "sqlite",
			URI:      "promptbench.db",
			Database: "promptbench",
		},
		RunDatabase: DatabaseConfig{
			Provider: "mongodb",
			URI:      "mongodb://localhost:27017",
			Database: "promptbench",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Runner: RunnerConfig{
			MaxConcurrent:         8,
			PerModelConcurrent:    2,
			RequestTimeoutSeconds: 30,
		},
		Metrics:  metrics.DefaultConfig(),
		LogLevel: "info",
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".promptbench/config.yaml"
	}
	return filepath.Join(home, ".promptbench", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
