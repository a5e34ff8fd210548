package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the friendship-memory engine.
// Environment variables are parsed from the KEEPSAKE_ prefix, e.g.
// KEEPSAKE_HTTP_PORT, KEEPSAKE_COLLAB_PROVIDER.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Store driver: memory (default, volatile) or sqlite
	DBDriver   string `envconfig:"DB_DRIVER" default:"memory"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:""`

	// Generation collaborator
	CollabProvider       string `envconfig:"COLLAB_PROVIDER" default:"ollama"`
	OllamaURL            string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	EmbedModel           string `envconfig:"EMBED_MODEL" default:"nomic-embed-text"`
	GenerateModel        string `envconfig:"GENERATE_MODEL" default:"llama3.2"`
	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY" default:""`
	CollabTimeoutSeconds int    `envconfig:"COLLAB_TIMEOUT_SECONDS" default:"15"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates driver and provider selections.
func (c *Config) ResolveDefaults() error {
	allowedDB := map[string]bool{"memory": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("DB_DRIVER=sqlite requires SQLITE_PATH")
	}
	allowedCollab := map[string]bool{"ollama": true, "openai": true}
	if !allowedCollab[c.CollabProvider] {
		return fmt.Errorf("unsupported COLLAB_PROVIDER: %s", c.CollabProvider)
	}
	if c.CollabProvider == "openai" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("COLLAB_PROVIDER=openai requires OPENAI_API_KEY")
	}
	return nil
}

// New creates a Config by parsing environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("KEEPSAKE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewForTesting creates a config suitable for unit tests.
func NewForTesting() *Config {
	return &Config{
		HTTPPort:                  8080,
		DBDriver:                  "memory",
		CollabProvider:            "ollama",
		OllamaURL:                 "http://localhost:11434",
		EmbedModel:                "nomic-embed-text",
		GenerateModel:             "llama3.2",
		CollabTimeoutSeconds:      15,
		HealthIntervalSeconds:     30,
		HealthProbeTimeoutSeconds: 2,
	}
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
