// Package config loads service configuration from config.yaml and the
// environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the agent service.
// Values come from config.yaml with environment variable overrides; secrets
// (API keys) must only come from environment variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Query    QueryConfig    `yaml:"query"`
}

// DatabaseConfig holds the SQLite store configuration.
type DatabaseConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"ecommerce.db"`
	// SeedDir is a directory of CSV files loaded into the store at startup.
	// Empty disables seeding.
	SeedDir string `yaml:"seed_dir" env:"DATABASE_SEED_DIR" env-default:""`
}

// AIConfig holds the completion endpoint configuration.
type AIConfig struct {
	// Endpoint is an OpenAI-compatible base URL. Local model servers
	// (Ollama, vLLM) work as long as they speak the chat completion API.
	Endpoint       string  `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"http://localhost:11434/v1"`
	Model          string  `yaml:"model" env:"AI_MODEL" env-default:"llama3"`
	APIKey         string  `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
	Temperature    float64 `yaml:"temperature" env:"AI_TEMPERATURE" env-default:"0"`
	TimeoutSeconds int     `yaml:"timeout_seconds" env:"AI_TIMEOUT_SECONDS" env-default:"60"`
}

// Timeout returns the completion call bound as a duration.
func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// QueryConfig holds query execution settings.
type QueryConfig struct {
	// TimeoutSeconds bounds a single store round trip.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"QUERY_TIMEOUT_SECONDS" env-default:"30"`
}

// Timeout returns the execution bound as a duration.
func (c *QueryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is not an error; the environment alone is
// enough to run. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.AI.Endpoint == "" {
		return fmt.Errorf("AI endpoint is required")
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI model is required")
	}
	if c.AI.TimeoutSeconds <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}
	if c.Query.TimeoutSeconds <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}
	return nil
}
