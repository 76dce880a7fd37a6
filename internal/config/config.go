// Package config loads and validates dataworks configuration.
//
// Configuration is resolved in three layers: built-in defaults, an optional
// YAML file, and environment variables. The bearer token for the upstream
// LLM and embedding services comes exclusively from the environment so it
// never lands in a config file on disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TokenEnvVar is the environment variable supplying the bearer token for
// both the chat-completions and embeddings services.
const TokenEnvVar = "AIPROXY_TOKEN"

// MissingTokenError indicates the required credential environment variable
// is absent. It is surfaced before any network call is attempted.
type MissingTokenError struct {
	Variable string
}

// Error implements the error interface for MissingTokenError.
func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("configuration error: environment variable %s is not set", e.Variable)
}

// Config represents dataworks configuration options.
type Config struct {
	// CompletionsURL is the chat/tool-calling endpoint.
	CompletionsURL string `yaml:"completions_url"`

	// EmbeddingsURL is the text-embedding endpoint.
	EmbeddingsURL string `yaml:"embeddings_url"`

	// ChatModel is the model used for instruction dispatch and extraction tasks.
	ChatModel string `yaml:"chat_model"`

	// EmbeddingModel is the model used for similarity-search embeddings.
	EmbeddingModel string `yaml:"embedding_model"`

	// DataRoot is the directory all task handlers read from and write to.
	DataRoot string `yaml:"data_root"`

	// Timeout is the per-request timeout for upstream network calls.
	Timeout time.Duration `yaml:"timeout"`

	// EmbedConcurrency caps concurrent embedding fetches during similarity search.
	EmbedConcurrency int `yaml:"embed_concurrency"`

	// LogLevel sets logging verbosity (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// ListenAddr is the bind address for the serve command.
	ListenAddr string `yaml:"listen_addr"`

	// Token is the bearer token for upstream services. Environment-only.
	Token string `yaml:"-"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		CompletionsURL:   "https://aiproxy.sanand.workers.dev/openai/v1/chat/completions",
		EmbeddingsURL:    "https://aiproxy.sanand.workers.dev/openai/v1/embeddings",
		ChatModel:        "gpt-4o-mini",
		EmbeddingModel:   "text-embedding-3-small",
		DataRoot:         "./data",
		Timeout:          60 * time.Second,
		EmbedConcurrency: 4,
		LogLevel:         "info",
		ListenAddr:       ":8000",
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
// The bearer token is always read from the environment, after attempting a
// best-effort .env load.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Durations arrive as strings in YAML, so parse into a shadow struct.
		type yamlConfig struct {
			CompletionsURL   string `yaml:"completions_url"`
			EmbeddingsURL    string `yaml:"embeddings_url"`
			ChatModel        string `yaml:"chat_model"`
			EmbeddingModel   string `yaml:"embedding_model"`
			DataRoot         string `yaml:"data_root"`
			Timeout          string `yaml:"timeout"`
			EmbedConcurrency int    `yaml:"embed_concurrency"`
			LogLevel         string `yaml:"log_level"`
			ListenAddr       string `yaml:"listen_addr"`
		}

		var yamlCfg yamlConfig
		if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		if yamlCfg.CompletionsURL != "" {
			cfg.CompletionsURL = yamlCfg.CompletionsURL
		}
		if yamlCfg.EmbeddingsURL != "" {
			cfg.EmbeddingsURL = yamlCfg.EmbeddingsURL
		}
		if yamlCfg.ChatModel != "" {
			cfg.ChatModel = yamlCfg.ChatModel
		}
		if yamlCfg.EmbeddingModel != "" {
			cfg.EmbeddingModel = yamlCfg.EmbeddingModel
		}
		if yamlCfg.DataRoot != "" {
			cfg.DataRoot = yamlCfg.DataRoot
		}
		if yamlCfg.Timeout != "" {
			timeout, err := time.ParseDuration(yamlCfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
			}
			cfg.Timeout = timeout
		}
		if yamlCfg.EmbedConcurrency != 0 {
			cfg.EmbedConcurrency = yamlCfg.EmbedConcurrency
		}
		if yamlCfg.LogLevel != "" {
			cfg.LogLevel = yamlCfg.LogLevel
		}
		if yamlCfg.ListenAddr != "" {
			cfg.ListenAddr = yamlCfg.ListenAddr
		}
	}

	// Best-effort .env load; a missing file is not an error.
	_ = godotenv.Load()
	cfg.Token = os.Getenv(TokenEnvVar)

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .dataworks/config.yaml in the
// specified directory, falling back to defaults if absent.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".dataworks", "config.yaml"))
}

// Validate validates the configuration values.
// Returns an error if any values are invalid, including a MissingTokenError
// if the credential is unset.
func (c *Config) Validate() error {
	if c.Token == "" {
		return &MissingTokenError{Variable: TokenEnvVar}
	}

	if c.CompletionsURL == "" {
		return fmt.Errorf("completions_url cannot be empty")
	}
	if c.EmbeddingsURL == "" {
		return fmt.Errorf("embeddings_url cannot be empty")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("chat_model cannot be empty")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model cannot be empty")
	}
	if c.DataRoot == "" {
		return fmt.Errorf("data_root cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}
	if c.EmbedConcurrency <= 0 {
		return fmt.Errorf("embed_concurrency must be > 0, got %d", c.EmbedConcurrency)
	}

	return nil
}
