// SPDX-License-Identifier: AGPL-3.0-only
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Default values
const (
	// DefaultProvider is the AI provider used when none is configured
	DefaultProvider = "gemini"
	// DefaultModel is the model used when none is configured
	DefaultModel = "gemini-2.0-flash"
	// DefaultMaxToolIterations caps the number of model invocations per query
	DefaultMaxToolIterations = 20
)

// Config holds the complete application configuration
type Config struct {
	Client  ClientConfig
	AI      AIConfig
	MCP     MCPConfig
	Logging LoggingConfig
	Store   StoreConfig
}

// ClientConfig holds the identity the agent presents during the MCP handshake
type ClientConfig struct {
	Name    string
	Version string
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	// Provider selects the chat backend: "gemini", "openai" or "anthropic"
	Provider string
	// Model is the model identifier passed to the provider
	Model string
	// APIKey is a generic fallback key used when no provider-specific key is set
	APIKey string
	// OpenAIAPIKey is the OpenAI-specific API key
	OpenAIAPIKey string
	// AnthropicAPIKey is the Anthropic-specific API key
	AnthropicAPIKey string
	// GeminiAPIKey is the Gemini-specific API key
	GeminiAPIKey string
	// BaseURL overrides the endpoint for OpenAI-compatible servers (Ollama, vLLM, Groq, ...)
	BaseURL string
	// SystemPrompt is an optional system instruction prepended to every query
	SystemPrompt string
	// MaxToolIterations caps model invocations per query; exceeding it aborts the query
	MaxToolIterations int
}

// MCPConfig describes how to reach the MCP tool server. Exactly one of
// ServerScript, Command or URL should be set.
type MCPConfig struct {
	// ServerScript is a path to a .py or .js server script started over stdio
	ServerScript string
	// Command is an explicit server command started over stdio
	Command string
	// Args are arguments for Command
	Args []string
	// URL is an SSE endpoint of an already-running server
	URL string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string
}

// StoreConfig holds exchange history configuration
type StoreConfig struct {
	// Enabled controls whether completed queries are persisted
	Enabled bool
	// DBPath is the SQLite database path for the exchange history
	DBPath string
}

// DefaultConfig returns a configuration populated with default values
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Name:    "mcp-agent",
			Version: "1.0.0",
		},
		AI: AIConfig{
			Provider:          DefaultProvider,
			Model:             DefaultModel,
			MaxToolIterations: DefaultMaxToolIterations,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Enabled: true,
			DBPath:  defaultDBPath(),
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mcp-agent", "history.db")
	}
	return filepath.Join(home, ".mcp-agent", "history.db")
}

// FromEnv overrides configuration values from environment variables
func FromEnv(cfg *Config) {
	if v := os.Getenv("MCP_AGENT_AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("MCP_AGENT_AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("MCP_AGENT_AI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("MCP_AGENT_SYSTEM_PROMPT"); v != "" {
		cfg.AI.SystemPrompt = v
	}
	if v := os.Getenv("MCP_AGENT_AI_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AI.MaxToolIterations = n
		}
	}
	if v := os.Getenv("MCP_AGENT_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AI.AnthropicAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiAPIKey = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" && cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = v
	}
	if v := os.Getenv("MCP_AGENT_SERVER_SCRIPT"); v != "" {
		cfg.MCP.ServerScript = v
	}
	if v := os.Getenv("MCP_AGENT_SERVER_URL"); v != "" {
		cfg.MCP.URL = v
	}
	if v := os.Getenv("MCP_AGENT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MCP_AGENT_LOG_FILE"); v != "" {
		cfg.Logging.FilePath = v
	}
	if v := os.Getenv("MCP_AGENT_DB_PATH"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("MCP_AGENT_HISTORY_DISABLED"); v == "1" || strings.EqualFold(v, "true") {
		cfg.Store.Enabled = false
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported AI provider: %s", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI model must not be empty")
	}
	if c.AI.MaxToolIterations < 1 {
		return fmt.Errorf("max tool iterations must be at least 1, got %d", c.AI.MaxToolIterations)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Store.Enabled && c.Store.DBPath == "" {
		return fmt.Errorf("store is enabled but no database path is set")
	}
	return nil
}
