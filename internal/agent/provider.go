// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/jolks/mcp-agent/internal/config"
	"github.com/jolks/mcp-agent/internal/model"
)

// ToolDefinition is a provider-agnostic representation of a tool that can be
// offered to an LLM during a chat completion.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ChatProvider abstracts a chat-completion backend so the agent loop can work
// with any LLM provider.
type ChatProvider interface {
	// CreateCompletion sends the full conversation and returns the model's
	// next assistant message. systemMsg is an optional system-level
	// instruction (empty string to omit).
	CreateCompletion(ctx context.Context, modelName string, systemMsg string, messages []model.Message, tools []ToolDefinition) (*model.Message, error)
}

// NewChatProvider builds the appropriate ChatProvider based on cfg.AI.Provider.
func NewChatProvider(ctx context.Context, cfg *config.Config) (ChatProvider, error) {
	provider := strings.ToLower(cfg.AI.Provider)
	switch provider {
	case "openai":
		apiKey := cfg.AI.OpenAIAPIKey
		if apiKey == "" {
			apiKey = cfg.AI.APIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is not set in configuration")
		}
		return NewOpenAIProvider(apiKey, cfg.AI.BaseURL), nil
	case "anthropic":
		apiKey := cfg.AI.AnthropicAPIKey
		if apiKey == "" {
			apiKey = cfg.AI.APIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key is not set in configuration")
		}
		return NewAnthropicProvider(apiKey), nil
	default: // "gemini" or empty
		apiKey := cfg.AI.GeminiAPIKey
		if apiKey == "" {
			apiKey = cfg.AI.APIKey
		}
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini API key is not set in configuration")
		}
		return NewGeminiProvider(ctx, apiKey)
	}
}
