package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/biaslens/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai", "ollama":
		// Ollama is reached through its OpenAI-compatible endpoint
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config, filling unset
// fields from DefaultConfig
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	cfg := DefaultConfig()
	if modelConfig.Provider != "" {
		cfg.Provider = modelConfig.Provider
	}
	if modelConfig.Timeout > 0 {
		cfg.Timeout = modelConfig.Timeout
	}
	if modelConfig.MaxTokens > 0 {
		cfg.MaxTokens = modelConfig.MaxTokens
	}
	cfg.Model = modelConfig.Model
	cfg.APIKey = modelConfig.APIKey
	cfg.BaseURL = modelConfig.BaseURL
	return cfg
}
