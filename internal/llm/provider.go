// Package llm implements the hosted-model fallback tier behind a common
// provider interface.
package llm

import (
	"fmt"

	"github.com/clausewise/counselai/internal/config"
	"github.com/clausewise/counselai/internal/service"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewProvider builds the configured hosted-model provider.
func NewProvider(cfg *config.Config) (service.ModelProviderInterface, error) {
	switch cfg.LLMProvider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.LLMProvider)
	}
}
