package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/clausewise/counselai/internal/service"
)

const anthropicMaxTokens = 4096

// MessageAPI defines the slice of the Anthropic client we use
type MessageAPI interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicProvider generates answers through the Anthropic messages API.
type AnthropicProvider struct {
	api   MessageAPI
	model string
}

// NewAnthropicProvider creates an AnthropicProvider with the given API key and model.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{
		api:   &client.Messages,
		model: model,
	}
}

// NewAnthropicProviderWithAPI creates an AnthropicProvider with a custom API implementation (for testing)
func NewAnthropicProviderWithAPI(api MessageAPI, model string) *AnthropicProvider {
	return &AnthropicProvider{api: api, model: model}
}

// Generate runs one message turn. Roles other than assistant map to user,
// which matches how the API treats unknown roles anyway.
func (p *AnthropicProvider) Generate(ctx context.Context, systemPrompt string, messages []service.ChatMessage) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		Messages:  make([]anthropic.MessageParam, 0, len(messages)),
	}
	for _, m := range messages {
		switch m.Role {
		case "assistant":
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := p.api.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}
