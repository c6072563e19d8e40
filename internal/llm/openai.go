package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/clausewise/counselai/internal/service"
)

// ChatCompletionAPI defines the slice of the OpenAI client we use
type ChatCompletionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider generates answers through the OpenAI chat completion API.
type OpenAIProvider struct {
	api   ChatCompletionAPI
	model string
}

// NewOpenAIProvider creates an OpenAIProvider with the given API key and model.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// NewOpenAIProviderWithAPI creates an OpenAIProvider with a custom API implementation (for testing)
func NewOpenAIProviderWithAPI(api ChatCompletionAPI, model string) *OpenAIProvider {
	return &OpenAIProvider{api: api, model: model}
}

// Generate runs one chat completion. Called at most once per fallback; retry
// policy belongs to the caller.
func (p *OpenAIProvider) Generate(ctx context.Context, systemPrompt string, messages []service.ChatMessage) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := p.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: chatMessages,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
