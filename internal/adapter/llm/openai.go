package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/MiMa6/rag-search-system/config"
	"github.com/MiMa6/rag-search-system/internal/adapter/provider"
)

// Sampling temperature for answer synthesis. Low enough to keep
// answers grounded in the retrieved context.
const temperature = 0.1

// Client generates completions through an OpenAI-protocol chat endpoint.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(mc config.ModelConfig) (*Client, error) {
	api, err := provider.NewAPIClient(mc)
	if err != nil {
		return nil, err
	}
	return &Client{
		api:   api,
		model: mc.LLMModel,
	}, nil
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) ModelName() string {
	return c.model
}
