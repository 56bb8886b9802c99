package llm

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient wraps any OpenAI-compatible chat endpoint, including Ollama's
// /v1 surface and DeepSeek-style gateways selected via Endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(opts Options) *OpenAIClient {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		// Local OpenAI-compatible servers accept any key.
		apiKey = "not-needed"
	}

	config := openai.DefaultConfig(apiKey)
	if opts.Endpoint != "" {
		config.BaseURL = opts.Endpoint
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  opts.Model,
	}
}

// Complete issues one chat completion and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
