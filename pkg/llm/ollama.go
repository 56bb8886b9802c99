package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// generateRequest is the Ollama /api/generate request body.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the non-streaming Ollama reply.
type generateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// OllamaClient talks to the native Ollama generate endpoint.
type OllamaClient struct {
	endpoint string
	model    string
	httpc    *http.Client
}

func NewOllamaClient(opts Options) *OllamaClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &OllamaClient{
		endpoint: opts.Endpoint,
		model:    opts.Model,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// Complete issues one non-streaming generate request and returns the raw
// reply text.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", errors.Wrap(err, "encode generate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build generate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "ollama request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var reply generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", errors.Wrap(err, "decode ollama response")
	}

	return reply.Response, nil
}
