// Package llm provides text-completion clients for the extraction engine.
// Two backends are supported: the native Ollama generate API and any
// OpenAI-compatible chat endpoint. Both issue a single non-streaming request
// per prompt; callers treat every failure the same way (fall back to pattern
// extraction), so no retries happen here.
package llm

import (
	"context"
	"strings"
	"time"
)

// Completer sends one prompt to a text-completion backend and returns the raw
// reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options selects and configures a backend.
type Options struct {
	// Provider is "ollama" (default) or "openai".
	Provider string
	// Model is the model identifier passed verbatim to the backend.
	Model string
	// Endpoint is the full generate URL for Ollama, or the base URL for an
	// OpenAI-compatible server (empty means api.openai.com).
	Endpoint string
	// APIKey is only consulted by the OpenAI backend.
	APIKey string
	// Timeout bounds the single network call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds LLM calls that the caller did not bound explicitly.
// A timed-out call is treated like any other failure: the orchestrator falls
// back to pattern extraction.
const DefaultTimeout = 120 * time.Second

// New builds a Completer for the configured provider.
func New(opts Options) Completer {
	if strings.EqualFold(opts.Provider, "openai") {
		return NewOpenAIClient(opts)
	}
	return NewOllamaClient(opts)
}
