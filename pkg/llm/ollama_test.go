package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaComplete(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(generateResponse{
			Model:     got.Model,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Response:  "Paris is the capital of France.",
			Done:      true,
		})
	}))
	defer server.Close()

	client := NewOllamaClient(Options{Model: "llama3.2", Endpoint: server.URL})

	reply, err := client.Complete(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital of France.", reply)

	assert.Equal(t, "llama3.2", got.Model)
	assert.Equal(t, "What is the capital of France?", got.Prompt)
	assert.False(t, got.Stream)
}

func TestOllamaCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(Options{Model: "missing", Endpoint: server.URL})

	_, err := client.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaCompleteUnreachableEndpoint(t *testing.T) {
	client := NewOllamaClient(Options{
		Model:    "llama3.2",
		Endpoint: "http://127.0.0.1:1/api/generate",
		Timeout:  time.Second,
	})

	_, err := client.Complete(context.Background(), "hello")
	require.Error(t, err)
}

func TestOllamaCompleteContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewOllamaClient(Options{Model: "llama3.2", Endpoint: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, "hello")
	require.Error(t, err)
}

func TestNewSelectsProvider(t *testing.T) {
	_, ok := New(Options{Provider: "ollama"}).(*OllamaClient)
	assert.True(t, ok)

	_, ok = New(Options{Provider: "OpenAI"}).(*OpenAIClient)
	assert.True(t, ok)

	// Unknown providers default to the native backend.
	_, ok = New(Options{Provider: ""}).(*OllamaClient)
	assert.True(t, ok)
}
