package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamHandler(lines []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}
}

func TestChatStream_EmitsCumulativeText(t *testing.T) {
	srv := httptest.NewServer(streamHandler([]string{
		`{"message":{"role":"assistant","content":"He"},"done":false}`,
		`{"message":{"role":"assistant","content":"llo"},"done":false}`,
		`{"message":{"role":"assistant","content":""},"done":true}`,
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "test-model")
	stream, err := provider.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	var contents []string
	for chunk := range stream {
		require.NoError(t, chunk.Err)
		contents = append(contents, chunk.Content)
	}

	assert.Equal(t, []string{"He", "Hello"}, contents)
}

func TestChatStream_ErrorChunkTerminatesStream(t *testing.T) {
	srv := httptest.NewServer(streamHandler([]string{
		`{"message":{"role":"assistant","content":"par"},"done":false}`,
		`{"error":"model crashed"}`,
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "test-model")
	stream, err := provider.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	var lastErr error
	var contents []string
	for chunk := range stream {
		if chunk.Err != nil {
			lastErr = chunk.Err
			continue
		}
		contents = append(contents, chunk.Content)
	}

	assert.Equal(t, []string{"par"}, contents)
	require.Error(t, lastErr)
	assert.Contains(t, lastErr.Error(), "model crashed")
}

func TestChatStream_NonOKStatusFailsBeforeStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "missing-model")
	_, err := provider.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestChat_ReturnsFullAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "test-model", req.Model)

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "full answer"},
			Done:    true,
		})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "test-model")
	answer, err := provider.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "full answer", answer)
}

func TestChat_ModelOverrideOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "other-model", req.Model)

		json.NewEncoder(w).Encode(ollamaChatResponse{Done: true})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "test-model")
	_, err := provider.Chat(context.Background(),
		[]llm.Message{{Role: "user", Content: "hi"}},
		llm.WithModel("other-model"),
	)
	require.NoError(t, err)
}
