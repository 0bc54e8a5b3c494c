package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatServer mimics the OpenAI chat completions endpoint. It echoes the
// requested model and answers with content, counting requests.
func fakeChatServer(t *testing.T, counter *atomic.Int64, status int, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.Add(1)

		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "upstream unavailable", "type": "server_error"},
			})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 30, "total_tokens": 42},
		})
	}))
}

func TestOpenAIProvider_ChatCompletion(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, http.StatusOK, `["Inception"]`)
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		ChatModel: "gemini-2.5-flash",
	})

	req := NewChatCompletionRequest([]Message{UserMessage("suggest")}).WithMaxTokens(100)
	resp, err := p.ChatCompletion(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, `["Inception"]`, resp.Content())
	assert.Equal(t, "stop", resp.FinishReason())
	assert.Equal(t, 42, resp.Usage().TotalTokens())
	assert.Equal(t, int64(1), counter.Load())
}

func TestOpenAIProvider_Defaults(t *testing.T) {
	p := NewOpenAIProviderFromConfig(OpenAIConfig{APIKey: "k"})
	assert.Equal(t, DefaultOpenAIModel, p.Model())
	assert.NoError(t, p.Close())
}

func TestOpenAIProvider_ServerErrorIsNotRetried(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, http.StatusServiceUnavailable, "")
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))
	require.Error(t, err)

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusServiceUnavailable, provErr.StatusCode())
	assert.Equal(t, int64(1), counter.Load(), "no retries")
}

func TestOpenAIProvider_Unauthorized(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, http.StatusOK, "x")
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{APIKey: "wrong", BaseURL: srv.URL})

	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))
	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.True(t, provErr.IsUnauthorized())
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[],"usage":{}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestOpenAIProvider_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	})

	start := time.Now()
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("x")}))
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
