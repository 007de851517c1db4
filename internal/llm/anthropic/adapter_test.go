package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/internal/llm/anthropic"
	"github.com/nulzo/neurix/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var claude = api.ModelDescriptor{Name: "Claude", UpstreamModel: "claude-3-sonnet-20240229"}

func TestAnthropicComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req anthropic.Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-sonnet-20240229", req.Model)
		assert.Equal(t, 128, req.MaxTokens)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "ctx\n\nHi", req.Messages[0].Content)
		}

		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"content": [{"type": "text", "text": "Hello"}, {"type": "text", "text": " world"}],
			"model": "claude-3-sonnet-20240229",
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 4, "output_tokens": 2}
		}`))
	}))
	defer server.Close()

	adapter, err := anthropic.NewAdapter(config.ProviderConfig{ID: "anthropic", Type: "anthropic", Name: "Claude", APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	result := llm.Call(context.Background(), adapter, claude, &api.ChatRequest{Message: "Hi", Context: "ctx", MaxTokens: api.Int(128)})

	assert.True(t, result.Succeeded)
	assert.Equal(t, "Hello world", result.Text)
	assert.Equal(t, 6, result.Usage.TotalTokens)
}

func TestAnthropicComplete_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"max_tokens: must be positive"}}`))
	}))
	defer server.Close()

	adapter, err := anthropic.NewAdapter(config.ProviderConfig{ID: "anthropic", Type: "anthropic", Name: "Claude", APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	result := llm.Call(context.Background(), adapter, claude, &api.ChatRequest{Message: "Hi"})

	assert.False(t, result.Succeeded)
	assert.Equal(t, "max_tokens: must be positive", result.Error)
	assert.Equal(t, http.StatusBadRequest, result.Status)
}

func TestAnthropicComplete_GenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	adapter, err := anthropic.NewAdapter(config.ProviderConfig{ID: "anthropic", Type: "anthropic", Name: "Claude", APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	result := llm.Call(context.Background(), adapter, claude, &api.ChatRequest{Message: "Hi"})

	assert.Equal(t, "Claude API request failed", result.Error)
	assert.Equal(t, http.StatusBadGateway, result.Status)
}

func TestAnthropicComplete_MissingKey(t *testing.T) {
	adapter, err := anthropic.NewAdapter(config.ProviderConfig{ID: "anthropic", Type: "anthropic", Name: "Claude"})
	require.NoError(t, err)

	result := llm.Call(context.Background(), adapter, claude, &api.ChatRequest{Message: "Hi"})

	assert.False(t, result.Succeeded)
	assert.Equal(t, "Claude API key not configured", result.Error)
}
