package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/internal/llm/relay"
	"github.com/nulzo/neurix/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var qwen = api.ModelDescriptor{Name: "Qwen", UpstreamModel: "Qwen3-235B"}

func newAdapter(t *testing.T, url string) llm.Provider {
	t.Helper()
	p, err := relay.NewAdapter(config.ProviderConfig{ID: "relay", Type: "relay", Name: "OpenRouter", BaseURL: url})
	require.NoError(t, err)
	return p
}

func TestRelayComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body api.RelayRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Qwen3-235B", body.ModelName)
		if assert.Len(t, body.Messages, 1) {
			assert.Equal(t, "hello", body.Messages[0].Content)
		}

		_ = json.NewEncoder(w).Encode(api.RelayResponse{Success: true, Data: "hi!", Model: "Qwen3-235B", Usage: json.RawMessage(`{"total_tokens":7,"cost":0.0001}`)})
	}))
	defer server.Close()

	result := llm.Call(context.Background(), newAdapter(t, server.URL+"/"), qwen, &api.ChatRequest{Message: "hello"})

	assert.True(t, result.Succeeded)
	assert.Equal(t, "Qwen", result.Model)
	assert.Equal(t, "hi!", result.Text)
	assert.Equal(t, 7, result.Usage.TotalTokens)
}

func TestRelayComplete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Success: false, Error: api.MsgRateLimited, Model: "unknown"})
	}))
	defer server.Close()

	result := llm.Call(context.Background(), newAdapter(t, server.URL), qwen, &api.ChatRequest{Message: "hello"})

	assert.False(t, result.Succeeded)
	assert.Equal(t, http.StatusTooManyRequests, result.Status)
	assert.Equal(t, api.MsgRateLimited, result.Error)
}

func TestRelayComplete_UnsuccessfulEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.RelayResponse{Success: false})
	}))
	defer server.Close()

	result := llm.Call(context.Background(), newAdapter(t, server.URL), qwen, &api.ChatRequest{Message: "hello"})

	assert.False(t, result.Succeeded)
	assert.Equal(t, "OpenRouter API request failed", result.Error)
}

func TestRelayComplete_NoURL(t *testing.T) {
	result := llm.Call(context.Background(), newAdapter(t, ""), qwen, &api.ChatRequest{Message: "hello"})

	assert.False(t, result.Succeeded)
	assert.Equal(t, "OpenRouter relay URL not configured", result.Error)
}
