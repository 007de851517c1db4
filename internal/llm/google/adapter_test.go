package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	req := &api.ChatRequest{Message: "Explain gravity", Temperature: api.Float(0.2)}

	gr := Shape(req)

	assert.Len(t, gr.Contents, 1)
	assert.Len(t, gr.Contents[0].Parts, 1)
	assert.Equal(t, "Explain gravity", gr.Contents[0].Parts[0].Text)
	assert.Equal(t, 0.2, gr.GenerationConfig.Temperature)
	assert.Equal(t, 500, gr.GenerationConfig.MaxOutputTokens)
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))

		var body GeminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 0.7, body.GenerationConfig.Temperature)

		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "Things fall."}], "role": "model"}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 3, "totalTokenCount": 6}
		}`))
	}))
	defer server.Close()

	adapter, err := NewAdapter(config.ProviderConfig{ID: "google", Type: "google", Name: "Gemini", APIKey: "g-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	completion, err := adapter.Complete(context.Background(), "gemini-pro", &api.ChatRequest{Message: "Explain gravity"})
	require.NoError(t, err)
	assert.Equal(t, "Things fall.", completion.Text)
	assert.Equal(t, 6, completion.Usage.TotalTokens)
}

func TestComplete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	adapter, err := NewAdapter(config.ProviderConfig{ID: "google", Type: "google", Name: "Gemini", APIKey: "g-key", BaseURL: server.URL})
	require.NoError(t, err)

	result := llm.Call(context.Background(), adapter, api.ModelDescriptor{Name: "Gemini", UpstreamModel: "gemini-pro"}, &api.ChatRequest{Message: "x"})
	assert.False(t, result.Succeeded)
	assert.Equal(t, "no candidates from Gemini", result.Error)
}

func TestComplete_UpstreamErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	adapter, err := NewAdapter(config.ProviderConfig{ID: "google", Type: "google", Name: "Gemini", APIKey: "very-secret", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = adapter.Complete(context.Background(), "gemini-pro", &api.ChatRequest{Message: "x"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "very-secret")

	result := llm.Call(context.Background(), adapter, api.ModelDescriptor{Name: "Gemini", UpstreamModel: "gemini-pro"}, &api.ChatRequest{Message: "x"})
	assert.Equal(t, "API key not valid", result.Error)
	assert.Equal(t, http.StatusForbidden, result.Status)
}
