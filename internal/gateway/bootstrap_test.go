package gateway

import (
	"context"
	"testing"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "github.com/nulzo/neurix/internal/llm/anthropic"
	_ "github.com/nulzo/neurix/internal/llm/openai"
	_ "github.com/nulzo/neurix/internal/llm/relay"
)

func TestBootstrapRegistry(t *testing.T) {
	cfg := &config.Config{
		Providers: []config.ProviderConfig{
			{ID: "openai", Type: "openai", Name: "OpenAI", Enabled: true},
			{ID: "anthropic", Type: "anthropic", Name: "Anthropic", APIKey: "k", Enabled: false},
			{ID: "mystery", Type: "not-a-type", Enabled: true},
			{ID: "relay", Type: "relay", Name: "Relay", BaseURL: "https://relay.example.com", Enabled: true},
		},
		Models: []config.ModelConfig{
			{Name: "ChatGPT", Provider: "openai", Model: "gpt-4", Color: "#10a37f", Enabled: true},
			{Name: "Claude", Provider: "anthropic", Model: "claude-3", Enabled: true},
			{Name: "Qwen", Provider: "relay", Model: "Qwen3-235B", Enabled: true},
			{Name: "Qwen", Provider: "relay", Model: "dup", Enabled: true},
			{Name: "Bad", Provider: "relay", Model: "x", Color: "not-a-color", Enabled: true},
			{Name: "Hidden", Provider: "relay", Model: "GLM-4.5-Air", Enabled: false},
		},
	}

	reg := BootstrapRegistry(cfg, zap.NewNop())

	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, []string{"ChatGPT", "Qwen"}, reg.Enabled())

	descs := reg.Descriptors()
	assert.Equal(t, "ChatGPT", descs[0].Name)
	assert.Equal(t, "openai", descs[0].Provider)
	assert.Equal(t, "Hidden", descs[2].Name)

	qwen, ok := reg.Lookup("Qwen")
	require.True(t, ok)
	assert.Equal(t, "Qwen3-235B", qwen.Descriptor.UpstreamModel)
	assert.Equal(t, "https://relay.example.com", qwen.Descriptor.Endpoint)
}

func TestBootstrapRegistry_MissingKeyFailsAtCallTime(t *testing.T) {
	cfg := &config.Config{
		Providers: []config.ProviderConfig{{ID: "openai", Type: "openai", Name: "OpenAI", Enabled: true}},
		Models:    []config.ModelConfig{{Name: "ChatGPT", Provider: "openai", Model: "gpt-4", Enabled: true}},
	}
	d := NewDispatcher(BootstrapRegistry(cfg, zap.NewNop()), zap.NewNop(), Options{})

	r, ok := d.DispatchOne(context.Background(), "", "ChatGPT", &api.ChatRequest{Message: "x"})
	require.True(t, ok)
	assert.False(t, r.Succeeded)
	assert.Equal(t, "OpenAI API key not configured", r.Error)
}
