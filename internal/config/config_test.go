package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.True(t, cfg.Redis.Enabled)

	assert.Equal(t, 30, cfg.Relay.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.Relay.RateLimit.Window)
	assert.Equal(t, 1000, cfg.Relay.RateLimit.MaxClients)
	assert.Equal(t, "CF-Connecting-IP", cfg.Relay.ClientHeader)
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", cfg.Relay.UpstreamURL)
	assert.Equal(t, "https://neurix-ext.com", cfg.Relay.Referer)
	assert.Equal(t, "memory", cfg.Relay.Store)
	assert.Len(t, cfg.Relay.Models, 5)
	assert.Len(t, cfg.Models, 4)
	assert.Equal(t, "ChatGPT", cfg.Models[0].Name)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_LegacyEnvNames(t *testing.T) {
	os.Clearenv()
	t.Setenv("OPENROUTER_API_KEY", "sk-or-123")
	t.Setenv("APP_URL", "https://example.org")
	t.Setenv("DEEPSEEK_API_KEY", "sk-ds")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sk-or-123", cfg.Relay.APIKey)
	assert.Equal(t, "https://example.org", cfg.Relay.Referer)

	var deepseek ProviderConfig
	for _, p := range cfg.Providers {
		if p.ID == "deepseek" {
			deepseek = p
		}
	}
	assert.Equal(t, "sk-ds", deepseek.APIKey)
	assert.Equal(t, "DeepSeek", deepseek.DisplayName())
}

func TestLoadConfig_APIKeyResolution(t *testing.T) {
	os.Clearenv()
	t.Setenv("TEST_API_KEY", "sk-test-12345")

	configContent := `
relay:
  rate_limit:
    limit: 5
    window: 10s
  models:
    - name: "Tiny"
      model: "vendor/tiny:free"
providers:
  - id: "test-provider"
    name: "Test"
    type: "test"
    api_key: "ENV:TEST_API_KEY"
    enabled: true
models:
  - name: "Tester"
    provider: "test-provider"
    model: "tiny"
    color: "#123456"
    enabled: true
`
	f, err := os.CreateTemp("", "config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	_, err = f.WriteString(configContent)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	t.Setenv("CONFIG_FILE", f.Name())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "sk-test-12345", cfg.Providers[0].APIKey)
	assert.Equal(t, 5, cfg.Relay.RateLimit.Limit)
	assert.Equal(t, 10*time.Second, cfg.Relay.RateLimit.Window)
	require.Len(t, cfg.Relay.Models, 1)
	assert.Equal(t, "Tiny", cfg.Relay.Models[0].Name)
	require.Len(t, cfg.Models, 1)
	assert.Equal(t, "Tester", cfg.Models[0].Name)
}

func TestValidate(t *testing.T) {
	os.Clearenv()
	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Relay.RateLimit.Limit = 0
	assert.Error(t, cfg.Validate())

	cfg.Relay.RateLimit.Limit = 30
	cfg.Relay.Models = append(cfg.Relay.Models, RelayModel{Name: "DeepSeek", Model: "x"})
	assert.ErrorContains(t, cfg.Validate(), "duplicate")

	cfg.Relay.Models = DefaultRelayModels()
	cfg.Relay.Store = "redis"
	assert.Error(t, cfg.Validate())
}
