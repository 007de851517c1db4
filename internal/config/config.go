package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Log       LogConfig        `mapstructure:"log"`
	Relay     RelayConfig      `mapstructure:"relay"`
	Dispatch  DispatchConfig   `mapstructure:"dispatch"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Tracing   TracingConfig    `mapstructure:"tracing"`
	Providers []ProviderConfig `mapstructure:"providers"`
	Models    []ModelConfig    `mapstructure:"models"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	UpdateCheckURL  string        `mapstructure:"update_check_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// RateLimitConfig describes a sliding window: at most Limit accepted requests
// per client within Window. The in-memory store clears all state once it
// tracks more than MaxClients keys.
type RateLimitConfig struct {
	Limit      int           `mapstructure:"limit" validate:"gt=0"`
	Window     time.Duration `mapstructure:"window" validate:"gt=0"`
	MaxClients int           `mapstructure:"max_clients" validate:"gt=0"`
}

type RelayConfig struct {
	ServiceName  string          `mapstructure:"service_name"`
	UpstreamURL  string          `mapstructure:"upstream_url" validate:"required,url"`
	APIKey       string          `mapstructure:"api_key"`
	Referer      string          `mapstructure:"referer"`
	Title        string          `mapstructure:"title"`
	ClientHeader string          `mapstructure:"client_header" validate:"required"`
	Timeout      time.Duration   `mapstructure:"timeout"`
	Store        string          `mapstructure:"store" validate:"oneof=memory redis"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
	Models       []RelayModel    `mapstructure:"models" validate:"dive"`
}

// RelayModel maps a friendly model name to the upstream model identifier.
type RelayModel struct {
	Name  string `mapstructure:"name" validate:"required"`
	Model string `mapstructure:"model" validate:"required"`
}

type DispatchConfig struct {
	MaxConcurrency int             `mapstructure:"max_concurrency" validate:"gte=0"`
	Timeout        time.Duration   `mapstructure:"timeout"`
	ProbeRPS       float64         `mapstructure:"probe_rps" validate:"gte=0"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// ProviderConfig configures one upstream provider instance. An empty APIKey is
// allowed: the adapter then fails every call without touching the network.
type ProviderConfig struct {
	ID      string            `mapstructure:"id" validate:"required"`
	Type    string            `mapstructure:"type" validate:"required"`
	Name    string            `mapstructure:"name"`
	APIKey  string            `mapstructure:"api_key"`
	BaseURL string            `mapstructure:"base_url" validate:"omitempty,url"`
	Enabled bool              `mapstructure:"enabled"`
	Config  map[string]string `mapstructure:"config"`
}

// DisplayName is used in user-facing error messages.
func (p ProviderConfig) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// ModelConfig is one entry of the model registry. Order in the file is the
// iteration order of the registry.
type ModelConfig struct {
	Name     string `mapstructure:"name" validate:"required"`
	Provider string `mapstructure:"provider" validate:"required"`
	Model    string `mapstructure:"model" validate:"required"`
	Icon     string `mapstructure:"icon"`
	Color    string `mapstructure:"color" validate:"omitempty,hexcolor"`
	Enabled  bool   `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the relay historically read these names directly
	_ = v.BindEnv("relay.api_key", "RELAY_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("relay.referer", "RELAY_REFERER", "APP_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if len(cfg.Relay.Models) == 0 {
		cfg.Relay.Models = DefaultRelayModels()
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels()
	}

	cfg.Relay.APIKey = resolveSecret(v, cfg.Relay.APIKey)
	for i, p := range cfg.Providers {
		cfg.Providers[i].APIKey = resolveSecret(v, p.APIKey)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.update_check_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.color", true)

	v.SetDefault("relay.service_name", "neurix-openrouter-proxy")
	v.SetDefault("relay.upstream_url", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("relay.api_key", "")
	v.SetDefault("relay.referer", "https://neurix-ext.com")
	v.SetDefault("relay.title", "NeurixExt")
	v.SetDefault("relay.client_header", "CF-Connecting-IP")
	v.SetDefault("relay.timeout", 0)
	v.SetDefault("relay.store", "memory")
	v.SetDefault("relay.rate_limit.limit", 30)
	v.SetDefault("relay.rate_limit.window", time.Minute)
	v.SetDefault("relay.rate_limit.max_clients", 1000)

	v.SetDefault("dispatch.max_concurrency", 0)
	v.SetDefault("dispatch.timeout", 0)
	v.SetDefault("dispatch.probe_rps", 2.0)
	v.SetDefault("dispatch.rate_limit.limit", 10)
	v.SetDefault("dispatch.rate_limit.window", time.Minute)
	v.SetDefault("dispatch.rate_limit.max_clients", 1000)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.dsn", "file:neurix.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "neurix")
}

// resolveSecret expands the ENV:NAME indirection used for credentials.
func resolveSecret(v *viper.Viper, value string) string {
	if !strings.HasPrefix(value, "ENV:") {
		return value
	}
	envVar := strings.TrimPrefix(value, "ENV:")
	// Check process environment first (explicit override)
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return v.GetString(envVar)
}

func DefaultRelayModels() []RelayModel {
	return []RelayModel{
		{Name: "DeepSeek", Model: "deepseek/deepseek-chat-v3-0324:free"},
		{Name: "GPT-OSS-20B", Model: "openai/gpt-oss-20b:free"},
		{Name: "GLM-4.5-Air", Model: "z-ai/glm-4.5-air:free"},
		{Name: "Qwen3-235B", Model: "qwen/qwen3-235b-a22b:free"},
		{Name: "Gemini-2.0-Flash", Model: "google/gemini-2.0-flash-exp:free"},
	}
}

func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{ID: "openai", Type: "openai", Name: "OpenAI", APIKey: "ENV:OPENAI_API_KEY", Enabled: true},
		{ID: "anthropic", Type: "anthropic", Name: "Anthropic", APIKey: "ENV:ANTHROPIC_API_KEY", Enabled: true},
		{ID: "google", Type: "google", Name: "Gemini", APIKey: "ENV:GEMINI_API_KEY", Enabled: true},
		// DeepSeek speaks the OpenAI wire format
		{ID: "deepseek", Type: "openai", Name: "DeepSeek", APIKey: "ENV:DEEPSEEK_API_KEY", BaseURL: "https://api.deepseek.com/v1", Enabled: true},
	}
}

func DefaultModels() []ModelConfig {
	return []ModelConfig{
		{Name: "ChatGPT", Provider: "openai", Model: "gpt-4", Icon: "🤖", Color: "#10a37f", Enabled: true},
		{Name: "Claude", Provider: "anthropic", Model: "claude-3-sonnet-20240229", Icon: "🎭", Color: "#6366f1", Enabled: true},
		{Name: "Gemini", Provider: "google", Model: "gemini-pro", Icon: "✨", Color: "#4285f4", Enabled: true},
		{Name: "DeepSeek", Provider: "deepseek", Model: "deepseek-chat", Icon: "🔍", Color: "#8b5cf6", Enabled: true},
	}
}
