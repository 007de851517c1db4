package ollama

import (
	"strings"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/internal/llm/openai"
)

// placeholderKey satisfies the OpenAI adapter's credential check. Ollama
// ignores the Authorization header.
const placeholderKey = "ollama"

func init() {
	llm.Register(string(llm.Ollama), NewAdapter)
}

// Adapter serves locally hosted models through Ollama's OpenAI-compatible
// endpoint.
type Adapter struct {
	llm.Provider // embeds the OpenAI adapter for Complete
}

func NewAdapter(config config.ProviderConfig) (llm.Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if !strings.HasSuffix(strings.TrimRight(config.BaseURL, "/"), "/v1") {
		config.BaseURL = strings.TrimRight(config.BaseURL, "/") + "/v1"
	}
	if config.APIKey == "" {
		config.APIKey = placeholderKey
	}
	if config.Name == "" {
		config.Name = "Ollama"
	}

	oaAdapter, err := openai.NewAdapter(config)
	if err != nil {
		return nil, err
	}

	return &Adapter{Provider: oaAdapter}, nil
}

func (a *Adapter) Type() string {
	return string(llm.Ollama)
}
