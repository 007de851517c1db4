// Package relay routes completions through a neurix relay, which holds the
// provider credential and enforces per-client quota.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/httpclient"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/pkg/api"
)

func init() {
	llm.Register(string(llm.Relay), NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client httpclient.HTTPClient
}

func NewAdapter(config config.ProviderConfig) (llm.Provider, error) {
	return &Adapter{
		config: config,
		client: &http.Client{},
	}, nil
}

func (a *Adapter) Name() string { return a.config.DisplayName() }
func (a *Adapter) Type() string { return string(llm.Relay) }

// Complete sends the request to {base}/api/chat. model is the relay's
// friendly model name, not an upstream identifier.
func (a *Adapter) Complete(ctx context.Context, model string, req *api.ChatRequest) (*llm.Completion, error) {
	if a.config.BaseURL == "" {
		return nil, &llm.Error{Provider: a.Name(), Message: a.Name() + " relay URL not configured"}
	}

	url := fmt.Sprintf("%s/api/chat", strings.TrimRight(a.config.BaseURL, "/"))

	var resp api.RelayResponse
	if err := httpclient.SendRequest(ctx, a.client, http.MethodPost, url, nil, req.ToRelayRequest(model), &resp); err != nil {
		return nil, llm.FromUpstream(a.Name(), err)
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = a.Name() + " API request failed"
		}
		return nil, &llm.Error{Provider: a.Name(), Message: msg}
	}

	return &llm.Completion{Text: resp.Data, Usage: resp.TokenUsage()}, nil
}
