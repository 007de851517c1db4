// Package relay forwards chat requests to an OpenRouter-compatible upstream
// on behalf of clients that must never see the provider credential.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/httpclient"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/pkg/api"
)

const upstreamName = "OpenRouter"

var ErrNoChoices = errors.New("upstream returned no choices")

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []api.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage json.RawMessage `json:"usage,omitempty"`
}

// Completion is one upstream answer. RawUsage is the upstream usage object
// untouched; Usage holds the token counts parsed from it.
type Completion struct {
	Text     string
	Usage    *api.Usage
	RawUsage json.RawMessage
}

// Client is a single-shot chat completions client for the upstream.
type Client struct {
	http    httpclient.HTTPClient
	url     string
	apiKey  string
	referer string
	title   string
}

func NewClient(cfg config.RelayConfig, client httpclient.HTTPClient) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:    client,
		url:     cfg.UpstreamURL,
		apiKey:  cfg.APIKey,
		referer: cfg.Referer,
		title:   cfg.Title,
	}
}

// Complete sends messages to upstreamModel. Non-2xx answers come back as an
// *llm.Error carrying the upstream status and message.
func (c *Client) Complete(ctx context.Context, upstreamModel string, req *api.RelayRequest) (*Completion, error) {
	body := completionRequest{
		Model:       upstreamModel,
		Messages:    req.Messages,
		Temperature: api.DefaultTemperature,
		MaxTokens:   api.DefaultMaxTokens,
	}
	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		body.MaxTokens = *req.MaxTokens
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"HTTP-Referer":  c.referer,
		"X-Title":       c.title,
	}

	var resp completionResponse
	if err := httpclient.SendRequest(ctx, c.http, http.MethodPost, c.url, headers, body, &resp); err != nil {
		return nil, llm.FromUpstream(upstreamName, err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	return &Completion{
		Text:     resp.Choices[0].Message.Content,
		Usage:    api.ParseUsage(resp.Usage),
		RawUsage: resp.Usage,
	}, nil
}
