package anthropic

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

const defaultVersion = "2023-06-01"

func init() {
	llm.Register(string(llm.Anthropic), NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(config config.ProviderConfig) (llm.Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com/v1"
	}
	return &Adapter{
		config: config,
		client: &http.Client{},
	}, nil
}

func (a *Adapter) Name() string { return a.config.DisplayName() }
func (a *Adapter) Type() string { return string(llm.Anthropic) }

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}
type Response struct {
	ID         string    `json:"id"`
	Content    []Content `json:"content"`
	Model      string    `json:"model"`
	StopReason string    `json:"stop_reason"`
	Usage      Usage     `json:"usage"`
}
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func toAnthropicReq(model string, req *api.ChatRequest) Request {
	return Request{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: req.Prompt()}},
		MaxTokens:   req.MaxTokensOrDefault(),
		Temperature: req.TemperatureOrDefault(),
	}
}

func (a *Adapter) Complete(ctx context.Context, model string, req *api.ChatRequest) (*llm.Completion, error) {
	if a.config.APIKey == "" {
		return nil, llm.MissingCredential(a.Name())
	}

	headers := map[string]string{
		"x-api-key":         a.config.APIKey,
		"anthropic-version": defaultVersion,
	}
	if v, ok := a.config.Config["version"]; ok {
		headers["anthropic-version"] = v
	}

	var anthroResp Response
	url := fmt.Sprintf("%s/messages", strings.TrimRight(a.config.BaseURL, "/"))
	if err := httpclient.SendRequest(ctx, a.client, http.MethodPost, url, headers, toAnthropicReq(model, req), &anthroResp); err != nil {
		return nil, llm.FromUpstream(a.Name(), err)
	}

	var text strings.Builder
	for _, c := range anthroResp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	return &llm.Completion{
		Text: text.String(),
		Usage: &api.Usage{
			PromptTokens:     anthroResp.Usage.InputTokens,
			CompletionTokens: anthroResp.Usage.OutputTokens,
			TotalTokens:      anthroResp.Usage.InputTokens + anthroResp.Usage.OutputTokens,
		},
	}, nil
}
