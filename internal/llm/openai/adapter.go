package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/pkg/api"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func init() {
	llm.Register(string(llm.OpenAI), NewAdapter)
}

// Adapter talks to any OpenAI-compatible chat completions API. DeepSeek is
// served by the same adapter with a different base URL.
type Adapter struct {
	config config.ProviderConfig
	client *openai.Client
}

func NewAdapter(config config.ProviderConfig) (llm.Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		// the SDK resolves paths relative to the base URL
		option.WithBaseURL(strings.TrimRight(config.BaseURL, "/") + "/"),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{}),
	}
	if org, ok := config.Config["organization"]; ok {
		opts = append(opts, option.WithHeader("OpenAI-Organization", org))
	}

	return &Adapter{
		config: config,
		client: openai.NewClient(opts...),
	}, nil
}

func (a *Adapter) Name() string {
	return a.config.DisplayName()
}

func (a *Adapter) Type() string {
	return string(llm.OpenAI)
}

func (a *Adapter) Complete(ctx context.Context, model string, req *api.ChatRequest) (*llm.Completion, error) {
	if a.config.APIKey == "" {
		return nil, llm.MissingCredential(a.Name())
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt()),
		}),
		Temperature: openai.F(req.TemperatureOrDefault()),
		MaxTokens:   openai.F(int64(req.MaxTokensOrDefault())),
	})
	if err != nil {
		return nil, a.handleUpstreamError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", a.Name())
	}

	return &llm.Completion{
		Text: resp.Choices[0].Message.Content,
		Usage: &api.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (a *Adapter) handleUpstreamError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	msg := apiErr.Message
	if msg == "" {
		msg = a.Name() + " API request failed"
	}
	return &llm.Error{
		Provider: a.Name(),
		Status:   apiErr.StatusCode,
		Message:  msg,
		Err:      err,
	}
}
