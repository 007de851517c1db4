package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/httpclient"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/pkg/api"
)

const pn = string(llm.Google)

func init() {
	llm.Register(pn, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
	client *http.Client
}

func NewAdapter(config config.ProviderConfig) (llm.Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com/v1"
	}
	return &Adapter{
		config: config,
		client: &http.Client{},
	}, nil
}

func (a *Adapter) Name() string { return a.config.DisplayName() }
func (a *Adapter) Type() string { return pn }

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}
type GeminiRequest struct {
	Contents         []GeminiContent  `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}
type GeminiResponse struct {
	Candidates    []GeminiCandidate `json:"candidates"`
	UsageMetadata *UsageMetadata    `json:"usageMetadata,omitempty"`
}

// Shape builds the generateContent body for a normalized request.
func Shape(req *api.ChatRequest) GeminiRequest {
	return GeminiRequest{
		Contents: []GeminiContent{{
			Parts: []GeminiPart{{Text: req.Prompt()}},
		}},
		GenerationConfig: GenerationConfig{
			Temperature:     req.TemperatureOrDefault(),
			MaxOutputTokens: req.MaxTokensOrDefault(),
		},
	}
}

func (a *Adapter) Complete(ctx context.Context, model string, req *api.ChatRequest) (*llm.Completion, error) {
	if a.config.APIKey == "" {
		return nil, llm.MissingCredential(a.Name())
	}

	// Gemini authenticates with a query parameter rather than a header
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(a.config.BaseURL, "/"),
		url.PathEscape(model),
		url.QueryEscape(a.config.APIKey),
	)

	var gResp GeminiResponse
	if err := httpclient.SendRequest(ctx, a.client, http.MethodPost, endpoint, nil, Shape(req), &gResp); err != nil {
		return nil, a.redact(llm.FromUpstream(a.Name(), err))
	}

	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates from %s", a.Name())
	}

	completion := &llm.Completion{Text: gResp.Candidates[0].Content.Parts[0].Text}
	if u := gResp.UsageMetadata; u != nil {
		completion.Usage = &api.Usage{
			PromptTokens:     u.PromptTokenCount,
			CompletionTokens: u.CandidatesTokenCount,
			TotalTokens:      u.TotalTokenCount,
		}
	}
	return completion, nil
}

// redact removes the query-string credential from transport errors, whose
// text embeds the request URL.
func (a *Adapter) redact(err error) error {
	var providerErr *llm.Error
	if errors.As(err, &providerErr) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), url.QueryEscape(a.config.APIKey), "REDACTED"))
}
