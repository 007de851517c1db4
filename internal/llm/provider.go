package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/nulzo/neurix/internal/httpclient"
	"github.com/nulzo/neurix/internal/llm/processing"
	"github.com/nulzo/neurix/pkg/api"
)

type ProviderName string

const (
	OpenAI    ProviderName = "openai"
	Anthropic ProviderName = "anthropic"
	Google    ProviderName = "google"
	Relay     ProviderName = "relay"
	Ollama    ProviderName = "ollama"
)

var ErrMissingCredential = errors.New("missing credential")

// Provider performs exactly one upstream call per Complete.
type Provider interface {
	// Name is the human-readable provider name used in error messages.
	Name() string
	Type() string
	Complete(ctx context.Context, model string, req *api.ChatRequest) (*Completion, error)
}

// Completion is the single textual answer extracted from a provider payload.
type Completion struct {
	Text  string
	Usage *api.Usage
}

// Error is a provider failure that is safe to show to the caller.
// Status is the upstream HTTP status, or 0 when none was received.
type Error struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func MissingCredential(provider string) error {
	return &Error{
		Provider: provider,
		Message:  provider + " API key not configured",
		Err:      ErrMissingCredential,
	}
}

// FromUpstream turns a non-2xx *httpclient.UpstreamError into an *Error,
// preferring the upstream's own message. Other errors are returned unchanged.
func FromUpstream(provider string, err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return err
	}

	msg := upstreamErr.Message()
	if msg == "" {
		msg = provider + " API request failed"
	}
	return &Error{
		Provider: provider,
		Status:   upstreamErr.StatusCode,
		Message:  msg,
		Err:      err,
	}
}

// Call runs one adapter call for the described model and always returns a
// result: errors and panics become failed results.
func Call(ctx context.Context, p Provider, model api.ModelDescriptor, req *api.ChatRequest) (result api.ModelResult) {
	defer func() {
		if r := recover(); r != nil {
			result = api.FailedResult(model.Name, fmt.Sprintf("%s adapter failed: %v", p.Name(), r), 0)
		}
	}()

	if err := req.Validate(); err != nil {
		return api.FailedResult(model.Name, err.Error(), 0)
	}

	completion, err := p.Complete(ctx, model.UpstreamModel, req)
	if err != nil {
		var providerErr *Error
		if errors.As(err, &providerErr) {
			return api.FailedResult(model.Name, providerErr.Message, providerErr.Status)
		}
		return api.FailedResult(model.Name, err.Error(), 0)
	}
	if completion == nil {
		return api.FailedResult(model.Name, p.Name()+" returned an empty response", 0)
	}

	text, reasoning := processing.SplitReasoning(completion.Text)
	result = api.SuccessResult(model.Name, text, completion.Usage)
	result.Reasoning = reasoning
	return result
}
