package llm_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/httpclient"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "Mock" }
func (m *MockProvider) Type() string { return "mock" }

func (m *MockProvider) Complete(ctx context.Context, model string, req *api.ChatRequest) (*llm.Completion, error) {
	args := m.Called(ctx, model, req)
	if c := args.Get(0); c != nil {
		return c.(*llm.Completion), args.Error(1)
	}
	return nil, args.Error(1)
}

type panicProvider struct{}

func (panicProvider) Name() string { return "Panicky" }
func (panicProvider) Type() string { return "panic" }
func (panicProvider) Complete(context.Context, string, *api.ChatRequest) (*llm.Completion, error) {
	panic("nil map")
}

var descriptor = api.ModelDescriptor{Name: "Mocked", UpstreamModel: "mock-1"}

func TestCall_Success(t *testing.T) {
	p := new(MockProvider)
	req := &api.ChatRequest{Message: "hi"}
	p.On("Complete", mock.Anything, "mock-1", req).Return(&llm.Completion{Text: "hello", Usage: &api.Usage{TotalTokens: 3}}, nil)

	result := llm.Call(context.Background(), p, descriptor, req)

	assert.True(t, result.Succeeded)
	assert.Equal(t, "Mocked", result.Model)
	assert.Equal(t, "hello", result.Text)
	assert.Empty(t, result.Error)
	assert.Equal(t, 3, result.Usage.TotalTokens)
	p.AssertExpectations(t)
}

func TestCall_SeparatesReasoning(t *testing.T) {
	p := new(MockProvider)
	req := &api.ChatRequest{Message: "hi"}
	p.On("Complete", mock.Anything, "mock-1", req).Return(&llm.Completion{Text: "<think>greeting</think>\n\nHello!"}, nil)

	result := llm.Call(context.Background(), p, descriptor, req)

	assert.True(t, result.Succeeded)
	assert.Equal(t, "Hello!", result.Text)
	assert.Equal(t, "greeting", result.Reasoning)
}

func TestCall_ProviderError(t *testing.T) {
	p := new(MockProvider)
	upstream := &httpclient.UpstreamError{StatusCode: http.StatusTooManyRequests, Body: []byte(`{}`)}
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(nil, llm.FromUpstream("Mock", upstream))

	result := llm.Call(context.Background(), p, descriptor, &api.ChatRequest{Message: "hi"})

	assert.False(t, result.Succeeded)
	assert.Empty(t, result.Text)
	assert.Equal(t, "Mock API request failed", result.Error)
	assert.Equal(t, http.StatusTooManyRequests, result.Status)
}

func TestCall_TransportError(t *testing.T) {
	p := new(MockProvider)
	p.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

	result := llm.Call(context.Background(), p, descriptor, &api.ChatRequest{Message: "hi"})

	assert.False(t, result.Succeeded)
	assert.Equal(t, "dial tcp: connection refused", result.Error)
	assert.Zero(t, result.Status)
}

func TestCall_RecoversPanic(t *testing.T) {
	result := llm.Call(context.Background(), panicProvider{}, descriptor, &api.ChatRequest{Message: "hi"})

	assert.False(t, result.Succeeded)
	assert.Contains(t, result.Error, "Panicky adapter failed")
}

func TestCall_EmptyMessageMakesNoCall(t *testing.T) {
	p := new(MockProvider)

	result := llm.Call(context.Background(), p, descriptor, &api.ChatRequest{})

	assert.False(t, result.Succeeded)
	p.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestMissingCredential(t *testing.T) {
	err := llm.MissingCredential("Claude")
	assert.ErrorIs(t, err, llm.ErrMissingCredential)

	var providerErr *llm.Error
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, "Claude API key not configured", providerErr.Message)
}

func TestFromUpstream_PrefersUpstreamMessage(t *testing.T) {
	upstream := &httpclient.UpstreamError{StatusCode: 400, Body: []byte(`{"error":{"message":"bad model"}}`)}
	err := llm.FromUpstream("OpenAI", upstream)

	var providerErr *llm.Error
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, "bad model", providerErr.Message)
	assert.Equal(t, 400, providerErr.Status)

	plain := errors.New("plain")
	assert.Same(t, plain, llm.FromUpstream("OpenAI", plain))
}

func TestFactoryRegistry(t *testing.T) {
	llm.Register("test-registry", func(cfg config.ProviderConfig) (llm.Provider, error) {
		return new(MockProvider), nil
	})

	p, err := llm.New(config.ProviderConfig{ID: "x", Type: "test-registry"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Type())
	assert.Contains(t, llm.Registered(), "test-registry")

	assert.Panics(t, func() {
		llm.Register("test-registry", nil)
	})

	_, err = llm.New(config.ProviderConfig{Type: "does-not-exist"})
	assert.Error(t, err)
}
