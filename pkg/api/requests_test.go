package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/nulzo/neurix/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRequestDefaults(t *testing.T) {
	req := &api.ChatRequest{Message: "hi"}
	assert.Equal(t, 0.7, req.TemperatureOrDefault())
	assert.Equal(t, 500, req.MaxTokensOrDefault())

	req.Temperature = api.Float(0)
	req.MaxTokens = api.Int(64)
	assert.Equal(t, 0.0, req.TemperatureOrDefault())
	assert.Equal(t, 64, req.MaxTokensOrDefault())
}

func TestChatRequestValidate(t *testing.T) {
	assert.ErrorIs(t, (&api.ChatRequest{Message: "   "}).Validate(), api.ErrEmptyMessage)
	assert.ErrorIs(t, (*api.ChatRequest)(nil).Validate(), api.ErrEmptyMessage)
	assert.NoError(t, (&api.ChatRequest{Message: "hello"}).Validate())
}

func TestChatRequestPrompt(t *testing.T) {
	req := &api.ChatRequest{Message: "question"}
	assert.Equal(t, "question", req.Prompt())

	req.Context = "some page text"
	assert.Equal(t, "some page text\n\nquestion", req.Prompt())

	relay := req.ToRelayRequest("DeepSeek")
	assert.Equal(t, "DeepSeek", relay.ModelName)
	assert.Len(t, relay.Messages, 1)
	assert.Equal(t, "user", relay.Messages[0].Role)
	assert.Equal(t, req.Prompt(), relay.Messages[0].Content)
}

func TestRateLimitError(t *testing.T) {
	err := api.RateLimitError(42)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Equal(t, 42, err.RetryAfter)

	env := err.Envelope()
	assert.False(t, env.Success)
	assert.Equal(t, "unknown", env.Model)
	assert.Equal(t, api.MsgRateLimited, env.Error)
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := api.UpstreamError(http.StatusBadGateway, "bad", "Claude", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Claude", err.Envelope().Model)
}

func TestAggregatedResponseResult(t *testing.T) {
	agg := &api.AggregatedResponse{Results: []api.ModelResult{
		api.SuccessResult("A", "a", nil),
		api.FailedResult("B", "nope", 500),
	}}
	r, ok := agg.Result("B")
	assert.True(t, ok)
	assert.False(t, r.Succeeded)
	_, ok = agg.Result("C")
	assert.False(t, ok)
}

func TestRelayResponse_AlwaysCarriesData(t *testing.T) {
	b, err := json.Marshal(api.RelayResponse{Success: true, Model: "DeepSeek"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":"","model":"DeepSeek"}`, string(b))

	b, err = json.Marshal(api.RateLimitError(1).Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Rate limit exceeded. Please try again later.","model":"unknown"}`, string(b))
}

func TestParseUsage(t *testing.T) {
	resp := api.RelayResponse{Usage: json.RawMessage(`{"prompt_tokens":2,"completion_tokens":3,"total_tokens":5,"cost":0.01}`)}
	u := resp.TokenUsage()
	require.NotNil(t, u)
	assert.Equal(t, 5, u.TotalTokens)

	assert.Nil(t, api.ParseUsage(nil))
	assert.Nil(t, api.ParseUsage(json.RawMessage(`"n/a"`)))
}
