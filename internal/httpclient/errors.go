package httpclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UpstreamError represents an error returned by an upstream service
type UpstreamError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, stripQuery(e.URL))
}

// errorBody covers the {"error": {"message": ...}} shape shared by OpenAI,
// Anthropic, Gemini and OpenRouter, plus the flat {"error": "..."} used by relays.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type nestedError struct {
	Message string `json:"message"`
}

// Message extracts the upstream error message, or "" when the body has none.
func (e *UpstreamError) Message() string {
	var body errorBody
	if err := json.Unmarshal(e.Body, &body); err != nil || len(body.Error) == 0 {
		return ""
	}

	var nested nestedError
	if err := json.Unmarshal(body.Error, &nested); err == nil {
		return nested.Message
	}

	var flat string
	if err := json.Unmarshal(body.Error, &flat); err == nil {
		return flat
	}
	return ""
}

// stripQuery keeps credentials passed as query parameters out of logs.
func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i != -1 {
		return url[:i]
	}
	return url
}
