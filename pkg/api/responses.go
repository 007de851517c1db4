package api

import "encoding/json"

// Usage mirrors the token accounting returned by OpenAI-compatible upstreams.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelResult is the outcome of one adapter call. Text is set iff Succeeded,
// Error iff not.
type ModelResult struct {
	RequestID string `json:"requestId,omitempty"`
	Model     string `json:"model"`
	Succeeded bool   `json:"succeeded"`
	Text      string `json:"text,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	Error     string `json:"error,omitempty"`
	Status    int    `json:"status,omitempty"`
	Usage     *Usage `json:"usage,omitempty"`
	// LatencyMS is the wall time of this model's own call.
	LatencyMS int64 `json:"latencyMs,omitempty"`
}

func SuccessResult(model, text string, usage *Usage) ModelResult {
	return ModelResult{Model: model, Succeeded: true, Text: text, Usage: usage}
}

func FailedResult(model, message string, status int) ModelResult {
	return ModelResult{Model: model, Error: message, Status: status}
}

// AggregatedResponse holds one result per selected model, in selection order.
type AggregatedResponse struct {
	RequestID string        `json:"requestId"`
	Results   []ModelResult `json:"results"`
}

// Result returns the entry for the named model.
func (a *AggregatedResponse) Result(model string) (ModelResult, bool) {
	for _, r := range a.Results {
		if r.Model == model {
			return r, true
		}
	}
	return ModelResult{}, false
}

// RelayResponse is the body of a successful relayed completion. Usage is the
// upstream usage object exactly as received, including provider-specific
// fields such as cost.
type RelayResponse struct {
	Success bool            `json:"success"`
	Data    string          `json:"data"`
	Model   string          `json:"model,omitempty"`
	Error   string          `json:"error,omitempty"`
	Usage   json.RawMessage `json:"usage,omitempty"`
}

// TokenUsage decodes the token counts out of Usage. It returns nil when
// Usage is absent or not an object.
func (r *RelayResponse) TokenUsage() *Usage {
	return ParseUsage(r.Usage)
}

// ParseUsage extracts the token counts from a raw usage object.
func ParseUsage(raw json.RawMessage) *Usage {
	if len(raw) == 0 {
		return nil
	}
	var u Usage
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	return &u
}

// ErrorResponse is the envelope for every failed relay or compare request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Model   string `json:"model,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// ModelStatus is the availability report produced by a probe call.
type ModelStatus struct {
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	Color     string `json:"color,omitempty"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// ModelsResponse lists what each surface accepts: friendly relay names and
// the dispatcher's registered models.
type ModelsResponse struct {
	Models   []string          `json:"models"`
	Dispatch []ModelDescriptor `json:"dispatch,omitempty"`
}
