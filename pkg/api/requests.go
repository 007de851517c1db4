package api

import (
	"errors"
	"strings"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
)

var ErrEmptyMessage = errors.New("message must not be empty")

// ChatRequest is the normalized request fanned out to every selected model.
// Optional fields are pointers so that an explicit zero survives.
type ChatRequest struct {
	Message     string   `json:"message" binding:"required"`
	Context     string   `json:"context,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
}

func (r *ChatRequest) Validate() error {
	if r == nil || strings.TrimSpace(r.Message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Prompt is the single user-role message sent upstream.
func (r *ChatRequest) Prompt() string {
	if r.Context == "" {
		return r.Message
	}
	return r.Context + "\n\n" + r.Message
}

func (r *ChatRequest) TemperatureOrDefault() float64 {
	if r.Temperature == nil {
		return DefaultTemperature
	}
	return *r.Temperature
}

func (r *ChatRequest) MaxTokensOrDefault() int {
	if r.MaxTokens == nil {
		return DefaultMaxTokens
	}
	return *r.MaxTokens
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	ChatRequest
	Models []string `json:"models,omitempty"`
}

// Message is one chat turn in the relay wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RelayRequest is the body accepted by POST /api/chat.
type RelayRequest struct {
	ModelName   string    `json:"modelName" binding:"required"`
	Messages    []Message `json:"messages" binding:"required"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"maxTokens,omitempty"`
}

// ToRelayRequest wraps a normalized request for a relay-routed model.
func (r *ChatRequest) ToRelayRequest(modelName string) RelayRequest {
	return RelayRequest{
		ModelName:   modelName,
		Messages:    []Message{{Role: "user", Content: r.Prompt()}},
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
