package model

import (
	"time"
)

// Sources of a usage record.
const (
	SourceRelay    = "relay"
	SourceDispatch = "dispatch"
)

// UsageRecord captures one upstream call made by the relay or the dispatcher.
type UsageRecord struct {
	ID               string    `db:"id" json:"id"`
	Source           string    `db:"source" json:"source"`
	ClientHash       string    `db:"client_hash" json:"client_hash"` // never the raw client id
	Model            string    `db:"model" json:"model"`
	UpstreamModel    string    `db:"upstream_model" json:"upstream_model"`
	StatusCode       int       `db:"status_code" json:"status_code"`
	Succeeded        bool      `db:"succeeded" json:"succeeded"`
	LatencyMS        int64     `db:"latency_ms" json:"latency_ms"`
	PromptTokens     int       `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int       `db:"total_tokens" json:"total_tokens"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// DailyStats represents aggregated usage data for a specific day.
type DailyStats struct {
	Date           string  `db:"date" json:"date"`
	TotalRequests  int     `db:"total_requests" json:"total_requests"`
	FailedRequests int     `db:"failed_requests" json:"failed_requests"`
	TotalTokens    int     `db:"total_tokens" json:"total_tokens"`
	AverageLatency float64 `db:"avg_latency" json:"avg_latency"`
}
