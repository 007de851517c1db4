package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nulzo/neurix/internal/store/model"
	"github.com/nulzo/neurix/pkg/api"
)

// HashClient turns a client id into a stable, non-reversible key.
func HashClient(clientID string) string {
	sum := sha256.Sum256([]byte(clientID))
	return hex.EncodeToString(sum[:8])
}

// NewRecord builds a usage record for one finished upstream call.
func NewRecord(source, clientID, modelName, upstreamModel string, status int, succeeded bool, usage *api.Usage, started time.Time) *model.UsageRecord {
	rec := &model.UsageRecord{
		ID:            uuid.NewString(),
		Source:        source,
		ClientHash:    HashClient(clientID),
		Model:         modelName,
		UpstreamModel: upstreamModel,
		StatusCode:    status,
		Succeeded:     succeeded,
		LatencyMS:     time.Since(started).Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}
	if usage != nil {
		rec.PromptTokens = usage.PromptTokens
		rec.CompletionTokens = usage.CompletionTokens
		rec.TotalTokens = usage.TotalTokens
	}
	return rec
}

// FromResult builds a usage record for one dispatched model call, using the
// latency measured around that call alone.
func FromResult(clientID, upstreamModel string, r api.ModelResult) *model.UsageRecord {
	status := r.Status
	if r.Succeeded {
		status = http.StatusOK
	}
	rec := NewRecord(model.SourceDispatch, clientID, r.Model, upstreamModel, status, r.Succeeded, r.Usage, time.Now())
	rec.LatencyMS = r.LatencyMS
	return rec
}
