package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nulzo/neurix/internal/analytics"
	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/internal/store/model"
	"github.com/nulzo/neurix/pkg/api"
	"go.uber.org/zap"
)

type Service struct {
	client   *Client
	hasKey   bool
	names    []string
	models   map[string]string
	logger   *zap.Logger
	ingestor analytics.Ingestor
}

// NewService builds the relay from configuration. ingestor may be nil when
// usage tracking is disabled.
func NewService(cfg config.RelayConfig, client *Client, logger *zap.Logger, ingestor analytics.Ingestor) *Service {
	s := &Service{
		client:   client,
		hasKey:   cfg.APIKey != "",
		models:   make(map[string]string, len(cfg.Models)),
		logger:   logger,
		ingestor: ingestor,
	}
	for _, m := range cfg.Models {
		s.names = append(s.names, m.Name)
		s.models[m.Name] = m.Model
	}
	return s
}

// Configured reports whether the upstream credential is present.
func (s *Service) Configured() bool {
	return s.hasKey
}

// Models lists the friendly names accepted by Forward, in configuration order.
func (s *Service) Models() []string {
	return append([]string(nil), s.names...)
}

func (s *Service) Resolve(name string) (string, bool) {
	upstream, ok := s.models[name]
	return upstream, ok
}

// Forward relays one request upstream. Every failure is an *api.Error ready
// to be rendered as a relay envelope.
func (s *Service) Forward(ctx context.Context, clientID string, req *api.RelayRequest) (*api.RelayResponse, error) {
	upstream, ok := s.Resolve(req.ModelName)
	if !ok {
		return nil, api.BadRequestError(fmt.Sprintf("Invalid model: %s", req.ModelName))
	}

	start := time.Now()
	completion, err := s.client.Complete(ctx, upstream, req)
	s.record(clientID, req.ModelName, upstream, completion, err, start)

	if err != nil {
		var upstreamErr *llm.Error
		if errors.As(err, &upstreamErr) && upstreamErr.Status != 0 {
			return nil, api.UpstreamError(upstreamErr.Status, upstreamErr.Message, req.ModelName, err)
		}
		return nil, api.NewError(http.StatusInternalServerError, err.Error(), api.WithModel("unknown"), api.WithLog(err))
	}

	return &api.RelayResponse{
		Success: true,
		Data:    completion.Text,
		Model:   req.ModelName,
		Usage:   completion.RawUsage,
	}, nil
}

func (s *Service) record(clientID, name, upstream string, completion *Completion, err error, start time.Time) {
	status := http.StatusOK
	var usage *api.Usage
	if err != nil {
		status = http.StatusInternalServerError
		var upstreamErr *llm.Error
		if errors.As(err, &upstreamErr) && upstreamErr.Status != 0 {
			status = upstreamErr.Status
		}
		s.logger.Warn("Relay upstream call failed",
			zap.String("model", name),
			zap.Int("status", status),
			zap.Error(err),
		)
	} else {
		usage = completion.Usage
	}

	if s.ingestor == nil {
		return
	}
	s.ingestor.Log(analytics.NewRecord(model.SourceRelay, clientID, name, upstream, status, err == nil, usage, start))
}
