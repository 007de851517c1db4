package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/nulzo/neurix/internal/gateway")

type Options struct {
	// MaxConcurrency caps in-flight adapter calls per dispatch; 0 means one per model.
	MaxConcurrency int
	// Timeout bounds each adapter call; 0 leaves it to the transport.
	Timeout time.Duration
	// ProbeRPS paces status probes; 0 disables pacing.
	ProbeRPS float64
}

func OptionsFromConfig(cfg config.DispatchConfig) Options {
	return Options{
		MaxConcurrency: cfg.MaxConcurrency,
		Timeout:        cfg.Timeout,
		ProbeRPS:       cfg.ProbeRPS,
	}
}

// Dispatcher fans one request out to many models. A failing model never
// aborts or delays its siblings beyond the shared concurrency cap.
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
	opts     Options
	newID    func() string
}

func NewDispatcher(registry *Registry, logger *zap.Logger, opts Options) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger,
		opts:     opts,
		newID:    uuid.NewString,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// DispatchAll calls every selected model concurrently and waits for all of
// them. Result i belongs to models[i]. An empty selection means every
// enabled model. The only error is an invalid request, in which case nothing
// is dispatched.
func (d *Dispatcher) DispatchAll(ctx context.Context, req *api.ChatRequest, models []string) (*api.AggregatedResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(models) == 0 {
		models = d.registry.Enabled()
	}

	requestID := d.newID()
	results := make([]api.ModelResult, len(models))

	d.fanOut(ctx, requestID, req, models, func(i int, r api.ModelResult) {
		results[i] = r
	})

	return &api.AggregatedResponse{RequestID: requestID, Results: results}, nil
}

// DispatchOne calls a single model. It reports false, without calling
// anything, when the name is not registered. An empty requestID gets a fresh one.
func (d *Dispatcher) DispatchOne(ctx context.Context, requestID, name string, req *api.ChatRequest) (api.ModelResult, bool) {
	target, ok := d.registry.Lookup(name)
	if !ok {
		return api.ModelResult{}, false
	}
	if requestID == "" {
		requestID = d.newID()
	}
	return d.call(ctx, requestID, target, req), true
}

// DispatchEach is the incremental mode: results are delivered in completion
// order, each tagged with the returned request ID and its model name. The
// channel is closed after the last result.
func (d *Dispatcher) DispatchEach(ctx context.Context, req *api.ChatRequest, models []string) (string, <-chan api.ModelResult, error) {
	if err := req.Validate(); err != nil {
		return "", nil, err
	}
	if len(models) == 0 {
		models = d.registry.Enabled()
	}

	requestID := d.newID()
	out := make(chan api.ModelResult, len(models))

	go func() {
		defer close(out)
		d.fanOut(ctx, requestID, req, models, func(_ int, r api.ModelResult) {
			out <- r
		})
	}()

	return requestID, out, nil
}

func (d *Dispatcher) fanOut(ctx context.Context, requestID string, req *api.ChatRequest, models []string, emit func(int, api.ModelResult)) {
	var g errgroup.Group
	if d.opts.MaxConcurrency > 0 {
		g.SetLimit(d.opts.MaxConcurrency)
	}

	for i, name := range models {
		g.Go(func() error {
			target, ok := d.registry.Lookup(name)
			if !ok {
				r := api.FailedResult(name, fmt.Sprintf("Unknown model: %s", name), 0)
				r.RequestID = requestID
				emit(i, r)
				return nil
			}
			emit(i, d.call(ctx, requestID, target, req))
			return nil
		})
	}

	// goroutines never return an error
	_ = g.Wait()
}

func (d *Dispatcher) call(ctx context.Context, requestID string, t Target, req *api.ChatRequest) api.ModelResult {
	ctx, span := tracer.Start(ctx, "gateway.call")
	defer span.End()

	span.SetAttributes(
		attribute.String("neurix.request_id", requestID),
		attribute.String("neurix.model", t.Descriptor.Name),
		attribute.String("neurix.provider", t.Provider.Type()),
	)

	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	result := llm.Call(ctx, t.Provider, t.Descriptor, req)
	latency := time.Since(start)
	result.RequestID = requestID
	result.LatencyMS = latency.Milliseconds()

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("model", t.Descriptor.Name),
		zap.String("provider", t.Provider.Name()),
		zap.Duration("latency", latency),
	}
	if result.Succeeded {
		d.logger.Debug("Model call succeeded", fields...)
	} else {
		span.SetStatus(codes.Error, result.Error)
		if result.Status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", result.Status))
		}
		d.logger.Warn("Model call failed", append(fields, zap.String("error", result.Error), zap.Int("status", result.Status))...)
	}

	return result
}
