package gateway

import (
	"context"
	"net/http"

	"github.com/nulzo/neurix/pkg/api"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// probeRequest is the smallest request a provider will accept.
var probeRequest = &api.ChatRequest{Message: "test", MaxTokens: api.Int(1)}

// Probe checks whether each model currently answers. Calls run concurrently
// but start no faster than Options.ProbeRPS, so probing every model does not
// trip provider rate limits by itself. Empty models means every registered model.
func (d *Dispatcher) Probe(ctx context.Context, models []string) []api.ModelStatus {
	if len(models) == 0 {
		for _, desc := range d.registry.Descriptors() {
			models = append(models, desc.Name)
		}
	}

	var limiter *rate.Limiter
	if d.opts.ProbeRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(d.opts.ProbeRPS), 1)
	}

	requestID := d.newID()
	statuses := make([]api.ModelStatus, len(models))

	var g errgroup.Group
	for i, name := range models {
		g.Go(func() error {
			target, ok := d.registry.Lookup(name)
			if !ok {
				statuses[i] = api.ModelStatus{Name: name, Error: "Model not found"}
				return nil
			}

			status := api.ModelStatus{
				Name:  name,
				Icon:  target.Descriptor.Icon,
				Color: target.Descriptor.Color,
			}

			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					status.Error = err.Error()
					statuses[i] = status
					return nil
				}
			}

			result := d.call(ctx, requestID, target, probeRequest)
			switch {
			case result.Succeeded:
				status.Available = true
			case result.Status == http.StatusTooManyRequests:
				status.Error = "Rate limited"
			case result.Status != 0:
				status.Error = "API error"
			default:
				status.Error = result.Error
			}
			statuses[i] = status
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}
