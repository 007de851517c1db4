package gateway

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nulzo/neurix/internal/cli"
	"github.com/nulzo/neurix/internal/config"
	"github.com/nulzo/neurix/internal/llm"
	"github.com/nulzo/neurix/pkg/api"
	"go.uber.org/zap"
)

// BootstrapRegistry builds the model registry from configuration. Invalid
// provider or model entries are skipped with a warning. A provider without a
// credential is still registered: its models fail fast on every call instead
// of disappearing.
func BootstrapRegistry(cfg *config.Config, log *zap.Logger) *Registry {
	validate := validator.New()
	providers := make(map[string]llm.Provider)
	endpoints := make(map[string]string)

	for _, pCfg := range cfg.Providers {
		if !pCfg.Enabled {
			continue
		}

		if err := validate.Struct(&pCfg); err != nil {
			log.Warn("Skipping invalid provider", zap.String("id", pCfg.ID), zap.Error(err))
			continue
		}

		p, err := llm.New(pCfg)
		if err != nil {
			log.Error("Failed to initialize provider",
				zap.String("id", pCfg.ID),
				zap.String("type", pCfg.Type),
				zap.Error(err),
			)
			continue
		}

		if pCfg.APIKey == "" && pCfg.Type != string(llm.Relay) && pCfg.Type != string(llm.Ollama) {
			log.Warn(fmt.Sprintf("%s %s %s",
				cli.WarningSign(),
				cli.Style(fmt.Sprintf("%s\t", pCfg.ID), cli.Bold),
				cli.Style("No API key configured, calls will fail", cli.Yellow),
			))
		}

		providers[pCfg.ID] = p
		endpoints[pCfg.ID] = pCfg.BaseURL
	}

	registry := NewRegistry()
	for _, mCfg := range cfg.Models {
		if err := validate.Struct(&mCfg); err != nil {
			log.Warn("Skipping invalid model", zap.String("name", mCfg.Name), zap.Error(err))
			continue
		}

		p, ok := providers[mCfg.Provider]
		if !ok {
			log.Warn("Skipping model with unknown or disabled provider",
				zap.String("name", mCfg.Name),
				zap.String("provider", mCfg.Provider),
			)
			continue
		}

		desc := api.ModelDescriptor{
			Name:          mCfg.Name,
			Provider:      p.Type(),
			Endpoint:      endpoints[mCfg.Provider],
			UpstreamModel: mCfg.Model,
			Icon:          mCfg.Icon,
			Color:         mCfg.Color,
			Enabled:       mCfg.Enabled,
		}
		if err := registry.Add(desc, p); err != nil {
			log.Warn("Skipping duplicate model", zap.String("name", mCfg.Name), zap.Error(err))
			continue
		}
	}

	if len(registry.Enabled()) == 0 {
		log.Warn("No models were registered. Fan-out requests will return no results.")
	}

	return registry
}
