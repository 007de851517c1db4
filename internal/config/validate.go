package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the sections every deployment needs. Provider and model
// entries are validated one by one at bootstrap so that a single bad entry
// only disables itself.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(&c.Relay); err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	if err := validate.Struct(&c.Dispatch); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Relay.Models))
	for _, m := range c.Relay.Models {
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("relay: duplicate model name %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}

	if c.Relay.Store == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("relay: store %q requires redis.enabled", c.Relay.Store)
	}

	return nil
}
