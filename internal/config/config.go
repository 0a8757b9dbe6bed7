// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and ROTA_* env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/dutyrota/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Slots lists the duty slots in processing order.
	Slots []string `koanf:"slots"`

	// StoreDriver selects persistence: memory, file, sqlite or nats.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the JSON file or SQLite database for the file and sqlite drivers.
	StorePath string `koanf:"store_path"`

	// NATSURL and NATSBucket locate the JetStream KV bucket for the nats driver.
	NATSURL    string `koanf:"nats_url"`
	NATSBucket string `koanf:"nats_bucket"`

	// NATSTimeoutMS bounds connecting to NATS.
	NATSTimeoutMS int `koanf:"nats_timeout_ms"`

	// IdempotencySize caps how many allocation request ids are remembered.
	IdempotencySize int `koanf:"idempotency_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		Slots:           model.DefaultSlots.Strings(),
		StoreDriver:     "memory",
		StorePath:       "",
		NATSURL:         "nats://127.0.0.1:4222",
		NATSBucket:      "dutyrota",
		NATSTimeoutMS:   5000,
		IdempotencySize: 1024,
	}
}

// SlotSet returns the validated slot set.
func (c *Config) SlotSet() (model.Slots, error) {
	return model.NewSlots(c.Slots...)
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := c.SlotSet(); err != nil {
		return fmt.Errorf("%w: slots: %v", ErrInvalidConfig, err)
	}
	switch c.StoreDriver {
	case "memory", "nats":
	case "file", "sqlite":
		if strings.TrimSpace(c.StorePath) == "" {
			return fmt.Errorf("%w: store_path is required for the %s driver", ErrInvalidConfig, c.StoreDriver)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}
