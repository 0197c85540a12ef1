package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// NATSConfig holds the connection details for the synthesis worker's NATS
// subscription.
type NATSConfig struct {
	URL         string `toml:"url"`
	Subject     string `toml:"subject"`
	MaxInFlight int    `toml:"max_in_flight"`
}

// MetricsConfig holds the listen address for the Prometheus scrape
// endpoint.
type MetricsConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// PathsConfig holds the base directory the service's file-backed logger
// writes under.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// ServiceConfig is the root configuration for cmd/klattd, resolved by
// configurator the same way every book-expert service resolves its own
// configuration.
type ServiceConfig struct {
	NATS    NATSConfig    `toml:"nats"`
	Metrics MetricsConfig `toml:"metrics"`
	Paths   PathsConfig   `toml:"paths"`
}

// LoadService loads a ServiceConfig via configurator.
func LoadService(log *logger.Logger) (*ServiceConfig, error) {
	var cfg ServiceConfig

	if err := configurator.Load(&cfg, log); err != nil {
		return nil, fmt.Errorf("failed to load service configuration from configurator: %w", err)
	}

	return &cfg, nil
}
