// Package config holds the configuration of the stockd product endpoint.
package config

import (
	"strings"
	"time"

	"github.com/abgdnv/stocksync/pkg/config"
	"github.com/abgdnv/stocksync/pkg/config/configloader"
)

// ServiceName is the environment prefix of every stockd setting (STOCKD_...).
const ServiceName = "stockd"

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig      `koanf:"server"`
	Database   config.DatabaseConfig  `koanf:"database"`
	Log        config.LogConfig       `koanf:"log"`
	PProf      config.PProfConfig     `koanf:"pprof"`
	Shutdown   config.ShutdownConfig  `koanf:"shutdown"`
	NATS       config.NATSConfig      `koanf:"nats"`
	Telemetry  config.TelemetryConfig `koanf:"telemetry"`
}

// Defaults are the lowest-priority configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":                       8080,
		"server.maxHeaderBytes":             1 << 20,
		"server.timeout.read":               5 * time.Second,
		"server.timeout.write":              10 * time.Second,
		"server.timeout.idle":               60 * time.Second,
		"server.timeout.readHeader":         2 * time.Second,
		"database.timeout":                  5 * time.Second,
		"database.migrate":                  true,
		"log.level":                         "info",
		"pprof.addr":                        "localhost:6060",
		"shutdown.timeout":                  10 * time.Second,
		"nats.timeout":                      5 * time.Second,
		"nats.stream":                       "PRODUCTS",
		"telemetry.traces.otlphttp.timeout": 5 * time.Second,
		"telemetry.metrics.path":            "/metrics",
	}
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- stockd Configuration ---\n")
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	return nil
}
