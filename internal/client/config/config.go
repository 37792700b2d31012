// Package config holds the configuration of the stock client.
package config

import (
	"strings"
	"time"

	"github.com/abgdnv/stocksync/pkg/config"
	"github.com/abgdnv/stocksync/pkg/config/configloader"
)

// ServiceName is the environment prefix of every client setting (STOCK_...).
const ServiceName = "stock"

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	Remote     config.RemoteConfig     `koanf:"remote"`
	LocalStore config.LocalStoreConfig `koanf:"localstore"`
	Worker     config.WorkerConfig     `koanf:"worker"`
	Log        config.LogConfig        `koanf:"log"`
}

// Defaults are the lowest-priority configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"remote.baseurl":                            "http://localhost:8080/",
		"remote.timeout":                            10 * time.Second,
		"remote.logbodies":                          false,
		"remote.circuitbreaker.enabled":             false,
		"remote.circuitbreaker.consecutivefailures": 3,
		"remote.circuitbreaker.opentimeout":         30 * time.Second,
		"localstore.path":                           "stock.db",
		"worker.size":                               4,
		"log.level":                                 "warn",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- stock Configuration ---\n")
	b.WriteString(c.Remote.String())
	b.WriteString(c.LocalStore.String())
	b.WriteString(c.Worker.String())
	b.WriteString(c.Log.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	if err := c.LocalStore.Validate(); err != nil {
		return err
	}
	if err := c.Worker.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}
