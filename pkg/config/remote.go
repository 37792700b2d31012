package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// RemoteConfig describes the product REST endpoint the client synchronizes with.
type RemoteConfig struct {
	BaseURL        string               `koanf:"baseurl"`
	Timeout        time.Duration        `koanf:"timeout"`
	LogBodies      bool                 `koanf:"logbodies"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// String returns a string representation of the remote endpoint configuration.
func (c *RemoteConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Remote ---\n")
	b.WriteString(fmt.Sprintf("  baseurl: %s\n", MaskURL(c.BaseURL)))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  logbodies: %t\n", c.LogBodies))
	b.WriteString(c.CircuitBreaker.String())
	return b.String()
}

func (c *RemoteConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("remote base URL is not configured")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("remote base URL must be an absolute http(s) URL: %s", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("remote timeout is not configured")
	}
	return c.CircuitBreaker.Validate()
}
