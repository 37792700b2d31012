package config

import (
	"fmt"
	"strings"
)

type LocalStoreConfig struct {
	Path string `koanf:"path"`
}

// String returns a string representation of the local store configuration.
func (c *LocalStoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Local Store ---\n")
	b.WriteString(fmt.Sprintf("  path: %s\n", c.Path))
	return b.String()
}

func (c *LocalStoreConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("local store path is not configured")
	}
	return nil
}
