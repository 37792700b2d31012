package config

import (
	"fmt"
	"strings"
)

type WorkerConfig struct {
	Size int `koanf:"size"`
}

// String returns a string representation of the worker pool configuration.
func (c *WorkerConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Worker ---\n")
	b.WriteString(fmt.Sprintf("  size: %d\n", c.Size))
	return b.String()
}

func (c *WorkerConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("worker pool size must be greater than 0: %d", c.Size)
	}
	return nil
}
