package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/stocksync/pkg/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	// given
	dir := t.TempDir()
	// when
	cfg, err := configloader.Load[*Config](ServiceName,
		configloader.WithDefaults(Defaults()),
		configloader.WithConfigFile(filepath.Join(dir, "config.yaml")),
		configloader.WithEnvFile(filepath.Join(dir, ".env")),
	)
	// then
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/", cfg.Remote.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout)
	assert.False(t, cfg.Remote.CircuitBreaker.Enabled)
	assert.Equal(t, "stock.db", cfg.LocalStore.Path)
	assert.Equal(t, 4, cfg.Worker.Size)
}

func TestConfig_Overrides(t *testing.T) {
	testCases := []struct {
		name        string
		yaml        string
		env         map[string]string
		expectError string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml file",
			yaml: "remote:\n  baseurl: https://stock.example.com/\n  circuitbreaker:\n    enabled: true\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://stock.example.com/", cfg.Remote.BaseURL)
				assert.True(t, cfg.Remote.CircuitBreaker.Enabled)
				assert.Equal(t, uint32(3), cfg.Remote.CircuitBreaker.ConsecutiveFailures)
			},
		},
		{
			name: "environment",
			env:  map[string]string{"STOCK_LOCALSTORE_PATH": "/tmp/products.db", "STOCK_REMOTE_LOGBODIES": "true"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/tmp/products.db", cfg.LocalStore.Path)
				assert.True(t, cfg.Remote.LogBodies)
			},
		},
		{
			name:        "relative base url rejected",
			env:         map[string]string{"STOCK_REMOTE_BASEURL": "localhost:8080"},
			expectError: "absolute http(s) URL",
		},
		{
			name:        "empty worker pool rejected",
			env:         map[string]string{"STOCK_WORKER_SIZE": "0"},
			expectError: "worker pool size",
		},
		{
			name:        "unknown log level rejected",
			env:         map[string]string{"STOCK_LOG_LEVEL": "verbose"},
			expectError: "unknown log level",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			dir := t.TempDir()
			configFile := filepath.Join(dir, "config.yaml")
			if tc.yaml != "" {
				require.NoError(t, os.WriteFile(configFile, []byte(tc.yaml), 0o600))
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			// when
			cfg, err := configloader.Load[*Config](ServiceName,
				configloader.WithDefaults(Defaults()),
				configloader.WithConfigFile(configFile),
				configloader.WithEnvFile(filepath.Join(dir, ".env")),
			)
			// then
			if tc.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectError)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}
