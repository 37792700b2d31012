package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Remote struct {
		BaseURL string        `koanf:"baseurl"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"remote"`
	Worker struct {
		Size int `koanf:"size"`
	} `koanf:"worker"`
}

func (c *sampleConfig) Validate() error {
	if c.Worker.Size <= 0 {
		return errors.New("worker size must be positive")
	}
	return nil
}

var sampleDefaults = map[string]any{
	"remote.baseurl": "http://localhost:8080/",
	"remote.timeout": "5s",
	"worker.size":    2,
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Layers(t *testing.T) {
	testCases := []struct {
		name        string
		yaml        string
		dotenv      string
		env         map[string]string
		expectURL   string
		expectSize  int
		expectDelay time.Duration
	}{
		{
			name:        "defaults only",
			expectURL:   "http://localhost:8080/",
			expectSize:  2,
			expectDelay: 5 * time.Second,
		},
		{
			name:        "yaml overrides defaults",
			yaml:        "remote:\n  baseurl: http://yaml:9000/\n  timeout: 2s\n",
			expectURL:   "http://yaml:9000/",
			expectSize:  2,
			expectDelay: 2 * time.Second,
		},
		{
			name:        ".env overrides yaml",
			yaml:        "worker:\n  size: 3\n",
			dotenv:      "STOCK_WORKER_SIZE=4\nOTHER_WORKER_SIZE=9\n",
			expectURL:   "http://localhost:8080/",
			expectSize:  4,
			expectDelay: 5 * time.Second,
		},
		{
			name:        "environment has the highest priority",
			yaml:        "worker:\n  size: 3\n",
			dotenv:      "STOCK_WORKER_SIZE=4\n",
			env:         map[string]string{"STOCK_WORKER_SIZE": "8", "STOCK_REMOTE_BASEURL": "http://env/"},
			expectURL:   "http://env/",
			expectSize:  8,
			expectDelay: 5 * time.Second,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			dir := t.TempDir()
			opts := []Option{
				WithDefaults(sampleDefaults),
				WithConfigFile(filepath.Join(dir, "config.yaml")),
				WithEnvFile(filepath.Join(dir, ".env")),
			}
			if tc.yaml != "" {
				writeFile(t, dir, "config.yaml", tc.yaml)
			}
			if tc.dotenv != "" {
				writeFile(t, dir, ".env", tc.dotenv)
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			// when
			cfg, err := Load[*sampleConfig]("stock", opts...)
			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expectURL, cfg.Remote.BaseURL)
			assert.Equal(t, tc.expectSize, cfg.Worker.Size)
			assert.Equal(t, tc.expectDelay, cfg.Remote.Timeout)
		})
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	// given
	dir := t.TempDir()
	t.Setenv("STOCK_WORKER_SIZE", "0")
	// when
	_, err := Load[*sampleConfig]("stock",
		WithDefaults(sampleDefaults),
		WithConfigFile(filepath.Join(dir, "missing.yaml")),
		WithEnvFile(filepath.Join(dir, "missing.env")),
	)
	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}
