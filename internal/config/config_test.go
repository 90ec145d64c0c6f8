package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 5, cfg.Reserve.Policy().MaxAttempts)
}

func TestLoadLayersYAMLThenEnv(t *testing.T) {
	path := writeFile(t, `
http_addr: ":9000"
store_driver: memory
log_level: debug
reserve:
  max_attempts: 3
  deadline: 2s
  initial_backoff: 5ms
  max_backoff: 50ms
`)
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("RESERVE_DEADLINE", "750ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTPAddr)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "debug", cfg.LogLevel)

	p := cfg.Reserve.Policy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 750*time.Millisecond, p.Deadline)
	assert.Equal(t, 5*time.Millisecond, p.InitialInterval)
	assert.Equal(t, 50*time.Millisecond, p.MaxInterval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "attempts not a number", env: map[string]string{"RESERVE_MAX_ATTEMPTS": "many"}},
		{name: "zero attempts", env: map[string]string{"RESERVE_MAX_ATTEMPTS": "0"}},
		{name: "bad duration", env: map[string]string{"RESERVE_DEADLINE": "soon"}},
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "backoff inverted", env: map[string]string{"RESERVE_INITIAL_BACKOFF": "1s", "RESERVE_MAX_BACKOFF": "10ms"}},
		{name: "malformed yaml", file: "reserve: [1, 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
