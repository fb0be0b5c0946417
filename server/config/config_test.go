package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `listener:
  addr: ":9443"
  tls_cert: /etc/reactivities/cert.pem
  tls_key: /etc/reactivities/key.pem
sync:
  schedule: "*/15 * * * *"
  load_on_start: true
log_level: debug
store_config: /etc/reactivities/config.yaml
watch: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9443", cfg.Listener.Addr)
	assert.True(t, cfg.TLSEnabled())
	assert.Equal(t, "*/15 * * * *", cfg.Sync.Schedule)
	assert.True(t, cfg.Sync.LoadOnStart)
	assert.Equal(t, "/etc/reactivities/config.yaml", cfg.StoreConfig)
	assert.True(t, cfg.Watch)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "store_config: config.yaml\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listener.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TLSEnabled())
	assert.Empty(t, cfg.Sync.Schedule)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing store config",
			content: "listener:\n  addr: :8080\n",
			wantErr: "store_config is required",
		},
		{
			name:    "cert without key",
			content: "store_config: c.yaml\nlistener:\n  tls_cert: cert.pem\n",
			wantErr: "must be set together",
		},
		{
			name:    "bad log level",
			content: "store_config: c.yaml\nlog_level: loud\n",
			wantErr: "unknown level",
		},
		{
			name:    "bad yaml",
			content: "listener: [",
			wantErr: "failed to decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
