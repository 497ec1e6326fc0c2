package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, "listen_addr: \":9000\"\nautosave: false\nlog_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.False(t, cfg.Autosave)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "parts.yaml", cfg.CatalogPath, "unset keys keep their defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PARTCONTAINER_LISTEN_ADDR", ":7000")
	t.Setenv("PARTCONTAINER_SAVE_PATH", "/tmp/ship.yaml")

	cfg, err := Load(writeConfig(t, "listen_addr: \":9000\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "/tmp/ship.yaml", cfg.SavePath)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown log level", "log_level: loud\n"},
		{"empty catalog path", "catalog_path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
