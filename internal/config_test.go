package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bufmgr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "bufmgr", cfg.AppName)
	require.Equal(t, 128, cfg.BufferPool.Frames)
	require.Equal(t, "info", cfg.Log.Level)
	require.False(t, cfg.Metrics.Enabled)
}

func TestLoadConfig_FromYAML(t *testing.T) {
	path := writeConfig(t, `
app_name: shell
storage:
  workdir: /tmp/pages
buffer_pool:
  frames: 3
log:
  level: debug
  format: json
metrics:
  enabled: true
  addr: ":9999"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "shell", cfg.AppName)
	require.Equal(t, "/tmp/pages", cfg.Storage.Workdir)
	require.Equal(t, 3, cfg.BufferPool.Frames)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "stderr", cfg.Log.OutputFile)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, ":9999", cfg.Metrics.Addr)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("BUFMGR_BUFFER_POOL_FRAMES", "7")

	cfg, err := LoadConfig(writeConfig(t, "buffer_pool:\n  frames: 3\n"))
	require.NoError(t, err)
	require.Equal(t, 7, cfg.BufferPool.Frames)
}

func TestLoadConfig_RejectsEmptyPool(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "buffer_pool:\n  frames: 0\n"))
	require.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
