package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadlineConfig_PersistsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")

	cfg := readlineConfig(path, 50)
	require.Equal(t, path, cfg.HistoryFile)
	require.Equal(t, 50, cfg.HistoryLimit)
	require.Equal(t, prompt, cfg.Prompt)
	require.False(t, cfg.DisableAutoSaveHistory, "every line read must reach the history file")
}

func TestDefaultHistoryPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.Equal(t, ".bufshell_history", filepath.Base(defaultHistoryPath()))
}
