package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	closeFn, err := Init(Options{})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	require.False(t, L.Enabled(t.Context(), slog.LevelDebug))
}

func TestInit_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	closeFn, err := Init(Options{Enabled: true, LogDir: dir})
	require.NoError(t, err)

	Info("replay finished", "ops", 12)
	require.NoError(t, closeFn())
	t.Cleanup(func() { _, _ = Init(Options{}) })

	name := logPrefix + time.Now().Format("2006-01-02") + logSuffix
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `"msg":"replay finished"`), string(data))
	require.Contains(t, string(data), `"ops":12`)
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	files := map[string]bool{
		"heapctl-2024-01-01.log": false, // older than 30 days
		"heapctl-2024-02-20.log": true,
		"heapctl-garbage.log":    true,
		"other-2023-01-01.log":   true,
	}
	for name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	cleanOldLogs(dir, now)

	for name, keep := range files {
		_, err := os.Stat(filepath.Join(dir, name))
		if keep {
			require.NoError(t, err, name)
		} else {
			require.True(t, os.IsNotExist(err), name)
		}
	}
}
