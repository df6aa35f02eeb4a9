package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(exe), paths.ExecutableDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "config.yaml"), paths.ConfigFile)
}

func TestEnsureDirectories(t *testing.T) {
	paths := PathsFor(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	info, err := os.Stat(paths.LogsDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent
	require.NoError(t, paths.EnsureDirectories())
}

func TestGetLogPath(t *testing.T) {
	paths := PathsFor("/opt/fielddash")
	assert.Equal(t, filepath.Join("/opt/fielddash", "logs", "fielddash.log"), paths.GetLogPath("fielddash.log"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.True(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "absent.txt")))
}

func TestLogPathResolution(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	PathsFor(t.TempDir()).LogPathResolution(logger)
	assert.Contains(t, buf.String(), "Path resolution summary")
	assert.Contains(t, buf.String(), `"config_exists":false`)
}
