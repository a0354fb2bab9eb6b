package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Deltree.MaxBusyTries)
	assert.Equal(t, time.Second, cfg.Deltree.EMFILEWait)
	assert.True(t, cfg.Copy.Clobber)
	assert.False(t, cfg.Copy.Dereference)
	assert.Zero(t, cfg.Listing.ProbeTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFrom_NoFile(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), "", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
	assert.Equal(t, DefaultConfig().Deltree, cfg.Deltree)
}

func TestLoadFrom_FoundInParent(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
log:
  level: debug
listing:
  probe_timeout: 250ms
deltree:
  max_busy_tries: 5
copy:
  clobber: false
  dereference: true
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := LoadFrom(context.Background(), "", nested)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	assert.Equal(t, resolved, cfg.Source)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Listing.ProbeTimeout)
	assert.Equal(t, 5, cfg.Deltree.MaxBusyTries)
	assert.Equal(t, time.Second, cfg.Deltree.EMFILEWait, "unset keys keep defaults")
	assert.False(t, cfg.Copy.Clobber)
	assert.True(t, cfg.Copy.Dereference)
}

func TestLoadFrom_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("deltree:\n  emfile_wait: 2s\n"), 0o644))

	cfg, err := LoadFrom(context.Background(), path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, 2*time.Second, cfg.Deltree.EMFILEWait)
}

func TestLoadFrom_MissingExplicitPath(t *testing.T) {
	_, err := LoadFrom(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log: [unclosed")

	_, err := LoadFrom(context.Background(), "", dir)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log:\n  level: debug\ndeltree:\n  max_busy_tries: 5\n")
	t.Setenv("FSKIT_LOG_LEVEL", "error")
	t.Setenv("FSKIT_LISTING_PROBE_TIMEOUT", "1s")
	t.Setenv("FSKIT_COPY_DEREFERENCE", "true")

	cfg, err := LoadFrom(context.Background(), "", dir)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, time.Second, cfg.Listing.ProbeTimeout)
	assert.True(t, cfg.Copy.Dereference)
	assert.Equal(t, 5, cfg.Deltree.MaxBusyTries, "file value survives without an override")
}

func TestLoadFrom_BadEnv(t *testing.T) {
	t.Setenv("FSKIT_DELTREE_MAX_BUSY_TRIES", "many")

	_, err := LoadFrom(context.Background(), "", t.TempDir())
	assert.ErrorContains(t, err, "failed to load environment")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Listing.ProbeTimeout = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "probe_timeout")

	cfg = DefaultConfig()
	cfg.Log.Level = "loud"
	assert.ErrorContains(t, cfg.Validate(), "log.level")
}
