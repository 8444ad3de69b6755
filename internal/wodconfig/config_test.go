package wodconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchBakedInValues(t *testing.T) {
	d := Defaults()

	assert.Equal(t, 100, d.MaxIterations)
	assert.Equal(t, 256, d.MatchCacheSize)
	assert.Equal(t, "info", d.LogLevel)
	assert.False(t, d.MetricsEnabled)
	assert.False(t, d.TracingEnabled)
	assert.Equal(t, 250*time.Millisecond, d.TickInterval)
	assert.Equal(t, "127.0.0.1:8089", d.BridgeListenAddr)
}

func TestLoadWithEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wodctl-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_iterations: 500\nlog_level: debug\n"), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 500, cfg.MaxIterations)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 256, cfg.MatchCacheSize, "unset keys keep their default")
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadLayersEnvironmentOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wodctl-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_iterations: 500\n"), 0o644))

	t.Setenv("WODWIKI_MAX_ITERATIONS", "999")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 999, cfg.MaxIterations, "environment must win over the file layer")
}

func TestLoadEnvironmentOverridesMetricsEnabledFlag(t *testing.T) {
	t.Setenv("WODWIKI_METRICS_ENABLED", "true")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.True(t, cfg.MetricsEnabled)
}
