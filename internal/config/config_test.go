package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSentinelValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, -99999.9, cfg.Metrics.SlotSentinel)
	assert.Equal(t, 0.0, cfg.Metrics.GlobalDefault)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dwell:\n  enabled: false\nexecution:\n  seed: 42\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Dwell.Enabled)
	assert.Equal(t, int64(42), cfg.Execution.Seed)
	// Untouched sections keep their defaults.
	assert.Equal(t, -99999.9, cfg.Metrics.SlotSentinel)
}
