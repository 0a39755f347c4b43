package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/ed2d/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadTOMLOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "editor.toml", `
[editor]
toggle_key = "F1"
grab_buttons = ["Middle"]

[camera]
follow_rate = 4.5

[logging]
level = "debug"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "F1", cfg.Editor.ToggleKey)
	assert.Equal(t, []string{"Middle"}, cfg.Editor.GrabButtons)
	assert.Equal(t, float32(4.5), cfg.Camera.FollowRate)
	assert.Equal(t, "debug", cfg.Logging.Level)

	defaults := config.Defaults()
	assert.Equal(t, defaults.Editor.FocusKey, cfg.Editor.FocusKey)
	assert.Equal(t, defaults.Grid, cfg.Grid)
	assert.Equal(t, defaults.Camera.SnapFactor, cfg.Camera.SnapFactor)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "editor.yml", `
editor:
  start_active: false
grid:
  sizes: [5, 50, 500]
  density_threshold: 20
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Editor.StartActive)
	assert.Equal(t, []float32{5, 50, 500}, cfg.Grid.Sizes)
	assert.Equal(t, float32(20), cfg.Grid.DensityThreshold)
	assert.Equal(t, float32(15), cfg.Grid.AxesDivisor)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "editor.json", `{}`)
		_, err := config.Load(path)
		assert.ErrorIs(t, err, config.ErrUnsupportedFormat)
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := writeFile(t, "editor.toml", `[editor`)
		_, err := config.Load(path)
		assert.ErrorContains(t, err, "parse config")
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := config.NewLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = config.NewLogger(config.LoggingConfig{Level: "loud"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
