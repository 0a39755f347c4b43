package editor_test

import (
	"math"
	"testing"

	"github.com/plus3/ed2d/config"
	"github.com/plus3/ed2d/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := editor.DefaultSettings()

	assert.True(t, s.StartActive)
	assert.Equal(t, editor.KeyEscape, s.ToggleKey)
	assert.Equal(t, editor.KeyF, s.FocusKey)
	assert.Equal(t, []editor.MouseButton{editor.MouseMiddle, editor.MouseRight}, s.GrabButtons)
	assert.ElementsMatch(t, []editor.Key{
		editor.KeyControlLeft, editor.KeyControlRight,
		editor.KeyShiftLeft, editor.KeyShiftRight,
	}, s.MultiSelectKeys)
	assert.Equal(t, float32(10), s.FollowRate)
	assert.Equal(t, float32(0.001), s.SnapFactor)
	assert.Equal(t, []float32{1, 10, 100, 1000, 10000}, s.GridSizes)
}

func TestSettingsFromConfigErrors(t *testing.T) {
	cfg := config.Defaults()
	cfg.Editor.FocusKey = "Hyper"
	_, err := editor.SettingsFromConfig(cfg)
	assert.ErrorContains(t, err, "editor.focus_key")

	cfg = config.Defaults()
	cfg.Editor.GrabButtons = []string{"Back"}
	_, err = editor.SettingsFromConfig(cfg)
	assert.ErrorContains(t, err, "editor.grab_buttons")

	cfg = config.Defaults()
	cfg.Grid.Sizes = nil
	_, err = editor.SettingsFromConfig(cfg)
	assert.ErrorContains(t, err, "grid.sizes")

	for _, sizes := range [][]float32{{-1}, {0, 10}, {1, 10, 5}, {10, 10}, {float32(math.NaN())}} {
		cfg = config.Defaults()
		cfg.Grid.Sizes = sizes
		_, err = editor.SettingsFromConfig(cfg)
		assert.ErrorContains(t, err, "grid.sizes[", "sizes %v", sizes)
	}

	cfg = config.Defaults()
	cfg.Grid.DensityThreshold = 0
	_, err = editor.SettingsFromConfig(cfg)
	assert.ErrorContains(t, err, "grid.density_threshold")

	cfg = config.Defaults()
	cfg.Grid.AxesDivisor = -15
	_, err = editor.SettingsFromConfig(cfg)
	assert.ErrorContains(t, err, "grid.axes_divisor")

	cfg = config.Defaults()
	cfg.Camera.MaxScale = 0.01
	_, err = editor.SettingsFromConfig(cfg)
	assert.Error(t, err)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Editor.ToggleKey = "f1"
	cfg.Editor.UiScale = 0

	s, err := editor.SettingsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, editor.KeyF1, s.ToggleKey)
	assert.Equal(t, float32(1), s.UiScale)
}
