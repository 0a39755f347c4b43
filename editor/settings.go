package editor

import (
	"fmt"
	"math"

	"github.com/plus3/ed2d/config"
)

// Settings holds the resolved editor configuration. It is stored as a
// singleton so systems can read it.
type Settings struct {
	StartActive      bool
	AutoAddPickables bool
	ToggleKey        Key
	FocusKey         Key
	MultiSelectKeys  []Key
	GrabButtons      []MouseButton

	// UiScale converts UI points into logical pixels.
	UiScale float32

	FollowRate float32
	SnapFactor float32
	MinScale   float32
	MaxScale   float32
	ZoomStep   float32

	GridSizes        []float32
	DensityThreshold float32
	AxesDivisor      float32
}

// DefaultSettings returns the settings used when no configuration file is
// given. It matches config.Defaults.
func DefaultSettings() Settings {
	settings, err := SettingsFromConfig(config.Defaults())
	if err != nil {
		panic(err)
	}
	return settings
}

// SettingsFromConfig resolves key and button names from cfg.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	toggle, err := ParseKey(cfg.Editor.ToggleKey)
	if err != nil {
		return Settings{}, fmt.Errorf("editor.toggle_key: %w", err)
	}
	focus, err := ParseKey(cfg.Editor.FocusKey)
	if err != nil {
		return Settings{}, fmt.Errorf("editor.focus_key: %w", err)
	}

	multi := make([]Key, 0, len(cfg.Editor.MultiSelectKeys))
	for _, name := range cfg.Editor.MultiSelectKeys {
		k, err := ParseKey(name)
		if err != nil {
			return Settings{}, fmt.Errorf("editor.multi_select_keys: %w", err)
		}
		multi = append(multi, k)
	}

	grab := make([]MouseButton, 0, len(cfg.Editor.GrabButtons))
	for _, name := range cfg.Editor.GrabButtons {
		b, err := ParseMouseButton(name)
		if err != nil {
			return Settings{}, fmt.Errorf("editor.grab_buttons: %w", err)
		}
		grab = append(grab, b)
	}

	if len(cfg.Grid.Sizes) == 0 {
		return Settings{}, fmt.Errorf("grid.sizes: at least one size is required")
	}
	for i, size := range cfg.Grid.Sizes {
		if !(size > 0) || math.IsInf(float64(size), 0) {
			return Settings{}, fmt.Errorf("grid.sizes[%d]: size must be positive, got %v", i, size)
		}
		if i > 0 && size <= cfg.Grid.Sizes[i-1] {
			return Settings{}, fmt.Errorf("grid.sizes[%d]: sizes must be ascending, %v follows %v", i, size, cfg.Grid.Sizes[i-1])
		}
	}
	if !(cfg.Grid.DensityThreshold > 0) {
		return Settings{}, fmt.Errorf("grid.density_threshold: must be positive, got %v", cfg.Grid.DensityThreshold)
	}
	if !(cfg.Grid.AxesDivisor > 0) {
		return Settings{}, fmt.Errorf("grid.axes_divisor: must be positive, got %v", cfg.Grid.AxesDivisor)
	}
	if cfg.Camera.MinScale <= 0 || cfg.Camera.MaxScale < cfg.Camera.MinScale {
		return Settings{}, fmt.Errorf("camera: invalid scale range [%v, %v]", cfg.Camera.MinScale, cfg.Camera.MaxScale)
	}

	uiScale := cfg.Editor.UiScale
	if uiScale <= 0 {
		uiScale = 1
	}

	return Settings{
		StartActive:      cfg.Editor.StartActive,
		AutoAddPickables: cfg.Editor.AutoAddPickables,
		ToggleKey:        toggle,
		FocusKey:         focus,
		MultiSelectKeys:  multi,
		GrabButtons:      grab,
		UiScale:          uiScale,
		FollowRate:       cfg.Camera.FollowRate,
		SnapFactor:       cfg.Camera.SnapFactor,
		MinScale:         cfg.Camera.MinScale,
		MaxScale:         cfg.Camera.MaxScale,
		ZoomStep:         cfg.Camera.ZoomStep,
		GridSizes:        append([]float32(nil), cfg.Grid.Sizes...),
		DensityThreshold: cfg.Grid.DensityThreshold,
		AxesDivisor:      cfg.Grid.AxesDivisor,
	}, nil
}
