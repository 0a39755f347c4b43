package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by Load for files that are neither TOML
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

type Config struct {
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	Camera  CameraConfig  `toml:"camera" yaml:"camera"`
	Grid    GridConfig    `toml:"grid" yaml:"grid"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

type EditorConfig struct {
	StartActive      bool     `toml:"start_active" yaml:"start_active"`
	AutoAddPickables bool     `toml:"auto_add_pickables" yaml:"auto_add_pickables"`
	ToggleKey        string   `toml:"toggle_key" yaml:"toggle_key"`
	FocusKey         string   `toml:"focus_key" yaml:"focus_key"`
	MultiSelectKeys  []string `toml:"multi_select_keys" yaml:"multi_select_keys"`
	GrabButtons      []string `toml:"grab_buttons" yaml:"grab_buttons"` // Left, Right, Middle
	UiScale          float32  `toml:"ui_scale" yaml:"ui_scale"`
}

type CameraConfig struct {
	FollowRate float32 `toml:"follow_rate" yaml:"follow_rate"` // per second
	SnapFactor float32 `toml:"snap_factor" yaml:"snap_factor"` // fraction of view height
	MinScale   float32 `toml:"min_scale" yaml:"min_scale"`
	MaxScale   float32 `toml:"max_scale" yaml:"max_scale"`
	ZoomStep   float32 `toml:"zoom_step" yaml:"zoom_step"`
}

type GridConfig struct {
	Sizes            []float32 `toml:"sizes" yaml:"sizes"` // ascending
	DensityThreshold float32   `toml:"density_threshold" yaml:"density_threshold"`
	AxesDivisor      float32   `toml:"axes_divisor" yaml:"axes_divisor"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Load reads a .toml, .yaml or .yml file on top of Defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("load config %s: %w", path, ErrUnsupportedFormat)
	}
	return cfg, nil
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Editor: EditorConfig{
			StartActive:      true,
			AutoAddPickables: true,
			ToggleKey:        "Escape",
			FocusKey:         "F",
			MultiSelectKeys:  []string{"ControlLeft", "ControlRight", "ShiftLeft", "ShiftRight"},
			GrabButtons:      []string{"Middle", "Right"},
			UiScale:          1,
		},
		Camera: CameraConfig{
			FollowRate: 10,
			SnapFactor: 0.001,
			MinScale:   0.05,
			MaxScale:   100,
			ZoomStep:   0.1,
		},
		Grid: GridConfig{
			Sizes:            []float32{1, 10, 100, 1000, 10000},
			DensityThreshold: 50,
			AxesDivisor:      15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
