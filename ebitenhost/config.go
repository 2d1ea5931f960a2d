package ebitenhost

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/phanxgames/canopy"
)

// RunConfig configures the window and loop started by Run.
//
// Values come from three layers, later ones winning: the defaults from
// DefaultRunConfig, an optional TOML file, then CANOPY_* environment
// variables.
type RunConfig struct {
	Title     string `toml:"title" env:"CANOPY_TITLE"`
	Width     int    `toml:"width" env:"CANOPY_WIDTH"`
	Height    int    `toml:"height" env:"CANOPY_HEIGHT"`
	TPS       int    `toml:"tps" env:"CANOPY_TPS"`
	Resizable bool   `toml:"resizable" env:"CANOPY_RESIZABLE"`

	// Background is a "#rrggbb" or "#rrggbbaa" color.
	Background string `toml:"background" env:"CANOPY_BACKGROUND"`

	// FitCamera keeps the default camera's bounds equal to the window.
	FitCamera bool `toml:"fit_camera" env:"CANOPY_FIT_CAMERA"`

	ShowFPS   bool `toml:"show_fps" env:"CANOPY_SHOW_FPS"`
	DebugMode bool `toml:"debug" env:"CANOPY_DEBUG"`

	PickHalo     float64 `toml:"pick_halo" env:"CANOPY_PICK_HALO"`
	DragDeadZone float64 `toml:"drag_dead_zone" env:"CANOPY_DRAG_DEAD_ZONE"`

	// ScreenshotDir receives PNGs written by Host.Screenshot and by test
	// script snapshot steps.
	ScreenshotDir string `toml:"screenshot_dir" env:"CANOPY_SCREENSHOT_DIR"`
	// TestScript is a JSON test script run against the scene (see
	// canopy.LoadTestScript).
	TestScript string `toml:"test_script" env:"CANOPY_TEST_SCRIPT"`
	// ExitWhenDone ends the loop once the test script finishes.
	ExitWhenDone bool `toml:"exit_when_done" env:"CANOPY_EXIT_WHEN_DONE"`
}

// DefaultRunConfig returns the configuration used when nothing overrides it.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:         "canopy",
		Width:         640,
		Height:        480,
		TPS:           60,
		Background:    "#000000",
		FitCamera:     true,
		DragDeadZone:  4,
		ScreenshotDir: "screenshots",
	}
}

// LoadRunConfig builds a RunConfig from the defaults, the TOML file at path
// (skipped when path is empty) and the environment.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read run config: %w", err)
		}
		if err := decodeTOML(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse run config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decodeTOML decodes data into cfg, rejecting keys RunConfig does not know.
func decodeTOML(data []byte, cfg *RunConfig) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Validate reports the first invalid field as a *canopy.ConfigError.
func (c RunConfig) Validate() error {
	if c.Width <= 0 {
		return &canopy.ConfigError{Field: "width", Value: c.Width, Reason: "must be positive"}
	}
	if c.Height <= 0 {
		return &canopy.ConfigError{Field: "height", Value: c.Height, Reason: "must be positive"}
	}
	if c.TPS < 0 {
		return &canopy.ConfigError{Field: "tps", Value: c.TPS, Reason: "must not be negative"}
	}
	if c.PickHalo < 0 {
		return &canopy.ConfigError{Field: "pick_halo", Value: c.PickHalo, Reason: "must not be negative"}
	}
	if c.DragDeadZone < 0 {
		return &canopy.ConfigError{Field: "drag_dead_zone", Value: c.DragDeadZone, Reason: "must not be negative"}
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}
	return nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". An empty string is
// transparent.
func ParseColor(s string) (canopy.Color, error) {
	if s == "" {
		return canopy.ColorTransparent, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return canopy.Color{}, &canopy.ConfigError{Field: "background", Value: s, Reason: "want #rrggbb or #rrggbbaa"}
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return canopy.Color{}, &canopy.ConfigError{Field: "background", Value: s, Reason: "not a hex color"}
	}
	return canopy.Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
