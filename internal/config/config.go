// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads the herofield command's settings from a TOML file,
// an optional .env file and HEROFIELD_* environment variables, in that
// order of increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/herofield"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is returned for values that parse but are out of range.
var ErrInvalid = errors.New("config: invalid value")

// Theme names accepted by the theme key.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config is the decoded settings file.
type Config struct {
	Theme   string  `toml:"theme"`
	Field   Field   `toml:"field"`
	Palette Palette `toml:"palette"`
}

// Field mirrors herofield.Config.
type Field struct {
	GridSpacing    float64 `toml:"grid_spacing"`
	HoverRadius    float64 `toml:"hover_radius"`
	ForceScale     float64 `toml:"force_scale"`
	Damping        float64 `toml:"damping"`
	ReturnStrength float64 `toml:"return_strength"`
	DriftAmplitude float64 `toml:"drift_amplitude"`
	DriftSpeed     float64 `toml:"drift_speed"`
	DotRadius      float64 `toml:"dot_radius"`
	LinkDistance   float64 `toml:"link_distance"`
	Floaters       bool    `toml:"floaters"`
	Seed           uint64  `toml:"seed"`
	SettleSpeed    float64 `toml:"settle_speed"`
	SettleFrames   int     `toml:"settle_frames"`
	MaxDPR         float64 `toml:"max_dpr"`
}

// Palette holds the hex colours of both themes.
type Palette struct {
	Light Colors `toml:"light"`
	Dark  Colors `toml:"dark"`
}

// Colors is one theme's hex colour set.
type Colors struct {
	Particle   string   `toml:"particle"`
	Glow       []string `toml:"glow"`
	Background string   `toml:"background"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	d := herofield.DefaultConfig()
	return Config{
		Theme: ThemeLight,
		Field: Field{
			GridSpacing:    d.GridSpacing,
			HoverRadius:    d.HoverRadius,
			ForceScale:     d.ForceScale,
			Damping:        d.Damping,
			ReturnStrength: d.ReturnStrength,
			DriftAmplitude: d.DriftAmplitude,
			DriftSpeed:     d.DriftSpeed,
			DotRadius:      d.DotRadius,
			LinkDistance:   d.LinkDistance,
			Floaters:       d.Floaters,
			Seed:           d.Seed,
			SettleSpeed:    d.SettleSpeed,
			SettleFrames:   d.SettleFrames,
			MaxDPR:         d.MaxDPR,
		},
		Palette: Palette{
			Light: Colors{Particle: "#1C352D", Glow: []string{"#A6B28B", "#F5C9B0"}, Background: "#F9F6F3"},
			Dark:  Colors{Particle: "#F9F6F3", Glow: []string{"#E8B896", "#2A3B2E"}, Background: "#0A0F0D"},
		},
	}
}

// Parse decodes TOML over the defaults. Keys missing from data keep their
// default; unknown keys are an error.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("config: unknown keys:\n%s", strict.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ReadFile parses the file at path.
func ReadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Dark reports whether the configured theme is dark.
func (c Config) Dark() bool { return c.Theme == ThemeDark }

// Validate checks the theme name, the colours and every field range.
func (c Config) Validate() error {
	_, err := c.Hero()
	return err
}

// Hero converts c to a herofield.Config with a static theme.
func (c Config) Hero() (herofield.Config, error) {
	if c.Theme != ThemeLight && c.Theme != ThemeDark {
		return herofield.Config{}, fmt.Errorf("%w: theme %q, want %q or %q", ErrInvalid, c.Theme, ThemeLight, ThemeDark)
	}
	light, err := herofield.ParsePalette(c.Palette.Light.Particle, c.Palette.Light.Glow, c.Palette.Light.Background)
	if err != nil {
		return herofield.Config{}, fmt.Errorf("%w: light palette: %w", ErrInvalid, err)
	}
	dark, err := herofield.ParsePalette(c.Palette.Dark.Particle, c.Palette.Dark.Glow, c.Palette.Dark.Background)
	if err != nil {
		return herofield.Config{}, fmt.Errorf("%w: dark palette: %w", ErrInvalid, err)
	}

	f := c.Field
	hc := herofield.Config{
		GridSpacing:    f.GridSpacing,
		HoverRadius:    f.HoverRadius,
		ForceScale:     f.ForceScale,
		Damping:        f.Damping,
		ReturnStrength: f.ReturnStrength,
		DriftAmplitude: f.DriftAmplitude,
		DriftSpeed:     f.DriftSpeed,
		DotRadius:      f.DotRadius,
		LinkDistance:   f.LinkDistance,
		Floaters:       f.Floaters,
		Seed:           f.Seed,
		SettleSpeed:    f.SettleSpeed,
		SettleFrames:   f.SettleFrames,
		MaxDPR:         f.MaxDPR,
		Theme:          herofield.StaticTheme(c.Dark()),
		Palettes:       herofield.Palettes{Light: light, Dark: dark},
	}
	if err := hc.Validate(); err != nil {
		return herofield.Config{}, err
	}
	return hc, nil
}
