// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "HEROFIELD_"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envSetter parses one override into cfg.
type envSetter func(cfg *Config, value string) error

var envSetters = map[string]envSetter{
	"THEME": func(c *Config, v string) error {
		c.Theme = strings.ToLower(strings.TrimSpace(v))
		return nil
	},
	"GRID_SPACING":    floatSetter(func(c *Config) *float64 { return &c.Field.GridSpacing }),
	"HOVER_RADIUS":    floatSetter(func(c *Config) *float64 { return &c.Field.HoverRadius }),
	"FORCE_SCALE":     floatSetter(func(c *Config) *float64 { return &c.Field.ForceScale }),
	"DAMPING":         floatSetter(func(c *Config) *float64 { return &c.Field.Damping }),
	"RETURN_STRENGTH": floatSetter(func(c *Config) *float64 { return &c.Field.ReturnStrength }),
	"DRIFT_AMPLITUDE": floatSetter(func(c *Config) *float64 { return &c.Field.DriftAmplitude }),
	"DRIFT_SPEED":     floatSetter(func(c *Config) *float64 { return &c.Field.DriftSpeed }),
	"DOT_RADIUS":      floatSetter(func(c *Config) *float64 { return &c.Field.DotRadius }),
	"LINK_DISTANCE":   floatSetter(func(c *Config) *float64 { return &c.Field.LinkDistance }),
	"SETTLE_SPEED":    floatSetter(func(c *Config) *float64 { return &c.Field.SettleSpeed }),
	"MAX_DPR":         floatSetter(func(c *Config) *float64 { return &c.Field.MaxDPR }),
	"FLOATERS": func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		c.Field.Floaters = b
		return nil
	},
	"SEED": func(c *Config, v string) error {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return err
		}
		c.Field.Seed = n
		return nil
	},
	"SETTLE_FRAMES": func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		c.Field.SettleFrames = n
		return nil
	},
}

func floatSetter(field func(*Config) *float64) envSetter {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

// ApplyEnv overwrites cfg fields from HEROFIELD_* variables found by lookup.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	for name, set := range envSetters {
		key := EnvPrefix + name
		v, ok := lookup(key)
		if !ok {
			continue
		}
		if err := set(cfg, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalid, key, v, err)
		}
	}
	return nil
}

// ReadEnvFile reads a .env file into a lookup. Process variables passed as
// fallback win over the file.
func ReadEnvFile(path string, fallback LookupFunc) (LookupFunc, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("config: env file: %w", err)
	}
	return func(key string) (string, bool) {
		if fallback != nil {
			if v, ok := fallback(key); ok {
				return v, true
			}
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

// Loader resolves the full settings: defaults, then Path, then the
// environment.
type Loader struct {
	// Path is the TOML file. Empty means defaults only.
	Path string
	// EnvFile is an optional .env file.
	EnvFile string
	// Lookup reads process variables. Nil means os.LookupEnv.
	Lookup LookupFunc
}

// Load resolves and validates the settings.
func (l Loader) Load() (Config, error) {
	cfg := Default()
	if l.Path != "" {
		var err error
		if cfg, err = ReadFile(l.Path); err != nil {
			return Config{}, err
		}
	}

	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if l.EnvFile != "" {
		var err error
		if lookup, err = ReadEnvFile(l.EnvFile, lookup); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
