// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/herofield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultMatchesLibrary(t *testing.T) {
	hc, err := Default().Hero()
	require.NoError(t, err)

	want := herofield.DefaultConfig()
	assert.Equal(t, want.GridSpacing, hc.GridSpacing)
	assert.Equal(t, want.HoverRadius, hc.HoverRadius)
	assert.Equal(t, want.Damping, hc.Damping)
	assert.Equal(t, want.SettleFrames, hc.SettleFrames)
	assert.Equal(t, want.MaxDPR, hc.MaxDPR)
	assert.Equal(t, herofield.DefaultPalettes(), hc.Palettes)
	assert.False(t, hc.Theme.Dark())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
theme = "dark"

[field]
grid_spacing = 40
hover_radius = 150
floaters = true
seed = 7

[palette.dark]
glow = ["#ffffff"]
`))
	require.NoError(t, err)

	assert.True(t, cfg.Dark())
	assert.Equal(t, 40.0, cfg.Field.GridSpacing)
	assert.Equal(t, 150.0, cfg.Field.HoverRadius)
	assert.True(t, cfg.Field.Floaters)
	assert.Equal(t, uint64(7), cfg.Field.Seed)
	assert.Equal(t, 0.85, cfg.Field.Damping, "unset keys keep defaults")
	assert.Equal(t, []string{"#ffffff"}, cfg.Palette.Dark.Glow)
	assert.Equal(t, "#0A0F0D", cfg.Palette.Dark.Background)

	hc, err := cfg.Hero()
	require.NoError(t, err)
	assert.True(t, hc.Theme.Dark())
	assert.Len(t, hc.Palettes.Dark.Glow, 1)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("[field]\ngrid_spacin = 40\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grid_spacin")
}

func TestParseRejectsBadSyntax(t *testing.T) {
	_, err := Parse([]byte("theme = \n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"bad theme", func(c *Config) { c.Theme = "sepia" }, ErrInvalid},
		{"bad colour", func(c *Config) { c.Palette.Light.Particle = "#zzzzzz" }, ErrInvalid},
		{"damping out of range", func(c *Config) { c.Field.Damping = 1.5 }, herofield.ErrInvalidConfig},
		{"zero spacing", func(c *Config) { c.Field.GridSpacing = 0 }, herofield.ErrInvalidConfig},
		{"negative settle frames", func(c *Config) { c.Field.SettleFrames = -1 }, herofield.ErrInvalidConfig},
		{"zero max dpr", func(c *Config) { c.Field.MaxDPR = 0 }, herofield.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.target)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{
		"HEROFIELD_THEME":         " Dark ",
		"HEROFIELD_SEED":          "0x2a",
		"HEROFIELD_GRID_SPACING":  "24",
		"HEROFIELD_FLOATERS":      "true",
		"HEROFIELD_SETTLE_FRAMES": "0",
		"HEROFIELD_MAX_DPR":       "3",
		"UNRELATED":               "x",
	}))
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, cfg.Theme)
	assert.Equal(t, uint64(42), cfg.Field.Seed)
	assert.Equal(t, 24.0, cfg.Field.GridSpacing)
	assert.True(t, cfg.Field.Floaters)
	assert.Zero(t, cfg.Field.SettleFrames)
	assert.Equal(t, 3.0, cfg.Field.MaxDPR)
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(&cfg, envMap(map[string]string{"HEROFIELD_HOVER_RADIUS": "wide"}))
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "HEROFIELD_HOVER_RADIUS")
}

func TestLoaderPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hero.toml", "theme = \"light\"\n[field]\ngrid_spacing = 40\nhover_radius = 90\n")
	envFile := writeFile(t, dir, ".env", "HEROFIELD_GRID_SPACING=20\nHEROFIELD_THEME=dark\n")

	cfg, err := Loader{
		Path:    path,
		EnvFile: envFile,
		Lookup:  envMap(map[string]string{"HEROFIELD_GRID_SPACING": "50"}),
	}.Load()
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.Field.GridSpacing, "process env beats .env and file")
	assert.Equal(t, ThemeDark, cfg.Theme, ".env beats file")
	assert.Equal(t, 90.0, cfg.Field.HoverRadius, "file beats defaults")
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Loader{Path: filepath.Join(dir, "missing.toml"), Lookup: noEnv}.Load()
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Loader{EnvFile: filepath.Join(dir, "missing.env"), Lookup: noEnv}.Load()
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.toml", "[field]\ndamping = 2\n")
	_, err = Loader{Path: bad, Lookup: noEnv}.Load()
	assert.ErrorIs(t, err, herofield.ErrInvalidConfig)

	cfg, err := Loader{Lookup: noEnv}.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWatchDeliversReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hero.toml", "theme = \"light\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 4)
	errs := make(chan error, 4)
	l := Loader{Path: path, Lookup: noEnv}
	require.NoError(t, l.Watch(ctx, 20*time.Millisecond, func(cfg Config, err error) {
		if err != nil {
			errs <- err
			return
		}
		got <- cfg
	}))

	writeFile(t, dir, "other.toml", "theme = \"dark\"\n")
	writeFile(t, dir, "hero.toml", "theme = \"dark\"\n")

	select {
	case cfg := <-got:
		assert.True(t, cfg.Dark())
	case err := <-errs:
		t.Fatalf("reload failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}

	writeFile(t, dir, "hero.toml", "theme = \"sepia\"\n")
	timeout := time.After(5 * time.Second)
	for {
		select {
		case err := <-errs:
			assert.ErrorIs(t, err, ErrInvalid)
			return
		case cfg := <-got:
			require.True(t, cfg.Dark(), "only the earlier dark file may still be delivered")
		case <-timeout:
			t.Fatal("no reload error delivered")
		}
	}
}

func TestWatchNeedsPath(t *testing.T) {
	err := Loader{}.Watch(context.Background(), 0, func(Config, error) {})
	assert.ErrorIs(t, err, ErrInvalid)
}
