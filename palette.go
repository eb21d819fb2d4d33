package herofield

import (
	"fmt"
	"strings"

	"github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the colour set for one theme.
type Palette struct {
	Particle   gg.RGBA
	Glow       []gg.RGBA
	Background gg.RGBA
}

// Palettes holds one Palette per theme. Exactly one is active at a time.
type Palettes struct {
	Light Palette
	Dark  Palette
}

var (
	lightPalette = Palette{
		Particle:   gg.Hex("#1C352D"),
		Glow:       []gg.RGBA{gg.Hex("#A6B28B"), gg.Hex("#F5C9B0")},
		Background: gg.Hex("#F9F6F3"),
	}
	darkPalette = Palette{
		Particle:   gg.Hex("#F9F6F3"),
		Glow:       []gg.RGBA{gg.Hex("#E8B896"), gg.Hex("#2A3B2E")},
		Background: gg.Hex("#0A0F0D"),
	}
)

// DefaultPalettes returns the site's sage/peach colour tables.
func DefaultPalettes() Palettes {
	return Palettes{Light: lightPalette.clone(), Dark: darkPalette.clone()}
}

// Resolve maps a theme flag to the default palette. It never fails and
// the returned value shares no memory with the tables.
func Resolve(isDark bool) Palette {
	if isDark {
		return darkPalette.clone()
	}
	return lightPalette.clone()
}

// Resolve maps a theme flag to p's palette.
func (p Palettes) Resolve(isDark bool) Palette {
	if isDark {
		return p.Dark.clone()
	}
	return p.Light.clone()
}

func (p Palette) clone() Palette {
	p.Glow = append([]gg.RGBA(nil), p.Glow...)
	return p
}

// ParsePalette builds a Palette from hex strings ("#RRGGBB" or "#RGB",
// the leading '#' is optional).
func ParsePalette(particle string, glow []string, background string) (Palette, error) {
	var (
		p   Palette
		err error
	)
	if p.Particle, err = parseHex(particle); err != nil {
		return Palette{}, fmt.Errorf("herofield: particle colour: %w", err)
	}
	if p.Background, err = parseHex(background); err != nil {
		return Palette{}, fmt.Errorf("herofield: background colour: %w", err)
	}
	for i, s := range glow {
		c, err := parseHex(s)
		if err != nil {
			return Palette{}, fmt.Errorf("herofield: glow colour %d: %w", i, err)
		}
		p.Glow = append(p.Glow, c)
	}
	return p, nil
}

func parseHex(s string) (gg.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return gg.RGBA{}, err
	}
	return fromColorful(c, 1), nil
}

func toColorful(c gg.RGBA) colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func fromColorful(c colorful.Color, alpha float64) gg.RGBA {
	c = c.Clamped()
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

// blendLab mixes two colours in CIE-L*a*b*, which keeps the sage to peach
// ramp free of the muddy midpoint an RGB lerp gives.
func blendLab(a, b gg.RGBA, t, alpha float64) gg.RGBA {
	return fromColorful(toColorful(a).BlendLab(toColorful(b), t), alpha)
}

// ThemeSignal reports whether dark mode is active. It is read once per
// drawn frame, never cached.
type ThemeSignal interface {
	Dark() bool
}

// ThemeFunc adapts a function to ThemeSignal.
type ThemeFunc func() bool

// Dark implements ThemeSignal.
func (f ThemeFunc) Dark() bool { return f() }

// StaticTheme is a ThemeSignal that never changes.
type StaticTheme bool

// Dark implements ThemeSignal.
func (s StaticTheme) Dark() bool { return bool(s) }
