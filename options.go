package herofield

import (
	"fmt"
	"math"
)

// Config holds the tunables of a particle field. The zero value is not
// usable; start from DefaultConfig or pass Options to Mount.
//
// The published hero variants disagree on several constants (friction
// 0.8 vs 0.85, return strength 0.1 to 0.2, hover radius 80 to 150), so all
// of them are exposed here rather than fixed.
type Config struct {
	// GridSpacing is the distance between neighbouring rest positions in CSS px.
	GridSpacing float64
	// HoverRadius is the distance within which the pointer pushes particles.
	HoverRadius float64
	// ForceScale is the velocity added per frame at zero distance.
	ForceScale float64
	// Damping multiplies velocity once per frame. Must be in (0, 1).
	Damping float64
	// ReturnStrength is the spring constant toward the drift target. Must be in (0, 1).
	ReturnStrength float64
	// DriftAmplitude is the radius of the idle breathing motion in CSS px. 0 disables drift.
	DriftAmplitude float64
	// DriftSpeed is the angular speed of the breathing motion in rad/s.
	DriftSpeed float64
	// DotRadius is the drawn radius of each particle in CSS px.
	DotRadius float64
	// LinkDistance joins grid neighbours closer than this with a line. 0 disables links.
	LinkDistance float64
	// Floaters enables the rotating wireframe polyhedra layer.
	Floaters bool
	// Seed feeds the per-particle phase derivation.
	Seed uint64
	// SettleSpeed is the velocity below which a frame counts as settled.
	SettleSpeed float64
	// SettleFrames is the number of consecutive settled frames before the
	// loop goes idle. 0 keeps the loop running forever.
	SettleFrames int
	// MaxDPR caps the device pixel ratio a host reports, bounding the
	// backing store on very dense displays.
	MaxDPR float64

	// Theme is read at every draw. Defaults to StaticTheme(false).
	Theme ThemeSignal
	// Palettes maps themes to colours. Defaults to DefaultPalettes.
	Palettes Palettes
}

// DefaultConfig returns the configuration used when Mount gets no options.
func DefaultConfig() Config {
	return Config{
		GridSpacing:    32,
		HoverRadius:    120,
		ForceScale:     3,
		Damping:        0.85,
		ReturnStrength: 0.1,
		DriftAmplitude: 0,
		DriftSpeed:     0.6,
		DotRadius:      1.6,
		LinkDistance:   0,
		SettleSpeed:    0.01,
		SettleFrames:   30,
		MaxDPR:         2,
		Theme:          StaticTheme(false),
		Palettes:       DefaultPalettes(),
	}
}

// Validate reports the first out-of-range field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case !positive(c.GridSpacing):
		return fmt.Errorf("%w: grid spacing %v must be > 0", ErrInvalidConfig, c.GridSpacing)
	case !positive(c.HoverRadius) || c.HoverRadius >= farDistance:
		return fmt.Errorf("%w: hover radius %v must be > 0", ErrInvalidConfig, c.HoverRadius)
	case !finite(c.ForceScale) || c.ForceScale < 0:
		return fmt.Errorf("%w: force scale %v must be >= 0", ErrInvalidConfig, c.ForceScale)
	case !unitOpen(c.Damping):
		return fmt.Errorf("%w: damping %v must be in (0,1)", ErrInvalidConfig, c.Damping)
	case !unitOpen(c.ReturnStrength):
		return fmt.Errorf("%w: return strength %v must be in (0,1)", ErrInvalidConfig, c.ReturnStrength)
	case !finite(c.DriftAmplitude) || c.DriftAmplitude < 0:
		return fmt.Errorf("%w: drift amplitude %v must be >= 0", ErrInvalidConfig, c.DriftAmplitude)
	case !finite(c.DriftSpeed):
		return fmt.Errorf("%w: drift speed %v must be finite", ErrInvalidConfig, c.DriftSpeed)
	case !finite(c.DotRadius) || c.DotRadius < 0:
		return fmt.Errorf("%w: dot radius %v must be >= 0", ErrInvalidConfig, c.DotRadius)
	case !finite(c.LinkDistance) || c.LinkDistance < 0:
		return fmt.Errorf("%w: link distance %v must be >= 0", ErrInvalidConfig, c.LinkDistance)
	case !finite(c.SettleSpeed) || c.SettleSpeed < 0:
		return fmt.Errorf("%w: settle speed %v must be >= 0", ErrInvalidConfig, c.SettleSpeed)
	case c.SettleFrames < 0:
		return fmt.Errorf("%w: settle frames %d must be >= 0", ErrInvalidConfig, c.SettleFrames)
	case !positive(c.MaxDPR):
		return fmt.Errorf("%w: max dpr %v must be > 0", ErrInvalidConfig, c.MaxDPR)
	case c.Theme == nil:
		return fmt.Errorf("%w: nil theme signal", ErrInvalidConfig)
	}
	return nil
}

// Option configures a field during Mount.
//
// Example:
//
//	h, err := herofield.Mount(host,
//	    herofield.WithGridSpacing(40),
//	    herofield.WithHoverRadius(150),
//	    herofield.WithTheme(themeToggle),
//	)
type Option func(*Config)

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// WithGridSpacing sets the distance between rest positions.
func WithGridSpacing(spacing float64) Option {
	return func(c *Config) { c.GridSpacing = spacing }
}

// WithHoverRadius sets the pointer influence radius.
func WithHoverRadius(radius float64) Option {
	return func(c *Config) { c.HoverRadius = radius }
}

// WithForceScale sets the repulsion strength.
func WithForceScale(scale float64) Option {
	return func(c *Config) { c.ForceScale = scale }
}

// WithDamping sets the per-frame velocity multiplier.
func WithDamping(damping float64) Option {
	return func(c *Config) { c.Damping = damping }
}

// WithReturnStrength sets the spring constant toward the rest position.
func WithReturnStrength(strength float64) Option {
	return func(c *Config) { c.ReturnStrength = strength }
}

// WithDrift enables the idle breathing motion.
func WithDrift(amplitude, speed float64) Option {
	return func(c *Config) {
		c.DriftAmplitude = amplitude
		c.DriftSpeed = speed
	}
}

// WithDotRadius sets the drawn particle radius.
func WithDotRadius(radius float64) Option {
	return func(c *Config) { c.DotRadius = radius }
}

// WithLinks draws connection lines between neighbours closer than distance.
func WithLinks(distance float64) Option {
	return func(c *Config) { c.LinkDistance = distance }
}

// WithFloaters toggles the wireframe polyhedra layer.
func WithFloaters(enabled bool) Option {
	return func(c *Config) { c.Floaters = enabled }
}

// WithSeed sets the seed for per-particle phases.
func WithSeed(seed uint64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithSettle sets the idle detection threshold. frames == 0 disables idling.
func WithSettle(speed float64, frames int) Option {
	return func(c *Config) {
		c.SettleSpeed = speed
		c.SettleFrames = frames
	}
}

// WithMaxDPR caps the device pixel ratio used for the backing store.
func WithMaxDPR(dpr float64) Option {
	return func(c *Config) { c.MaxDPR = dpr }
}

// WithTheme sets the light/dark signal read at every draw.
func WithTheme(theme ThemeSignal) Option {
	return func(c *Config) { c.Theme = theme }
}

// WithPalettes overrides the colour tables.
func WithPalettes(p Palettes) Option {
	return func(c *Config) { c.Palettes = p }
}

func newConfig(opts []Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func finite(v float64) bool   { return !math.IsNaN(v) && !math.IsInf(v, 0) }
func positive(v float64) bool { return finite(v) && v > 0 }
func unitOpen(v float64) bool { return finite(v) && v > 0 && v < 1 }
