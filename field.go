package herofield

import (
	"math"

	"github.com/gogpu/gg"
)

const (
	// frameRate is the nominal refresh rate the per-frame constants are tuned for.
	frameRate = 60.0

	// MaxStep caps a single tick so a long stall (hidden tab, suspended
	// terminal) cannot inject a huge impulse into the springs.
	MaxStep = 0.1

	// farDistance is the magnitude of the FarAway sentinel coordinates.
	farDistance = 1e9

	// frameSlack lets a host interval a few microseconds short of a
	// nominal frame still count as one whole frame.
	frameSlack = 1e-3
)

// maxFrames is the most fixed frames a single Tick integrates.
var maxFrames = int(math.Round(MaxStep * frameRate))

// FarAway is the pointer position used when nothing hovers the surface.
// Any distance computed against it exceeds every valid hover radius, so the
// influence term evaluates to zero without a separate branch.
var FarAway = gg.Pt(-farDistance, -farDistance)

// Particle is a point elastically bound to its grid origin.
type Particle struct {
	X, Y   float64 // position in CSS px
	OX, OY float64 // rest position
	VX, VY float64 // velocity in CSS px per frame

	phaseX, phaseY float64 // drift phases, fixed at rebuild
}

// TickStats summarises one Tick.
type TickStats struct {
	// MaxSpeed is the largest particle speed after the tick.
	MaxSpeed float64
	// MaxOffset is the largest distance between a particle and its drift target.
	MaxOffset float64
	// Influenced counts particles that received pointer force.
	Influenced int
}

// Settled reports whether nothing visible is moving.
func (s TickStats) Settled(speed float64) bool {
	return s.Influenced == 0 && s.MaxSpeed <= speed && s.MaxOffset <= speed
}

// Field is the particle set of one hero animation and its physics.
//
// Field is NOT safe for concurrent use.
type Field struct {
	cfg       Config
	particles []Particle
	cols      int
	rows      int
	width     float64
	height    float64
	spacing   float64
	elapsed   float64 // accumulated clamped seconds
	frames    uint64  // fixed frames integrated, drives drift
	pending   float64 // fraction of a frame carried to the next Tick
	last      TickStats
}

// NewField creates an empty field. Call Rebuild before Tick.
func NewField(cfg Config) *Field {
	return &Field{cfg: cfg}
}

// Rebuild regenerates every particle on a grid covering
// [-spacing, width+spacing] x [-spacing, height+spacing]. Velocities are
// zeroed and positions reset to the origins. A zero-area surface or a
// non-positive spacing leaves the field empty.
func (f *Field) Rebuild(width, height, spacing float64) {
	f.particles = f.particles[:0]
	f.cols, f.rows = 0, 0
	f.width, f.height, f.spacing = width, height, spacing
	f.elapsed, f.frames, f.pending = 0, 0, 0
	f.last = TickStats{}

	if !positive(width) || !positive(height) || !positive(spacing) {
		return
	}

	cols := gridCells(width, spacing)
	rows := gridCells(height, spacing)
	if cap(f.particles) < cols*rows {
		f.particles = make([]Particle, 0, cols*rows)
	}
	maxX, maxY := width+spacing, height+spacing
	for r := 0; r < rows; r++ {
		oy := math.Min(-spacing+float64(r)*spacing, maxY)
		for c := 0; c < cols; c++ {
			ox := math.Min(-spacing+float64(c)*spacing, maxX)
			i := r*cols + c
			px, py := driftPhases(f.cfg.Seed, uint64(i))
			f.particles = append(f.particles, Particle{
				X: ox, Y: oy,
				OX: ox, OY: oy,
				phaseX: px, phaseY: py,
			})
		}
	}
	f.cols, f.rows = cols, rows
}

// gridCells returns ceil(extent/spacing + 2).
func gridCells(extent, spacing float64) int {
	return int(math.Ceil(extent/spacing + 2))
}

// Tick advances the simulation by dt seconds against the given pointer.
// A non-positive or non-finite dt is ignored.
//
// The physics runs in fixed 1/60 s frames of the per-frame model, so a
// slow host integrates several small frames instead of one large step.
// Time left over is carried to the next Tick; a Tick shorter than a frame
// integrates nothing and reports the previous stats.
func (f *Field) Tick(pointer gg.Point, dt float64) TickStats {
	if len(f.particles) == 0 || !positive(dt) {
		return TickStats{}
	}
	dt = math.Min(dt, MaxStep)
	f.elapsed += dt

	f.pending += dt * frameRate
	n := int(f.pending + frameSlack)
	f.pending -= float64(n)
	if n > maxFrames {
		n = maxFrames
		f.pending = 0
	}
	for ; n > 0; n-- {
		f.last = f.step(pointer)
	}
	return f.last
}

// step integrates one fixed frame.
func (f *Field) step(pointer gg.Point) TickStats {
	var stats TickStats
	f.frames++

	damp := f.cfg.Damping
	radius := f.cfg.HoverRadius
	force := f.cfg.ForceScale
	spring := f.cfg.ReturnStrength

	drifting := f.cfg.DriftAmplitude > 0
	var wx, wy float64
	if drifting {
		wx = f.cfg.DriftSpeed * float64(f.frames) / frameRate
		wy = 0.8 * wx
	}

	for i := range f.particles {
		p := &f.particles[i]

		// Pointer repulsion along pointer->particle.
		dx := p.X - pointer.X
		dy := p.Y - pointer.Y
		if d := math.Hypot(dx, dy); d < radius && d > 0 {
			s := force * (1 - d/radius) / d
			p.VX += dx * s
			p.VY += dy * s
			stats.Influenced++
		}

		tx, ty := p.OX, p.OY
		if drifting {
			tx += f.cfg.DriftAmplitude * math.Sin(wx+p.phaseX)
			ty += f.cfg.DriftAmplitude * math.Cos(wy+p.phaseY)
		}

		p.VX += (tx - p.X) * spring
		p.VY += (ty - p.Y) * spring
		p.VX *= damp
		p.VY *= damp
		p.X += p.VX
		p.Y += p.VY

		if v := math.Hypot(p.VX, p.VY); v > stats.MaxSpeed {
			stats.MaxSpeed = v
		}
		if o := math.Hypot(tx-p.X, ty-p.Y); o > stats.MaxOffset {
			stats.MaxOffset = o
		}
	}
	return stats
}

// Particles returns the live particle slice. Callers must not modify it.
func (f *Field) Particles() []Particle { return f.particles }

// Len returns the particle count.
func (f *Field) Len() int { return len(f.particles) }

// Cols returns the number of grid columns.
func (f *Field) Cols() int { return f.cols }

// Rows returns the number of grid rows.
func (f *Field) Rows() int { return f.rows }

// Size returns the surface size the grid was built for.
func (f *Field) Size() (width, height float64) { return f.width, f.height }

// Time returns the simulated seconds since the last Rebuild, after
// MaxStep clamping.
func (f *Field) Time() float64 { return f.elapsed }
