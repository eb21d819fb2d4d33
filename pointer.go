package herofield

import "github.com/gogpu/gg"

// Pointer tracks the latest pointer sample in surface coordinates.
// Samples are not queued: a move between two ticks simply overwrites the
// previous one.
//
// Pointer is NOT safe for concurrent use; hosts deliver events on the same
// goroutine that runs the frame callbacks.
type Pointer struct {
	pos      gg.Point
	hovering bool
}

// NewPointer returns a tracker with the pointer far away.
func NewPointer() *Pointer {
	return &Pointer{pos: FarAway}
}

// OnMove records a viewport-space sample relative to the surface origin.
func (p *Pointer) OnMove(viewportX, viewportY float64, origin gg.Point) {
	if !finite(viewportX) || !finite(viewportY) {
		return
	}
	p.pos = gg.Pt(viewportX-origin.X, viewportY-origin.Y)
	p.hovering = true
}

// OnLeave parks the pointer at FarAway.
func (p *Pointer) OnLeave() {
	p.pos = FarAway
	p.hovering = false
}

// Current returns the surface-space pointer, or FarAway.
func (p *Pointer) Current() gg.Point { return p.pos }

// Hovering reports whether the last event was a move.
func (p *Pointer) Hovering() bool { return p.hovering }
