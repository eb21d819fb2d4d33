package herofield

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/herofield/surface"
)

const (
	glowRings    = 24   // concentric bands approximating the radial glow
	glowAlpha    = 0.35 // opacity at the pointer
	glowMidAlpha = 0.15 // opacity of the Lab-blended middle stop

	linkAlpha = 0.35
	linkWidth = 0.6 // CSS px

	dotBaseAlpha = 0.45 // opacity of a dot at rest
	alphaBuckets = 8
)

// painter renders one frame of a field. It keeps its batching buffers
// between frames.
type painter struct {
	buckets [alphaBuckets][]int32
}

// paint clears s with the active background and draws the glow, links,
// dots and floaters in CSS px. The theme is read once per call.
func (p *painter) paint(s *surface.Surface, f *Field, ptr *Pointer, fl *floaters, cfg Config) error {
	pal := cfg.Palettes.Resolve(cfg.Theme.Dark())
	s.ClearWithColor(pal.Background)

	var err error
	keep := func(e error) {
		if err == nil {
			err = e
		}
	}
	drawErr := s.Draw(func(dc *gg.Context) {
		if ptr.Hovering() {
			keep(drawGlow(dc, ptr.Current(), cfg.HoverRadius, pal.Glow))
		}
		if cfg.LinkDistance > 0 {
			keep(p.drawLinks(dc, f, cfg.LinkDistance, pal.Particle))
		}
		if cfg.DotRadius > 0 {
			keep(p.drawDots(dc, f, cfg.DotRadius, pal.Particle))
		}
		if fl != nil && len(pal.Glow) > 0 {
			w, h := s.CSSSize()
			keep(fl.draw(dc, w, h, pal.Glow[0]))
		}
	})
	if drawErr != nil {
		return drawErr
	}
	return err
}

// glowBrush returns the radial ramp glow[0] -> Lab midpoint -> transparent
// glow[last] centred on at.
func glowBrush(at gg.Point, radius float64, glow []gg.RGBA) *gg.RadialGradientBrush {
	first, last := glow[0], glow[len(glow)-1]
	inner := first
	inner.A = glowAlpha
	outer := last
	outer.A = 0
	return gg.NewRadialGradientBrush(at.X, at.Y, 0, radius).
		AddColorStop(0, inner).
		AddColorStop(0.5, blendLab(first, last, 0.5, glowMidAlpha)).
		AddColorStop(1, outer)
}

// drawGlow fills glowRings annuli whose colours are sampled from the
// radial ramp. gg evaluates brush coordinates in device space and ignores
// the CSS-px transform, so the gradient is sampled here in CSS px and each
// band is a separate solid even-odd fill.
func drawGlow(dc *gg.Context, at gg.Point, radius float64, glow []gg.RGBA) error {
	if len(glow) == 0 || !positive(radius) {
		return nil
	}
	brush := glowBrush(at, radius, glow)
	dc.SetFillRule(gg.FillRuleEvenOdd)
	defer dc.SetFillRule(gg.FillRuleNonZero)

	step := radius / glowRings
	for i := 0; i < glowRings; i++ {
		r0 := float64(i) * step
		r1 := r0 + step
		c := brush.ColorAt(at.X+(r0+r1)/2, at.Y)
		if c.A <= 0 {
			continue
		}
		dc.SetRGBA(c.R, c.G, c.B, c.A)
		dc.DrawCircle(at.X, at.Y, r1)
		if r0 > 0 {
			dc.DrawCircle(at.X, at.Y, r0)
		}
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// drawLinks strokes lines between right and down grid neighbours closer
// than maxDist, one stroke per alpha bucket.
func (p *painter) drawLinks(dc *gg.Context, f *Field, maxDist float64, col gg.RGBA) error {
	ps := f.Particles()
	cols, rows := f.Cols(), f.Rows()
	if len(ps) == 0 {
		return nil
	}
	type link struct{ a, b int32 }
	var byBucket [alphaBuckets][]link
	add := func(a, b int) {
		d := math.Hypot(ps[a].X-ps[b].X, ps[a].Y-ps[b].Y)
		if d >= maxDist {
			return
		}
		i := bucketOf(1 - d/maxDist)
		byBucket[i] = append(byBucket[i], link{int32(a), int32(b)})
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if c+1 < cols {
				add(i, i+1)
			}
			if r+1 < rows {
				add(i, i+cols)
			}
		}
	}

	dc.SetLineWidth(linkWidth)
	for b, links := range byBucket {
		if len(links) == 0 {
			continue
		}
		dc.SetRGBA(col.R, col.G, col.B, linkAlpha*bucketAlpha(b))
		for _, l := range links {
			dc.MoveTo(ps[l.a].X, ps[l.a].Y)
			dc.LineTo(ps[l.b].X, ps[l.b].Y)
		}
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// drawDots fills every particle, raising its opacity with displacement
// from its rest position. Dots sharing an alpha bucket go into one path.
func (p *painter) drawDots(dc *gg.Context, f *Field, radius float64, col gg.RGBA) error {
	ps := f.Particles()
	if len(ps) == 0 {
		return nil
	}
	spacing := f.spacing
	for b := range p.buckets {
		p.buckets[b] = p.buckets[b][:0]
	}
	for i := range ps {
		b := bucketOf(displacementAlpha(&ps[i], spacing))
		p.buckets[b] = append(p.buckets[b], int32(i))
	}
	for b, idx := range p.buckets {
		if len(idx) == 0 {
			continue
		}
		dc.SetRGBA(col.R, col.G, col.B, col.A*bucketAlpha(b))
		for _, i := range idx {
			dc.DrawCircle(ps[i].X, ps[i].Y, radius)
		}
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	return nil
}

// displacementAlpha is dotBaseAlpha at rest and reaches 1 once the
// particle is a full grid cell away from its origin.
func displacementAlpha(p *Particle, spacing float64) float64 {
	if !positive(spacing) {
		return dotBaseAlpha
	}
	d := math.Hypot(p.X-p.OX, p.Y-p.OY) / spacing
	return dotBaseAlpha + (1-dotBaseAlpha)*math.Min(d, 1)
}

// bucketOf quantises an opacity in [0,1] to a bucket index.
func bucketOf(alpha float64) int {
	i := int(alpha * alphaBuckets)
	if i >= alphaBuckets {
		return alphaBuckets - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

// bucketAlpha is the opacity drawn for bucket i, the top of its range.
func bucketAlpha(i int) float64 {
	return float64(i+1) / alphaBuckets
}
