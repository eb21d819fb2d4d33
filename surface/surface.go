// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
)

// Common errors returned by Surface operations.
var (
	// ErrSurfaceClosed is returned when operations are attempted on a closed surface.
	ErrSurfaceClosed = errors.New("surface: surface is closed")

	// ErrInvalidDimensions is returned for negative or non-finite sizes.
	ErrInvalidDimensions = errors.New("surface: invalid dimensions")

	// ErrInvalidScale is returned for a non-positive or non-finite device pixel ratio.
	ErrInvalidScale = errors.New("surface: invalid device pixel ratio")

	// ErrEmpty is returned by readback operations on a zero-area surface.
	ErrEmpty = errors.New("surface: surface is empty")
)

// MaxBackingSide bounds each side of the backing store in device px.
const MaxBackingSide = 16384

// Surface is a DPR-scaled drawing target.
type Surface struct {
	ctx    *gg.Context
	width  float64 // CSS px
	height float64
	dpr    float64
	pxW    int // backing store px
	pxH    int
	closed bool
}

// New returns an unconfigured, empty surface.
func New() *Surface {
	return &Surface{dpr: 1}
}

// Configure sizes the surface to width x height CSS px at the given device
// pixel ratio. It reports whether anything changed; calling it again with
// the same arguments touches nothing. On error the surface keeps its
// previous size.
func (s *Surface) Configure(width, height, dpr float64) (bool, error) {
	if s.closed {
		return false, ErrSurfaceClosed
	}
	if math.IsNaN(width) || math.IsInf(width, 0) || width < 0 ||
		math.IsNaN(height) || math.IsInf(height, 0) || height < 0 {
		return false, fmt.Errorf("%w: width=%v, height=%v", ErrInvalidDimensions, width, height)
	}
	if math.IsNaN(dpr) || math.IsInf(dpr, 0) || dpr <= 0 {
		return false, fmt.Errorf("%w: %v", ErrInvalidScale, dpr)
	}
	if width == s.width && height == s.height && dpr == s.dpr {
		return false, nil
	}

	fw, fh := math.Round(width*dpr), math.Round(height*dpr)
	if fw > MaxBackingSide || fh > MaxBackingSide {
		return false, fmt.Errorf("%w: backing store %vx%v exceeds %d px", ErrInvalidDimensions, fw, fh, MaxBackingSide)
	}
	pxW, pxH := int(fw), int(fh)

	if pxW <= 0 || pxH <= 0 {
		s.release()
		s.commit(width, height, dpr, pxW, pxH)
		return true, nil
	}

	if s.ctx == nil {
		s.ctx = gg.NewContext(pxW, pxH)
	} else if err := s.ctx.Resize(pxW, pxH); err != nil {
		return false, fmt.Errorf("surface: context resize failed: %w", err)
	}
	s.ctx.Identity()
	s.ctx.Scale(dpr, dpr)
	s.commit(width, height, dpr, pxW, pxH)
	return true, nil
}

// commit records a size the backing store has taken on.
func (s *Surface) commit(width, height, dpr float64, pxW, pxH int) {
	s.width, s.height, s.dpr = width, height, dpr
	s.pxW, s.pxH = pxW, pxH
}

// Clear erases the previous frame to transparent.
func (s *Surface) Clear() {
	if s.ctx != nil && !s.closed {
		s.ctx.Clear()
	}
}

// ClearWithColor fills the whole backing store with col.
func (s *Surface) ClearWithColor(col gg.RGBA) {
	if s.ctx != nil && !s.closed {
		s.ctx.ClearWithColor(col)
	}
}

// Draw calls fn with the context in CSS px coordinates. On an empty
// surface fn is not called.
func (s *Surface) Draw(fn func(*gg.Context)) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if s.ctx == nil {
		return nil
	}
	s.ctx.Push()
	fn(s.ctx)
	s.ctx.Pop()
	return nil
}

// Empty reports whether the surface has no backing store.
func (s *Surface) Empty() bool { return s.ctx == nil }

// CSSSize returns the display size in CSS px.
func (s *Surface) CSSSize() (width, height float64) { return s.width, s.height }

// BackingSize returns the backing store size in device px.
func (s *Surface) BackingSize() (width, height int) { return s.pxW, s.pxH }

// DPR returns the device pixel ratio.
func (s *Surface) DPR() float64 { return s.dpr }

// Pixmap returns the backing store, or nil when empty or closed.
func (s *Surface) Pixmap() *gg.Pixmap {
	if s.ctx == nil || s.closed {
		return nil
	}
	_ = s.ctx.FlushGPU()
	return s.ctx.ResizeTarget()
}

// Image returns a copy of the backing store.
func (s *Surface) Image() (image.Image, error) {
	if s.closed {
		return nil, ErrSurfaceClosed
	}
	if s.ctx == nil {
		return nil, ErrEmpty
	}
	return s.ctx.Image(), nil
}

// SavePNG writes the backing store to path.
func (s *Surface) SavePNG(path string) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if s.ctx == nil {
		return ErrEmpty
	}
	if err := s.ctx.SavePNG(path); err != nil {
		return fmt.Errorf("surface: save %s: %w", path, err)
	}
	return nil
}

// Close releases the backing store. Close is idempotent.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.release()
	return nil
}

func (s *Surface) release() {
	if s.ctx != nil {
		_ = s.ctx.Close()
		s.ctx = nil
	}
}
