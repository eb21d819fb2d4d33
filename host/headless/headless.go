// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package headless provides a deterministic herofield.Host with a virtual
// frame clock.
//
// Nothing happens until the caller advances the clock, so tests and
// offline renderers see exactly the frames they ask for:
//
//	host := headless.New(headless.WithSize(800, 600))
//	h, err := herofield.Mount(host)
//	if err != nil {
//	    return err
//	}
//	defer h.Unmount()
//
//	host.MovePointer(400, 300)
//	host.AdvanceN(60) // one simulated second
package headless

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/herofield"
	"github.com/gogpu/herofield/surface"
)

// ErrNoPresenter is the default capability error of WithoutPresenter.
var ErrNoPresenter = errors.New("headless: presenter disabled")

// DefaultFrameInterval is the virtual refresh period, 60 Hz.
const DefaultFrameInterval = time.Second / 60

// Sink receives every presented frame. frame counts from 0.
type Sink func(frame int, s *surface.Surface) error

// Host is a virtual-clock herofield.Host.
//
// Host is NOT safe for concurrent use.
type Host struct {
	metrics  herofield.Metrics
	interval time.Duration
	now      time.Duration

	nextFrame herofield.FrameID
	frames    map[herofield.FrameID]herofield.FrameFunc

	nextListener int
	pointers     map[int]herofield.PointerListener
	resizes      map[int]func(herofield.Metrics)

	presentErr error
	capErr     error
	sink       Sink
	presented  int
}

// Option configures a Host.
type Option func(*Host)

// WithSize sets the CSS size of the layout box.
func WithSize(width, height float64) Option {
	return func(h *Host) {
		h.metrics.Width = width
		h.metrics.Height = height
	}
}

// WithDPR sets the device pixel ratio.
func WithDPR(dpr float64) Option {
	return func(h *Host) { h.metrics.DPR = dpr }
}

// WithOrigin sets the viewport position of the layout box.
func WithOrigin(x, y float64) Option {
	return func(h *Host) { h.metrics.Origin = gg.Pt(x, y) }
}

// WithFrameInterval sets the virtual refresh period.
func WithFrameInterval(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithSink calls fn for every presented frame.
func WithSink(fn Sink) Option {
	return func(h *Host) { h.sink = fn }
}

// WithoutPresenter makes Presenter fail with err, or ErrNoPresenter when
// err is nil.
func WithoutPresenter(err error) Option {
	return func(h *Host) {
		if err == nil {
			err = ErrNoPresenter
		}
		h.capErr = err
	}
}

// WithPresentError makes every Present call fail with err.
func WithPresentError(err error) Option {
	return func(h *Host) { h.presentErr = err }
}

// New creates a host with a 800x600 layout box at DPR 1.
func New(opts ...Option) *Host {
	h := &Host{
		metrics:  herofield.Metrics{Width: 800, Height: 600, DPR: 1},
		interval: DefaultFrameInterval,
		frames:   make(map[herofield.FrameID]herofield.FrameFunc),
		pointers: make(map[int]herofield.PointerListener),
		resizes:  make(map[int]func(herofield.Metrics)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RequestFrame implements herofield.Scheduler.
func (h *Host) RequestFrame(fn herofield.FrameFunc) herofield.FrameID {
	h.nextFrame++
	h.frames[h.nextFrame] = fn
	return h.nextFrame
}

// CancelFrame implements herofield.Scheduler.
func (h *Host) CancelFrame(id herofield.FrameID) {
	delete(h.frames, id)
}

// Metrics implements herofield.Host.
func (h *Host) Metrics() herofield.Metrics { return h.metrics }

// Presenter implements herofield.Host.
func (h *Host) Presenter() (herofield.Presenter, error) {
	if h.capErr != nil {
		return nil, h.capErr
	}
	return h, nil
}

// Present implements herofield.Presenter.
func (h *Host) Present(s *surface.Surface) error {
	if h.presentErr != nil {
		return h.presentErr
	}
	if h.sink != nil {
		if err := h.sink(h.presented, s); err != nil {
			return err
		}
	}
	h.presented++
	return nil
}

// ListenPointer implements herofield.Host.
func (h *Host) ListenPointer(l herofield.PointerListener) func() {
	id := h.listenerID()
	h.pointers[id] = l
	return func() { delete(h.pointers, id) }
}

// ListenResize implements herofield.Host.
func (h *Host) ListenResize(fn func(herofield.Metrics)) func() {
	id := h.listenerID()
	h.resizes[id] = fn
	return func() { delete(h.resizes, id) }
}

func (h *Host) listenerID() int {
	h.nextListener++
	return h.nextListener
}

// Advance moves the clock by one frame interval and runs the callbacks
// that were pending before the call, in request order. Callbacks they
// request wait for the next Advance. It returns the number run.
func (h *Host) Advance() int {
	h.now += h.interval
	ran := 0
	for _, id := range slices.Sorted(maps.Keys(h.frames)) {
		fn, ok := h.frames[id]
		if !ok {
			continue // cancelled by an earlier callback
		}
		delete(h.frames, id)
		fn(h.now)
		ran++
	}
	return ran
}

// AdvanceN calls Advance n times and returns the total callbacks run.
func (h *Host) AdvanceN(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += h.Advance()
	}
	return total
}

// RunUntilIdle advances until no frame is pending or limit frames elapsed.
// It returns the number of frames advanced.
func (h *Host) RunUntilIdle(limit int) int {
	n := 0
	for n < limit && len(h.frames) > 0 {
		h.Advance()
		n++
	}
	return n
}

// MovePointer delivers a viewport-space move to every pointer listener.
func (h *Host) MovePointer(x, y float64) {
	for _, id := range slices.Sorted(maps.Keys(h.pointers)) {
		if l, ok := h.pointers[id]; ok {
			l.PointerMove(x, y)
		}
	}
}

// LeavePointer delivers a leave event to every pointer listener.
func (h *Host) LeavePointer() {
	for _, id := range slices.Sorted(maps.Keys(h.pointers)) {
		if l, ok := h.pointers[id]; ok {
			l.PointerLeave()
		}
	}
}

// Resize changes the layout box and notifies every resize listener.
func (h *Host) Resize(m herofield.Metrics) {
	h.metrics = m
	for _, id := range slices.Sorted(maps.Keys(h.resizes)) {
		if fn, ok := h.resizes[id]; ok {
			fn(m)
		}
	}
}

// Now returns the virtual clock.
func (h *Host) Now() time.Duration { return h.now }

// Pending returns the number of frame callbacks waiting to run.
func (h *Host) Pending() int { return len(h.frames) }

// Listeners returns the number of registered pointer and resize listeners.
func (h *Host) Listeners() int { return len(h.pointers) + len(h.resizes) }

// Presented returns the number of frames presented successfully.
func (h *Host) Presented() int { return h.presented }

// PNGSink returns a Sink that writes every frame to dir as
// frame-0000.png, frame-0001.png and so on.
func PNGSink(dir string) Sink {
	return func(frame int, s *surface.Surface) error {
		path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", frame))
		if err := s.SavePNG(path); err != nil {
			return fmt.Errorf("headless: frame %d: %w", frame, err)
		}
		return nil
	}
}
