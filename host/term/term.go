// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package term hosts a hero animation in a terminal.
//
// Every cell shows two vertically stacked pixels with the upper half block
// '▀' (foreground = upper pixel, background = lower pixel). A cell stands
// for CellWidth x CellHeight CSS px, and the surface is rendered at a
// reduced device pixel ratio before being scaled down to the cell grid.
//
// All herofield callbacks run on the goroutine that calls Run. A reader
// goroutine feeds tcell events to it over a channel; other goroutines
// hand work in through Post.
package term

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"maps"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/gg"
	"github.com/gogpu/herofield"
	"github.com/gogpu/herofield/surface"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

const (
	// CellWidth is the CSS width of one terminal cell.
	CellWidth = 8.0
	// CellHeight is the CSS height of one terminal cell.
	CellHeight = 16.0
	// DefaultDPR renders four backing pixels per cell column.
	DefaultDPR = 0.5
	// DefaultFrameInterval paces frames at roughly 60 Hz.
	DefaultFrameInterval = 16 * time.Millisecond

	halfBlock = '▀'
)

// ErrColorDepth is returned by Presenter on terminals with fewer than 256
// colours.
var ErrColorDepth = errors.New("term: terminal lacks 256-colour support")

// KeyHandler receives every key that is not a quit key.
type KeyHandler func(ev *tcell.EventKey)

// Host is a herofield.Host backed by a tcell screen.
type Host struct {
	screen   tcell.Screen
	dpr      float64
	interval time.Duration
	onKey    KeyHandler

	start     time.Time
	nextFrame herofield.FrameID
	frames    map[herofield.FrameID]herofield.FrameFunc

	nextListener int
	pointers     map[int]herofield.PointerListener
	resizes      map[int]func(herofield.Metrics)

	events chan tcell.Event
	posts  chan func()
	done   chan struct{}
	cells  *image.RGBA
}

// Option configures a Host.
type Option func(*Host)

// WithDPR sets the device pixel ratio of the rendered surface.
func WithDPR(dpr float64) Option {
	return func(h *Host) {
		if dpr > 0 {
			h.dpr = dpr
		}
	}
}

// WithFrameInterval sets the frame period.
func WithFrameInterval(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithKeyHandler installs fn for non-quit keys.
func WithKeyHandler(fn KeyHandler) Option {
	return func(h *Host) { h.onKey = fn }
}

// New initialises screen and enables mouse motion and focus reporting.
// Call Close to restore the terminal.
func New(screen tcell.Screen, opts ...Option) (*Host, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("term: init screen: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()
	screen.HideCursor()
	screen.Clear()

	h := &Host{
		screen:   screen,
		dpr:      DefaultDPR,
		interval: DefaultFrameInterval,
		start:    time.Now(),
		frames:   make(map[herofield.FrameID]herofield.FrameFunc),
		pointers: make(map[int]herofield.PointerListener),
		resizes:  make(map[int]func(herofield.Metrics)),
		events:   make(chan tcell.Event, 100),
		posts:    make(chan func(), 16),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Close restores the terminal.
func (h *Host) Close() {
	h.screen.Fini()
}

// Screen returns the underlying tcell screen.
func (h *Host) Screen() tcell.Screen { return h.screen }

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

// Metrics implements herofield.Host. The layout box is the whole screen.
func (h *Host) Metrics() herofield.Metrics {
	cols, rows := h.screen.Size()
	return herofield.Metrics{
		Width:  float64(cols) * CellWidth,
		Height: float64(rows) * CellHeight,
		DPR:    h.dpr,
	}
}

// Presenter implements herofield.Host.
func (h *Host) Presenter() (herofield.Presenter, error) {
	if n := h.screen.Colors(); n < 256 {
		return nil, fmt.Errorf("%w: %d colours", ErrColorDepth, n)
	}
	return h, nil
}

// ListenPointer implements herofield.Host.
func (h *Host) ListenPointer(l herofield.PointerListener) func() {
	h.nextListener++
	id := h.nextListener
	h.pointers[id] = l
	return func() { delete(h.pointers, id) }
}

// ListenResize implements herofield.Host.
func (h *Host) ListenResize(fn func(herofield.Metrics)) func() {
	h.nextListener++
	id := h.nextListener
	h.resizes[id] = fn
	return func() { delete(h.resizes, id) }
}

// Present implements herofield.Presenter by downscaling the backing store
// to two pixels per cell.
func (h *Host) Present(s *surface.Surface) error {
	pm := s.Pixmap()
	if pm == nil {
		return nil
	}
	cols, rows := h.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	bounds := image.Rect(0, 0, cols, rows*2)
	if h.cells == nil || h.cells.Bounds() != bounds {
		h.cells = image.NewRGBA(bounds)
	}
	draw.BiLinear.Scale(h.cells, bounds, pm, pm.Bounds(), draw.Src, nil)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			style := tcell.StyleDefault.
				Foreground(cellColor(h.cells.RGBAAt(x, 2*y))).
				Background(cellColor(h.cells.RGBAAt(x, 2*y+1)))
			h.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	h.screen.Show()
	return nil
}

// PaintStatic fills the screen with bg. It is the fallback when no
// animation can be mounted.
func (h *Host) PaintStatic(bg gg.RGBA) {
	style := tcell.StyleDefault.Background(rgbaColor(bg))
	cols, rows := h.screen.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			h.screen.SetContent(x, y, ' ', nil, style)
		}
	}
	h.screen.Show()
}

// Post queues fn to run on the Run goroutine. It returns false once Run
// has returned.
func (h *Host) Post(fn func()) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.posts <- fn:
		return true
	case <-h.done:
		return false
	}
}

// Run dispatches events, posted work and frames until ctx is cancelled
// or a quit key (q, Esc, Ctrl-C) is pressed.
func (h *Host) Run(ctx context.Context) error {
	defer close(h.done)

	go h.readEvents()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-h.events:
			if h.dispatch(ev) {
				return nil
			}
		case fn := <-h.posts:
			fn()
		case <-ticker.C:
			h.fireFrames(time.Since(h.start))
		}
	}
}

func (h *Host) readEvents() {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return // screen finalised
		}
		select {
		case h.events <- ev:
		case <-h.done:
			return
		}
	}
}

// dispatch handles one tcell event and reports whether to quit.
func (h *Host) dispatch(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
		m := h.Metrics()
		for _, id := range slices.Sorted(maps.Keys(h.resizes)) {
			if fn, ok := h.resizes[id]; ok {
				fn(m)
			}
		}
	case *tcell.EventMouse:
		cx, cy := ev.Position()
		x := (float64(cx) + 0.5) * CellWidth
		y := (float64(cy) + 0.5) * CellHeight
		for _, id := range slices.Sorted(maps.Keys(h.pointers)) {
			if l, ok := h.pointers[id]; ok {
				l.PointerMove(x, y)
			}
		}
	case *tcell.EventFocus:
		if !ev.Focused {
			h.leave()
		}
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC,
			ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return true
		case h.onKey != nil:
			h.onKey(ev)
		}
	}
	return false
}

func (h *Host) leave() {
	for _, id := range slices.Sorted(maps.Keys(h.pointers)) {
		if l, ok := h.pointers[id]; ok {
			l.PointerLeave()
		}
	}
}

// fireFrames runs the callbacks pending at entry in request order.
func (h *Host) fireFrames(now time.Duration) {
	for _, id := range slices.Sorted(maps.Keys(h.frames)) {
		fn, ok := h.frames[id]
		if !ok {
			continue
		}
		delete(h.frames, id)
		fn(now)
	}
}

func cellColor(c color.RGBA) tcell.Color {
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return tcell.ColorBlack
	}
	r, g, b := cc.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func rgbaColor(c gg.RGBA) tcell.Color {
	cc := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
	r, g, b := cc.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
