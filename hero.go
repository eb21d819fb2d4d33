package herofield

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/herofield/surface"
)

// Metrics describes the drawing surface's layout box.
type Metrics struct {
	Width, Height float64  // CSS px
	DPR           float64  // device pixels per CSS px, 1 when unknown
	Origin        gg.Point // top-left corner in viewport coordinates
}

// PointerListener receives viewport-space pointer events.
type PointerListener interface {
	PointerMove(x, y float64)
	PointerLeave()
}

// Presenter shows a finished frame.
type Presenter interface {
	Present(s *surface.Surface) error
}

// Host is the environment a hero animation is mounted into: a frame
// scheduler, a layout box, a way to show frames and event subscriptions.
// Every callback is delivered on the goroutine that runs frames.
type Host interface {
	Scheduler

	// Metrics returns the current layout box.
	Metrics() Metrics
	// Presenter returns the frame sink, or an error when the host cannot
	// show raster frames.
	Presenter() (Presenter, error)
	// ListenPointer subscribes l and returns its removal function.
	ListenPointer(l PointerListener) (remove func())
	// ListenResize subscribes fn and returns its removal function.
	ListenResize(fn func(Metrics)) (remove func())
}

// Handle is one mounted hero animation. It owns the surface, the field,
// the pointer tracker and the render loop.
//
// Handle is NOT safe for concurrent use. Call its methods on the host's
// frame goroutine.
type Handle struct {
	host      Host
	cfg       Config
	presenter Presenter

	surface  *surface.Surface
	field    *Field
	pointer  *Pointer
	driver   *Driver
	floaters *floaters
	painter  painter
	origin   gg.Point

	removePointer func()
	removeResize  func()
	mounted       bool
}

// Mount attaches a particle field to host and starts animating it.
//
// When the host cannot present frames Mount returns a nil Handle and an
// error matching ErrCapability; the caller should show a static
// background instead. Invalid options yield ErrInvalidConfig.
func Mount(host Host, opts ...Option) (*Handle, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	presenter, err := host.Presenter()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapability, err)
	}
	if presenter == nil {
		return nil, ErrCapability
	}

	h := &Handle{
		host:      host,
		cfg:       cfg,
		presenter: presenter,
		surface:   surface.New(),
		field:     NewField(cfg),
		pointer:   NewPointer(),
		mounted:   true,
	}
	if cfg.Floaters {
		h.floaters = newFloaters(cfg.Seed)
	}
	h.driver = NewDriver(host, h.step, cfg.SettleFrames)

	h.resize(host.Metrics())
	h.removePointer = host.ListenPointer(handlePointer{h})
	h.removeResize = host.ListenResize(h.resize)

	w, ht := h.surface.CSSSize()
	Logger().Info("herofield: mounted",
		"width", w, "height", ht, "dpr", h.surface.DPR(), "particles", h.field.Len())
	return h, nil
}

// Unmount stops the loop, removes every listener and releases the
// surface. No callback runs afterwards. Unmount is idempotent.
func (h *Handle) Unmount() {
	if h == nil || !h.mounted {
		return
	}
	h.mounted = false
	h.driver.Stop()
	if h.removePointer != nil {
		h.removePointer()
		h.removePointer = nil
	}
	if h.removeResize != nil {
		h.removeResize()
		h.removeResize = nil
	}
	_ = h.surface.Close()
	Logger().Info("herofield: unmounted", "ticks", h.driver.Ticks())
}

// Invalidate wakes an idle loop, for example after a theme change.
func (h *Handle) Invalidate() {
	if h.mounted {
		h.driver.Start()
	}
}

// State returns the render loop state.
func (h *Handle) State() LoopState { return h.driver.State() }

// Ticks returns the number of frames stepped so far.
func (h *Handle) Ticks() uint64 { return h.driver.Ticks() }

// Field returns the particle field.
func (h *Handle) Field() *Field { return h.field }

// Pointer returns the pointer tracker.
func (h *Handle) Pointer() *Pointer { return h.pointer }

// Surface returns the drawing surface.
func (h *Handle) Surface() *surface.Surface { return h.surface }

// Mounted reports whether Unmount has not been called yet.
func (h *Handle) Mounted() bool { return h.mounted }

func (h *Handle) step(dt float64) bool {
	stats := h.field.Tick(h.pointer.Current(), dt)
	if h.floaters != nil {
		h.floaters.step(dt)
	}
	if err := h.painter.paint(h.surface, h.field, h.pointer, h.floaters, h.cfg); err != nil {
		Logger().Warn("herofield: paint failed", "err", err)
	} else if err := h.presenter.Present(h.surface); err != nil {
		Logger().Warn("herofield: present failed", "err", err)
	}
	return stats.Settled(h.cfg.SettleSpeed) && h.floaters == nil
}

// resize reconfigures the surface and rebuilds the grid when the CSS size
// changed.
func (h *Handle) resize(m Metrics) {
	if !h.mounted {
		return
	}
	h.origin = m.Origin
	dpr := m.DPR
	if !positive(dpr) {
		dpr = 1
	}
	dpr = math.Min(dpr, h.cfg.MaxDPR)
	changed, err := h.surface.Configure(m.Width, m.Height, dpr)
	if err != nil {
		Logger().Warn("herofield: resize rejected", "width", m.Width, "height", m.Height, "dpr", m.DPR, "err", err)
		return
	}
	if changed {
		w, ht := h.surface.CSSSize()
		if fw, fh := h.field.Size(); fw != w || fh != ht || h.field.Len() == 0 {
			h.field.Rebuild(w, ht, h.cfg.GridSpacing)
			Logger().Debug("herofield: grid rebuilt",
				"cols", h.field.Cols(), "rows", h.field.Rows(), "particles", h.field.Len())
		}
	}
	h.driver.Start()
}

// handlePointer forwards host pointer events to a Handle.
type handlePointer struct{ h *Handle }

func (p handlePointer) PointerMove(x, y float64) {
	if !p.h.mounted {
		return
	}
	p.h.pointer.OnMove(x, y, p.h.origin)
	p.h.driver.Start()
}

func (p handlePointer) PointerLeave() {
	if !p.h.mounted {
		return
	}
	p.h.pointer.OnLeave()
	p.h.driver.Start()
}
