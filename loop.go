package herofield

import "time"

// FrameID identifies a pending frame callback. Schedulers never hand out 0.
type FrameID uint64

// FrameFunc is a frame callback. now is a monotonic timestamp from the
// host's frame clock.
type FrameFunc func(now time.Duration)

// Scheduler is the host's frame-pacing primitive: one callback per display
// refresh, requested one frame at a time.
type Scheduler interface {
	// RequestFrame schedules fn for the next frame and returns its id.
	RequestFrame(fn FrameFunc) FrameID
	// CancelFrame drops a pending callback. Unknown ids are ignored.
	CancelFrame(id FrameID)
}

// StepFunc advances and draws one frame. It reports whether the scene was
// settled (nothing visibly moving) after the step.
type StepFunc func(dt float64) (settled bool)

// LoopState is the state of a Driver.
type LoopState int

const (
	// LoopIdle means no frame is pending.
	LoopIdle LoopState = iota
	// LoopRunning means exactly one frame is pending or executing.
	LoopRunning
)

// String returns the state name.
func (s LoopState) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Driver runs a StepFunc once per frame until stopped or settled.
// Each frame is requested only after the previous step returned, so steps
// never overlap.
//
// Driver is NOT safe for concurrent use.
type Driver struct {
	sched        Scheduler
	step         StepFunc
	settleFrames int

	state   LoopState
	pending FrameID
	gen     uint64 // bumped on every Start/Stop; stale callbacks compare against it
	last    time.Duration
	hasLast bool
	quiet   int
	ticks   uint64
}

// NewDriver creates an idle driver. After settleFrames consecutive settled
// steps the driver goes idle on its own; 0 disables that.
func NewDriver(s Scheduler, step StepFunc, settleFrames int) *Driver {
	return &Driver{sched: s, step: step, settleFrames: settleFrames}
}

// Start enters Running. It is a no-op while already running.
func (d *Driver) Start() {
	if d.state == LoopRunning {
		d.quiet = 0
		return
	}
	d.state = LoopRunning
	d.gen++
	d.hasLast = false
	d.quiet = 0
	d.schedule()
	Logger().Debug("herofield: loop started")
}

// Stop cancels the pending frame and enters Idle. Safe to call when idle.
// No step runs after Stop returns.
func (d *Driver) Stop() {
	if d.state == LoopIdle {
		return
	}
	d.state = LoopIdle
	d.gen++
	if d.pending != 0 {
		d.sched.CancelFrame(d.pending)
		d.pending = 0
	}
	Logger().Debug("herofield: loop stopped", "ticks", d.ticks)
}

// State returns the current loop state.
func (d *Driver) State() LoopState { return d.state }

// Ticks returns the number of steps executed.
func (d *Driver) Ticks() uint64 { return d.ticks }

func (d *Driver) schedule() {
	gen := d.gen
	d.pending = d.sched.RequestFrame(func(now time.Duration) {
		d.frame(gen, now)
	})
}

func (d *Driver) frame(gen uint64, now time.Duration) {
	if d.state != LoopRunning || gen != d.gen {
		return
	}
	d.pending = 0

	dt := 1.0 / frameRate
	if d.hasLast {
		dt = (now - d.last).Seconds()
	}
	d.last, d.hasLast = now, true

	settled := d.step(dt)
	d.ticks++

	// The step may have stopped (or restarted) the loop.
	if d.state != LoopRunning || gen != d.gen {
		return
	}

	if settled && d.settleFrames > 0 {
		d.quiet++
		if d.quiet >= d.settleFrames {
			d.state = LoopIdle
			d.gen++
			Logger().Debug("herofield: loop settled", "ticks", d.ticks)
			return
		}
	} else {
		d.quiet = 0
	}
	d.schedule()
}
