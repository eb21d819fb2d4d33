package herofield

import (
	"math"
	"testing"
	"time"
)

// fakeScheduler fires frames only when told to.
type fakeScheduler struct {
	next    FrameID
	pending map[FrameID]FrameFunc
	now     time.Duration
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: make(map[FrameID]FrameFunc)}
}

func (s *fakeScheduler) RequestFrame(fn FrameFunc) FrameID {
	s.next++
	s.pending[s.next] = fn
	return s.next
}

func (s *fakeScheduler) CancelFrame(id FrameID) { delete(s.pending, id) }

// fire advances the clock by step and runs every callback pending at that moment.
func (s *fakeScheduler) fire(step time.Duration) int {
	s.now += step
	batch := s.pending
	s.pending = make(map[FrameID]FrameFunc)
	for _, fn := range batch {
		fn(s.now)
	}
	return len(batch)
}

func TestDriverStartIsIdempotent(t *testing.T) {
	s := newFakeScheduler()
	d := NewDriver(s, func(float64) bool { return false }, 0)

	if d.State() != LoopIdle {
		t.Fatalf("initial state = %v, want idle", d.State())
	}
	d.Start()
	d.Start()
	if len(s.pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(s.pending))
	}
	if d.State() != LoopRunning {
		t.Errorf("state = %v, want running", d.State())
	}
	for i := 0; i < 5; i++ {
		if n := s.fire(16 * time.Millisecond); n != 1 {
			t.Fatalf("frame %d fired %d callbacks, want 1", i, n)
		}
	}
	if d.Ticks() != 5 {
		t.Errorf("Ticks() = %d, want 5", d.Ticks())
	}
}

func TestDriverStopCancelsPending(t *testing.T) {
	s := newFakeScheduler()
	steps := 0
	d := NewDriver(s, func(float64) bool { steps++; return false }, 0)

	d.Start()
	s.fire(time.Millisecond)
	d.Stop()
	if len(s.pending) != 0 {
		t.Errorf("pending after Stop = %d, want 0", len(s.pending))
	}
	d.Stop()
	if d.State() != LoopIdle {
		t.Errorf("state = %v, want idle", d.State())
	}
	s.fire(time.Millisecond)
	if steps != 1 {
		t.Errorf("steps = %d, want 1", steps)
	}
}

func TestDriverStopTwiceOnIdle(t *testing.T) {
	s := newFakeScheduler()
	d := NewDriver(s, func(float64) bool { return false }, 0)
	d.Stop()
	d.Stop()
	if d.State() != LoopIdle || len(s.pending) != 0 {
		t.Error("Stop on idle driver changed state")
	}
}

func TestDriverRejectsStaleCallback(t *testing.T) {
	s := newFakeScheduler()
	steps := 0
	d := NewDriver(s, func(float64) bool { steps++; return false }, 0)

	d.Start()
	var stale FrameFunc
	for _, fn := range s.pending {
		stale = fn
	}
	d.Stop()
	stale(time.Second)
	if steps != 0 {
		t.Fatalf("stale callback ran a step after Stop")
	}

	// Restarting must not revive the old callback either.
	d.Start()
	stale(2 * time.Second)
	if steps != 0 {
		t.Fatalf("stale callback ran after restart")
	}
	s.fire(time.Millisecond)
	if steps != 1 {
		t.Errorf("steps = %d, want 1", steps)
	}
}

func TestDriverSettles(t *testing.T) {
	s := newFakeScheduler()
	d := NewDriver(s, func(float64) bool { return true }, 3)

	d.Start()
	for i := 0; i < 3; i++ {
		s.fire(16 * time.Millisecond)
	}
	if d.State() != LoopIdle {
		t.Fatalf("state = %v, want idle after settling", d.State())
	}
	if len(s.pending) != 0 {
		t.Errorf("pending = %d after settling, want 0", len(s.pending))
	}

	d.Start()
	if d.State() != LoopRunning || len(s.pending) != 1 {
		t.Error("Start after settling did not resume")
	}
}

func TestDriverActivityResetsSettling(t *testing.T) {
	s := newFakeScheduler()
	settled := true
	d := NewDriver(s, func(float64) bool { return settled }, 3)

	d.Start()
	s.fire(time.Millisecond)
	s.fire(time.Millisecond)
	d.Start() // pointer activity
	s.fire(time.Millisecond)
	s.fire(time.Millisecond)
	if d.State() != LoopRunning {
		t.Fatal("driver settled despite activity")
	}
	s.fire(time.Millisecond)
	if d.State() != LoopIdle {
		t.Error("driver did not settle after 3 quiet frames")
	}
}

func TestDriverNeverSettlesWhenDisabled(t *testing.T) {
	s := newFakeScheduler()
	d := NewDriver(s, func(float64) bool { return true }, 0)
	d.Start()
	for i := 0; i < 100; i++ {
		s.fire(time.Millisecond)
	}
	if d.State() != LoopRunning {
		t.Error("driver went idle with settling disabled")
	}
}

func TestDriverDeltaTime(t *testing.T) {
	s := newFakeScheduler()
	var dts []float64
	d := NewDriver(s, func(dt float64) bool { dts = append(dts, dt); return false }, 0)

	d.Start()
	s.fire(100 * time.Millisecond)
	s.fire(20 * time.Millisecond)
	s.fire(10 * time.Millisecond)

	want := []float64{1.0 / 60, 0.020, 0.010}
	for i := range want {
		if math.Abs(dts[i]-want[i]) > 1e-9 {
			t.Errorf("dt[%d] = %v, want %v", i, dts[i], want[i])
		}
	}
}

func TestDriverStopInsideStep(t *testing.T) {
	s := newFakeScheduler()
	var d *Driver
	d = NewDriver(s, func(float64) bool { d.Stop(); return false }, 0)
	d.Start()
	s.fire(time.Millisecond)
	if d.State() != LoopIdle || len(s.pending) != 0 {
		t.Errorf("state=%v pending=%d after Stop inside step", d.State(), len(s.pending))
	}
}

func TestLoopStateString(t *testing.T) {
	if LoopIdle.String() != "idle" || LoopRunning.String() != "running" || LoopState(9).String() != "unknown" {
		t.Error("LoopState.String mismatch")
	}
}
