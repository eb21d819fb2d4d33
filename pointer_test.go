package herofield

import (
	"math"
	"testing"

	"github.com/gogpu/gg"
)

func TestPointerDefaultsFarAway(t *testing.T) {
	p := NewPointer()
	if p.Current() != FarAway {
		t.Errorf("Current() = %v, want FarAway", p.Current())
	}
	if p.Hovering() {
		t.Error("new pointer should not hover")
	}
}

func TestPointerOnMove(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy float64
		origin gg.Point
		want   gg.Point
	}{
		{"origin at zero", 120, 80, gg.Pt(0, 0), gg.Pt(120, 80)},
		{"offset surface", 500, 400, gg.Pt(100, 64), gg.Pt(400, 336)},
		{"left of surface", 10, 10, gg.Pt(50, 0), gg.Pt(-40, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPointer()
			p.OnMove(tt.vx, tt.vy, tt.origin)
			if p.Current() != tt.want {
				t.Errorf("Current() = %v, want %v", p.Current(), tt.want)
			}
			if !p.Hovering() {
				t.Error("Hovering() = false after move")
			}
		})
	}
}

func TestPointerLatestSampleWins(t *testing.T) {
	p := NewPointer()
	for i := 0; i < 10; i++ {
		p.OnMove(float64(i), float64(2*i), gg.Point{})
	}
	if p.Current() != gg.Pt(9, 18) {
		t.Errorf("Current() = %v, want (9,18)", p.Current())
	}
}

func TestPointerOnLeave(t *testing.T) {
	p := NewPointer()
	p.OnMove(10, 10, gg.Point{})
	p.OnLeave()
	if p.Current() != FarAway || p.Hovering() {
		t.Errorf("after leave: %v hovering=%v", p.Current(), p.Hovering())
	}
}

func TestPointerIgnoresNonFinite(t *testing.T) {
	p := NewPointer()
	p.OnMove(5, 5, gg.Point{})
	p.OnMove(math.NaN(), 1, gg.Point{})
	p.OnMove(1, math.Inf(-1), gg.Point{})
	if p.Current() != gg.Pt(5, 5) {
		t.Errorf("Current() = %v, want (5,5)", p.Current())
	}
}
