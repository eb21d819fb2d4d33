package herofield

import (
	"math"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/herofield/surface"
)

type paintScene struct {
	cfg     Config
	surface *surface.Surface
	field   *Field
	pointer *Pointer
	painter painter
}

func newPaintScene(t *testing.T, opts ...Option) *paintScene {
	t.Helper()
	cfg, err := newConfig(opts)
	if err != nil {
		t.Fatalf("newConfig: %v", err)
	}
	s := surface.New()
	if _, err := s.Configure(100, 100, 1); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	f := NewField(cfg)
	f.Rebuild(100, 100, cfg.GridSpacing)
	return &paintScene{cfg: cfg, surface: s, field: f, pointer: NewPointer()}
}

func (ps *paintScene) paint(t *testing.T) *gg.Pixmap {
	t.Helper()
	if err := ps.painter.paint(ps.surface, ps.field, ps.pointer, nil, ps.cfg); err != nil {
		t.Fatalf("paint: %v", err)
	}
	return ps.surface.Pixmap()
}

func pixelDiff(a, b gg.RGBA) float64 {
	return math.Abs(a.R-b.R) + math.Abs(a.G-b.G) + math.Abs(a.B-b.B)
}

func TestPaintBackground(t *testing.T) {
	ps := newPaintScene(t)
	pm := ps.paint(t)
	// (16,16) sits between four rest positions.
	if got, want := pm.GetPixel(16, 16), Resolve(false).Background; !closeRGBA(got, want) {
		t.Errorf("background pixel = %v, want %v", got, want)
	}
}

func TestPaintDots(t *testing.T) {
	ps := newPaintScene(t)
	pm := ps.paint(t)
	bg := Resolve(false).Background
	if d := pixelDiff(pm.GetPixel(32, 32), bg); d < 0.1 {
		t.Errorf("pixel at a rest position differs from background by %v, want a visible dot", d)
	}

	ps.cfg.DotRadius = 0
	pm = ps.paint(t)
	if got := pm.GetPixel(32, 32); !closeRGBA(got, bg) {
		t.Errorf("with DotRadius 0 pixel = %v, want background %v", got, bg)
	}
}

func TestPaintReadsThemeEveryFrame(t *testing.T) {
	dark := false
	ps := newPaintScene(t, WithTheme(ThemeFunc(func() bool { return dark })))

	pm := ps.paint(t)
	if got, want := pm.GetPixel(16, 16), Resolve(false).Background; !closeRGBA(got, want) {
		t.Fatalf("light frame = %v, want %v", got, want)
	}

	dark = true
	pm = ps.paint(t)
	if got, want := pm.GetPixel(16, 16), Resolve(true).Background; !closeRGBA(got, want) {
		t.Errorf("dark frame = %v, want %v", got, want)
	}
}

func TestPaintGlowOnlyWhileHovering(t *testing.T) {
	ps := newPaintScene(t)
	bg := Resolve(false).Background

	ps.pointer.OnMove(16, 16, gg.Pt(0, 0))
	pm := ps.paint(t)
	if d := pixelDiff(pm.GetPixel(16, 16), bg); d < 0.02 {
		t.Errorf("glow centre differs from background by %v, want a visible tint", d)
	}

	ps.pointer.OnLeave()
	pm = ps.paint(t)
	if got := pm.GetPixel(16, 16); !closeRGBA(got, bg) {
		t.Errorf("after leave pixel = %v, want background %v", got, bg)
	}
}

func TestPaintGlowFollowsDPR(t *testing.T) {
	ps := newPaintScene(t)
	ps.pointer.OnMove(16, 16, gg.Pt(0, 0))
	want := ps.paint(t).GetPixel(16, 16)

	if _, err := ps.surface.Configure(100, 100, 2); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	pm := ps.paint(t)
	// CSS (16,16) is device (32,32) at DPR 2 and must carry the centre tint.
	if got := pm.GetPixel(32, 32); pixelDiff(got, want) > 0.02 {
		t.Errorf("glow centre at DPR 2 = %v, want %v", got, want)
	}
}

func TestPaintLinks(t *testing.T) {
	bg := Resolve(false).Background
	// The horizontal link from (0,32) to (32,32) crosses x=16 between rows 31 and 32.
	sample := func(pm *gg.Pixmap) float64 {
		return pixelDiff(pm.GetPixel(16, 31), bg) + pixelDiff(pm.GetPixel(16, 32), bg)
	}

	plain := newPaintScene(t)
	if d := sample(plain.paint(t)); d > 2.0/255 {
		t.Errorf("without links the midpoint differs from background by %v", d)
	}

	linked := newPaintScene(t, WithLinks(1000))
	if d := sample(linked.paint(t)); d < 0.02 {
		t.Errorf("with links the midpoint differs from background by %v, want a visible line", d)
	}
}

func TestPaintEmptySurface(t *testing.T) {
	cfg := DefaultConfig()
	s := surface.New()
	var p painter
	if err := p.paint(s, NewField(cfg), NewPointer(), nil, cfg); err != nil {
		t.Errorf("paint on empty surface: %v", err)
	}
}

func TestPaintClosedSurface(t *testing.T) {
	ps := newPaintScene(t)
	_ = ps.surface.Close()
	err := ps.painter.paint(ps.surface, ps.field, ps.pointer, nil, ps.cfg)
	if err != surface.ErrSurfaceClosed {
		t.Errorf("paint on closed surface = %v, want ErrSurfaceClosed", err)
	}
}

func TestGlowBrushRamp(t *testing.T) {
	glow := Resolve(false).Glow
	b := glowBrush(gg.Pt(50, 50), 100, glow)

	centre := b.ColorAt(50, 50)
	if math.Abs(centre.A-glowAlpha) > 1e-6 {
		t.Errorf("centre alpha = %v, want %v", centre.A, glowAlpha)
	}
	if edge := b.ColorAt(150, 50); edge.A > 1e-6 {
		t.Errorf("edge alpha = %v, want 0", edge.A)
	}
	if mid := b.ColorAt(100, 50); math.Abs(mid.A-glowMidAlpha) > 1e-6 {
		t.Errorf("mid alpha = %v, want %v", mid.A, glowMidAlpha)
	}
}

func TestDisplacementAlpha(t *testing.T) {
	tests := []struct {
		name string
		p    Particle
		want float64
	}{
		{"at rest", Particle{X: 10, Y: 10, OX: 10, OY: 10}, dotBaseAlpha},
		{"half a cell", Particle{X: 26, Y: 10, OX: 10, OY: 10}, dotBaseAlpha + (1-dotBaseAlpha)/2},
		{"beyond a cell", Particle{X: 110, Y: 10, OX: 10, OY: 10}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displacementAlpha(&tt.p, 32); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("displacementAlpha = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucketOf(t *testing.T) {
	tests := []struct {
		alpha float64
		want  int
	}{
		{-0.5, 0},
		{0, 0},
		{0.124, 0},
		{0.125, 1},
		{0.5, 4},
		{0.99, alphaBuckets - 1},
		{1, alphaBuckets - 1},
		{3, alphaBuckets - 1},
	}
	for _, tt := range tests {
		if got := bucketOf(tt.alpha); got != tt.want {
			t.Errorf("bucketOf(%v) = %d, want %d", tt.alpha, got, tt.want)
		}
	}
	if got := bucketAlpha(alphaBuckets - 1); got != 1 {
		t.Errorf("top bucket alpha = %v, want 1", got)
	}
}
