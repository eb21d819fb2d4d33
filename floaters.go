package herofield

import (
	"math"

	"github.com/gogpu/gg"
)

const (
	floaterSpin    = 0.01 // rad per frame around x and y
	floaterBob     = 0.01 // world units per frame
	floaterOpacity = 0.6
	floaterWidth   = 1.2 // CSS px
	floaterSalt    = 1 << 40

	cameraZ    = 5.0
	cameraFOV  = 75.0 * math.Pi / 180 // vertical
	cameraNear = 0.1
)

type vec3 struct{ X, Y, Z float64 }

func (a vec3) sub(b vec3) vec3 { return vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a vec3) scale(s float64) vec3 { return vec3{a.X * s, a.Y * s, a.Z * s} }
func (a vec3) length() float64 { return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z) }

// polyhedron is one wireframe solid in world space.
type polyhedron struct {
	verts []vec3 // model space
	edges [][2]int
	pos   vec3
	rotX  float64
	rotY  float64
}

// floaters is the layer of rotating wireframe solids drawn over the field.
type floaters struct {
	shapes  []polyhedron
	elapsed float64
}

// newFloaters places a tetrahedron, an octahedron and a dodecahedron at
// positions derived from seed.
func newFloaters(seed uint64) *floaters {
	solids := [][]vec3{
		normalize(tetrahedron(), 1),
		normalize(octahedron(), 1.2),
		normalize(dodecahedron(), 0.8),
	}
	fl := &floaters{shapes: make([]polyhedron, len(solids))}
	for i, verts := range solids {
		h := splitmix64(seed ^ splitmix64(floaterSalt+uint64(i)))
		x := (unitFloat(h) - 0.5) * 10
		h = splitmix64(h)
		y := (unitFloat(h) - 0.5) * 10
		h = splitmix64(h)
		z := unitFloat(h)*6 - 5
		fl.shapes[i] = polyhedron{
			verts: verts,
			edges: shortestEdges(verts),
			pos:   vec3{x, y, z},
		}
	}
	return fl
}

// step advances rotation and bobbing by dt seconds.
func (fl *floaters) step(dt float64) {
	if !positive(dt) {
		return
	}
	dt = math.Min(dt, MaxStep)
	k := dt * frameRate
	fl.elapsed += dt
	for i := range fl.shapes {
		s := &fl.shapes[i]
		s.rotX += floaterSpin * k
		s.rotY += floaterSpin * k
		s.pos.Y += math.Sin(fl.elapsed+float64(i)) * floaterBob * k
	}
}

// draw strokes every visible edge in col at floaterOpacity.
func (fl *floaters) draw(dc *gg.Context, width, height float64, col gg.RGBA) error {
	if !positive(width) || !positive(height) {
		return nil
	}
	dc.SetRGBA(col.R, col.G, col.B, floaterOpacity)
	dc.SetLineWidth(floaterWidth)
	cam := newCamera(width, height)
	drawn := false
	for i := range fl.shapes {
		s := &fl.shapes[i]
		for _, e := range s.edges {
			a, okA := cam.project(s.world(s.verts[e[0]]))
			b, okB := cam.project(s.world(s.verts[e[1]]))
			if !okA || !okB {
				continue
			}
			dc.MoveTo(a.X, a.Y)
			dc.LineTo(b.X, b.Y)
			drawn = true
		}
	}
	if !drawn {
		return nil
	}
	return dc.Stroke()
}

// world applies the x-then-y Euler rotation and the translation.
func (s *polyhedron) world(v vec3) vec3 {
	sy, cy := math.Sincos(s.rotY)
	v = vec3{v.X*cy + v.Z*sy, v.Y, -v.X*sy + v.Z*cy}
	sx, cx := math.Sincos(s.rotX)
	v = vec3{v.X, v.Y*cx - v.Z*sx, v.Y*sx + v.Z*cx}
	return vec3{v.X + s.pos.X, v.Y + s.pos.Y, v.Z + s.pos.Z}
}

// camera is a perspective camera on the +z axis looking at the origin.
type camera struct {
	width, height float64
	focal         float64
	aspect        float64
}

func newCamera(width, height float64) camera {
	return camera{
		width:  width,
		height: height,
		focal:  1 / math.Tan(cameraFOV/2),
		aspect: width / height,
	}
}

// project maps a world point to CSS px. ok is false behind the near plane.
func (c camera) project(v vec3) (gg.Point, bool) {
	depth := cameraZ - v.Z
	if depth < cameraNear {
		return gg.Point{}, false
	}
	nx := c.focal * v.X / (depth * c.aspect)
	ny := c.focal * v.Y / depth
	return gg.Pt((nx+1)/2*c.width, (1-ny)/2*c.height), true
}

func tetrahedron() []vec3 {
	return []vec3{{1, 1, 1}, {-1, -1, 1}, {-1, 1, -1}, {1, -1, -1}}
}

func octahedron() []vec3 {
	return []vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
}

func dodecahedron() []vec3 {
	phi := (1 + math.Sqrt(5)) / 2
	inv := 1 / phi
	verts := make([]vec3, 0, 20)
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			for _, z := range []float64{-1, 1} {
				verts = append(verts, vec3{x, y, z})
			}
		}
	}
	for _, a := range []float64{-1, 1} {
		for _, b := range []float64{-1, 1} {
			verts = append(verts,
				vec3{0, a * inv, b * phi},
				vec3{a * inv, b * phi, 0},
				vec3{a * phi, 0, b * inv},
			)
		}
	}
	return verts
}

// normalize scales verts onto a sphere of the given radius.
func normalize(verts []vec3, radius float64) []vec3 {
	for i, v := range verts {
		verts[i] = v.scale(radius / v.length())
	}
	return verts
}

// shortestEdges joins every vertex pair at the minimum pairwise distance.
// For the regular solids used here that is exactly the edge set.
func shortestEdges(verts []vec3) [][2]int {
	minDist := math.Inf(1)
	for i := range verts {
		for j := i + 1; j < len(verts); j++ {
			minDist = math.Min(minDist, verts[i].sub(verts[j]).length())
		}
	}
	var edges [][2]int
	for i := range verts {
		for j := i + 1; j < len(verts); j++ {
			if verts[i].sub(verts[j]).length() <= minDist*(1+1e-9) {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return edges
}
