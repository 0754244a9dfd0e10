package testutil

import (
	"math"
	"math/rand"

	"github.com/turtacn/positivity/internal/dataset"
)

// PolygonSampler draws points uniformly from a convex polygon. The polygon is
// fan-triangulated from its first vertex; a triangle is chosen with
// probability proportional to its area and a point is drawn inside it by
// reflecting samples that fall in the opposite half of the parallelogram.
type PolygonSampler struct {
	rng  *rand.Rand
	tris [][3][2]float64
	cum  []float64
}

// NewPolygonSampler builds a sampler with a fixed seed so fixtures are
// reproducible. vertices must describe a convex polygon in either winding.
func NewPolygonSampler(vertices [][2]float64, seed int64) *PolygonSampler {
	s := &PolygonSampler{rng: rand.New(rand.NewSource(seed))}
	total := 0.0
	for i := 1; i+1 < len(vertices); i++ {
		t := [3][2]float64{vertices[0], vertices[i], vertices[i+1]}
		area := math.Abs((t[1][0]-t[0][0])*(t[2][1]-t[0][1])-(t[2][0]-t[0][0])*(t[1][1]-t[0][1])) / 2
		if area == 0 {
			continue
		}
		total += area
		s.tris = append(s.tris, t)
		s.cum = append(s.cum, total)
	}
	for i := range s.cum {
		s.cum[i] /= total
	}
	return s
}

// Sample returns n points.
func (s *PolygonSampler) Sample(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = s.one()
	}
	return out
}

func (s *PolygonSampler) one() []float64 {
	r := s.rng.Float64()
	k := 0
	for k < len(s.cum)-1 && r > s.cum[k] {
		k++
	}
	t := s.tris[k]
	u, v := s.rng.Float64(), s.rng.Float64()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	return []float64{
		t[0][0] + u*(t[1][0]-t[0][0]) + v*(t[2][0]-t[0][0]),
		t[0][1] + u*(t[1][1]-t[0][1]) + v*(t[2][1]-t[0][1]),
	}
}

// SampleFrame returns n points from the polygon as a two-column frame.
func SampleFrame(vertices [][2]float64, n int, seed int64, columns ...string) *dataset.Frame {
	if len(columns) == 0 {
		columns = []string{"x", "y"}
	}
	return &dataset.Frame{Columns: columns, Rows: NewPolygonSampler(vertices, seed).Sample(n)}
}

// Fixture polygons.
var (
	RightTriangle  = [][2]float64{{0, 0}, {1, 0}, {1, 1}}
	UpperTrapezoid = [][2]float64{{0, 2}, {1, 0.5}, {2, 0.5}, {3, 2}}
	LowerTrapezoid = [][2]float64{{0, 0}, {3, 0}, {2, 1.5}, {1, 1.5}}
	UnitSquare     = [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
)
