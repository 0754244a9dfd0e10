// Package geometry implements the convex-hull primitive consumed by the
// positivity engine: d-dimensional hull construction with halfspace
// equations, halfspace intersection through the dual transform, and the
// Chebyshev center of a halfspace system.
//
// Every facet equation is stored as a unit normal and an offset with
// Normal·x + Offset ≤ 0 inside the hull.
package geometry

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/positivity/pkg/errors"
)

var negInf = math.Inf(-1)

// Hull is the convex hull of a finite point set.
type Hull struct {
	// Dim is the ambient dimension d.
	Dim int `json:"dim" yaml:"dim"`

	// Points is the input point set. It is shared with the caller and must
	// not be mutated.
	Points [][]float64 `json:"-" yaml:"-"`

	// Vertices are sorted indices into Points of the hull's extreme points.
	Vertices []int `json:"vertices" yaml:"vertices"`

	// Facets holds d vertex indices per simplicial facet, aligned with Equations.
	Facets [][]int `json:"facets" yaml:"facets"`

	// Equations holds one outward halfspace per facet.
	Equations []Halfspace `json:"equations" yaml:"equations"`

	// Volume is the d-dimensional volume (area in 2D, length in 1D).
	Volume float64 `json:"volume" yaml:"volume"`

	// Centroid is the mean of the vertices, an interior point of the hull.
	Centroid []float64 `json:"centroid" yaml:"centroid"`
}

// VertexPoints returns the coordinates of the hull vertices in index order.
func (h *Hull) VertexPoints() [][]float64 {
	out := make([][]float64, len(h.Vertices))
	for i, idx := range h.Vertices {
		out[i] = h.Points[idx]
	}
	return out
}

// Contains reports whether x is inside or on the hull within tol.
func (h *Hull) Contains(x []float64, tol float64) bool {
	return InsideAll(h.Equations, x, tol)
}

// Primitive is the computational-geometry contract the engine depends on.
type Primitive interface {
	// ComputeHull returns the hull of points. It fails with DegenerateHull
	// when fewer than d+1 affinely independent points are given.
	ComputeHull(points [][]float64) (*Hull, error)

	// Intersect returns the vertices of {x : h.Eval(x) ≤ 0 for all h}. The
	// interior point must satisfy every halfspace strictly.
	Intersect(halfspaces []Halfspace, interior []float64) ([][]float64, error)
}

// Incremental is the default Primitive: a beneath-beyond hull that grows an
// initial simplex by repeatedly adding the farthest outside point.
type Incremental struct {
	eps   float64
	dedup float64
}

// Option configures an Incremental.
type Option func(*Incremental)

// WithEpsilon sets the relative coplanarity tolerance.
func WithEpsilon(eps float64) Option {
	return func(b *Incremental) {
		if eps > 0 {
			b.eps = eps
		}
	}
}

// WithDedupTolerance sets the distance under which intersection vertices merge.
func WithDedupTolerance(tol float64) Option {
	return func(b *Incremental) {
		if tol > 0 {
			b.dedup = tol
		}
	}
}

// WithTolerances applies the hull-related fields of t.
func WithTolerances(t Tolerances) Option {
	return func(b *Incremental) {
		t = t.normalized()
		b.eps = t.Epsilon
		b.dedup = t.DedupTolerance
	}
}

// NewIncremental returns an Incremental primitive.
func NewIncremental(opts ...Option) *Incremental {
	b := &Incremental{eps: DefaultEpsilon, dedup: DedupTolerance}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ Primitive = (*Incremental)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Hull construction
// ─────────────────────────────────────────────────────────────────────────────

type facet struct {
	verts   []int
	plane   Halfspace
	outside []int
	alive   bool
}

func (f *facet) dist(p []float64) float64 { return f.plane.Eval(p) }

// ComputeHull implements Primitive.
func (b *Incremental) ComputeHull(points [][]float64) (*Hull, error) {
	d, err := validatePoints(points)
	if err != nil {
		return nil, err
	}
	scale := extent(points)
	if scale == 0 {
		return nil, errors.DegenerateHull("all points coincide").
			WithDetailf("points=%d dim=%d", len(points), d)
	}
	eps := b.eps * scale
	if d == 1 {
		return lineHull(points)
	}

	simplex, err := initialSimplex(points, d, eps)
	if err != nil {
		return nil, err
	}
	interior := make([]float64, d)
	for _, idx := range simplex {
		floats.Add(interior, points[idx])
	}
	floats.Scale(1/float64(len(simplex)), interior)

	facets := make([]*facet, 0, 2*(d+1))
	for omit := range simplex {
		verts := make([]int, 0, d)
		for j, idx := range simplex {
			if j != omit {
				verts = append(verts, idx)
			}
		}
		f, err := newFacet(verts, points, interior)
		if err != nil {
			return nil, err
		}
		facets = append(facets, f)
	}

	inSimplex := make(map[int]bool, len(simplex))
	for _, idx := range simplex {
		inSimplex[idx] = true
	}
	for i, p := range points {
		if inSimplex[i] {
			continue
		}
		for _, f := range facets {
			if f.dist(p) > eps {
				f.outside = append(f.outside, i)
				break
			}
		}
	}

	dead := 0
	for {
		var cur *facet
		for _, f := range facets {
			if f.alive && len(f.outside) > 0 {
				cur = f
				break
			}
		}
		if cur == nil {
			break
		}

		apex, far := -1, negInf
		for _, idx := range cur.outside {
			if dd := cur.dist(points[idx]); dd > far {
				apex, far = idx, dd
			}
		}
		p := points[apex]

		var visible []*facet
		for _, f := range facets {
			if f.alive && f.dist(p) > eps {
				visible = append(visible, f)
			}
		}

		horizon, order := horizonRidges(visible)

		var orphans []int
		for _, f := range visible {
			for _, idx := range f.outside {
				if idx != apex {
					orphans = append(orphans, idx)
				}
			}
			f.alive = false
			f.outside = nil
			dead++
		}

		created := make([]*facet, 0, len(order))
		for _, key := range order {
			if horizon[key].count != 1 {
				continue
			}
			verts := append(append([]int(nil), horizon[key].verts...), apex)
			f, err := newFacet(verts, points, interior)
			if err != nil {
				return nil, err
			}
			created = append(created, f)
		}

		for _, idx := range orphans {
			q := points[idx]
			for _, f := range created {
				if f.dist(q) > eps {
					f.outside = append(f.outside, idx)
					break
				}
			}
		}
		facets = append(facets, created...)

		if dead > len(facets)/2 {
			facets = compact(facets)
			dead = 0
		}
	}

	return assemble(points, d, compact(facets))
}

type ridge struct {
	verts []int
	count int
}

// horizonRidges counts the (d-1)-vertex ridges of the visible facets. Ridges
// seen exactly once separate visible from invisible facets.
func horizonRidges(visible []*facet) (map[string]*ridge, []string) {
	ridges := make(map[string]*ridge)
	order := make([]string, 0)
	for _, f := range visible {
		for omit := range f.verts {
			verts := make([]int, 0, len(f.verts)-1)
			for j, idx := range f.verts {
				if j != omit {
					verts = append(verts, idx)
				}
			}
			sort.Ints(verts)
			key := ridgeKey(verts)
			if r, ok := ridges[key]; ok {
				r.count++
				continue
			}
			ridges[key] = &ridge{verts: verts, count: 1}
			order = append(order, key)
		}
	}
	return ridges, order
}

func ridgeKey(sorted []int) string {
	buf := make([]byte, 0, len(sorted)*6)
	for i, v := range sorted {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}
	return string(buf)
}

func compact(facets []*facet) []*facet {
	out := facets[:0]
	for _, f := range facets {
		if f.alive {
			out = append(out, f)
		}
	}
	return out
}

// newFacet builds the oriented plane through the d points indexed by verts.
func newFacet(verts []int, points [][]float64, interior []float64) (*facet, error) {
	pts := make([][]float64, len(verts))
	for i, idx := range verts {
		pts[i] = points[idx]
	}
	normal := hyperplaneNormal(pts)
	n := floats.Norm(normal, 2)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, errors.New(errors.ErrCodeNumericalFailure, "facet normal vanished").
			WithDetailf("vertices=%v", verts)
	}
	floats.Scale(1/n, normal)
	plane := Halfspace{Normal: normal, Offset: -floats.Dot(normal, pts[0])}
	side := plane.Eval(interior)
	if side == 0 {
		return nil, errors.New(errors.ErrCodeNumericalFailure, "interior reference lies on facet plane").
			WithDetailf("vertices=%v", verts)
	}
	if side > 0 {
		floats.Scale(-1, plane.Normal)
		plane.Offset = -plane.Offset
	}
	return &facet{verts: verts, plane: plane, alive: true}, nil
}

// hyperplaneNormal returns a normal of the hyperplane through d points in
// R^d: the generalized cross product of the d-1 edge vectors, computed by
// cofactor expansion.
func hyperplaneNormal(pts [][]float64) []float64 {
	d := len(pts[0])
	normal := make([]float64, d)
	if d == 1 {
		normal[0] = 1
		return normal
	}
	edges := mat.NewDense(d-1, d, nil)
	for j := 1; j < d; j++ {
		for k := 0; k < d; k++ {
			edges.Set(j-1, k, pts[j][k]-pts[0][k])
		}
	}
	minor := mat.NewDense(d-1, d-1, nil)
	for i := 0; i < d; i++ {
		for r := 0; r < d-1; r++ {
			c := 0
			for k := 0; k < d; k++ {
				if k == i {
					continue
				}
				minor.Set(r, c, edges.At(r, k))
				c++
			}
		}
		det := mat.Det(minor)
		if i%2 == 1 {
			det = -det
		}
		normal[i] = det
	}
	return normal
}

// initialSimplex greedily picks d+1 affinely independent points, each the
// farthest from the affine span of those already chosen.
func initialSimplex(points [][]float64, d int, eps float64) ([]int, error) {
	first := 0
	for i, p := range points {
		if p[0] < points[first][0] {
			first = i
		}
	}
	origin := points[first]
	chosen := []int{first}
	basis := make([][]float64, 0, d)
	resid := make([]float64, d)

	for len(chosen) < d+1 {
		best, bestDist := -1, 0.0
		var bestResid []float64
		for i, p := range points {
			floats.SubTo(resid, p, origin)
			for _, q := range basis {
				floats.AddScaled(resid, -floats.Dot(resid, q), q)
			}
			if dist := floats.Norm(resid, 2); dist > bestDist {
				best, bestDist = i, dist
				bestResid = append(bestResid[:0], resid...)
			}
		}
		if best < 0 || bestDist <= eps {
			return nil, errors.DegenerateHull("too few affinely independent points").
				WithDetailf("found %d, need %d in dimension %d", len(chosen), d+1, d)
		}
		floats.Scale(1/bestDist, bestResid)
		basis = append(basis, bestResid)
		chosen = append(chosen, best)
	}
	return chosen, nil
}

// lineHull handles d = 1, where the hull is the interval [min, max].
func lineHull(points [][]float64) (*Hull, error) {
	lo, hi := 0, 0
	for i, p := range points {
		if p[0] < points[lo][0] {
			lo = i
		}
		if p[0] > points[hi][0] {
			hi = i
		}
	}
	minV, maxV := points[lo][0], points[hi][0]
	verts := []int{lo, hi}
	sort.Ints(verts)
	return &Hull{
		Dim:      1,
		Points:   points,
		Vertices: verts,
		Facets:   [][]int{{lo}, {hi}},
		Equations: []Halfspace{
			{Normal: []float64{-1}, Offset: minV},
			{Normal: []float64{1}, Offset: -maxV},
		},
		Volume:   maxV - minV,
		Centroid: []float64{(minV + maxV) / 2},
	}, nil
}

func assemble(points [][]float64, d int, facets []*facet) (*Hull, error) {
	seen := make(map[int]bool)
	h := &Hull{
		Dim:       d,
		Points:    points,
		Facets:    make([][]int, len(facets)),
		Equations: make([]Halfspace, len(facets)),
	}
	for i, f := range facets {
		h.Facets[i] = f.verts
		h.Equations[i] = f.plane
		for _, idx := range f.verts {
			if !seen[idx] {
				seen[idx] = true
				h.Vertices = append(h.Vertices, idx)
			}
		}
	}
	sort.Ints(h.Vertices)

	h.Centroid = make([]float64, d)
	for _, idx := range h.Vertices {
		floats.Add(h.Centroid, points[idx])
	}
	floats.Scale(1/float64(len(h.Vertices)), h.Centroid)
	h.Volume = simplicialVolume(points, h.Facets, h.Centroid)
	return h, nil
}

// simplicialVolume sums the volumes of the cones from c over every facet.
func simplicialVolume(points [][]float64, facets [][]int, c []float64) float64 {
	d := len(c)
	m := mat.NewDense(d, d, nil)
	fact := 1.0
	for k := 2; k <= d; k++ {
		fact *= float64(k)
	}
	total := 0.0
	for _, verts := range facets {
		for r, idx := range verts {
			for k := 0; k < d; k++ {
				m.Set(r, k, points[idx][k]-c[k])
			}
		}
		total += math.Abs(mat.Det(m))
	}
	return total / fact
}

func validatePoints(points [][]float64) (int, error) {
	if len(points) == 0 {
		return 0, errors.InvalidParam("hull requires at least one point")
	}
	d := len(points[0])
	if d == 0 {
		return 0, errors.InvalidParam("points must have at least one coordinate")
	}
	for i, p := range points {
		if len(p) != d {
			return 0, errors.DimensionMismatch(d, len(p)).WithDetailf("point %d has %d coordinates, want %d", i, len(p), d)
		}
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, errors.InvalidParam("non-finite coordinate").WithDetailf("point %d", i)
			}
		}
	}
	return d, nil
}

// extent returns the largest per-axis range of points.
func extent(points [][]float64) float64 {
	d := len(points[0])
	widest := 0.0
	for k := 0; k < d; k++ {
		lo, hi := points[0][k], points[0][k]
		for _, p := range points[1:] {
			lo = math.Min(lo, p[k])
			hi = math.Max(hi, p[k])
		}
		widest = math.Max(widest, hi-lo)
	}
	return widest
}
