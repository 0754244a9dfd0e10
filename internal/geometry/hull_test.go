package geometry_test

import (
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/internal/testutil"
	"github.com/turtacn/positivity/pkg/errors"
)

// sortedPoints orders points lexicographically for order-free comparison.
func sortedPoints(pts [][]float64) [][]float64 {
	out := append([][]float64(nil), pts...)
	sort.Slice(out, func(i, j int) bool {
		for k := range out[i] {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestComputeHull_SquareWithInteriorAndEdgePoints(t *testing.T) {
	t.Parallel()

	pts := [][]float64{
		{0, 0}, {1, 0}, {1, 1}, {0, 1},
		{0.5, 0.5}, {0.25, 0.75}, // interior
		{0.5, 0}, {1, 0.5}, // on edges
	}
	h, err := geometry.NewIncremental().ComputeHull(pts)
	require.NoError(t, err)

	assert.Equal(t, 2, h.Dim)
	assert.Equal(t, []int{0, 1, 2, 3}, h.Vertices)
	assert.Len(t, h.Equations, 4)
	assert.InDelta(t, 1.0, h.Volume, 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, h.Centroid, 1e-12)

	for _, eq := range h.Equations {
		assert.InDelta(t, 1.0, math.Hypot(eq.Normal[0], eq.Normal[1]), 1e-12, "normals are unit length")
	}
}

func TestComputeHull_SelfContainment(t *testing.T) {
	t.Parallel()

	pts := testutil.NewPolygonSampler(testutil.UpperTrapezoid, 11).Sample(400)
	h, err := geometry.NewIncremental().ComputeHull(pts)
	require.NoError(t, err)

	for _, v := range h.VertexPoints() {
		for _, eq := range h.Equations {
			assert.LessOrEqual(t, eq.Eval(v), geometry.InsideTolerance)
		}
	}
	for _, p := range pts {
		assert.True(t, h.Contains(p, geometry.InsideTolerance), "sample %v outside its own hull", p)
	}
}

func TestComputeHull_TriangleAreaFromSamples(t *testing.T) {
	t.Parallel()

	pts := testutil.NewPolygonSampler(testutil.RightTriangle, 1).Sample(1000)
	h, err := geometry.NewIncremental().ComputeHull(pts)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, h.Volume, 5e-2)
}

func TestComputeHull_CubeIn3D(t *testing.T) {
	t.Parallel()

	var pts [][]float64
	for _, x := range []float64{0, 2} {
		for _, y := range []float64{0, 2} {
			for _, z := range []float64{0, 2} {
				pts = append(pts, []float64{x, y, z})
			}
		}
	}
	pts = append(pts, []float64{1, 1, 1}, []float64{1, 1, 0}, []float64{0.5, 1.5, 1})

	h, err := geometry.NewIncremental().ComputeHull(pts)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, h.Vertices)
	assert.InDelta(t, 8.0, h.Volume, 1e-9)
	assert.Len(t, h.Equations, 12, "each square face splits into two triangles")
	assert.True(t, h.Contains([]float64{1, 1, 1}, 0))
	assert.False(t, h.Contains([]float64{2.1, 1, 1}, geometry.InsideTolerance))
}

func TestComputeHull_Tetrahedron4D(t *testing.T) {
	t.Parallel()

	pts := [][]float64{
		{0, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1},
		{0.1, 0.1, 0.1, 0.1},
	}
	h, err := geometry.NewIncremental().ComputeHull(pts)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, h.Vertices)
	assert.InDelta(t, 1.0/24, h.Volume, 1e-12)
}

func TestComputeHull_OneDimension(t *testing.T) {
	t.Parallel()

	h, err := geometry.NewIncremental().ComputeHull([][]float64{{3}, {-1}, {2}})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, h.Vertices)
	assert.InDelta(t, 4.0, h.Volume, 1e-12)
	assert.True(t, h.Contains([]float64{3}, 0))
	assert.False(t, h.Contains([]float64{3.5}, geometry.InsideTolerance))
}

func TestComputeHull_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		pts  [][]float64
		code errors.ErrorCode
	}{
		{"empty", nil, errors.CodeInvalidParam},
		{"zero dimension", [][]float64{{}}, errors.CodeInvalidParam},
		{"ragged", [][]float64{{0, 0}, {1}}, errors.ErrCodeDimensionMismatch},
		{"nan", [][]float64{{0, 0}, {math.NaN(), 1}}, errors.CodeInvalidParam},
		{"single point", [][]float64{{1, 1}, {1, 1}}, errors.ErrCodeDegenerateHull},
		{"collinear", [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, errors.ErrCodeDegenerateHull},
		{"coplanar in 3D", [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}, errors.ErrCodeDegenerateHull},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := geometry.NewIncremental().ComputeHull(tc.pts)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestIntersect_OverlappingSquares(t *testing.T) {
	t.Parallel()

	prim := geometry.NewIncremental()
	a, err := prim.ComputeHull([][]float64{{0, 0}, {2, 0}, {2, 2}, {0, 2}})
	require.NoError(t, err)
	b, err := prim.ComputeHull([][]float64{{1, 1}, {3, 1}, {3, 3}, {1, 3}})
	require.NoError(t, err)

	combined := append(append([]geometry.Halfspace(nil), a.Equations...), b.Equations...)
	verts, err := prim.Intersect(combined, []float64{1.5, 1.5})
	require.NoError(t, err)

	want := [][]float64{{1, 1}, {1, 2}, {2, 1}, {2, 2}}
	if diff := cmp.Diff(want, sortedPoints(verts), approx); diff != "" {
		t.Fatalf("intersection vertices mismatch (-want +got):\n%s", diff)
	}
}

func TestIntersect_RedundantAndDuplicateHalfspaces(t *testing.T) {
	t.Parallel()

	prim := geometry.NewIncremental()
	sq, err := prim.ComputeHull([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.NoError(t, err)

	hs := append(append([]geometry.Halfspace(nil), sq.Equations...), sq.Equations...)
	hs = append(hs, geometry.Halfspace{Normal: []float64{1, 0}, Offset: -5})
	verts, err := prim.Intersect(hs, []float64{0.3, 0.6})
	require.NoError(t, err)

	want := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	if diff := cmp.Diff(want, sortedPoints(verts), approx); diff != "" {
		t.Fatalf("intersection vertices mismatch (-want +got):\n%s", diff)
	}
}

func TestIntersect_Errors(t *testing.T) {
	t.Parallel()

	prim := geometry.NewIncremental()
	sq, err := prim.ComputeHull([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.NoError(t, err)

	_, err = prim.Intersect(sq.Equations, []float64{1, 0.5})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInteriorInfeasible), "boundary seed must be rejected: %v", err)

	_, err = prim.Intersect(sq.Equations, []float64{0.5, 0.5, 0.5})
	assert.True(t, errors.IsCode(err, errors.ErrCodeDimensionMismatch))

	halfPlane := []geometry.Halfspace{
		{Normal: []float64{1, 0}, Offset: -1},
		{Normal: []float64{-1, 0}, Offset: 0},
		{Normal: []float64{0, 1}, Offset: -1},
	}
	_, err = prim.Intersect(halfPlane, []float64{0.5, 0})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnboundedRegion), "got %v", err)

	_, err = prim.Intersect(nil, []float64{0, 0})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestPredicates_StrictVersusNonStrict(t *testing.T) {
	t.Parallel()

	sq, err := geometry.NewIncremental().ComputeHull([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.NoError(t, err)

	corner := []float64{1, 1}
	center := []float64{0.5, 0.5}
	outside := []float64{1.01, 0.5}

	assert.True(t, geometry.InsideAll(sq.Equations, corner, geometry.InsideTolerance))
	assert.False(t, geometry.StrictlyInsideAll(sq.Equations, corner, geometry.InteriorMargin))

	assert.True(t, geometry.InsideAll(sq.Equations, center, geometry.InsideTolerance))
	assert.True(t, geometry.StrictlyInsideAll(sq.Equations, center, geometry.InteriorMargin))

	assert.False(t, geometry.InsideAll(sq.Equations, outside, geometry.InsideTolerance))
	assert.InDelta(t, 0.01, geometry.MaxViolation(sq.Equations, outside), 1e-12)
}

func TestEquationMatrix_EvaluatesAffineRows(t *testing.T) {
	t.Parallel()

	hs := []geometry.Halfspace{{Normal: []float64{1, 0}, Offset: -1}, {Normal: []float64{0, -1}, Offset: 0}}
	E := geometry.EquationMatrix(hs)
	X := geometry.AffineRows([][]float64{{2, 3}})

	r, c := E.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{2, 3, 1}, X.RawRowView(0))
	assert.Nil(t, geometry.EquationMatrix(nil))
}
