package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/pkg/errors"
)

func TestChebyshevCenter_UnitSquare(t *testing.T) {
	t.Parallel()

	sq, err := geometry.NewIncremental().ComputeHull([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.NoError(t, err)

	center, radius, err := geometry.ChebyshevCenter(sq.Equations, geometry.InteriorMargin)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, radius, 1e-9)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, center, 1e-9)
	assert.True(t, geometry.StrictlyInsideAll(sq.Equations, center, geometry.InteriorMargin))
}

func TestChebyshevCenter_NegativeCoordinates(t *testing.T) {
	t.Parallel()

	sq, err := geometry.NewIncremental().ComputeHull([][]float64{{-4, -4}, {-2, -4}, {-2, -2}, {-4, -2}})
	require.NoError(t, err)

	center, radius, err := geometry.ChebyshevCenter(sq.Equations, geometry.InteriorMargin)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, radius, 1e-9)
	assert.InDeltaSlice(t, []float64{-3, -3}, center, 1e-9)
}

func TestChebyshevCenter_DisjointSystemIsEmpty(t *testing.T) {
	t.Parallel()

	prim := geometry.NewIncremental()
	a, err := prim.ComputeHull([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.NoError(t, err)
	b, err := prim.ComputeHull([][]float64{{5, 5}, {6, 5}, {6, 6}, {5, 6}})
	require.NoError(t, err)

	_, _, err = geometry.ChebyshevCenter(append(a.Equations, b.Equations...), geometry.InteriorMargin)
	assert.True(t, errors.IsEmptyIntersection(err), "got %v", err)
}

func TestChebyshevCenter_TouchingSystemIsEmpty(t *testing.T) {
	t.Parallel()

	prim := geometry.NewIncremental()
	a, err := prim.ComputeHull([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.NoError(t, err)
	b, err := prim.ComputeHull([][]float64{{1, 0}, {2, 0}, {2, 1}, {1, 1}})
	require.NoError(t, err)

	_, radius, err := geometry.ChebyshevCenter(append(a.Equations, b.Equations...), geometry.InteriorMargin)
	assert.True(t, errors.IsEmptyIntersection(err), "got %v", err)
	assert.InDelta(t, 0, radius, 1e-9)
}
