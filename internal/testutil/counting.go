package testutil

import (
	"sync/atomic"

	"github.com/turtacn/positivity/internal/geometry"
)

// CountingPrimitive decorates a geometry.Primitive and counts calls.
type CountingPrimitive struct {
	inner      geometry.Primitive
	hulls      atomic.Int64
	intersects atomic.Int64
}

// NewCountingPrimitive wraps inner, or the default primitive when inner is nil.
func NewCountingPrimitive(inner geometry.Primitive) *CountingPrimitive {
	if inner == nil {
		inner = geometry.NewIncremental()
	}
	return &CountingPrimitive{inner: inner}
}

func (c *CountingPrimitive) ComputeHull(points [][]float64) (*geometry.Hull, error) {
	c.hulls.Add(1)
	return c.inner.ComputeHull(points)
}

func (c *CountingPrimitive) Intersect(hs []geometry.Halfspace, interior []float64) ([][]float64, error) {
	c.intersects.Add(1)
	return c.inner.Intersect(hs, interior)
}

// HullCalls returns the number of ComputeHull calls so far.
func (c *CountingPrimitive) HullCalls() int64 { return c.hulls.Load() }

// IntersectCalls returns the number of Intersect calls so far.
func (c *CountingPrimitive) IntersectCalls() int64 { return c.intersects.Load() }
