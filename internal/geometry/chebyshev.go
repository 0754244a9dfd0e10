package geometry

import (
	stderrors "errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/turtacn/positivity/pkg/errors"
)

const lpTolerance = 1e-10

// ChebyshevCenter returns the center and radius of the largest ball inside
// {x : a_i·x + b_i ≤ 0}. It solves
//
//	max r  s.t.  a_i·x + ‖a_i‖ r ≤ -b_i,  r ≥ 0
//
// in standard form with x = x⁺ - x⁻ and one slack per row. A region whose
// radius does not exceed margin has no usable interior and is reported as
// EmptyIntersection.
func ChebyshevCenter(hs []Halfspace, margin float64) ([]float64, float64, error) {
	if len(hs) == 0 {
		return nil, 0, errors.InvalidParam("chebyshev center requires at least one halfspace")
	}
	d := len(hs[0].Normal)
	m := len(hs)
	n := 2*d + 1 + m

	A := mat.NewDense(m, n, nil)
	rhs := make([]float64, m)
	for i, h := range hs {
		if len(h.Normal) != d {
			return nil, 0, errors.DimensionMismatch(d, len(h.Normal)).WithDetailf("halfspace %d", i)
		}
		sign := 1.0
		if -h.Offset < 0 {
			sign = -1
		}
		for k, a := range h.Normal {
			A.Set(i, k, sign*a)
			A.Set(i, d+k, -sign*a)
		}
		A.Set(i, 2*d, sign*floats.Norm(h.Normal, 2))
		A.Set(i, 2*d+1+i, sign)
		rhs[i] = -sign * h.Offset
	}
	c := make([]float64, n)
	c[2*d] = -1

	_, z, err := lp.Simplex(c, A, rhs, lpTolerance, nil)
	switch {
	case stderrors.Is(err, lp.ErrInfeasible):
		return nil, 0, errors.EmptyIntersection("halfspace system is infeasible")
	case err != nil:
		return nil, 0, errors.Wrap(err, errors.ErrCodeOptimizerLP, "chebyshev center")
	}

	center := make([]float64, d)
	floats.SubTo(center, z[:d], z[d:2*d])
	radius := z[2*d]
	if radius <= margin {
		return center, radius, errors.EmptyIntersection("halfspace system has no interior").
			WithDetailf("inscribed radius %.3e", radius)
	}
	return center, radius, nil
}
