package positivity

import (
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/pkg/errors"
)

// classifyBlock bounds the rows evaluated per matrix product.
const classifyBlock = 4096

// PointClassifier decides membership of rows in a halfspace system.
type PointClassifier struct {
	tol float64
}

// NewPointClassifier returns a classifier accepting evaluations up to tol.
func NewPointClassifier(tol float64) *PointClassifier {
	if tol <= 0 {
		tol = geometry.InsideTolerance
	}
	return &PointClassifier{tol: tol}
}

// Inside reports, per point, whether every equation evaluates to at most the
// classifier's tolerance. Boundary points are inside.
func (c *PointClassifier) Inside(eqs []geometry.Halfspace, points [][]float64) ([]bool, error) {
	if len(eqs) == 0 {
		return nil, errors.NoHullProvided("no equations to classify against")
	}
	d := len(eqs[0].Normal)
	for i, p := range points {
		if len(p) != d {
			return nil, errors.DimensionMismatch(d, len(p)).WithDetailf("point %d", i)
		}
	}

	// Rows of X·Eᵀ are the affine evaluations of one point.
	E := geometry.EquationMatrix(eqs)
	out := make([]bool, len(points))
	var eval mat.Dense
	for lo := 0; lo < len(points); lo += classifyBlock {
		hi := min(lo+classifyBlock, len(points))
		X := geometry.AffineRows(points[lo:hi])
		eval.Reset()
		eval.Mul(X, E.T())
		for i := 0; i < hi-lo; i++ {
			out[lo+i] = mat.Max(eval.RowView(i)) <= c.tol
		}
	}
	return out, nil
}

//Personal.AI order the ending
