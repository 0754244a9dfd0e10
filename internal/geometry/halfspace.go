package geometry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Halfspace is the inequality Normal·x + Offset ≤ 0.
type Halfspace struct {
	Normal []float64 `json:"normal" yaml:"normal"`
	Offset float64   `json:"offset" yaml:"offset"`
}

// Eval returns Normal·x + Offset. For unit normals this is the signed
// distance from x to the boundary plane, negative inside.
func (h Halfspace) Eval(x []float64) float64 {
	return floats.Dot(h.Normal, x) + h.Offset
}

// Coefficients returns (a₁,…,a_d, b).
func (h Halfspace) Coefficients() []float64 {
	out := make([]float64, len(h.Normal)+1)
	copy(out, h.Normal)
	out[len(h.Normal)] = h.Offset
	return out
}

// InsideAll reports whether x satisfies every halfspace non-strictly, allowing
// tol of slack. Boundary points are inside. This is the membership predicate.
func InsideAll(hs []Halfspace, x []float64, tol float64) bool {
	for _, h := range hs {
		if h.Eval(x) > tol {
			return false
		}
	}
	return true
}

// StrictlyInsideAll reports whether x lies deeper than margin below every
// halfspace boundary. It is the seed predicate for halfspace intersection and
// rejects boundary points.
func StrictlyInsideAll(hs []Halfspace, x []float64, margin float64) bool {
	for _, h := range hs {
		if !(h.Eval(x) < -margin) {
			return false
		}
	}
	return true
}

// MaxViolation returns max_i (a_i·x + b_i).
func MaxViolation(hs []Halfspace, x []float64) float64 {
	worst := negInf
	for _, h := range hs {
		if v := h.Eval(x); v > worst {
			worst = v
		}
	}
	return worst
}

// EquationMatrix packs hs into an m×(d+1) matrix whose rows are
// (a₁,…,a_d, b).
func EquationMatrix(hs []Halfspace) *mat.Dense {
	if len(hs) == 0 {
		return nil
	}
	d := len(hs[0].Normal)
	m := mat.NewDense(len(hs), d+1, nil)
	for i, h := range hs {
		m.SetRow(i, h.Coefficients())
	}
	return m
}

// AffineRows packs points into an n×(d+1) matrix with a trailing column of ones.
func AffineRows(points [][]float64) *mat.Dense {
	if len(points) == 0 {
		return nil
	}
	d := len(points[0])
	m := mat.NewDense(len(points), d+1, nil)
	row := make([]float64, d+1)
	for i, p := range points {
		copy(row, p)
		row[d] = 1
		m.SetRow(i, row)
	}
	return m
}
