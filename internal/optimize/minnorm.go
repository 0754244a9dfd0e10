package optimize

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/positivity/pkg/errors"
)

const (
	// mnpGapTolerance is Wolfe's stopping tolerance, relative to the largest
	// squared point norm.
	mnpGapTolerance = 1e-12

	// mnpWeightFloor is the weight below which a point leaves the corral.
	mnpWeightFloor = 1e-12
)

// MinNormPoint finds convex weights w minimizing ‖Σ wᵢ·points[i]‖ with
// Wolfe's active-set algorithm. Each major iteration adds the point most
// opposed to the current nearest point; minor iterations drop points until
// the affine minimizer of the corral is a convex combination.
//
// The iteration cap counts major iterations. When it is reached, or when
// rounding stalls the corral, the best weights are returned together with an
// OptimizerNonConvergence error. Result.Value is ½‖Σ wᵢ·points[i]‖².
func MinNormPoint(ctx context.Context, points [][]float64, maxIterations int) (*Result, error) {
	k := len(points)
	if k == 0 {
		return nil, errors.InvalidParam("min-norm point requires at least one point")
	}
	d := len(points[0])
	for i, p := range points {
		if len(p) != d {
			return nil, errors.DimensionMismatch(d, len(p)).WithDetailf("point %d", i)
		}
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	start, scale := 0, 0.0
	for i, p := range points {
		nn := floats.Dot(p, p)
		if nn > scale {
			scale = nn
		}
		if nn < floats.Dot(points[start], points[start]) {
			start = i
		}
	}
	tol := mnpGapTolerance * scale

	corral := []int{start}
	w := []float64{1}
	x := append([]float64(nil), points[start]...)

	result := func(it int, gap float64, ok bool) *Result {
		full := make([]float64, k)
		for i, idx := range corral {
			full[idx] = w[i]
		}
		return &Result{X: full, Value: 0.5 * floats.Dot(x, x), Iterations: it, Gap: gap, Converged: ok}
	}

	for it := 0; ; it++ {
		xx := floats.Dot(x, x)
		j, best := 0, math.Inf(1)
		for i, p := range points {
			if v := floats.Dot(p, x); v < best {
				j, best = i, v
			}
		}
		gap := math.Max(0, xx-best)
		if gap <= tol {
			return result(it, gap, true), nil
		}
		if it == maxIterations {
			return result(it, gap, false), errors.NonConvergence(it, gap)
		}
		if err := ctx.Err(); err != nil {
			return result(it, gap, false), interrupted(err, it)
		}
		if contains(corral, j) {
			return result(it, gap, false), errors.NonConvergence(it, gap).WithDetail("corral stalled")
		}
		corral = append(corral, j)
		w = append(w, 0)

		for minor := 0; ; minor++ {
			v, ok := affineMinimizer(points, corral)
			if !ok || minor > d+1 {
				return result(it+1, gap, false), errors.NonConvergence(it+1, gap).WithDetail("corral is affinely dependent")
			}
			if floats.Min(v) > mnpWeightFloor {
				w = v
				break
			}
			theta := 1.0
			for i := range v {
				if v[i] <= mnpWeightFloor && w[i]-v[i] > 0 {
					theta = math.Min(theta, w[i]/(w[i]-v[i]))
				}
			}
			if !(theta > 0) {
				return result(it+1, gap, false), errors.NonConvergence(it+1, gap).WithDetail("corral stalled")
			}
			keptIdx, keptW := corral[:0], w[:0]
			for i := range v {
				wi := (1-theta)*w[i] + theta*v[i]
				if wi > mnpWeightFloor {
					keptIdx = append(keptIdx, corral[i])
					keptW = append(keptW, wi)
				}
			}
			corral, w = keptIdx, keptW
			floats.Scale(1/floats.Sum(w), w)
		}

		for i := range x {
			x[i] = 0
		}
		for i, idx := range corral {
			floats.AddScaled(x, w[i], points[idx])
		}
	}
}

// affineMinimizer returns the weights, summing to one, of the point of least
// norm in the affine hull of the corral. It solves min ‖p₀ + Aλ‖ by least
// squares, where A's columns are pᵢ − p₀.
func affineMinimizer(points [][]float64, corral []int) ([]float64, bool) {
	m := len(corral)
	if m == 1 {
		return []float64{1}, true
	}
	p0 := points[corral[0]]
	d := len(p0)
	a := mat.NewDense(d, m-1, nil)
	for c := 1; c < m; c++ {
		pc := points[corral[c]]
		for r := 0; r < d; r++ {
			a.Set(r, c-1, pc[r]-p0[r])
		}
	}
	b := mat.NewVecDense(d, nil)
	for r := 0; r < d; r++ {
		b.SetVec(r, -p0[r])
	}
	var lambda mat.VecDense
	if err := lambda.SolveVec(a, b); err != nil {
		return nil, false
	}
	v := make([]float64, m)
	v[0] = 1
	for c := 1; c < m; c++ {
		v[c] = lambda.AtVec(c - 1)
		v[0] -= v[c]
	}
	return v, true
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
