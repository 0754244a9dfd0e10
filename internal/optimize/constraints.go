package optimize

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/turtacn/positivity/pkg/errors"
)

// LinearEquality is the constraint Coeffs·x = Value. Every coefficient must
// be strictly positive, which keeps projection onto the feasible set exact.
type LinearEquality struct {
	Coeffs []float64
	Value  float64
}

// Bounds is the box Lower ≤ x ≤ Upper. Both slices must be finite.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// Constraints is the feasible set {x : Equality holds, Bounds hold}.
// Equality may be nil.
type Constraints struct {
	Equality *LinearEquality
	Bounds   Bounds
}

// ProbabilitySimplex returns Σx = 1, 0 ≤ x ≤ 1 over n variables.
func ProbabilitySimplex(n int) Constraints {
	ones := make([]float64, n)
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := range ones {
		ones[i] = 1
		hi[i] = 1
	}
	return Constraints{
		Equality: &LinearEquality{Coeffs: ones, Value: 1},
		Bounds:   Bounds{Lower: lo, Upper: hi},
	}
}

// feasibleSet supports Euclidean projection and linear minimization over
// Constraints.
type feasibleSet struct {
	n      int
	eq     *LinearEquality
	lo, hi []float64

	bps   []float64
	order []int
}

func newFeasibleSet(c Constraints, n int) (*feasibleSet, error) {
	if len(c.Bounds.Lower) != n || len(c.Bounds.Upper) != n {
		return nil, errors.DimensionMismatch(n, len(c.Bounds.Lower)).WithDetail("bounds length")
	}
	for i := 0; i < n; i++ {
		lo, hi := c.Bounds.Lower[i], c.Bounds.Upper[i]
		if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
			return nil, errors.InvalidParam("bounds must be finite").WithDetailf("variable %d", i)
		}
		if lo > hi {
			return nil, errors.New(errors.ErrCodeOptimizerInfeasible, "lower bound exceeds upper bound").
				WithDetailf("variable %d: %g > %g", i, lo, hi)
		}
	}
	fs := &feasibleSet{n: n, eq: c.Equality, lo: c.Bounds.Lower, hi: c.Bounds.Upper}
	if fs.eq == nil {
		return fs, nil
	}
	if len(fs.eq.Coeffs) != n {
		return nil, errors.DimensionMismatch(n, len(fs.eq.Coeffs)).WithDetail("equality coefficients")
	}
	for i, a := range fs.eq.Coeffs {
		if !(a > 0) || math.IsInf(a, 0) {
			return nil, errors.InvalidParam("equality coefficients must be positive and finite").
				WithDetailf("coefficient %d = %g", i, a)
		}
	}
	minV := floats.Dot(fs.eq.Coeffs, fs.lo)
	maxV := floats.Dot(fs.eq.Coeffs, fs.hi)
	slack := 1e-12 * math.Max(1, math.Abs(fs.eq.Value))
	if fs.eq.Value < minV-slack || fs.eq.Value > maxV+slack {
		return nil, errors.New(errors.ErrCodeOptimizerInfeasible, "equality cannot be met within bounds").
			WithDetailf("value %g outside [%g, %g]", fs.eq.Value, minV, maxV)
	}
	fs.bps = make([]float64, 0, 2*n)
	fs.order = make([]int, n)
	return fs, nil
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// project writes the Euclidean projection of y onto the set into dst.
func (fs *feasibleSet) project(dst, y []float64) {
	if fs.eq == nil {
		for i := range y {
			dst[i] = clip(y[i], fs.lo[i], fs.hi[i])
		}
		return
	}
	// The projection is x(τ) = clip(y - τa, lo, hi) for the τ solving
	// a·x(τ) = s. a·x(τ) is non-increasing and piecewise linear in τ with
	// knots at (y_i-hi_i)/a_i and (y_i-lo_i)/a_i.
	a := fs.eq.Coeffs
	fs.bps = fs.bps[:0]
	for i := range y {
		fs.bps = append(fs.bps, (y[i]-fs.hi[i])/a[i], (y[i]-fs.lo[i])/a[i])
	}
	sort.Float64s(fs.bps)

	phi := func(tau float64) float64 {
		sum := 0.0
		for i := range y {
			sum += a[i] * clip(y[i]-tau*a[i], fs.lo[i], fs.hi[i])
		}
		return sum
	}
	target := fs.eq.Value
	lo, hi := 0, len(fs.bps)-1
	phiLo, phiHi := phi(fs.bps[lo]), phi(fs.bps[hi])
	var tau float64
	switch {
	case phiLo <= target:
		tau = fs.bps[lo]
	case phiHi >= target:
		tau = fs.bps[hi]
	default:
		for hi-lo > 1 {
			mid := (lo + hi) / 2
			if v := phi(fs.bps[mid]); v >= target {
				lo, phiLo = mid, v
			} else {
				hi, phiHi = mid, v
			}
		}
		tau = fs.bps[lo]
		if phiLo != phiHi {
			tau += (phiLo - target) * (fs.bps[hi] - fs.bps[lo]) / (phiLo - phiHi)
		}
	}
	for i := range y {
		dst[i] = clip(y[i]-tau*a[i], fs.lo[i], fs.hi[i])
	}
}

// linearMin returns min over the set of g·v.
func (fs *feasibleSet) linearMin(g []float64) float64 {
	if fs.eq == nil {
		total := 0.0
		for i, gi := range g {
			total += math.Min(gi*fs.lo[i], gi*fs.hi[i])
		}
		return total
	}
	// Start at the lower bounds and spend the remaining budget on the
	// variables with the smallest cost per unit of constraint weight.
	a := fs.eq.Coeffs
	total := floats.Dot(g, fs.lo)
	budget := fs.eq.Value - floats.Dot(a, fs.lo)
	for i := range fs.order {
		fs.order[i] = i
	}
	sort.Slice(fs.order, func(p, q int) bool {
		return g[fs.order[p]]/a[fs.order[p]] < g[fs.order[q]]/a[fs.order[q]]
	})
	for _, i := range fs.order {
		if budget <= 0 {
			break
		}
		inc := math.Min(fs.hi[i]-fs.lo[i], budget/a[i])
		total += g[i] * inc
		budget -= a[i] * inc
	}
	return total
}
