// Package optimize provides a small convex solver for smooth objectives over
// a box intersected with one positive linear equality, the shape of every
// convex-combination problem in the positivity engine.
//
// The method is accelerated projected gradient (FISTA) with backtracking on
// the Lipschitz estimate and function-value restart. It stops when the
// Frank-Wolfe duality gap, which upper-bounds f(x) - f*, is small relative to
// f(x), or when the projected-gradient step vanishes.
//
// MinNormPoint is a finite active-set method for the special case of a
// nearest point in a convex hull. Its answer is a good starting point for
// Minimize.
package optimize

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/turtacn/positivity/pkg/errors"
)

// Default solver settings.
const (
	DefaultMaxIterations = 50000
	DefaultGapTolerance  = 1e-9
	DefaultStepTolerance = 1e-10
)

const (
	// maxBacktracks bounds the Lipschitz doublings within one iteration.
	maxBacktracks = 64

	// ctxCheckInterval is how many iterations pass between context checks.
	ctxCheckInterval = 64

	// roundingUlps scales machine epsilon into the floor below which a
	// duality gap is indistinguishable from rounding.
	roundingUlps = 64
)

// Objective is a differentiable convex function.
type Objective interface {
	Func(x []float64) float64
	Grad(grad, x []float64)
}

// Settings controls Minimize. Zero fields take defaults.
type Settings struct {
	// MaxIterations caps accelerated steps.
	MaxIterations int

	// GapTolerance is the duality gap, relative to |f(x)|, at which the
	// solver stops.
	GapTolerance float64

	// StepTolerance stops the solver once a projected-gradient step is
	// shorter than StepTolerance·max(1, ‖x‖).
	StepTolerance float64

	// Lipschitz is an initial estimate of the gradient's Lipschitz constant.
	// Backtracking only ever raises it, so it should not overestimate the
	// true constant by orders of magnitude.
	Lipschitz float64

	// LowerBound, when set, is a known lower bound on f; reaching it up to
	// rounding also counts as converged.
	LowerBound *float64
}

// DefaultSettings returns the package defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: DefaultMaxIterations,
		GapTolerance:  DefaultGapTolerance,
		StepTolerance: DefaultStepTolerance,
	}
}

func (s *Settings) withDefaults() Settings {
	st := DefaultSettings()
	if s == nil {
		return st
	}
	if s.MaxIterations > 0 {
		st.MaxIterations = s.MaxIterations
	}
	if s.GapTolerance > 0 {
		st.GapTolerance = s.GapTolerance
	}
	if s.StepTolerance > 0 {
		st.StepTolerance = s.StepTolerance
	}
	st.Lipschitz = s.Lipschitz
	st.LowerBound = s.LowerBound
	return st
}

// Result reports the final iterate.
type Result struct {
	X          []float64
	Value      float64
	Iterations int
	Gap        float64
	Converged  bool
}

// interrupted wraps a context error so that both the module code and the
// standard context sentinels match it.
func interrupted(err error, iterations int) error {
	return errors.Wrap(err, errors.ErrCodeCanceled, "optimizer interrupted").
		WithDetailf("iteration %d", iterations)
}

// Minimize minimizes obj over cons starting from x0, which is projected onto
// the feasible set first. When the iteration cap is reached the best iterate
// is returned together with an OptimizerNonConvergence error. ctx is checked
// every few iterations; on cancellation the best iterate is returned with an
// ErrCodeCanceled error wrapping ctx.Err().
func Minimize(ctx context.Context, obj Objective, x0 []float64, cons Constraints, s *Settings) (*Result, error) {
	n := len(x0)
	if n == 0 {
		return nil, errors.InvalidParam("optimizer requires at least one variable")
	}
	st := s.withDefaults()
	fs, err := newFeasibleSet(cons, n)
	if err != nil {
		return nil, err
	}

	x := make([]float64, n)
	fs.project(x, x0)
	fx := obj.Func(x)
	lbThresh := roundingUlps * epsilon * math.Max(1, math.Abs(fx))

	gx := make([]float64, n)
	converged := func(fx float64) (float64, bool) {
		obj.Grad(gx, x)
		inner, lin := floats.Dot(gx, x), fs.linearMin(gx)
		gap := math.Max(0, inner-lin)
		floor := roundingUlps * epsilon * (math.Abs(inner) + math.Abs(lin))
		if gap <= math.Max(st.GapTolerance*math.Abs(fx), floor) {
			return gap, true
		}
		if st.LowerBound != nil && fx-*st.LowerBound <= lbThresh {
			return gap, true
		}
		return gap, false
	}

	gap, ok := converged(fx)
	if ok {
		return &Result{X: x, Value: fx, Gap: gap, Converged: true}, nil
	}

	L := st.Lipschitz
	if !(L > 0) {
		L = 1
	}
	y := append([]float64(nil), x...)
	z := make([]float64, n)
	gy := make([]float64, n)
	step := make([]float64, n)
	diff := make([]float64, n)
	t := 1.0
	fresh := true

	for k := 1; k <= st.MaxIterations; k++ {
		if k%ctxCheckInterval == 1 {
			if err := ctx.Err(); err != nil {
				return &Result{X: x, Value: fx, Iterations: k - 1, Gap: gap}, interrupted(err, k-1)
			}
		}
		fy := obj.Func(y)
		obj.Grad(gy, y)

		var fz float64
		accepted := false
		for b := 0; b < maxBacktracks; b++ {
			floats.AddScaledTo(step, y, -1/L, gy)
			fs.project(z, step)
			fz = obj.Func(z)
			floats.SubTo(diff, z, y)
			model := fy + floats.Dot(gy, diff) + 0.5*L*floats.Dot(diff, diff)
			if fz <= model+1e-15*math.Abs(fy) {
				accepted = true
				break
			}
			L *= 2
		}
		if !accepted || math.IsInf(L, 1) {
			return nil, errors.New(errors.ErrCodeNumericalFailure, "backtracking did not satisfy the descent condition").
				WithDetailf("iteration %d, %d doublings, lipschitz %g", k, maxBacktracks, L)
		}

		if fz > fx && !fresh {
			// Momentum overshot; restart from the last accepted iterate.
			t = 1
			copy(y, x)
			fresh = true
			continue
		}
		fresh = false
		stalled := floats.Norm(diff, 2) <= st.StepTolerance*math.Max(1, floats.Norm(z, 2))

		tNext := (1 + math.Sqrt(1+4*t*t)) / 2
		beta := (t - 1) / tNext
		for i := range y {
			y[i] = z[i] + beta*(z[i]-x[i])
		}
		x, z = z, x
		fx = fz
		t = tNext

		if gap, ok = converged(fx); ok || stalled {
			return &Result{X: x, Value: fx, Iterations: k, Gap: gap, Converged: true}, nil
		}
	}
	return &Result{X: x, Value: fx, Iterations: st.MaxIterations, Gap: gap},
		errors.NonConvergence(st.MaxIterations, gap)
}

// epsilon is the float64 machine epsilon.
var epsilon = math.Nextafter(1, 2) - 1
