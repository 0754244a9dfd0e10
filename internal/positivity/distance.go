package positivity

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/internal/optimize"
	"github.com/turtacn/positivity/pkg/errors"
)

// DistanceResult is the projection of a point onto the overlap polytope.
type DistanceResult struct {
	Distance   float64   `json:"distance" yaml:"distance"`
	Weights    []float64 `json:"weights" yaml:"weights"`
	Nearest    []float64 `json:"nearest" yaml:"nearest"`
	Iterations int       `json:"iterations" yaml:"iterations"`
	Gap        float64   `json:"gap" yaml:"gap"`
}

// DistanceSolver projects points onto the convex hull of a fixed vertex set
// by solving min ½‖Vᵀw − p‖² over the probability simplex. The active-set
// min-norm-point answer seeds the accelerated solver, which certifies it or
// finishes the job. It is safe for concurrent use.
type DistanceSolver struct {
	v         *mat.Dense // k×d, one vertex per row, centred on centroid
	centroid  []float64
	verts     [][]float64
	k, d      int
	lipschitz float64
	settings  optimize.Settings
	cons      optimize.Constraints
}

// NewDistanceSolver builds a solver over polytope's vertices.
func NewDistanceSolver(polytope *geometry.Hull, settings optimize.Settings) (*DistanceSolver, error) {
	if polytope == nil || len(polytope.Vertices) == 0 {
		return nil, errors.NoHullProvided("distance requires a non-empty overlap polytope")
	}
	verts := polytope.VertexPoints()
	k, d := len(verts), len(verts[0])
	centroid := make([]float64, d)
	for _, p := range verts {
		floats.AddScaled(centroid, 1/float64(k), p)
	}
	v := mat.NewDense(k, d, nil)
	row := make([]float64, d)
	for i, p := range verts {
		floats.SubTo(row, p, centroid)
		v.SetRow(i, row)
	}
	return &DistanceSolver{
		v:         v,
		centroid:  centroid,
		verts:     verts,
		k:         k,
		d:         d,
		lipschitz: spectralNormSq(v),
		settings:  settings,
		cons:      optimize.ProbabilitySimplex(k),
	}, nil
}

// spectralNormSq returns σ_max(v)², the Lipschitz constant of the objective's
// gradient. The Frobenius norm bounds it when the SVD fails.
func spectralNormSq(v *mat.Dense) float64 {
	var svd mat.SVD
	if svd.Factorize(v, mat.SVDNone) {
		s := svd.Values(nil)
		if len(s) > 0 {
			return s[0] * s[0]
		}
	}
	f := mat.Norm(v, 2)
	return f * f
}

// Vertices returns the number of polytope vertices.
func (s *DistanceSolver) Vertices() int { return s.k }

// Solve returns the distance from p to the polytope. When the solver hits
// its iteration cap the best iterate is returned with an
// OptimizerNonConvergence error. Cancelling ctx interrupts the solve.
func (s *DistanceSolver) Solve(ctx context.Context, p []float64) (*DistanceResult, error) {
	if len(p) != s.d {
		return nil, errors.DimensionMismatch(s.d, len(p))
	}
	for i, x := range p {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errors.InvalidParam("point coordinates must be finite").WithDetailf("coordinate %d", i)
		}
	}

	shifted := make([][]float64, s.k)
	for i, v := range s.verts {
		shifted[i] = make([]float64, s.d)
		floats.SubTo(shifted[i], v, p)
	}
	x0 := make([]float64, s.k)
	for i := range x0 {
		x0[i] = 1 / float64(s.k)
	}
	iterations := 0
	mnp, err := optimize.MinNormPoint(ctx, shifted, s.settings.MaxIterations)
	if err != nil && !errors.IsNonConvergence(err) {
		return nil, err
	}
	if mnp != nil {
		x0 = mnp.X
		iterations = mnp.Iterations
	}

	local := make([]float64, s.d)
	floats.SubTo(local, p, s.centroid)
	obj := &projectionObjective{
		v:   s.v,
		p:   mat.NewVecDense(s.d, local),
		res: mat.NewVecDense(s.d, nil),
	}
	zero := 0.0
	settings := s.settings
	settings.Lipschitz = s.lipschitz
	settings.LowerBound = &zero

	res, err := optimize.Minimize(ctx, obj, x0, s.cons, &settings)
	if res == nil {
		return nil, err
	}
	nearest := obj.combine(res.X)
	floats.Add(nearest, s.centroid)
	out := &DistanceResult{
		Distance:   floats.Distance(nearest, p, 2),
		Weights:    res.X,
		Nearest:    nearest,
		Iterations: iterations + res.Iterations,
		Gap:        res.Gap,
	}
	if err := distanceError(out.Distance, err); err != nil {
		if math.IsNaN(out.Distance) {
			return nil, err
		}
		return out, err
	}
	return out, nil
}

// distanceError keeps a solver error as is and reports a NaN distance from
// an otherwise successful solve as a numerical failure.
func distanceError(distance float64, err error) error {
	if err != nil {
		return err
	}
	if math.IsNaN(distance) {
		return errors.New(errors.ErrCodeNumericalFailure, "distance is not a number")
	}
	return nil
}

// projectionObjective is ½‖Vᵀw − p‖². Each Solve owns one, so the scratch
// residual is not shared.
type projectionObjective struct {
	v   *mat.Dense
	p   *mat.VecDense
	res *mat.VecDense
}

func (o *projectionObjective) residual(w []float64) *mat.VecDense {
	o.res.MulVec(o.v.T(), mat.NewVecDense(len(w), w))
	o.res.SubVec(o.res, o.p)
	return o.res
}

func (o *projectionObjective) Func(w []float64) float64 {
	r := o.residual(w)
	return 0.5 * mat.Dot(r, r)
}

func (o *projectionObjective) Grad(grad, w []float64) {
	r := o.residual(w)
	g := mat.NewVecDense(len(grad), grad)
	g.MulVec(o.v, r)
}

func (o *projectionObjective) combine(w []float64) []float64 {
	var x mat.VecDense
	x.MulVec(o.v.T(), mat.NewVecDense(len(w), w))
	return append([]float64(nil), x.RawVector().Data...)
}

//Personal.AI order the ending
