// Package positivity assesses covariate overlap between a treated and an
// untreated group. It builds each group's convex hull, intersects them into
// the overlap polytope, classifies every row against the opposite group's
// hull and measures how far outside rows lie from the overlap.
package positivity

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/turtacn/positivity/internal/batch"
	"github.com/turtacn/positivity/internal/dataset"
	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/positivity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/positivity/internal/optimize"
	"github.com/turtacn/positivity/pkg/errors"
	"github.com/turtacn/positivity/pkg/types/positivity"
)

// MetricEuclidean is the only supported distance metric.
const MetricEuclidean = "Euclidean"

type options struct {
	prim        geometry.Primitive
	logger      logging.Logger
	metrics     prometheus.PositivityMetrics
	solver      optimize.Settings
	concurrency int
	itemTimeout time.Duration
	tol         geometry.Tolerances
	seedMode    SeedMode
}

// Option configures Build.
type Option func(*options)

// WithPrimitive replaces the hull and intersection primitive.
func WithPrimitive(p geometry.Primitive) Option {
	return func(o *options) {
		if p != nil {
			o.prim = p
		}
	}
}

// WithLogger injects a logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics injects a metrics recorder.
func WithMetrics(m prometheus.PositivityMetrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithSolverSettings overrides the distance solver's iteration cap and gap
// tolerance. Zero fields keep their defaults.
func WithSolverSettings(s optimize.Settings) Option {
	return func(o *options) { o.solver = s }
}

// WithConcurrency bounds the parallel distance solves.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithItemTimeout bounds each row's distance solve. A row whose solve runs
// out of time keeps a nil Distance and is counted in Failed. Zero disables
// the bound.
func WithItemTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.itemTimeout = d
		}
	}
}

// WithTolerances overrides the geometric tolerances. Non-positive fields keep
// their defaults.
func WithTolerances(t geometry.Tolerances) Option {
	return func(o *options) { o.tol = t.Normalized() }
}

// WithSeedMode selects how the overlap's interior point is found.
func WithSeedMode(m SeedMode) Option {
	return func(o *options) {
		if m != "" {
			o.seedMode = m
		}
	}
}

type group struct {
	origin positivity.Origin
	frame  *dataset.Frame
	coords [][]float64
	hull   *geometry.Hull
}

// Assessment is a built positivity assessment. Hulls and the overlap are
// frozen at Build; classifications are computed on first use and reused.
type Assessment struct {
	runID      positivity.RunID
	covariates []string
	columns    []string
	fullRows   bool
	treated    group
	untreated  group
	system     *HalfspaceSystem
	classifier *PointClassifier
	opts       options
	logger     logging.Logger

	solverOnce sync.Once
	solver     *DistanceSolver
	solverErr  error

	mu             sync.Mutex
	classification *positivity.Classification
}

// Build constructs both hulls over covariates and computes their overlap.
// An empty overlap is not an error here; it is reported by the queries.
func Build(treated, untreated *dataset.Frame, covariates []string, opts ...Option) (*Assessment, error) {
	o := options{
		logger:      logging.NewNopLogger(),
		metrics:     prometheus.NewNoopPositivityMetrics(),
		solver:      optimize.DefaultSettings(),
		concurrency: runtime.GOMAXPROCS(0),
		tol:         geometry.DefaultTolerances(),
		seedMode:    SeedModeSample,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.prim == nil {
		o.prim = geometry.NewIncremental(geometry.WithTolerances(o.tol))
	}
	if treated == nil || untreated == nil {
		return nil, errors.InvalidParam("both treated and untreated data are required")
	}
	if len(covariates) == 0 {
		return nil, errors.InvalidParam("at least one covariate column is required")
	}

	a := &Assessment{
		runID:      positivity.NewRunID(),
		covariates: append([]string(nil), covariates...),
		classifier: NewPointClassifier(o.tol.InsideTolerance),
		opts:       o,
	}
	a.logger = o.logger.Named("positivity").With(logging.String("run_id", string(a.runID)))
	a.columns = a.covariates
	if sameColumns(treated.Columns, untreated.Columns) {
		a.columns = append([]string(nil), treated.Columns...)
		a.fullRows = true
	}

	var err error
	if a.treated, err = a.buildGroup(positivity.OriginTreated, treated); err != nil {
		return nil, err
	}
	if a.untreated, err = a.buildGroup(positivity.OriginUntreated, untreated); err != nil {
		return nil, err
	}

	a.system = NewHalfspaceSystem(o.prim, a.treated.hull, a.untreated.hull, o.tol, o.seedMode, a.logger)
	polytope, err := a.system.Intersection()
	empty := errors.IsEmptyIntersection(err)
	if err != nil && !empty {
		return nil, err
	}
	o.metrics.RecordAssessment(string(a.system.SeedSource()), empty)
	if polytope != nil {
		o.metrics.SetOverlapVolume(polytope.Volume)
	}
	a.logger.Info("assessment built",
		logging.Int("dim", len(covariates)),
		logging.String("seed_source", string(a.system.SeedSource())),
		logging.Bool("empty", empty),
	)
	return a, nil
}

func (a *Assessment) buildGroup(origin positivity.Origin, f *dataset.Frame) (group, error) {
	coords, err := f.Select(a.covariates)
	if err != nil {
		return group{}, errors.Wrap(err, errors.CodeUnknown, strings.ToLower(string(origin))+" covariates")
	}
	hull, err := a.opts.prim.ComputeHull(coords)
	if err != nil {
		return group{}, errors.Wrap(err, errors.CodeUnknown, strings.ToLower(string(origin))+" hull")
	}
	a.logger.Debug("hull built",
		logging.String("origin", string(origin)),
		logging.Int("points", len(coords)),
		logging.Int("vertices", len(hull.Vertices)),
		logging.Float64("volume", hull.Volume),
	)
	return group{origin: origin, frame: f, coords: coords, hull: hull}, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// RunID identifies this assessment.
func (a *Assessment) RunID() positivity.RunID { return a.runID }

// Dim returns the number of covariates.
func (a *Assessment) Dim() int { return len(a.covariates) }

// TreatedHull returns the treated group's hull.
func (a *Assessment) TreatedHull() *geometry.Hull { return a.treated.hull }

// UntreatedHull returns the untreated group's hull.
func (a *Assessment) UntreatedHull() *geometry.Hull { return a.untreated.hull }

// Intersection returns the overlap polytope, or EmptyIntersection.
func (a *Assessment) Intersection() (*geometry.Hull, error) {
	return a.system.Intersection()
}

// SeedSource reports how the overlap's interior point was found.
func (a *Assessment) SeedSource() positivity.SeedSource { return a.system.SeedSource() }

// IsPositive reports whether point lies in the overlap, boundary included.
// It is false without error when the overlap is empty.
func (a *Assessment) IsPositive(point []float64) (bool, error) {
	if len(point) != a.Dim() {
		return false, errors.DimensionMismatch(a.Dim(), len(point))
	}
	polytope, err := a.system.Intersection()
	if errors.IsEmptyIntersection(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return geometry.InsideAll(polytope.Equations, point, a.opts.tol.InsideTolerance), nil
}

// DistanceTo projects point onto the overlap. It fails with NoHullProvided
// when the overlap is empty.
func (a *Assessment) DistanceTo(ctx context.Context, point []float64) (*DistanceResult, error) {
	s, err := a.distanceSolver()
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, point)
}

func (a *Assessment) distanceSolver() (*DistanceSolver, error) {
	a.solverOnce.Do(func() {
		polytope, err := a.system.Intersection()
		if err != nil && !errors.IsEmptyIntersection(err) {
			a.solverErr = err
			return
		}
		a.solver, a.solverErr = NewDistanceSolver(polytope, a.opts.solver)
	})
	return a.solver, a.solverErr
}

// ClassifyAll partitions both groups against the opposite group's hull and
// attaches the distance to the overlap to every invalid row. A row whose
// solve does not converge, or runs past the item timeout, keeps a nil
// Distance and is counted in Failed.
// The result is computed once and shared; callers must not modify it.
func (a *Assessment) ClassifyAll(ctx context.Context) (*positivity.Classification, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.classification != nil {
		return a.classification, nil
	}
	if _, err := a.system.Intersection(); err != nil {
		return nil, err
	}

	c := &positivity.Classification{
		RunID:      a.runID,
		Columns:    a.columns,
		Covariates: a.covariates,
	}
	var err error
	if c.TreatedValid, c.TreatedInvalid, err = a.partition(a.treated, a.untreated.hull); err != nil {
		return nil, err
	}
	if c.UntreatedValid, c.UntreatedInvalid, err = a.partition(a.untreated, a.treated.hull); err != nil {
		return nil, err
	}
	c.CandidateEmpty = len(c.TreatedValid) == 0 || len(c.UntreatedValid) == 0

	invalid := make([]*positivity.ClassifiedPoint, 0, len(c.TreatedInvalid)+len(c.UntreatedInvalid))
	for i := range c.TreatedInvalid {
		invalid = append(invalid, &c.TreatedInvalid[i])
	}
	for i := range c.UntreatedInvalid {
		invalid = append(invalid, &c.UntreatedInvalid[i])
	}
	if c.Failed, err = a.attachDistances(ctx, invalid); err != nil {
		return nil, err
	}

	for _, g := range []struct {
		origin       positivity.Origin
		valid, inval int
	}{
		{positivity.OriginTreated, len(c.TreatedValid), len(c.TreatedInvalid)},
		{positivity.OriginUntreated, len(c.UntreatedValid), len(c.UntreatedInvalid)},
	} {
		a.opts.metrics.RecordClassified(string(g.origin), true, g.valid)
		a.opts.metrics.RecordClassified(string(g.origin), false, g.inval)
	}
	a.logger.Info("classification complete",
		logging.Int("treated_valid", len(c.TreatedValid)),
		logging.Int("treated_invalid", len(c.TreatedInvalid)),
		logging.Int("untreated_valid", len(c.UntreatedValid)),
		logging.Int("untreated_invalid", len(c.UntreatedInvalid)),
		logging.Int("failed", c.Failed),
		logging.Bool("candidate_empty", c.CandidateEmpty),
	)
	a.classification = c
	return c, nil
}

func (a *Assessment) partition(g group, target *geometry.Hull) (valid, invalid []positivity.ClassifiedPoint, err error) {
	inside, err := a.classifier.Inside(target.Equations, g.coords)
	if err != nil {
		return nil, nil, err
	}
	for i, ok := range inside {
		values := g.coords[i]
		if a.fullRows {
			values = g.frame.Rows[i]
		}
		p := positivity.ClassifiedPoint{
			Origin:     g.origin,
			Index:      i,
			Values:     append([]float64(nil), values...),
			Covariates: g.coords[i],
			Valid:      ok,
		}
		if ok {
			valid = append(valid, p)
		} else {
			invalid = append(invalid, p)
		}
	}
	return valid, invalid, nil
}

// attachDistances solves every invalid row in parallel and returns the
// number of solves that did not converge or ran out of time.
func (a *Assessment) attachDistances(ctx context.Context, points []*positivity.ClassifiedPoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	solver, err := a.distanceSolver()
	if err != nil {
		return 0, err
	}
	proc := batch.New[*positivity.ClassifiedPoint, *DistanceResult](
		batch.WithMaxConcurrency(a.opts.concurrency),
		batch.WithItemTimeout(a.opts.itemTimeout),
		batch.WithLogger(a.logger),
	)
	br, err := proc.Process(ctx, points, func(ctx context.Context, p *positivity.ClassifiedPoint) (*DistanceResult, error) {
		timer := a.opts.metrics.SolveTimer()
		defer timer.ObserveDuration()
		return solver.Solve(ctx, p.Covariates)
	})
	if err != nil {
		return 0, err
	}

	failed := 0
	for i, r := range br.Results {
		p := points[i]
		nonConv := errors.IsNonConvergence(r.Error) || r.Status == batch.ItemStatusTimeout
		if r.Error != nil && !nonConv {
			return 0, r.Error
		}
		if r.Result != nil {
			p.Iterations = r.Result.Iterations
		}
		a.opts.metrics.RecordDistanceSolve(p.Iterations, nonConv)
		if nonConv {
			failed++
			p.Err = r.Error.Error()
			a.logger.Warn("distance solve failed",
				logging.String("origin", string(p.Origin)),
				logging.Int("index", p.Index),
				logging.Err(r.Error),
			)
			continue
		}
		d := r.Result.Distance
		p.Distance = &d
		p.Weights = r.Result.Weights
		p.Nearest = r.Result.Nearest
	}
	return failed, nil
}

// DistanceReport returns every invalid row's distance to the overlap,
// farthest first. metric is matched case-insensitively; only Euclidean is
// supported.
func (a *Assessment) DistanceReport(ctx context.Context, metric string) (*positivity.DistanceReport, error) {
	if !strings.EqualFold(metric, MetricEuclidean) {
		return nil, errors.UnsupportedMetric(metric)
	}
	c, err := a.ClassifyAll(ctx)
	if err != nil {
		return nil, err
	}
	r := &positivity.DistanceReport{
		Metric:     MetricEuclidean,
		Covariates: a.covariates,
		Points:     append([]positivity.ClassifiedPoint(nil), c.Invalid().Points...),
		Failed:     c.Failed,
	}
	r.SortByDistance()
	return r, nil
}

// Summary describes the hulls and the overlap.
func (a *Assessment) Summary() *positivity.Summary {
	s := &positivity.Summary{
		RunID:      a.runID,
		Dim:        a.Dim(),
		Covariates: a.covariates,
		Treated:    hullSummary(a.treated.hull),
		Untreated:  hullSummary(a.untreated.hull),
		SeedSource: a.system.SeedSource(),
	}
	polytope, err := a.system.Intersection()
	if err != nil {
		s.Empty = true
		return s
	}
	s.Overlap = hullSummary(polytope)
	s.TreatedOverlapRatio = ratio(polytope.Volume, a.treated.hull.Volume)
	s.UntreatedOverlapRatio = ratio(polytope.Volume, a.untreated.hull.Volume)
	return s
}

func hullSummary(h *geometry.Hull) positivity.HullSummary {
	if h == nil {
		return positivity.HullSummary{}
	}
	return positivity.HullSummary{
		Points:   len(h.Points),
		Vertices: len(h.Vertices),
		Facets:   len(h.Equations),
		Volume:   h.Volume,
	}
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

//Personal.AI order the ending
