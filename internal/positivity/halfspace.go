package positivity

import (
	"sync"

	"github.com/turtacn/positivity/internal/geometry"
	"github.com/turtacn/positivity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/positivity/pkg/errors"
	"github.com/turtacn/positivity/pkg/types/positivity"
)

// SeedMode selects how the interior point of the overlap is found.
type SeedMode string

const (
	// SeedModeSample tries observed points first and falls back to the
	// Chebyshev center.
	SeedModeSample SeedMode = "sample"
	// SeedModeChebyshev always solves the Chebyshev-center LP.
	SeedModeChebyshev SeedMode = "chebyshev"
)

// HalfspaceSystem is the combined inequality system of two hulls. Its
// intersection polytope is computed at most once.
type HalfspaceSystem struct {
	prim     geometry.Primitive
	tol      geometry.Tolerances
	mode     SeedMode
	logger   logging.Logger
	a, b     *geometry.Hull
	combined []geometry.Halfspace

	once     sync.Once
	polytope *geometry.Hull
	seed     []float64
	source   positivity.SeedSource
	err      error
}

// NewHalfspaceSystem combines the equations of a and b. The hulls' Points
// are the candidate seeds.
func NewHalfspaceSystem(prim geometry.Primitive, a, b *geometry.Hull, tol geometry.Tolerances, mode SeedMode, logger logging.Logger) *HalfspaceSystem {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if mode == "" {
		mode = SeedModeSample
	}
	combined := make([]geometry.Halfspace, 0, len(a.Equations)+len(b.Equations))
	combined = append(append(combined, a.Equations...), b.Equations...)
	return &HalfspaceSystem{
		prim:     prim,
		tol:      tol.Normalized(),
		mode:     mode,
		logger:   logger,
		a:        a,
		b:        b,
		combined: combined,
		source:   positivity.SeedNone,
	}
}

// Combined returns both hulls' equations, a's first.
func (s *HalfspaceSystem) Combined() []geometry.Halfspace { return s.combined }

// Intersection returns the overlap polytope. An empty overlap is reported as
// EmptyIntersection on every call.
func (s *HalfspaceSystem) Intersection() (*geometry.Hull, error) {
	s.once.Do(func() {
		s.polytope, s.err = s.compute()
	})
	return s.polytope, s.err
}

// Empty reports whether the overlap has no interior.
func (s *HalfspaceSystem) Empty() bool {
	_, err := s.Intersection()
	return errors.IsEmptyIntersection(err)
}

// Seed returns the interior point used for the intersection, or nil.
func (s *HalfspaceSystem) Seed() []float64 {
	_, _ = s.Intersection()
	return s.seed
}

// SeedSource reports where the seed came from.
func (s *HalfspaceSystem) SeedSource() positivity.SeedSource {
	_, _ = s.Intersection()
	return s.source
}

func (s *HalfspaceSystem) compute() (*geometry.Hull, error) {
	seed, source, err := s.findSeed()
	if err != nil {
		if errors.IsEmptyIntersection(err) {
			s.logger.Info("overlap is empty", logging.Err(err))
		}
		return nil, err
	}
	s.seed, s.source = seed, source
	s.logger.Debug("interior seed found", logging.String("source", string(source)), logging.Floats("seed", seed))

	vertices, err := s.prim.Intersect(s.combined, seed)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "halfspace intersection")
	}
	// Second pass: the polytope's own equations, not the two source hulls'.
	polytope, err := s.prim.ComputeHull(vertices)
	if err != nil {
		if errors.IsDegenerateHull(err) {
			return nil, errors.Wrap(err, errors.ErrCodeEmptyIntersection, "overlap has no full-dimensional interior")
		}
		return nil, errors.Wrap(err, errors.CodeUnknown, "overlap hull")
	}
	s.logger.Info("overlap computed",
		logging.Int("vertices", len(polytope.Vertices)),
		logging.Int("facets", len(polytope.Equations)),
		logging.Float64("volume", polytope.Volume),
	)
	return polytope, nil
}

// findSeed scans a's points, then b's points, for one strictly inside every
// combined equation, falling back to the Chebyshev center.
func (s *HalfspaceSystem) findSeed() ([]float64, positivity.SeedSource, error) {
	if s.mode == SeedModeSample {
		for _, pts := range [][][]float64{s.a.Points, s.b.Points} {
			for _, p := range pts {
				if geometry.StrictlyInsideAll(s.combined, p, s.tol.InteriorMargin) {
					return append([]float64(nil), p...), positivity.SeedSample, nil
				}
			}
		}
		s.logger.Debug("no observed point is strictly inside both hulls; solving for the chebyshev center")
	}
	center, radius, err := geometry.ChebyshevCenter(s.combined, s.tol.InteriorMargin)
	if err != nil {
		return nil, positivity.SeedNone, err
	}
	s.logger.Debug("chebyshev center", logging.Float64("radius", radius))
	return center, positivity.SeedChebyshev, nil
}

//Personal.AI order the ending
