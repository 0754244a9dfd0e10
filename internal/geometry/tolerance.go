package geometry

// Numeric tolerances shared by hull construction, containment and seeding.
// Halfspace normals are unit length, so every tolerance below is a Euclidean
// distance in covariate units.
const (
	// DefaultEpsilon is the relative distance, scaled by the point cloud's
	// extent, below which a point counts as lying on a facet plane.
	DefaultEpsilon = 1e-10

	// InsideTolerance is the slack allowed by InsideAll. A point whose
	// evaluation is at most this value is on or inside the halfspace.
	InsideTolerance = 1e-9

	// InteriorMargin is the depth a seed must have below every plane for
	// StrictlyInsideAll. It also bounds the Chebyshev radius under which a
	// region is treated as having no interior.
	InteriorMargin = 1e-9

	// DedupTolerance merges intersection vertices closer than this.
	DedupTolerance = 1e-9
)

// Tolerances groups the overridable tolerances. The zero value is not usable;
// start from DefaultTolerances.
type Tolerances struct {
	Epsilon         float64
	InsideTolerance float64
	InteriorMargin  float64
	DedupTolerance  float64
}

// DefaultTolerances returns the package defaults.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Epsilon:         DefaultEpsilon,
		InsideTolerance: InsideTolerance,
		InteriorMargin:  InteriorMargin,
		DedupTolerance:  DedupTolerance,
	}
}

// normalized replaces non-positive fields with defaults.
func (t Tolerances) normalized() Tolerances {
	d := DefaultTolerances()
	if t.Epsilon <= 0 {
		t.Epsilon = d.Epsilon
	}
	if t.InsideTolerance <= 0 {
		t.InsideTolerance = d.InsideTolerance
	}
	if t.InteriorMargin <= 0 {
		t.InteriorMargin = d.InteriorMargin
	}
	if t.DedupTolerance <= 0 {
		t.DedupTolerance = d.DedupTolerance
	}
	return t
}

// Normalized is the exported form of normalized for callers outside the
// package that accept partially filled Tolerances.
func (t Tolerances) Normalized() Tolerances { return t.normalized() }
