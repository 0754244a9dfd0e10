package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/turtacn/positivity/pkg/errors"
)

// Intersect implements Primitive using the polar dual about the interior
// point c. Each halfspace a·x+b ≤ 0 maps to the dual point a/-(a·c+b); every
// facet m·y+o ≤ 0 of the dual hull maps back to the primal vertex c + m/(-o).
// Redundant halfspaces fall strictly inside the dual hull and vanish.
func (b *Incremental) Intersect(halfspaces []Halfspace, interior []float64) ([][]float64, error) {
	if len(halfspaces) == 0 {
		return nil, errors.InvalidParam("intersection requires at least one halfspace")
	}
	d := len(interior)
	if d == 0 {
		return nil, errors.InvalidParam("interior point must have at least one coordinate")
	}

	dual := make([][]float64, len(halfspaces))
	for i, h := range halfspaces {
		if len(h.Normal) != d {
			return nil, errors.DimensionMismatch(d, len(h.Normal)).WithDetailf("halfspace %d", i)
		}
		slack := -h.Eval(interior)
		if !(slack > 0) {
			return nil, errors.New(errors.ErrCodeInteriorInfeasible, "interior point is not strictly feasible").
				WithDetailf("halfspace %d has slack %.3e", i, slack)
		}
		q := make([]float64, d)
		floats.ScaleTo(q, 1/slack, h.Normal)
		dual[i] = q
	}

	dh, err := b.ComputeHull(dual)
	if err != nil {
		if errors.IsDegenerateHull(err) {
			return nil, errors.Wrap(err, errors.ErrCodeUnboundedRegion, "halfspace normals do not enclose a bounded region")
		}
		return nil, err
	}

	dualScale := 0.0
	for _, q := range dual {
		dualScale = math.Max(dualScale, floats.Norm(q, 2))
	}
	vertices := make([][]float64, 0, len(dh.Equations))
	for i, eq := range dh.Equations {
		if !(eq.Offset < -b.eps*dualScale) {
			return nil, errors.New(errors.ErrCodeUnboundedRegion, "halfspace system is unbounded").
				WithDetailf("dual facet %d offset %.3e", i, eq.Offset)
		}
		v := make([]float64, d)
		floats.AddScaledTo(v, interior, -1/eq.Offset, eq.Normal)
		vertices = appendUnique(vertices, v, b.dedup)
	}
	return vertices, nil
}

// appendUnique appends v unless a vertex within tol (relative to its
// magnitude) is already present.
func appendUnique(vertices [][]float64, v []float64, tol float64) [][]float64 {
	limit := tol * math.Max(1, floats.Norm(v, 2))
	for _, u := range vertices {
		if floats.Distance(u, v, 2) <= limit {
			return vertices
		}
	}
	return append(vertices, v)
}
