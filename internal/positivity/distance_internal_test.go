package positivity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/positivity/pkg/errors"
)

func TestDistanceError(t *testing.T) {
	t.Parallel()

	capped := errors.NonConvergence(1, 0.5)
	cases := []struct {
		name     string
		distance float64
		err      error
		check    func(error) bool
	}{
		{"nan keeps non-convergence", math.NaN(), capped, errors.IsNonConvergence},
		{"nan without error", math.NaN(), nil, func(err error) bool {
			return errors.IsCode(err, errors.ErrCodeNumericalFailure)
		}},
		{"finite keeps non-convergence", 2, capped, errors.IsNonConvergence},
		{"finite without error", 2, nil, func(err error) bool { return err == nil }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := distanceError(tc.distance, tc.err)
			assert.True(t, tc.check(err), "got %v", err)
		})
	}
}
