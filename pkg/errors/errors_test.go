// Package errors_test exercises the AppError type, factory functions, and
// error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/positivity/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"degenerate hull", errors.ErrCodeDegenerateHull, "treated hull"},
		{"invalid param", errors.CodeInvalidParam, "covariates must not be empty"},
		{"non convergence", errors.ErrCodeOptimizerNonConvergence, "row 12"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestNew_StackIsPopulated(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeInternal, "test")
	require.NotNil(t, ae)
	assert.Contains(t, ae.Stack, "errors_test.go")
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeColumnNotFound, "column %q missing", "age")
	assert.Equal(t, `column "age" missing`, ae.Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.CodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("lp: infeasible problem")
	wrapped := errors.Wrap(root, errors.ErrCodeOptimizerLP, "chebyshev center")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeOptimizerLP, wrapped.Code)
	assert.Equal(t, "chebyshev center", wrapped.Message)
	assert.Equal(t, root, wrapped.Cause)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeDegenerateHull, "collinear")
	outer := errors.Wrap(inner, errors.CodeUnknown, "untreated hull")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeDegenerateHull, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeDegenerateHull, "collinear")
	outer := errors.Wrap(inner, errors.ErrCodeEmptyIntersection, "intersection")

	assert.Equal(t, errors.ErrCodeEmptyIntersection, outer.Code)
	assert.True(t, errors.IsDegenerateHull(outer), "inner code must stay reachable")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestError_Method
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithoutDetail(t *testing.T) {
	t.Parallel()

	s := errors.New(errors.ErrCodeNoHullProvided, "distance requested").Error()

	assert.Equal(t, "[GEO_003] distance requested", s)
}

func TestError_FormatWithDetailAndCause(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeDatasetParseFailed, "bad cell").
		WithDetail("row=3 column=x").
		WithCause(stderrors.New("unable to cast"))
	s := ae.Error()

	assert.True(t, strings.HasPrefix(s, "[POS_004] bad cell"))
	assert.Contains(t, s, "row=3 column=x")
	assert.Contains(t, s, "unable to cast")
}

func TestError_EmptyMessageDoesNotPanic(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeOK, "")
	assert.NotPanics(t, func() { _ = ae.Error() })
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWithDetail / TestWithCause
// ─────────────────────────────────────────────────────────────────────────────

func TestWithDetail_SetsDetailOnCopy(t *testing.T) {
	t.Parallel()

	original := errors.New(errors.CodeNotFound, "resource missing")
	detailed := original.WithDetailf("id=%d", 42)

	assert.Empty(t, original.Detail, "WithDetail must not mutate the original")
	assert.Equal(t, "id=42", detailed.Detail)
	assert.Equal(t, original.Code, detailed.Code)
}

func TestWithDetail_NilReceiverReturnsNil(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithCause_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()

	original := errors.New(errors.CodeInternal, "failure")
	cause := stderrors.New("cause")
	withCause := original.WithCause(cause)

	assert.Nil(t, original.Cause)
	assert.Equal(t, cause, withCause.Cause)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestIsCode / TestGetCode
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_NestedChain(t *testing.T) {
	t.Parallel()

	level0 := errors.New(errors.ErrCodeDimensionMismatch, "point")
	level1 := errors.Wrap(level0, errors.CodeInvalidParam, "validation failed")
	level2 := fmt.Errorf("check: %w", level1)

	assert.True(t, errors.IsCode(level2, errors.ErrCodeDimensionMismatch))
	assert.True(t, errors.IsCode(level2, errors.CodeInvalidParam))
	assert.False(t, errors.IsCode(level2, errors.CodeInternal))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.CodeInternal))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeUnsupportedMetric, errors.GetCode(errors.UnsupportedMetric("manhattan")))

	inner := errors.New(errors.ErrCodeDegenerateHull, "inner")
	outer := errors.Wrap(inner, errors.CodeInternal, "outer")
	assert.Equal(t, errors.CodeInternal, errors.GetCode(outer), "outermost code wins")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestConvenienceFactories
// ─────────────────────────────────────────────────────────────────────────────

func TestConvenienceFactories_ReturnCorrectCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      *errors.AppError
		wantCode errors.ErrorCode
		is       func(error) bool
	}{
		{"DegenerateHull", errors.DegenerateHull("flat"), errors.ErrCodeDegenerateHull, errors.IsDegenerateHull},
		{"EmptyIntersection", errors.EmptyIntersection("apart"), errors.ErrCodeEmptyIntersection, errors.IsEmptyIntersection},
		{"NoHullProvided", errors.NoHullProvided("nil"), errors.ErrCodeNoHullProvided, errors.IsNoHullProvided},
		{"NonConvergence", errors.NonConvergence(100, 1e-3), errors.ErrCodeOptimizerNonConvergence, errors.IsNonConvergence},
		{"UnsupportedMetric", errors.UnsupportedMetric("cosine"), errors.ErrCodeUnsupportedMetric, errors.IsUnsupportedMetric},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.NotNil(t, tc.err)
			assert.Equal(t, tc.wantCode, tc.err.Code)
			assert.NotEmpty(t, tc.err.Error())
			assert.True(t, tc.is(fmt.Errorf("wrapped: %w", tc.err)))
		})
	}
}

func TestDimensionMismatch_Detail(t *testing.T) {
	t.Parallel()

	ae := errors.DimensionMismatch(2, 3)
	assert.Equal(t, "want 2, got 3", ae.Detail)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestStdlibCompatibility
// ─────────────────────────────────────────────────────────────────────────────

func TestStdlib_ErrorsIs_MatchesSentinelByCode(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("assessment: %w", errors.EmptyIntersection("no interior"))

	assert.True(t, stderrors.Is(err, errors.ErrEmptyIntersection))
	assert.False(t, stderrors.Is(err, errors.ErrDegenerateHull))
}

func TestStdlib_ErrorsAs_ExtractsAppError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("ctx: %w", errors.NonConvergence(5, 0.1))

	var ae *errors.AppError
	require.True(t, stderrors.As(err, &ae))
	assert.Equal(t, errors.ErrCodeOptimizerNonConvergence, ae.Code)
}
