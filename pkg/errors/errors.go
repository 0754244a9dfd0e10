// Package errors provides the unified error type and factory functions for the
// positivity engine. Every layer (geometry, optimizer, assessment, CLI) uses
// AppError as the single carrier for structured error information, so that
// callers can branch on a stable code and the CLI can map it to an exit status.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Stack capture
// ─────────────────────────────────────────────────────────────────────────────

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout the module.
// It supports Go 1.13+ wrapping so errors.Is / errors.As / errors.Unwrap work
// across package boundaries.
//
// Usage:
//
//	return errors.New(errors.ErrCodeDegenerateHull, "treated hull").WithDetail("3 points in 3 dimensions")
//	return errors.Wrap(err, errors.ErrCodeOptimizerLP, "chebyshev center")
type AppError struct {
	// Code uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description.
	Message string

	// Detail carries supplementary context such as dimensions or row indices.
	Detail string

	// Cause is the underlying error, if any.
	Cause error

	// Stack is the call stack captured at creation. It is not part of Error().
	Stack string
}

// Error implements the error interface.
// Format: "[<code>] <message>: <detail>"
func (e *AppError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code.String(), e.Message)
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *AppError carrying the same code, which lets
// the sentinel values below be used with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builder methods
// ─────────────────────────────────────────────────────────────────────────────

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithDetailf is WithDetail with fmt.Sprintf formatting.
func (e *AppError) WithDetailf(format string, args ...interface{}) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with fmt.Sprintf formatting of the message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil.
//
// When err is already an *AppError and code is CodeUnknown the original code is
// preserved.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError in err's chain.
// CodeOK is returned for nil and CodeUnknown when no AppError is present.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// As is errors.As, re-exported so callers need a single errors import.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// IsDegenerateHull reports whether err signals a hull with too few
// affinely independent points.
func IsDegenerateHull(err error) bool { return IsCode(err, ErrCodeDegenerateHull) }

// IsEmptyIntersection reports whether err signals that the two hulls share no
// common interior.
func IsEmptyIntersection(err error) bool { return IsCode(err, ErrCodeEmptyIntersection) }

// IsNoHullProvided reports whether err signals a missing polytope.
func IsNoHullProvided(err error) bool { return IsCode(err, ErrCodeNoHullProvided) }

// IsNonConvergence reports whether err signals an optimizer hitting its cap.
func IsNonConvergence(err error) bool { return IsCode(err, ErrCodeOptimizerNonConvergence) }

// IsUnsupportedMetric reports whether err signals a rejected distance metric.
func IsUnsupportedMetric(err error) bool { return IsCode(err, ErrCodeUnsupportedMetric) }

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factory functions
// ─────────────────────────────────────────────────────────────────────────────

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidParam,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}

// DegenerateHull constructs an ErrCodeDegenerateHull AppError.
func DegenerateHull(message string) *AppError {
	return &AppError{
		Code:    ErrCodeDegenerateHull,
		Message: message,
		Stack:   captureStack(1),
	}
}

// EmptyIntersection constructs an ErrCodeEmptyIntersection AppError.
func EmptyIntersection(message string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyIntersection,
		Message: message,
		Stack:   captureStack(1),
	}
}

// NoHullProvided constructs an ErrCodeNoHullProvided AppError.
func NoHullProvided(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNoHullProvided,
		Message: message,
		Stack:   captureStack(1),
	}
}

// DimensionMismatch constructs an ErrCodeDimensionMismatch AppError with the
// expected and actual dimensions in Detail.
func DimensionMismatch(want, got int) *AppError {
	return &AppError{
		Code:    ErrCodeDimensionMismatch,
		Message: "dimension mismatch",
		Detail:  fmt.Sprintf("want %d, got %d", want, got),
		Stack:   captureStack(1),
	}
}

// NonConvergence constructs an ErrCodeOptimizerNonConvergence AppError.
func NonConvergence(iterations int, gap float64) *AppError {
	return &AppError{
		Code:    ErrCodeOptimizerNonConvergence,
		Message: "optimizer did not converge",
		Detail:  fmt.Sprintf("iterations=%d gap=%.3e", iterations, gap),
		Stack:   captureStack(1),
	}
}

// UnsupportedMetric constructs an ErrCodeUnsupportedMetric AppError.
func UnsupportedMetric(metric string) *AppError {
	return &AppError{
		Code:    ErrCodeUnsupportedMetric,
		Message: "unsupported distance metric",
		Detail:  fmt.Sprintf("metric=%q", metric),
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Sentinels for errors.Is
// ─────────────────────────────────────────────────────────────────────────────

var (
	ErrDegenerateHull          = &AppError{Code: ErrCodeDegenerateHull, Message: DefaultMessageForCode(ErrCodeDegenerateHull)}
	ErrEmptyIntersection       = &AppError{Code: ErrCodeEmptyIntersection, Message: DefaultMessageForCode(ErrCodeEmptyIntersection)}
	ErrNoHullProvided          = &AppError{Code: ErrCodeNoHullProvided, Message: DefaultMessageForCode(ErrCodeNoHullProvided)}
	ErrOptimizerNonConvergence = &AppError{Code: ErrCodeOptimizerNonConvergence, Message: DefaultMessageForCode(ErrCodeOptimizerNonConvergence)}
	ErrUnsupportedMetric       = &AppError{Code: ErrCodeUnsupportedMetric, Message: DefaultMessageForCode(ErrCodeUnsupportedMetric)}
)

//Personal.AI order the ending
