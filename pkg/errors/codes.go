package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal          ErrorCode = "COMMON_001"
	ErrCodeBadRequest        ErrorCode = "COMMON_002"
	ErrCodeNotFound          ErrorCode = "COMMON_005"
	ErrCodeValidation        ErrorCode = "COMMON_010"
	ErrCodeSerialization     ErrorCode = "COMMON_011"
	ErrCodeNotImplemented    ErrorCode = "COMMON_016"
	ErrCodeCanceled          ErrorCode = "COMMON_017"
	ErrCodeConfigurationLoad ErrorCode = "COMMON_018"
)

// Aliases used at call sites.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeNotImplemented = ErrCodeNotImplemented
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")
)

// Geometry Module Error Codes
const (
	ErrCodeDegenerateHull     ErrorCode = "GEO_001"
	ErrCodeEmptyIntersection  ErrorCode = "GEO_002"
	ErrCodeNoHullProvided     ErrorCode = "GEO_003"
	ErrCodeDimensionMismatch  ErrorCode = "GEO_004"
	ErrCodeUnboundedRegion    ErrorCode = "GEO_005"
	ErrCodeInteriorInfeasible ErrorCode = "GEO_006"
	ErrCodeNumericalFailure   ErrorCode = "GEO_007"
)

// Optimizer Module Error Codes
const (
	ErrCodeOptimizerNonConvergence ErrorCode = "OPT_001"
	ErrCodeOptimizerInfeasible     ErrorCode = "OPT_002"
	ErrCodeOptimizerLP             ErrorCode = "OPT_003"
)

// Positivity Module Error Codes
const (
	ErrCodeUnsupportedMetric  ErrorCode = "POS_001"
	ErrCodeColumnNotFound     ErrorCode = "POS_002"
	ErrCodeDatasetEmpty       ErrorCode = "POS_003"
	ErrCodeDatasetParseFailed ErrorCode = "POS_004"
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:          "internal error",
	ErrCodeBadRequest:        "invalid parameter",
	ErrCodeNotFound:          "resource not found",
	ErrCodeValidation:        "validation failed",
	ErrCodeSerialization:     "serialization failed",
	ErrCodeNotImplemented:    "not implemented",
	ErrCodeCanceled:          "operation canceled",
	ErrCodeConfigurationLoad: "configuration could not be loaded",

	ErrCodeDegenerateHull:     "fewer than d+1 affinely independent points",
	ErrCodeEmptyIntersection:  "hulls share no common interior",
	ErrCodeNoHullProvided:     "intersection polytope is not available",
	ErrCodeDimensionMismatch:  "point dimension does not match hull dimension",
	ErrCodeUnboundedRegion:    "halfspace system is unbounded",
	ErrCodeInteriorInfeasible: "interior point does not strictly satisfy every halfspace",
	ErrCodeNumericalFailure:   "numerical failure in hull construction",

	ErrCodeOptimizerNonConvergence: "optimizer exceeded its iteration cap",
	ErrCodeOptimizerInfeasible:     "optimizer constraints are infeasible",
	ErrCodeOptimizerLP:             "linear program could not be solved",

	ErrCodeUnsupportedMetric:  "unsupported distance metric",
	ErrCodeColumnNotFound:     "covariate column not found",
	ErrCodeDatasetEmpty:       "dataset has no rows",
	ErrCodeDatasetParseFailed: "dataset could not be parsed",
}

// ErrorCodeExitStatus maps ErrorCodes to process exit statuses used by the CLI.
var ErrorCodeExitStatus = map[ErrorCode]int{
	ErrCodeBadRequest:         2,
	ErrCodeValidation:         2,
	ErrCodeConfigurationLoad:  2,
	ErrCodeColumnNotFound:     2,
	ErrCodeDatasetEmpty:       2,
	ErrCodeDatasetParseFailed: 2,
	ErrCodeUnsupportedMetric:  2,
	ErrCodeDimensionMismatch:  2,

	ErrCodeDegenerateHull:     3,
	ErrCodeEmptyIntersection:  3,
	ErrCodeNoHullProvided:     3,
	ErrCodeUnboundedRegion:    3,
	ErrCodeInteriorInfeasible: 3,
	ErrCodeNumericalFailure:   3,

	ErrCodeOptimizerNonConvergence: 4,
	ErrCodeOptimizerInfeasible:     4,
	ErrCodeOptimizerLP:             4,
}

// ExitStatusForCode returns the process exit status for an ErrorCode.
func ExitStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeExitStatus[code]; ok {
		return status
	}
	return 1
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsInputError reports whether the code describes a problem with caller input
// rather than with the computation itself.
func IsInputError(code ErrorCode) bool {
	return ExitStatusForCode(code) == 2
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
