package calculator

import "errors"

var (
	// ErrInvalidParameter is returned for a bad span, lookback, or tail count.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInsufficientHistory is returned when a series is shorter than the warm-up.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrDivisionByZero is returned for corrupt (non-positive) prices or zero ratios.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrAlignmentFailure is returned when a series shares no dates with the benchmark.
	ErrAlignmentFailure = errors.New("alignment failure")
)

// Reason maps an engine error to a short status label.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrAlignmentFailure):
		return "alignment_failure"
	default:
		return "error"
	}
}
