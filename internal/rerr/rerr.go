// Package rerr defines the structured error kinds shared across the routing
// and scheduling core. Every public operation returns a plain Go error;
// callers that need to branch on failure kind use errors.Is/As against the
// sentinels below, never string matching.
package rerr

import (
	"errors"
	"fmt"
)

// Kind tags a structured error with a machine-readable category.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidGeometry   Kind = "invalid_geometry"
	KindNonWGS84          Kind = "non_wgs84"
	KindMatrixTooLarge    Kind = "matrix_too_large"
	KindBackendUnavailable Kind = "backend_unavailable"
	KindSolverInfeasible  Kind = "solver_infeasible"
	KindSolverTimeout     Kind = "solver_timeout"
	KindEmptyInput        Kind = "empty_input"
	KindIOError           Kind = "io_error"
)

// Sentinels for errors.Is comparisons. wrapped via Wrap/Newf below.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidGeometry    = errors.New("invalid geometry")
	ErrNonWGS84           = errors.New("non-WGS84 geometry")
	ErrMatrixTooLarge     = errors.New("matrix too large")
	ErrBackendUnavailable = errors.New("routing backend unavailable")
	ErrSolverInfeasible   = errors.New("solver found no feasible solution")
	ErrSolverTimeout      = errors.New("solver time budget exhausted")
	ErrEmptyInput         = errors.New("empty input")
	ErrIOError            = errors.New("io error")
)

var kindSentinel = map[Kind]error{
	KindInvalidInput:       ErrInvalidInput,
	KindInvalidGeometry:    ErrInvalidGeometry,
	KindNonWGS84:           ErrNonWGS84,
	KindMatrixTooLarge:     ErrMatrixTooLarge,
	KindBackendUnavailable: ErrBackendUnavailable,
	KindSolverInfeasible:   ErrSolverInfeasible,
	KindSolverTimeout:      ErrSolverTimeout,
	KindEmptyInput:         ErrEmptyInput,
	KindIOError:            ErrIOError,
}

// Error is a structured, human-readable error carrying a machine tag.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return kindSentinel[e.Kind]
}

// Is lets errors.Is(err, rerr.ErrXxx) match regardless of wrapping depth.
func (e *Error) Is(target error) bool {
	return kindSentinel[e.Kind] == target
}

// New builds a structured error with no wrapped cause.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds a structured error around an underlying cause.
func Wrap(kind Kind, op, message string, err error) error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf extracts the Kind from a structured error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
