package errors

import (
	"fmt"

	"evroute/internal/errors"
)

// Kind classifies why a solve did not produce a usable route
type Kind int

const (
	// KindUnknown is any failure that is not one of the solver outcomes below
	KindUnknown Kind = iota
	// KindMalformedInstance means nodes or vehicle fields are missing or invalid
	KindMalformedInstance
	// KindInfeasible means no route satisfies capacity/battery under the solver's search policy
	KindInfeasible
	// KindTimeout means the wall-clock budget ran out
	KindTimeout
)

// String returns the error code used in logs and result documents
func (k Kind) String() string {
	switch k {
	case KindMalformedInstance:
		return "MALFORMED_INSTANCE"
	case KindInfeasible:
		return "INFEASIBLE"
	case KindTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// SolveError is a solver outcome that is reported as a value, never a panic
type SolveError struct {
	kind    Kind
	message string
	details string
}

// NewSolveError creates a new solve error
func NewSolveError(kind Kind, message, details string) *SolveError {
	return &SolveError{
		kind:    kind,
		message: message,
		details: details,
	}
}

// Error implements the error interface
func (e *SolveError) Error() string {
	if e.details == "" {
		return e.message
	}

	return e.message + ": " + e.details
}

// Is matches any SolveError of the same kind, so errors.Is works after WithDetails.
func (e *SolveError) Is(target error) bool {
	t, ok := target.(*SolveError)
	if !ok {
		return false
	}

	return t.kind == e.kind
}

// Kind returns the error kind
func (e *SolveError) Kind() Kind {
	return e.kind
}

// ErrorCode returns the stable error code
func (e *SolveError) ErrorCode() string {
	return e.kind.String()
}

// Message returns the short error message
func (e *SolveError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *SolveError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *SolveError) WithDetails(details string) *SolveError {
	return &SolveError{
		kind:    e.kind,
		message: e.message,
		details: details,
	}
}

// WithDetailsf adds formatted detail information
func (e *SolveError) WithDetailsf(format string, args ...any) *SolveError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// Predefined error types
var (
	ErrMalformedInstance = NewSolveError(KindMalformedInstance, "malformed instance", "")
	ErrInfeasible        = NewSolveError(KindInfeasible, "no feasible route", "")
	ErrTimeout           = NewSolveError(KindTimeout, "time budget exhausted", "")
)

// KindOf returns the kind of the first SolveError in err's chain.
func KindOf(err error) Kind {
	var se *SolveError
	if errors.As(err, &se) {
		return se.kind
	}

	return KindUnknown
}

// IsMalformed reports whether err is a malformed instance error
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedInstance)
}

// IsInfeasible reports whether err is an infeasibility error
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrInfeasible)
}

// IsTimeout reports whether err is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
