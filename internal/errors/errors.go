// Package errors holds the error-chain lookups shared by the domain error
// kinds and instance validation. Wrapping goes through github.com/pkg/errors
// directly so callers keep its stack traces.
package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
