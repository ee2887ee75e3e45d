package errors

import (
	"evroute/internal/errors"
)

// ErrorInfo is the serialized form of a failed algorithm run
type ErrorInfo struct {
	Code    string `json:"code"`              // Error code, e.g., "INFEASIBLE"
	Message string `json:"message"`           // Short error message
	Details string `json:"details,omitempty"` // Detailed error information (optional)
}

// ToErrorInfo converts err into its serialized form. Nil stays nil.
func ToErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}

	var se *SolveError
	if errors.As(err, &se) {
		return &ErrorInfo{
			Code:    se.ErrorCode(),
			Message: se.Message(),
			Details: err.Error(),
		}
	}

	return &ErrorInfo{
		Code:    KindUnknown.String(),
		Message: err.Error(),
	}
}
