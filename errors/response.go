package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON structure returned to clients. The single
// "detail" field carries the user-facing message; internal cause chains
// and codes are logged server-side, never sent to the caller.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Detail: e.Message}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
