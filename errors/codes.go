package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Pipeline errors
const (
	// ErrCodeModelInit indicates the transcription model could not be loaded.
	// Retryable: a later request may construct the model successfully.
	ErrCodeModelInit ErrorCode = "MODEL_INIT_FAILED"
	// ErrCodeTranscription indicates the model invocation itself failed.
	ErrCodeTranscription ErrorCode = "TRANSCRIPTION_FAILED"
)

// Availability errors (retryable)
const (
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeNotImplemented indicates the endpoint is a deliberate stub.
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeModelInit:       true,
	ErrCodeTimeout:         true,
	ErrCodeExternalService: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
