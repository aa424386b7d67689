package services

import (
	"errors"
	"fmt"
)

// ErrorCategory decides how a failure is surfaced: client input errors are
// never retried, transient provider errors may be retried by the caller,
// permanent provider errors are fatal.
type ErrorCategory string

const (
	CategoryClientInput       ErrorCategory = "client_input"
	CategoryProviderTransient ErrorCategory = "provider_transient"
	CategoryProviderPermanent ErrorCategory = "provider_permanent"
)

// Stable error codes reported to callers.
const (
	CodeUnsupportedType     = "UNSUPPORTED_TYPE"
	CodeFileTooLarge        = "FILE_TOO_LARGE"
	CodeEmptyFile           = "EMPTY_FILE"
	CodeInvalidEncoding     = "INVALID_ENCODING"
	CodeExtractionFailed    = "EXTRACTION_FAILED"
	CodeInsufficientText    = "INSUFFICIENT_TEXT"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeProviderRejected    = "PROVIDER_REJECTED"
	CodeIndexUnavailable    = "INDEX_UNAVAILABLE"
	CodeIndexError          = "INDEX_ERROR"
	CodeDimensionMismatch   = "DIMENSION_MISMATCH"
)

type PipelineError struct {
	Code     string
	Category ErrorCategory
	Message  string
	Err      error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func newClientError(code, format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Code:     code,
		Category: CategoryClientInput,
		Message:  fmt.Sprintf(format, args...),
	}
}

func newTransientError(code string, err error, format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Code:     code,
		Category: CategoryProviderTransient,
		Message:  fmt.Sprintf(format, args...),
		Err:      err,
	}
}

func newPermanentError(code string, err error, format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Code:     code,
		Category: CategoryProviderPermanent,
		Message:  fmt.Sprintf(format, args...),
		Err:      err,
	}
}

// AsPipelineError unwraps err looking for a PipelineError.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ErrorCode returns the stable code of err, or empty string.
func ErrorCode(err error) string {
	if pe, ok := AsPipelineError(err); ok {
		return pe.Code
	}
	return ""
}

// IsRetryable reports whether the caller may retry the failed call.
func IsRetryable(err error) bool {
	pe, ok := AsPipelineError(err)
	return ok && pe.Category == CategoryProviderTransient
}
