package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error.
type ErrorType string

const (
	ErrorTypeSessionCreate       ErrorType = "SESSION_CREATE_FAILED"
	ErrorTypeSubmission          ErrorType = "SUBMISSION_FATAL"
	ErrorTypeUnsupportedEncoding ErrorType = "UNSUPPORTED_ENCODING"
	ErrorTypeInvalidDimensions   ErrorType = "INVALID_DIMENSIONS"
	ErrorTypeInvalidFormat       ErrorType = "INVALID_FORMAT"
	ErrorTypeInterrupted         ErrorType = "INTERRUPTED"
	ErrorTypePanic               ErrorType = "SESSION_PANIC"
	ErrorTypeTransport           ErrorType = "TRANSPORT_UNAVAILABLE"
	ErrorTypeNotFound            ErrorType = "NOT_FOUND"
	ErrorTypeInternal            ErrorType = "INTERNAL_ERROR"
)

// AppError represents an application error with additional context.
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	RC      int32                  `json:"rc,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type, so that
// errors.Is(err, &AppError{Type: ErrorTypeSessionCreate}) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError.
func New(errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
	}
}

// Wrap wraps an existing error.
func Wrap(err error, errType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// NewSessionCreateError reports a null sender handle from the transport.
func NewSessionCreateError(name string) *AppError {
	return New(ErrorTypeSessionCreate, fmt.Sprintf("transport returned no sender for %q", name)).
		WithDetails(map[string]interface{}{"sender": name})
}

// NewSubmissionError reports a fatal return code from a frame submission.
func NewSubmissionError(rc int32, frame int64, label string) *AppError {
	err := New(ErrorTypeSubmission, fmt.Sprintf("send failed at frame %d: %s (rc=%d)", frame, label, rc))
	err.RC = rc
	return err.WithDetails(map[string]interface{}{"frame": frame})
}

// NewUnsupportedEncodingError reports an encoding the pattern generator
// does not know.
func NewUnsupportedEncodingError(encoding string) *AppError {
	return New(ErrorTypeUnsupportedEncoding, fmt.Sprintf("unsupported encoding %s", encoding))
}

// NewInvalidDimensionsError reports a width/height the encoding cannot carry.
func NewInvalidDimensionsError(encoding string, width, height int, reason string) *AppError {
	return New(ErrorTypeInvalidDimensions, fmt.Sprintf("%s %dx%d: %s", encoding, width, height, reason)).
		WithDetails(map[string]interface{}{"width": width, "height": height})
}

// NewInvalidFormatError reports a malformed video format (rate or name).
func NewInvalidFormatError(message string) *AppError {
	return New(ErrorTypeInvalidFormat, message)
}

// NewInterruptedError wraps the context error that stopped a session.
func NewInterruptedError(err error) *AppError {
	return Wrap(err, ErrorTypeInterrupted, "session interrupted")
}

// NewPanicError converts a recovered panic value into an error.
func NewPanicError(recovered interface{}) *AppError {
	return New(ErrorTypePanic, fmt.Sprintf("session panicked: %v", recovered))
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(resource string) *AppError {
	return New(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource))
}

// WrapInternalError wraps an error as internal error.
func WrapInternalError(err error, message string) *AppError {
	return Wrap(err, ErrorTypeInternal, message)
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	_, ok := GetAppError(err)
	return ok
}

// GetAppError extracts AppError from an error chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether any AppError in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	return stderrors.Is(err, &AppError{Type: errType})
}
