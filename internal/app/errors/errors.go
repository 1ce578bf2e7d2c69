package errors

import (
	"fmt"
)

// Error kinds reported by the transcription pipeline.
var (
	// ErrNotFound is returned when the input directory does not exist.
	ErrNotFound = New("not found")
	// ErrUnsupportedFormat marks files whose extension is outside the allow-list.
	// The collector skips such files; it is never surfaced as a batch failure.
	ErrUnsupportedFormat = New("unsupported audio format")
	// ErrTranscription covers model, decoding and provider availability failures.
	ErrTranscription = New("transcription failed")
	// ErrIO covers output write failures.
	ErrIO = New("io error")
	// ErrInvalidConfig is returned when configuration fails validation.
	ErrInvalidConfig = New("invalid configuration")
	// ErrProviderNotFound is returned for an unregistered provider name.
	ErrProviderNotFound = New("provider not found")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
	kind    *Error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Kindf creates an error of the given kind. The cause may be nil.
func Kindf(kind *Error, cause error, format string, args ...interface{}) error {
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   cause,
		kind:    kind,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.kind != nil && e.kind == t {
		return true
	}
	return e.kind == nil && t.kind == nil && e.message == t.message
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier string) error {
	return Kindf(ErrNotFound, nil, "%s not found: %s", itemType, identifier)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Kindf(ErrInvalidConfig, nil, "%s is invalid: %s", field, reason)
}

// IO wraps a filesystem failure on path.
func IO(err error, op string, path string) error {
	if err == nil {
		return nil
	}
	return Kindf(ErrIO, err, "%s %s", op, path)
}
