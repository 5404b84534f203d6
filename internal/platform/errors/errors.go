package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Domain is the ErrorInfo domain of sect engine errors.
const Domain = "sect.ascension"

// Error is a coded engine error. Sentinels are built with New and compared
// by code, so a decorated copy still matches its sentinel under errors.Is.
type Error struct {
	Code    Code
	Message string
	// Metadata names the ids involved, such as disciple_id or task_id.
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New returns a sentinel error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches code to a lower-level failure.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithMetadata returns an error carrying the given ids.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: maps.Clone(metadata)}
}

// WrapWithMetadata combines Wrap and WithMetadata.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{Code: code, Message: message, Metadata: maps.Clone(metadata), Cause: cause}
}

// GetCode returns the code of the first *Error in err's chain, or
// CodeUnknown.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
