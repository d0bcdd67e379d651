package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryMount      Category = "mount"
	CategoryRef        Category = "ref"
	CategoryMiddleware Category = "middleware"
	CategoryPlacement  Category = "placement"
	CategoryConfig     Category = "config"
	CategoryProtocol   Category = "protocol"
)

// FloatError is a structured error with a code, explanation and suggestion.
type FloatError struct {
	// Code is a unique error identifier (e.g., "F001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *FloatError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *FloatError) Unwrap() error {
	return e.Wrapped
}

// Is matches another *FloatError with the same code.
func (e *FloatError) Is(target error) bool {
	t, ok := target.(*FloatError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *FloatError) WithSuggestion(s string) *FloatError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *FloatError) WithDetail(d string) *FloatError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *FloatError) Wrap(err error) *FloatError {
	e.Wrapped = err
	return e
}

// New creates a FloatError from a registered error code.
func New(code string) *FloatError {
	template, ok := registry[code]
	if !ok {
		return &FloatError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &FloatError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new FloatError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *FloatError {
	return &FloatError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a FloatError.
func FromError(err error, code string) *FloatError {
	if err == nil {
		return nil
	}
	var fe *FloatError
	if stderrors.As(err, &fe) {
		return fe
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, a FloatError with the given code.
func HasCode(err error, code string) bool {
	var fe *FloatError
	if !stderrors.As(err, &fe) {
		return false
	}
	return fe.Code == code
}
