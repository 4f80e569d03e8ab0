package errors

import (
	stderrors "errors"
	"fmt"
)

// Category groups error codes.
type Category string

const (
	CategoryBinding   Category = "binding"
	CategoryRuntime   Category = "runtime"
	CategoryConfig    Category = "config"
	CategoryTransport Category = "transport"
	CategoryCLI       Category = "cli"
)

// Error is a coded error with an explanation and a fix hint.
type Error struct {
	// Code is a unique identifier such as "SB001".
	Code string

	Category Category

	// Message is a short description.
	Message string

	// Detail explains the failure.
	Detail string

	// Suggestion tells the user how to fix it.
	Suggestion string

	// Example shows the correct usage.
	Example string

	// Wrapped is the underlying error.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion sets the hint.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithExample sets the example.
func (e *Error) WithExample(ex string) *Error {
	e.Example = ex
	return e
}

// WithDetail sets the explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// Wrap sets the underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered code.
func New(code string) *Error {
	tmpl, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{
		Code:       code,
		Category:   tmpl.Category,
		Message:    tmpl.Message,
		Detail:     tmpl.Detail,
		Suggestion: tmpl.Suggestion,
		Example:    tmpl.Example,
	}
}

// Newf creates an uncoded Error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Classify maps err to the first registered code whose sentinel it wraps.
// Unrecognized errors get code SB099. A nil err returns nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	for _, m := range matchers {
		if m.match(err) {
			return New(m.code).Wrap(err)
		}
	}
	return New("SB099").Wrap(err)
}
