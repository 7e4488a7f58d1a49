package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryQuery    Category = "query"
	CategoryRequest  Category = "request"
	CategoryProtocol Category = "protocol"
	CategoryCLI      Category = "cli"
)

// QueryError is a structured error with an optional pointer into the input
// that caused it.
type QueryError struct {
	// Code is a unique error identifier (e.g., "Q010").
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Input is the offending text, such as a raw query string.
	Input string

	// Offset is the byte offset into Input, or -1.
	Offset int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Status is the HTTP status used when the error reaches a client.
	Status int

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *QueryError) Unwrap() error {
	return e.Wrapped
}

// HTTPStatus returns the status for the error, defaulting to 500.
func (e *QueryError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// WithInput records the offending input and the offset of the problem.
func (e *QueryError) WithInput(input string, offset int) *QueryError {
	e.Input = input
	e.Offset = offset
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *QueryError) WithSuggestion(s string) *QueryError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *QueryError) WithDetail(d string) *QueryError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *QueryError) Wrap(err error) *QueryError {
	e.Wrapped = err
	return e
}

// New creates a QueryError from a registered error code.
func New(code string) *QueryError {
	template, ok := registry[code]
	if !ok {
		return &QueryError{
			Code:    code,
			Message: "Unknown error",
			Offset:  -1,
		}
	}
	return &QueryError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		Status:   template.Status,
		Offset:   -1,
	}
}

// Newf creates a QueryError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *QueryError {
	return &QueryError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Offset:   -1,
	}
}

// FromError wraps err in a QueryError with the given code. An err that
// already is a QueryError is returned unchanged.
func FromError(err error, code string) *QueryError {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe
	}
	return New(code).Wrap(err)
}

// MalformedQuery returns a Q010 error pointing at the first bad percent
// escape in raw.
func MalformedQuery(raw string, err error) *QueryError {
	return New("Q010").
		WithInput(raw, badEscapeOffset(raw)).
		WithSuggestion("Percent-encode literal % signs as %25").
		Wrap(err)
}

func badEscapeOffset(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
			return i
		}
		i += 2
	}
	return -1
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
