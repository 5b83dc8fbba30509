package ecode

import (
	"errors"
	"fmt"
	"sort"
)

const (
	requiredMsg = "is required"
	invalidMsg  = "is invalid"
	existMsg    = "already exists"
	notExistMsg = "not found"
)

// FieldIsRequired returns field required message
func FieldIsRequired(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], requiredMsg)
	}
	return requiredMsg
}

// FieldIsInvalid returns field invalid message
func FieldIsInvalid(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], invalidMsg)
	}
	return invalidMsg
}

// AlreadyExist returns already exist message
func AlreadyExist(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], existMsg)
	}
	return existMsg
}

// NotExist returns not exist message
func NotExist(k ...string) string {
	if len(k) > 0 {
		return fmt.Sprintf("%s %s", k[0], notExistMsg)
	}
	return notExistMsg
}

// Error is an error carrying an API code.
// Err holds the underlying cause and is never exposed to clients.
type Error struct {
	Code    int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error { return e.Err }

func newError(code int, message string, cause error) *Error {
	if message == "" {
		message = Text(code)
	}
	return &Error{Code: code, Message: message, Err: cause}
}

// BadRequest creates a request error
func BadRequest(message string) *Error { return newError(RequestErr, message, nil) }

// Invalid creates a request error from per-field validation messages.
// The message is the first field message in key order.
func Invalid(fields map[string]string) *Error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	message := ""
	if len(keys) > 0 {
		message = fields[keys[0]]
	}
	e := newError(RequestErr, message, nil)
	e.Fields = fields
	return e
}

// NotAuthenticated creates an authentication error
func NotAuthenticated(message string) *Error { return newError(Unauthorized, message, nil) }

// Forbidden creates an access denied error
func Forbidden(message string) *Error { return newError(AccessDenied, message, nil) }

// NotFound creates a not found error
func NotFound(message string) *Error { return newError(NothingFound, message, nil) }

// Duplicate creates a conflict error
func Duplicate(message string) *Error { return newError(Conflict, message, nil) }

// Internal wraps an unexpected failure
func Internal(message string, cause error) *Error { return newError(ServerErr, message, cause) }

// CodeOf returns the code carried by err, ServerErr for foreign errors and OK for nil.
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ServerErr
}

// Is reports whether err carries code
func Is(err error, code int) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf returns the client facing message for err
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return Text(ServerErr)
}

// FieldsOf returns the per-field messages carried by err, if any
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) && len(e.Fields) > 0 {
		return e.Fields
	}
	return nil
}
