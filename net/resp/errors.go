package resp

import (
	"net/http"

	"github.com/satvikmishra44/taskhub/ecode"
)

// BadRequest indicates a bad request.
func BadRequest(message string, data ...any) *Exception {
	return newException(http.StatusBadRequest, ecode.RequestErr, message, data...)
}

// UnAuthorized indicates that the request is unauthorized.
func UnAuthorized(message string, data ...any) *Exception {
	return newException(http.StatusUnauthorized, ecode.Unauthorized, message, data...)
}

// Forbidden indicates access is forbidden.
func Forbidden(message string, data ...any) *Exception {
	return newException(http.StatusForbidden, ecode.AccessDenied, message, data...)
}

// NotFound indicates that the requested resource is not found.
func NotFound(message string, data ...any) *Exception {
	return newException(http.StatusNotFound, ecode.NothingFound, message, data...)
}

// Conflict indicates a conflict error.
func Conflict(message string, data ...any) *Exception {
	return newException(http.StatusConflict, ecode.Conflict, message, data...)
}

// InternalServer indicates a server error.
func InternalServer(message string, data ...any) *Exception {
	return newException(http.StatusInternalServerError, ecode.ServerErr, message, data...)
}

// FromError converts a service error into a response.
// Causes of internal errors are never written to the client.
func FromError(err error) *Exception {
	code := ecode.CodeOf(err)
	if fields := ecode.FieldsOf(err); fields != nil {
		return newException(ecode.HTTPStatus(code), code, ecode.MessageOf(err), fields)
	}
	return newException(ecode.HTTPStatus(code), code, ecode.MessageOf(err))
}
