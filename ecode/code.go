package ecode

import "net/http"

// Error codes
const (
	OK           = 0
	RequestErr   = -400
	Unauthorized = -401
	AccessDenied = -403
	NothingFound = -404
	Conflict     = -409
	ServerErr    = -500
)

var messages = map[int]string{
	OK:           "ok",
	RequestErr:   "Invalid request",
	Unauthorized: "Not authenticated",
	AccessDenied: "Access denied",
	NothingFound: "Resource not found",
	Conflict:     "Resource conflict",
	ServerErr:    "Internal server error",
}

// Text returns the default message for a code
func Text(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[ServerErr]
}

// HTTPStatus maps a code to its HTTP status
func HTTPStatus(code int) int {
	switch code {
	case OK:
		return http.StatusOK
	case RequestErr:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case AccessDenied:
		return http.StatusForbidden
	case NothingFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
