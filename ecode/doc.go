// Package ecode defines the error codes returned by the API and the typed
// error that carries them from the service layer to the transport layer.
//
// Codes follow the convention:
//   - 0: Success (OK)
//   - -400: Invalid request
//   - -401: Not authenticated
//   - -403: Access denied
//   - -404: Resource not found
//   - -409: Resource conflict
//   - -500: Internal server error
//
// Services return *ecode.Error values:
//
//	if user == nil {
//	    return nil, ecode.NotFound(ecode.NotExist("user"))
//	}
//
// and the transport maps them to HTTP statuses:
//
//	status := ecode.HTTPStatus(ecode.CodeOf(err))
package ecode
