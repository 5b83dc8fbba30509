package resp

import (
	"encoding/json"
	"net/http"

	"github.com/satvikmishra44/taskhub/ecode"
)

// Exception is a failure response
type Exception struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"` // per field validation messages
}

func newException(status, code int, message string, errs ...any) *Exception {
	e := &Exception{Status: status, Code: code, Message: message}
	if len(errs) > 0 {
		e.Errors = errs[0]
	}
	return e
}

// Success writes a 200 response
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode writes a success response. A string payload is wrapped as
// {"message": ...}; no payload writes {"message": "ok"}.
func WithStatusCode(w http.ResponseWriter, status int, data ...any) {
	var body any = map[string]string{"message": ecode.Text(ecode.OK)}
	if len(data) > 0 && data[0] != nil {
		body = data[0]
		if msg, ok := body.(string); ok {
			body = map[string]string{"message": msg}
		}
	}
	writeJSON(w, status, body)
}

// Fail writes a failure response, a generic 500 when r is nil
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = InternalServer("")
	}
	out := *r
	if out.Status < 400 {
		out.Status = http.StatusBadRequest
	}
	if out.Code == 0 {
		out.Code = ecode.RequestErr
	}
	if out.Message == "" {
		out.Message = ecode.Text(out.Code)
	}
	writeJSON(w, out.Status, &out)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
