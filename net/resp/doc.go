// Package resp writes the JSON envelopes returned by the API.
//
// Successful responses carry the payload as-is:
//
//	resp.Success(w, task)
//	resp.WithStatusCode(w, http.StatusCreated, task)
//	resp.Success(w, "Task deleted")   // {"message":"Task deleted"}
//
// Failures carry a business code and a message:
//
//	{"code": -404, "message": "task not found"}
//
// Service errors are converted with FromError:
//
//	resp.Fail(w, resp.FromError(err))
package resp
