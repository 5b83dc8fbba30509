package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRequestCounters(t *testing.T) {
	c := New("")

	c.RequestStarted()
	if got := testutil.ToFloat64(c.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	c.RequestFinished(http.MethodGet, "/api/v1/tasks/:id", http.StatusOK, 20*time.Millisecond)
	c.RequestStarted()
	c.RequestFinished(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(c.inFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues("GET", "/api/v1/tasks/:id", "200")); got != 1 {
		t.Errorf("requests{200} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("requests{unmatched} = %v, want 1", got)
	}
}

func TestDomainCounters(t *testing.T) {
	c := New("")
	c.LoginAttempt("success")
	c.LoginAttempt("success")
	c.LoginAttempt("wrong_password")
	c.TaskCreated()

	if got := testutil.ToFloat64(c.logins.WithLabelValues("success")); got != 2 {
		t.Errorf("logins{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.tasks); got != 1 {
		t.Errorf("tasks created = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	c := New("")
	c.TaskCreated()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(string(body), "taskhub_tasks_created_total 1") {
		t.Errorf("exposition missing task counter:\n%s", body)
	}
}
