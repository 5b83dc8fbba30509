package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/config"
	"github.com/satvikmishra44/taskhub/ctxutil"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/service"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/metrics"
	"github.com/satvikmishra44/taskhub/security/jwt"
	"github.com/satvikmishra44/taskhub/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServices(t *testing.T) *service.Service {
	t.Helper()
	st, err := storage.NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystem() error = %v", err)
	}
	return service.New(&service.Options{
		Data:     data.NewMemory(),
		Storage:  st,
		Tokens:   jwt.NewTokenManager("middleware-secret", 0),
		Denylist: jwt.NewMemoryDenylist(),
	})
}

func login(t *testing.T, svc *service.Service, email string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.Auth.Register(ctx, &structs.RegisterBody{Name: "Ann", Email: email, Password: "secret1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	res, err := svc.Auth.Login(ctx, &structs.LoginBody{Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return res.Token
}

func adminToken(t *testing.T, svc *service.Service) string {
	t.Helper()
	ctx := context.Background()
	seed := &config.SeedAdmin{Email: "admin@taskhub.io", Name: "Root", Password: "secret1"}
	if _, _, err := svc.Auth.SeedAdmin(ctx, seed); err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	res, err := svc.Auth.Login(ctx, &structs.LoginBody{Email: seed.Email, Password: seed.Password})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return res.Token
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

func TestBearer(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":    "abc",
		"bearer  abc ":  "abc",
		"Basic abc":     "",
		"Bearer":        "",
		"":              "",
		"abc":           "",
		" Bearer x.y.z": "x.y.z",
	}
	for header, want := range tests {
		if got := bearer(header); got != want {
			t.Errorf("bearer(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newServices(t)
	token := login(t, svc, "ann@example.com")

	r := gin.New()
	r.GET("/me", Authenticate(svc.Auth), func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			t.Error("session missing in handler")
			c.Status(http.StatusTeapot)
			return
		}
		fromCtx, _ := ctxutil.Lookup[*structs.Session](c.Request.Context(), ctxutil.SessionKey)
		if fromCtx != session {
			t.Error("request context does not carry the session")
		}
		c.String(http.StatusOK, session.Actor.Name)
	})

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "Missing token"},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, "Missing token"},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized, "Invalid token"},
		{"valid", "Bearer " + token, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(r, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.message != "" {
				if got := message(t, rec); got != tt.message {
					t.Errorf("message = %q, want %q", got, tt.message)
				}
			} else if rec.Body.String() != "Ann" {
				t.Errorf("body = %q, want Ann", rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	svc := newServices(t)
	userToken := login(t, svc, "ann@example.com")
	admin := adminToken(t, svc)

	r := gin.New()
	r.GET("/admin", Authenticate(svc.Auth), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	if rec := serve(r, req); rec.Code != http.StatusForbidden {
		t.Errorf("user status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	if rec := serve(r, req); rec.Code != http.StatusNoContent {
		t.Errorf("admin status = %d, want 204", rec.Code)
	}
}

func TestRequireAdminWithoutSession(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestTrace(t *testing.T) {
	r := gin.New()
	r.Use(Trace())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = ctxutil.GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	got := rec.Header().Get(TraceHeader)
	if got == "" || got != seen {
		t.Errorf("trace header %q, handler saw %q", got, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceHeader, "upstream-id")
	rec = serve(r, req)
	if got := rec.Header().Get(TraceHeader); got != "upstream-id" {
		t.Errorf("trace header = %q, want upstream-id", got)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := serve(r, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	if rec := serve(r, req); rec.Code != http.StatusForbidden {
		t.Errorf("foreign preflight status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec = serve(r, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("same origin request got %d with headers %v", rec.Code, rec.Header())
	}
}

func TestCORSAllowAll(t *testing.T) {
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	if got := serve(r, req).Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("panic value leaked: %s", rec.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	collector := metrics.New("")
	r := gin.New()
	r.Use(Metrics(collector))
	r.GET("/tasks/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/tasks/abc", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rec := serve(collector.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`taskhub_http_requests_total{method="GET",route="/tasks/:id",status="200"} 1`,
		`taskhub_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
	if strings.Contains(body, "/tasks/abc") {
		t.Error("raw path used as a label")
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(Logger("/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	if rec := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil)); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec := serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil)); rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
