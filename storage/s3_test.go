package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"
)

// s3Stub answers path style requests for bucket "attachments". Only
// tasks/present.pdf exists; any other bucket is missing.
func s3Stub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s3Error := func(status int, code string) {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message><RequestId>r1</RequestId></Error>`, code, code)
		}
		p := path.Clean(r.URL.Path)
		if !strings.HasPrefix(p, "/attachments/") {
			s3Error(http.StatusNotFound, "NoSuchBucket")
			return
		}
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && p == "/attachments/tasks/present.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			io.WriteString(w, "%PDF-1.4")
		case r.Method == http.MethodGet:
			s3Error(http.StatusNotFound, "NoSuchKey")
		default:
			s3Error(http.StatusForbidden, "AccessDenied")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newMinioStub(t *testing.T, bucket string) Interface {
	t.Helper()
	st, err := NewStorage(&Config{
		Provider: "minio",
		ID:       "id",
		Secret:   "secret",
		Bucket:   bucket,
		Endpoint: s3Stub(t).URL,
	})
	if err != nil {
		t.Fatalf("NewStorage() error: %v", err)
	}
	return st
}

func TestOSSAdapterMissingObject(t *testing.T) {
	st := newMinioStub(t, "attachments")

	rc, err := st.GetStream("tasks/present.pdf")
	if err != nil {
		t.Fatalf("GetStream(present) error: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4" {
		t.Errorf("unexpected content %q", data)
	}

	if _, err := st.GetStream("tasks/deleted.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetStream(missing) error = %v, want ErrNotFound", err)
	}
	if err := st.Delete("tasks/deleted.pdf"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestOSSAdapterMissingBucket(t *testing.T) {
	st := newMinioStub(t, "elsewhere")

	_, err := st.GetStream("tasks/present.pdf")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("GetStream() error = %v, want a non ErrNotFound error", err)
	}
}
