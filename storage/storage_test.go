package storage

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

func TestFileSystemRoundTrip(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystem() error: %v", err)
	}

	obj, err := fs.Put("tasks/a.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if obj.Path != "tasks/a.pdf" || obj.Size != 8 {
		t.Errorf("unexpected object %+v", obj)
	}

	rc, err := fs.GetStream(`tasks\a.pdf`)
	if err != nil {
		t.Fatalf("GetStream() error: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "%PDF-1.4" {
		t.Errorf("unexpected content %q", data)
	}

	if err := fs.Delete("tasks/a.pdf"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := fs.GetStream("tasks/a.pdf"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := fs.Delete("tasks/a.pdf"); err != nil {
		t.Errorf("deleting a missing file should succeed, got %v", err)
	}
}

func TestFileSystemRejectsTraversal(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystem() error: %v", err)
	}
	// Clean collapses leading "..", so the object stays inside the root
	full, err := fs.GetFullPath("../../etc/passwd")
	if err != nil {
		t.Fatalf("GetFullPath() error: %v", err)
	}
	if !strings.HasPrefix(full, fs.Folder) {
		t.Errorf("path escaped root: %s", full)
	}
	if _, err := fs.GetFullPath(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		`uploads\tasks\a.pdf`: "uploads/tasks/a.pdf",
		"/tasks/a.pdf":        "tasks/a.pdf",
		"tasks//a.pdf":        "tasks/a.pdf",
	}
	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestObjectPath(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	p := ObjectPath("tasks", "Quarterly Report.PDF", now)

	if !strings.HasPrefix(p, "tasks/1700000000123-") {
		t.Errorf("unexpected prefix in %q", p)
	}
	if !strings.HasSuffix(p, "-quarterly-report.pdf") {
		t.Errorf("unexpected suffix in %q", p)
	}
	if got := OriginalName(p); got != "quarterly-report.pdf" {
		t.Errorf("OriginalName() = %q", got)
	}
	if a, b := ObjectPath("tasks", "a.pdf", now), ObjectPath("tasks", "a.pdf", now); a == b {
		t.Error("expected distinct paths for the same name and instant")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Provider: "filesystem", Bucket: "./uploads"}, false},
		{Config{Provider: "filesystem"}, true},
		{Config{Provider: "aws-s3", ID: "a", Secret: "b", Bucket: "c", Region: "us-east-1"}, false},
		{Config{Provider: "aws-s3", ID: "a", Secret: "b", Bucket: "c"}, true},
		{Config{Provider: "minio", ID: "a", Secret: "b", Bucket: "c"}, true},
		{Config{Provider: "ftp"}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
		}
	}
}
