package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/satvikmishra44/taskhub/config"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/security/jwt"
	"github.com/satvikmishra44/taskhub/storage"
)

const (
	testSecret     = "test-secret"
	reservedEmail  = "root@taskhub.io"
	testPassword   = "secret1"
	pdfContentType = "application/pdf"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type fixture struct {
	svc      *Service
	data     *data.Data
	dir      string
	recorder *countingRecorder
}

type countingRecorder struct {
	logins  map[string]int
	created int
}

func (r *countingRecorder) LoginAttempt(result string) { r.logins[result]++ }
func (r *countingRecorder) TaskCreated()               { r.created++ }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, data.NewMemory())
}

func newFixtureWith(t *testing.T, d *data.Data) *fixture {
	t.Helper()
	dir := t.TempDir()
	st, err := storage.NewFileSystem(dir)
	if err != nil {
		t.Fatalf("NewFileSystem() error = %v", err)
	}
	rec := &countingRecorder{logins: map[string]int{}}
	svc := New(&Options{
		Data:     d,
		Storage:  st,
		Tokens:   jwt.NewTokenManager(testSecret, 0),
		Denylist: jwt.NewMemoryDenylist(),
		Auth: &config.Auth{
			JWT:       &config.JWT{Secret: testSecret},
			SeedAdmin: &config.SeedAdmin{Email: reservedEmail},
		},
		Attachment:   &config.Attachment{MaxFiles: 3, MaxSize: 1 << 20},
		PublicPrefix: "/uploads",
		Recorder:     rec,
	})
	return &fixture{svc: svc, data: d, dir: dir, recorder: rec}
}

// register creates a user and returns it as an actor
func (f *fixture) register(t *testing.T, name, email string) structs.Actor {
	t.Helper()
	v, err := f.svc.Auth.Register(context.Background(), &structs.RegisterBody{
		Name: name, Email: email, Password: testPassword,
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return actorOf(t, f, v.ID)
}

// admin provisions an administrator
func (f *fixture) admin(t *testing.T) structs.Actor {
	t.Helper()
	v, _, err := f.svc.Auth.SeedAdmin(context.Background(), &config.SeedAdmin{
		Email: "admin@taskhub.io", Name: "Admin", Password: testPassword,
	})
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	return actorOf(t, f, v.ID)
}

func actorOf(t *testing.T, f *fixture, hex string) structs.Actor {
	t.Helper()
	id, err := parseID(hex, "user")
	if err != nil {
		t.Fatalf("parseID(%q) error = %v", hex, err)
	}
	u, err := f.data.Users.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	return structs.Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}

func (f *fixture) createTask(t *testing.T, admin structs.Actor, title string, assignee structs.Actor) *structs.TaskView {
	t.Helper()
	v, err := f.svc.Task.Create(context.Background(), admin, taskBody(title, assignee), []FileInput{pdf("brief.pdf")})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", title, err)
	}
	return v
}

func (f *fixture) storedFiles(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.Walk(f.dir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return err
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return n
}

func taskBody(title string, assignee structs.Actor) *structs.CreateTaskBody {
	return &structs.CreateTaskBody{
		Title:       title,
		Description: "details",
		DueDate:     "2026-12-31",
		AssignedTo:  assignee.ID.Hex(),
	}
}

func fileInput(name, contentType string, content []byte) FileInput {
	return FileInput{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func pdf(name string) FileInput {
	return fileInput(name, pdfContentType, pdfBytes)
}

func wantCode(t *testing.T, err error, code int) {
	t.Helper()
	if got := ecode.CodeOf(err); got != code {
		t.Fatalf("error = %v (code %d), want code %d", err, got, code)
	}
}
