package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/satvikmishra44/taskhub/ctxutil"
	"github.com/satvikmishra44/taskhub/logging/logger/config"
	"github.com/sirupsen/logrus"
)

func newTestLogger(t *testing.T, buf *bytes.Buffer) *Logger {
	t.Helper()
	l := &Logger{Logger: logrus.New()}
	cleanup, err := l.Init(&config.Config{
		Level:  int(logrus.DebugLevel),
		Format: "json",
		Desensitization: &config.Desensitization{
			Enabled:         true,
			SensitiveFields: []string{"password", "token"},
		},
	})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	t.Cleanup(cleanup)
	l.SetOutput(buf)
	return l
}

func TestEntryCarriesTraceID(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(t, &buf)
	l.SetVersion("1.0.0")

	ctx := ctxutil.SetTraceID(context.Background(), "trace-123")
	l.Infof(ctx, "task %s created", "t1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if entry["trace_id"] != "trace-123" {
		t.Errorf("expected trace_id, got %v", entry["trace_id"])
	}
	if entry["version"] != "1.0.0" {
		t.Errorf("expected version, got %v", entry["version"])
	}
	if entry["msg"] != "task t1 created" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
}

func TestSensitiveFieldsMasked(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(t, &buf)

	l.entryFromContext(context.Background()).WithFields(logrus.Fields{
		"email":        "a@b.c",
		"password":     "hunter2",
		"access_token": "eyJ...",
	}).Info("login")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	if entry["password"] != "******" {
		t.Errorf("password not masked: %v", entry["password"])
	}
	if entry["access_token"] != "******" {
		t.Errorf("token not masked: %v", entry["access_token"])
	}
	if entry["email"] != "a@b.c" {
		t.Errorf("email should pass through: %v", entry["email"])
	}
}

func TestDesensitizeNested(t *testing.T) {
	d := NewDesensitizer(&config.Desensitization{SensitiveFields: []string{"secret"}, MaskChar: "#", MaskLength: 3})
	out := d.DesensitizeFields(logrus.Fields{"cfg": map[string]any{"jwt_secret": "x", "port": 1}})

	nested, ok := out["cfg"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map, got %T", out["cfg"])
	}
	if nested["jwt_secret"] != "###" || nested["port"] != 1 {
		t.Errorf("unexpected nested result %v", nested)
	}
}

func TestKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(t, &buf)

	l.Info(context.Background(), "task created", "task_id", "t1", "attachments", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line: %v", err)
	}
	if entry["msg"] != "task created" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
	if entry["task_id"] != "t1" || entry["attachments"] != float64(2) {
		t.Errorf("expected key/value fields, got %v", entry)
	}
}
