package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/satvikmishra44/taskhub/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := "data:\n  driver: memory\nlogger:\n  level: 2\nauth:\n  jwt:\n    secret: cli-secret\nstorage:\n  bucket: " +
		filepath.ToSlash(filepath.Join(dir, "uploads")) + "\n"
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if info["version"] == "" || info["go_version"] == "" {
		t.Errorf("unexpected version info %v", info)
	}
}

func TestSeedAdmin(t *testing.T) {
	p := writeConfig(t)

	out, err := execute(t, "-c", p, "seed-admin", "--email", "Boss@Taskhub.io", "--name", "Boss", "--password", "secret1")
	if err != nil {
		t.Fatalf("seed-admin error = %v", err)
	}
	if !strings.Contains(out, "admin boss@taskhub.io provisioned") {
		t.Errorf("output = %q", out)
	}
}

func TestSeedAdminRequiresEmail(t *testing.T) {
	p := writeConfig(t)
	if _, err := execute(t, "-c", p, "seed-admin"); err == nil {
		t.Fatal("seed-admin without an email succeeded")
	}
}

func TestSeedAdminMissingConfig(t *testing.T) {
	if _, err := execute(t, "-c", filepath.Join(t.TempDir(), "absent.yaml"), "seed-admin", "--email", "a@b.io"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestMergeSeed(t *testing.T) {
	base := &config.SeedAdmin{Email: "admin@email.com", Name: "Administrator"}
	got := mergeSeed(base, &config.SeedAdmin{Password: "secret1"})
	if got.Email != "admin@email.com" || got.Name != "Administrator" || got.Password != "secret1" {
		t.Errorf("mergeSeed() = %+v", got)
	}
	if base.Password != "" {
		t.Error("mergeSeed modified the configured seed")
	}
}
