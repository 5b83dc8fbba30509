package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	digest, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if digest == "s3cret!" {
		t.Fatal("digest must not equal the plain password")
	}

	tests := []struct {
		password string
		want     bool
	}{
		{"s3cret!", true},
		{"wrong", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := VerifyPassword(digest, tt.password)
		if err != nil {
			t.Fatalf("VerifyPassword(%q) error: %v", tt.password, err)
		}
		if got != tt.want {
			t.Errorf("VerifyPassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	ok, err := VerifyPassword("not-a-bcrypt-digest", "s3cret!")
	if ok || err == nil {
		t.Errorf("VerifyPassword() = %v, %v; want false and an error", ok, err)
	}
}

func TestHashPasswordLength(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
	// multibyte characters count in bytes
	if _, err := HashPassword(strings.Repeat("é", 37)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong for 74 bytes, got %v", err)
	}
	if _, err := HashPassword(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Errorf("HashPassword() at the limit: %v", err)
	}
}
