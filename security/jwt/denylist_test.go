package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisDenylist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	d := NewRedisDenylist(client)
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("IsRevoked() = %v, %v before revoke", revoked, err)
	}

	if err := d.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("Revoke() error: %v", err)
	}
	revoked, err = d.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked() = %v, %v after revoke", revoked, err)
	}

	mr.FastForward(2 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Errorf("expected revocation to expire, got %v, %v", revoked, err)
	}
}

func TestRedisDenylistUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	if _, err := NewRedisDenylist(client).IsRevoked(context.Background(), "j"); err == nil {
		t.Error("expected error when redis is down")
	}
}

func TestMemoryDenylist(t *testing.T) {
	d := NewMemoryDenylist()
	now := time.Now()
	d.now = func() time.Time { return now }
	ctx := context.Background()

	_ = d.Revoke(ctx, "a", time.Minute)
	_ = d.Revoke(ctx, "b", 0)

	if ok, _ := d.IsRevoked(ctx, "a"); !ok {
		t.Error("expected a to be revoked")
	}
	if ok, _ := d.IsRevoked(ctx, "b"); ok {
		t.Error("zero ttl should not revoke")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := d.IsRevoked(ctx, "a"); ok {
		t.Error("expected revocation to lapse")
	}
}
