package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Runs against a real server only when TEST_REDIS_ADDR is set.
func TestDenylist_RevokeAndExpire(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	c := New(Config{Addr: addr})
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	d := NewDenylist(c)
	jti := uuid.NewString()

	revoked, err := d.IsRevoked(ctx, jti)
	if err != nil || revoked {
		t.Fatalf("fresh jti must not be revoked, revoked=%v err=%v", revoked, err)
	}

	if err := d.Revoke(ctx, jti, time.Second); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	revoked, err = d.IsRevoked(ctx, jti)
	if err != nil || !revoked {
		t.Fatalf("expected revoked, revoked=%v err=%v", revoked, err)
	}

	ttl, err := c.Raw().TTL(ctx, denylistPrefix+jti).Result()
	if err != nil || ttl <= 0 || ttl > time.Second {
		t.Fatalf("expected key to carry the token ttl, got %v (%v)", ttl, err)
	}
}
