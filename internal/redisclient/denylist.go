package redisclient

import (
	"context"
	"time"
)

const denylistPrefix = "agenda:revoked:"

// Denylist keeps logged-out token ids until the token would have expired.
// Keys expire on their own, so the set never needs sweeping.
type Denylist struct {
	c *Client
}

func NewDenylist(c *Client) *Denylist {
	return &Denylist{c: c}
}

func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.c.redisdb.Set(ctx, denylistPrefix+jti, "1", ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.c.redisdb.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
