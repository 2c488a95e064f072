package directory

import (
	"context"
	"time"

	"github.com/geocoder89/agenda/internal/cache"
)

// Cached remembers successful lookups. Misses and failures always go through
// to the inner directory.
type Cached struct {
	inner Directory
	hits  *cache.Cache[Employee]
}

func NewCached(inner Directory, ttl time.Duration) *Cached {
	return &Cached{inner: inner, hits: cache.New[Employee](ttl)}
}

func (c *Cached) Lookup(ctx context.Context, externalID string) (Employee, error) {
	if emp, ok := c.hits.Get(externalID); ok {
		return emp, nil
	}

	emp, err := c.inner.Lookup(ctx, externalID)
	if err != nil {
		return Employee{}, err
	}

	c.hits.Set(externalID, emp)
	return emp, nil
}
