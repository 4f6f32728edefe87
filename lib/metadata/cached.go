package metadata

import (
	"context"
	"slices"
	"time"

	"github.com/ether/revpanel/lib/models/revision"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	applicationName string
	revision        string
}

func (k cacheKey) String() string {
	return k.applicationName + "\x00" + k.revision
}

// CachedFetcher remembers lookups for a while and collapses concurrent
// lookups of the same revision into one call of the wrapped Fetcher. Only
// successful lookups are cached.
type CachedFetcher struct {
	next  Fetcher
	cache *expirable.LRU[cacheKey, revision.RevisionMetadata]
	group singleflight.Group
}

func NewCachedFetcher(next Fetcher, size int, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:  next,
		cache: expirable.NewLRU[cacheKey, revision.RevisionMetadata](size, nil, ttl),
	}
}

func (c *CachedFetcher) RevisionMetadata(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
	key := cacheKey{applicationName, rev}
	if m, ok := c.cache.Get(key); ok {
		return cloneMetadata(m), nil
	}

	result := c.group.DoChan(key.String(), func() (interface{}, error) {
		// detached so one caller giving up does not fail the others
		m, err := c.next.RevisionMetadata(context.WithoutCancel(ctx), applicationName, rev)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, *m)
		return *m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneMetadata(res.Val.(revision.RevisionMetadata)), nil
	}
}

// Invalidate drops a cached revision. Dropping the named revision also drops
// the cached "latest" entry, which may point at it.
func (c *CachedFetcher) Invalidate(applicationName string, rev string) {
	c.cache.Remove(cacheKey{applicationName, rev})
	c.cache.Remove(cacheKey{applicationName, ""})
}

func (c *CachedFetcher) Len() int {
	return c.cache.Len()
}

func cloneMetadata(m revision.RevisionMetadata) *revision.RevisionMetadata {
	out := m
	out.Tags = slices.Clone(m.Tags)
	if m.Date != nil {
		d := *m.Date
		out.Date = &d
	}
	return &out
}
