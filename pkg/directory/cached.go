package directory

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/muninboard/pkg/cache"
	"github.com/matzehuels/muninboard/pkg/munin"
	"github.com/matzehuels/muninboard/pkg/observability"
)

// DefaultSharedTimeout bounds a backend call shared by concurrent lookups.
const DefaultSharedTimeout = 30 * time.Second

// Cached wraps a Directory with a byte cache. Concurrent lookups of the same
// key share one backend call. Misses ("no such node") are cached like hits;
// errors are never cached.
//
// A shared call is detached from the cancellation of the caller that started
// it and bounded by SharedTimeout instead. Each caller still returns as soon
// as its own context is done.
type Cached struct {
	Directory     Directory
	Cache         cache.Cache
	Keyer         cache.Keyer
	NodeTTL       time.Duration
	ListTTL       time.Duration
	SharedTimeout time.Duration

	group singleflight.Group
}

// NewCached wraps dir. A nil cache disables caching and a nil keyer selects
// the default keyer.
func NewCached(dir Directory, c cache.Cache, keyer cache.Keyer) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{
		Directory: dir,
		Cache:     c,
		Keyer:     keyer,
		NodeTTL:   cache.TTLNode,
		ListTTL:   cache.TTLList,

		SharedTimeout: DefaultSharedTimeout,
	}
}

// FindPlugins serves the record of host from the cache, or looks it up.
func (c *Cached) FindPlugins(ctx context.Context, host string) (*munin.NodeRecord, error) {
	key := c.Keyer.NodeKey(host)

	var rec *munin.NodeRecord
	if c.load(ctx, key, "node", &rec) {
		return rec, nil
	}

	v, err := c.share(ctx, key, func(ctx context.Context) (any, error) {
		rec, err := c.Directory.FindPlugins(ctx, host)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, "node", rec, c.NodeTTL)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*munin.NodeRecord), nil
}

// ListNodes serves the listing for pattern from the cache, or looks it up.
func (c *Cached) ListNodes(ctx context.Context, pattern string) ([]munin.NodeRef, error) {
	key := c.Keyer.ListKey(pattern)

	var nodes []munin.NodeRef
	if c.load(ctx, key, "list", &nodes) {
		return nodes, nil
	}

	v, err := c.share(ctx, key, func(ctx context.Context) (any, error) {
		nodes, err := c.Directory.ListNodes(ctx, pattern)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, "list", nodes, c.ListTTL)
		return nodes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]munin.NodeRef), nil
}

// IndexNode stores rec in the wrapped directory and drops the cached records
// the node may have been looked up under, along with the full listing.
// Listings cached for narrower patterns expire after ListTTL. It returns
// ErrReadOnly when the wrapped directory cannot be written.
func (c *Cached) IndexNode(ctx context.Context, rec munin.NodeRecord) error {
	ix, ok := c.Directory.(Indexer)
	if !ok {
		return ErrReadOnly
	}
	if err := ix.IndexNode(ctx, rec); err != nil {
		return err
	}
	for _, host := range []string{rec.Host, munin.ShortName(rec.Host), rec.NodeKey()} {
		if err := c.Invalidate(ctx, host); err != nil {
			return err
		}
	}
	return c.Cache.Delete(ctx, c.Keyer.ListKey(AllNodes))
}

// share runs fn once for all concurrent callers of key. fn gets a context
// that keeps the values of ctx but not its cancellation.
func (c *Cached) share(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	timeout := c.SharedTimeout
	if timeout <= 0 {
		timeout = DefaultSharedTimeout
	}
	ch := c.group.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return fn(sctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Invalidate drops the cached record of host.
func (c *Cached) Invalidate(ctx context.Context, host string) error {
	return c.Cache.Delete(ctx, c.Keyer.NodeKey(host))
}

func (c *Cached) load(ctx context.Context, key, keyType string, out any) bool {
	data, hit, err := c.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (c *Cached) store(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Cache.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
}

// Ensure Cached implements Directory.
var _ Directory = (*Cached)(nil)
