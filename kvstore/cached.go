package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
)

const cachedEntryTTL = 10 * time.Minute

// CachedStore is a read-through ristretto cache in front of another store.
// The backing store stays the source of truth: writes go there first and a
// cache miss always falls back to it.
type CachedStore struct {
	backing Store
	cache   *cache.Cache[string]
}

func NewCachedStore(backing Store) (*CachedStore, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 26,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)

	return &CachedStore{
		backing: backing,
		cache:   cache.New[string](ristrettoStore),
	}, nil
}

func (c *CachedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if value, err := c.cache.Get(ctx, key); err == nil {
		return value, true, nil
	}

	value, ok, err := c.backing.Get(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	c.remember(ctx, key, value)
	return value, true, nil
}

func (c *CachedStore) Set(ctx context.Context, key, value string) error {
	if err := c.backing.Set(ctx, key, value); err != nil {
		// the backing write failed, make sure readers do not see the new value
		_ = c.cache.Delete(ctx, key)
		return err
	}
	c.remember(ctx, key, value)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, key string) error {
	err := c.backing.Delete(ctx, key)
	_ = c.cache.Delete(ctx, key)
	return err
}

// remember waits for ristretto to apply the write so the next Get sees it.
// A rejected write drops any older cached value; it only costs a later miss.
func (c *CachedStore) remember(ctx context.Context, key, value string) {
	err := c.cache.Set(ctx, key, value,
		store.WithCost(int64(len(value))+1),
		store.WithExpiration(cachedEntryTTL),
		store.WithSynchronousSet(),
	)
	if err != nil {
		_ = c.cache.Delete(ctx, key)
	}
}
