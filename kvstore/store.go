// Package kvstore holds the string-keyed stores the wardrobe is persisted
// to. Backends are an in-process map, a JSON file and a postgres table
// through gorm. A ristretto read-through cache can wrap any of them.
package kvstore

import "context"

// Store is a string key to string value store. Get reports a missing key
// with ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type namespaced struct {
	store  Store
	prefix string
}

// Namespace prefixes every key, used to keep one wardrobe per user in a shared store.
func Namespace(store Store, prefix string) Store {
	return &namespaced{store: store, prefix: prefix}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.store.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.store.Delete(ctx, n.prefix+key)
}
