package wardrobe

import (
	"context"
	"sync"
	"time"

	"wardrobeapi/kvstore"
	"wardrobeapi/persistence"

	"github.com/sirupsen/logrus"
)

const inboxSize = 20

// Registry hands out one Store per user, each persisted under the
// "user:{id}:" key namespace of a shared kv store.
type Registry struct {
	mu     sync.Mutex
	base   kvstore.Store
	log    *logrus.Logger
	now    func() time.Time
	stores map[string]*Store
	inbox  map[string]*Inbox
	onOpen []func(userID string, store *Store)
}

func NewRegistry(base kvstore.Store, log *logrus.Logger) *Registry {
	return &Registry{
		base:   base,
		log:    log,
		now:    time.Now,
		stores: map[string]*Store{},
		inbox:  map[string]*Inbox{},
	}
}

// WithClock sets the clock of stores opened afterwards.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

func UserNamespace(userID string) string {
	return "user:" + userID + ":"
}

// OnOpen registers fn to run once for every store the registry opens.
func (r *Registry) OnOpen(fn func(userID string, store *Store)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onOpen = append(r.onOpen, fn)
}

// For returns the user's store, loading it on first use.
func (r *Registry) For(ctx context.Context, userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.stores[userID]; ok {
		return store
	}

	log := r.log.WithField("user", userID)
	adapter := persistence.NewAdapter(kvstore.Namespace(r.base, UserNamespace(userID)), log).WithClock(r.now)
	inbox := NewInbox(inboxSize)
	store := Open(ctx, adapter, log, Options{
		Notifier: Notifiers(LogNotifier{Log: log}, inbox),
		Now:      r.now,
	})
	r.stores[userID] = store
	r.inbox[userID] = inbox
	for _, fn := range r.onOpen {
		fn(userID, store)
	}
	return store
}

// Notifications drains the user's pending notifications.
func (r *Registry) Notifications(userID string) []Notification {
	r.mu.Lock()
	inbox, ok := r.inbox[userID]
	r.mu.Unlock()
	if !ok {
		return []Notification{}
	}
	return inbox.Drain()
}
