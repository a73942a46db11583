package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wardrobeapi/wardrobe"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/sirupsen/logrus"
)

// relative ranges move with the clock, so memoised summaries expire quickly
const summaryTTL = time.Minute

// Service memoises summaries per user, range token and store revision. Any
// item or outfit change, or a wardrobe-update event, bumps the revision and
// so forces a recomputation; Watch evicts the summaries left behind.
type Service struct {
	cache *cache.Cache[*Summary]
	log   *logrus.Logger

	mu   sync.Mutex
	keys map[string]map[string]uint64 // user -> cache key -> revision
}

func NewService(log *logrus.Logger) (*Service, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 22,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &Service{
		cache: cache.New[*Summary](ristretto_store.NewRistretto(ristrettoCache)),
		log:   log,
		keys:  map[string]map[string]uint64{},
	}, nil
}

func cacheKey(userID, token string, revision uint64) string {
	return fmt.Sprintf("%s|%s|%d", userID, token, revision)
}

// Summary returns the statistics of the store's active time range.
func (s *Service) Summary(ctx context.Context, userID string, st *wardrobe.Store) (Summary, error) {
	token, start, end, err := st.ActiveTimeRange()
	if err != nil {
		return Summary{}, err
	}
	revision := st.Revision()
	key := cacheKey(userID, token, revision)

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
		return *cached, nil
	}

	summary := Compute(st.Snapshot(), st.WearDatesInRange(ctx, start, end))
	summary.TimeRange = token
	summary.Start = start
	summary.End = end
	summary.Revision = revision

	if err := s.cache.Set(ctx, key, &summary, store.WithExpiration(summaryTTL), store.WithCost(1)); err != nil {
		s.log.WithError(err).WithField("user", userID).Warn("failed to cache stats summary")
	}
	s.remember(userID, key, revision)
	return summary, nil
}

func (s *Service) remember(userID, key string, revision uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[userID] == nil {
		s.keys[userID] = map[string]uint64{}
	}
	s.keys[userID][key] = revision
}

// evictBefore drops the user's summaries memoised at a revision older than
// revision and returns how many went.
func (s *Service) evictBefore(ctx context.Context, userID string, revision uint64) int {
	s.mu.Lock()
	var stale []string
	for key, at := range s.keys[userID] {
		if at < revision {
			stale = append(stale, key)
			delete(s.keys[userID], key)
		}
	}
	s.mu.Unlock()

	for _, key := range stale {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.WithError(err).WithField("key", key).Debug("failed to evict stats summary")
		}
	}
	return len(stale)
}

// Watch evicts a store's memoised summaries once its revision moves past
// them. Until then they would only wait for their TTL.
func (s *Service) Watch(userID string, st *wardrobe.Store) {
	st.Subscribe(func(e wardrobe.Event) {
		evicted := s.evictBefore(context.Background(), userID, e.Revision)
		if e.Kind == wardrobe.EventWardrobeUpdate || evicted > 0 {
			s.log.WithFields(logrus.Fields{"user": userID, "revision": e.Revision, "evicted": evicted}).Debug("stats summaries invalidated")
		}
	})
}
