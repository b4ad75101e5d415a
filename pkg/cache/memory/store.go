package memorycache

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type Config struct {
	// CostLimit bounds the summed cost of all entries, zero means unbounded.
	CostLimit  int64
	CountLimit int
	// AgeLimit drops entries not accessed for longer than this, zero disables it.
	AgeLimit time.Duration
}

type entry[V any] struct {
	value      V
	cost       int64
	accessedAt time.Time
}

// Store is a cost bounded LRU store. Eviction always removes the least
// recently used entry first and runs synchronously until the total cost fits.
type Store[V any] struct {
	config    Config
	lock      sync.Mutex
	lru       *simplelru.LRU[string, *entry[V]]
	totalCost int64
	evicted   func(key string, value V)
	now       func() time.Time
}

func New[V any](config Config) *Store[V] {
	countLimit := config.CountLimit
	if countLimit <= 0 {
		countLimit = math.MaxInt32
	}

	s := &Store[V]{config: config, now: time.Now}

	// simplelru only rejects non-positive sizes
	s.lru, _ = simplelru.NewLRU[string, *entry[V]](countLimit, s.onEvict)
	return s
}

// OnEvict registers a callback invoked for every entry leaving the store.
func (s *Store[V]) OnEvict(callback func(key string, value V)) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.evicted = callback
}

func (s *Store[V]) Get(key string) (value V, found bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	e, found := s.lru.Get(key)
	if !found {
		return value, false
	}

	e.accessedAt = s.now()
	return e.value, true
}

func (s *Store[V]) Contains(key string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.lru.Contains(key)
}

func (s *Store[V]) Set(key string, value V, cost int64) {
	if cost < 0 {
		cost = 0
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if previous, found := s.lru.Peek(key); found {
		// replacing an entry does not go through the eviction callback
		s.totalCost -= previous.cost
	}

	s.lru.Add(key, &entry[V]{value, cost, s.now()})
	s.totalCost += cost

	s.trimToCost(s.config.CostLimit)
}

func (s *Store[V]) Remove(key string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.lru.Remove(key)
}

func (s *Store[V]) RemoveAll() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.lru.Purge()
}

func (s *Store[V]) TotalCost() int64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.totalCost
}

func (s *Store[V]) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.lru.Len()
}

// Keys returns keys ordered from the least to the most recently used.
func (s *Store[V]) Keys() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.lru.Keys()
}

func (s *Store[V]) TrimToCost(cost int64) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if cost <= 0 {
		s.lru.Purge()
		return
	}

	s.trimToCost(cost)
}

func (s *Store[V]) TrimToAge(age time.Duration) {
	if age <= 0 {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	deadline := s.now().Add(-age)
	for {
		_, oldest, found := s.lru.GetOldest()
		if !found || oldest.accessedAt.After(deadline) {
			return
		}

		s.lru.RemoveOldest()
	}
}

// StartMonitors trims entries exceeding the age limit until ctx is done.
func (s *Store[V]) StartMonitors(ctx context.Context, interval time.Duration) {
	if s.config.AgeLimit <= 0 || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.TrimToAge(s.config.AgeLimit)
			}
		}
	}()
}

func (s *Store[V]) trimToCost(limit int64) {
	if limit <= 0 {
		return
	}

	for s.totalCost > limit && s.lru.Len() > 0 {
		s.lru.RemoveOldest()
	}
}

// onEvict runs with the lock held.
func (s *Store[V]) onEvict(key string, e *entry[V]) {
	s.totalCost -= e.cost
	if s.evicted != nil {
		s.evicted(key, e.value)
	}
}
