package cacherepositories

import "sync"

// entryLocks serializes operations on a single key. Locks are created on
// demand and dropped once nobody holds or waits for them.
type entryLocks struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func (l *entryLocks) lock(key string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*entryLock)
	}
	entry := l.locks[key]
	if entry == nil {
		entry = &entryLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *entryLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.locks)
}
