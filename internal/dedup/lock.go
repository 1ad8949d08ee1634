package dedup

import "sync"

// sessionLocks hands out one mutex per live key so the find-then-write in
// Decide is serialized per session. Entries are reference counted and
// removed as soon as the last holder releases.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{held: make(map[string]*lockEntry)}
}

func (l *sessionLocks) lock(key string) {
	l.mu.Lock()
	entry, ok := l.held[key]
	if !ok {
		entry = &lockEntry{}
		l.held[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *sessionLocks) unlock(key string) {
	l.mu.Lock()
	entry := l.held[key]
	entry.refs--
	if entry.refs == 0 {
		delete(l.held, key)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
