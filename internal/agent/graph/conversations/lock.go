package conversations

import "sync"

// Locker serializes orchestration turns per conversation id. Entries are
// refcounted and removed when the last waiter releases, so the map does not
// grow with the number of conversations ever seen.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// Lock blocks until the conversation is free and returns the release func.
func (l *Locker) Lock(conversationID string) func() {
	l.mu.Lock()
	e, ok := l.locks[conversationID]
	if !ok {
		e = &lockEntry{}
		l.locks[conversationID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, conversationID)
		}
		l.mu.Unlock()
	}
}
