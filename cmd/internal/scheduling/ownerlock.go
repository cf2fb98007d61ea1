package scheduling

import "sync"

// ownerLocks serializes check-then-create per user. Two concurrent
// submissions for the same owner must not both pass the conflict check and
// both commit; reads never take this lock.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[int]*sync.Mutex)}
}

// acquire blocks until the owner's lock is held and returns the release func.
func (l *ownerLocks) acquire(userID int) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
