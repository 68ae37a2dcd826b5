package session

import (
	"sync"
)

// userLocks hands out one mutex per user id so connect/disconnect sequences
// for the same user serialize while different users proceed in parallel.
// Locks are never released back; the map grows with the active user set,
// which is bounded and small for a single-instance deployment.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uint]*sync.Mutex)}
}

// forUser returns the mutex dedicated to the given user, creating it on
// first use.
func (ul *userLocks) forUser(userID uint) *sync.Mutex {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	m, ok := ul.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		ul.locks[userID] = m
	}
	return m
}
