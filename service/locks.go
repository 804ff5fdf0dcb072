package service

import (
	"sync"

	"github.com/google/uuid"
)

// lockTable serializes mutating operations per round. Row locks guard
// the database state, but the lock table also covers the pause and
// access providers so concurrent callers observe a consistent order.
type lockTable struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// acquire locks the mutex for the given round and returns its unlock
// function. Round mutexes are never evicted; rounds are few and small.
func (t *lockTable) acquire(id uuid.UUID) func() {
	t.mu.Lock()
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
