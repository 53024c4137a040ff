// Package locks provides keyed mutexes for per-user serialization of
// check-then-write sequences.
package locks

import "sync"

// Keyed hands out one mutex per key. Mutexes are never evicted; the key
// space here is bounded by active user IDs.
type Keyed struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewKeyed constructs a Keyed lock set.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[uint64]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *Keyed) Lock(key uint64) func() {
	k.mu.Lock()
	entry := k.locks[key]
	if entry == nil {
		entry = &sync.Mutex{}
		k.locks[key] = entry
	}
	k.mu.Unlock()

	entry.Lock()
	return entry.Unlock
}
