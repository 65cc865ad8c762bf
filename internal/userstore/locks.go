package userstore

import "sync"

// keyLocks hands out one mutex per key so read-modify-write cycles on a
// user's documents never interleave, while different users proceed in parallel.
type keyLocks struct {
	globalMu sync.RWMutex
	locks    map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// lock acquires the mutex of key and returns its unlock function.
func (l *keyLocks) lock(key string) func() {
	// Fast path: the mutex usually exists already
	l.globalMu.RLock()
	mu, ok := l.locks[key]
	l.globalMu.RUnlock()

	if !ok {
		l.globalMu.Lock()
		if mu, ok = l.locks[key]; !ok {
			mu = &sync.Mutex{}
			l.locks[key] = mu
		}
		l.globalMu.Unlock()
	}

	mu.Lock()
	return mu.Unlock
}
