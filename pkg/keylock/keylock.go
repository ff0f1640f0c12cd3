package keylock

import "sync"

// KeyLock serializes operations that share a key. Metadata mutations for one
// video id must not interleave; operations on distinct ids stay independent.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*entry),
	}
}

func (k *KeyLock) Lock(key string) {
	k.mu.Lock()
	e, exists := k.locks[key]
	if !exists {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *KeyLock) Unlock(key string) {
	k.mu.Lock()
	e, exists := k.locks[key]
	if !exists {
		k.mu.Unlock()
		panic("keylock: unlock of unheld key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
