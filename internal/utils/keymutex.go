package utils

import "sync"

// KeyMutex serializes writers per key (booking id, gateway order id).
// Single-process deployment; webhook replays and admin updates for the same
// entity must not interleave between read and write. Entries are reference
// counted and removed on the final unlock, so the map stays bounded by the
// number of keys currently contended, not by every key ever seen.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{locks: map[string]*keyLock{}}
}

func (k *KeyMutex) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()
	l.mu.Lock()
}

func (k *KeyMutex) Unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	if l != nil {
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
	}
	k.mu.Unlock()
	if l != nil {
		l.mu.Unlock()
	}
}
