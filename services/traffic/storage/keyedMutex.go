package storage

import "sync"

// keyedMutex hands out one mutex per key so that writers of the same key are linearized
// while writers of different keys proceed independently
type keyedMutex struct {
	mut   sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

func (km *keyedMutex) lock(key string) func() {
	km.mut.Lock()
	l, found := km.locks[key]
	if !found {
		l = &sync.Mutex{}
		km.locks[key] = l
	}
	km.mut.Unlock()

	l.Lock()

	return l.Unlock
}
