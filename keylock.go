package verify

import "sync"

// keyedMutex provides per-key exclusive sections. The verification store
// uses it to serialize the read-merge-write upsert sequence for a given
// discord_id; without it two concurrent upserts can both read "not found"
// and the last writer's merge base silently wins.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*keyLock{}}
}

// Lock acquires the mutex for key and returns the matching unlock. Entries
// are reference counted so the map does not grow with every key ever seen.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
