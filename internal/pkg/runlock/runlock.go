// Package runlock provides per-run advisory locks. A run can be computed,
// transitioned or frozen by at most one request at a time; a second request
// observes contention instead of interleaving. It also carries the freeze/backup
// guard: backups take the guard exclusively, freezes share it, so the two never
// overlap while independent freezes still can.
package runlock

import (
	"sync"
)

// Arena maps run ids to advisory lock holders.
type Arena struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewArena() *Arena {
	return &Arena{held: make(map[string]struct{})}
}

// TryAcquire attempts to take the lock for id without blocking. It returns a
// release func on success and false when another operation holds the lock.
func (a *Arena) TryAcquire(id string) (func(), bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, busy := a.held[id]; busy {
		return nil, false
	}
	a.held[id] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			delete(a.held, id)
		})
	}
	return release, true
}

// Held reports whether id is currently locked.
func (a *Arena) Held(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, busy := a.held[id]
	return busy
}

// Guard is the freeze/backup exclusion. Freeze operations take it shared,
// the scheduled backup takes it exclusive.
type Guard struct {
	mu sync.RWMutex
}

func NewGuard() *Guard {
	return &Guard{}
}

// TryShared takes the guard in shared mode (freeze side).
func (g *Guard) TryShared() (func(), bool) {
	if !g.mu.TryRLock() {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(g.mu.RUnlock) }, true
}

// TryExclusive takes the guard exclusively (backup side).
func (g *Guard) TryExclusive() (func(), bool) {
	if !g.mu.TryLock() {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(g.mu.Unlock) }, true
}
