package usecase

import (
	"context"
	"sort"
	"sync"
)

// lockArena hands out one mutex per account number. Entries are reference
// counted and dropped once nobody holds or waits on them, so the map only ever
// contains accounts with in-flight operations.
type lockArena struct {
	mu    sync.Mutex
	locks map[string]*arenaLock
}

type arenaLock struct {
	ch   chan struct{}
	refs int
}

func newLockArena() *lockArena {
	return &lockArena{locks: make(map[string]*arenaLock)}
}

// Acquire locks every key in ascending order and returns the function that
// releases them. It gives up with ctx's error once ctx is done, releasing
// whatever it had already taken.
func (a *lockArena) Acquire(ctx context.Context, keys ...string) (func(), error) {
	ordered := uniqueSorted(keys)
	held := make([]string, 0, len(ordered))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			a.unlock(held[i])
		}
	}

	for _, k := range ordered {
		l := a.ref(k)
		select {
		case l.ch <- struct{}{}:
			held = append(held, k)
		case <-ctx.Done():
			a.unref(k)
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

func (a *lockArena) ref(key string) *arenaLock {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[key]
	if !ok {
		l = &arenaLock{ch: make(chan struct{}, 1)}
		a.locks[key] = l
	}
	l.refs++
	return l
}

func (a *lockArena) unref(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	l := a.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(a.locks, key)
	}
}

func (a *lockArena) unlock(key string) {
	a.mu.Lock()
	l := a.locks[key]
	a.mu.Unlock()
	<-l.ch
	a.unref(key)
}

func (a *lockArena) size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}

func uniqueSorted(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
