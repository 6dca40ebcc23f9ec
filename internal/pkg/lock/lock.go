// Package lock provides per-game locking so that ledger operations against
// the same game are serialized: the engine assumes exclusive access to a
// game snapshot between load and save.
package lock

import "sync"

// gameMutex wraps a mutex so instances can be pooled.
type gameMutex struct {
	mu sync.Mutex
}

// GameLock provides per-game mutual exclusion keyed by game id.
type GameLock struct {
	locks sync.Map // map[string]*gameMutex
	pool  sync.Pool
}

// NewGameLock creates a new GameLock instance.
func NewGameLock() *GameLock {
	return &GameLock{
		pool: sync.Pool{
			New: func() any {
				return &gameMutex{}
			},
		},
	}
}

// getLock retrieves or creates a mutex for the given game id.
func (gl *GameLock) getLock(gameID string) *gameMutex {
	if v, ok := gl.locks.Load(gameID); ok {
		return v.(*gameMutex)
	}

	newLock := gl.pool.Get().(*gameMutex)
	actual, loaded := gl.locks.LoadOrStore(gameID, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool.
		gl.pool.Put(newLock)
	}
	return actual.(*gameMutex)
}

// Lock acquires the lock for a game.
func (gl *GameLock) Lock(gameID string) {
	gl.getLock(gameID).mu.Lock()
}

// Unlock releases the lock for a game.
func (gl *GameLock) Unlock(gameID string) {
	if v, ok := gl.locks.Load(gameID); ok {
		v.(*gameMutex).mu.Unlock()
	}
}

// WithLock executes fn while holding the game's lock.
func (gl *GameLock) WithLock(gameID string, fn func() error) error {
	gl.Lock(gameID)
	defer gl.Unlock(gameID)
	return fn()
}
