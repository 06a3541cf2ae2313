// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"sync"

	"github.com/parsdao/swapfarm/revert"
)

// Guard is the per-instance exclusive lock. Top-level calls are serialized by
// the environment, so a held guard can only be observed by a re-entrant call,
// which fails instead of blocking.
type Guard struct {
	mu     sync.Mutex
	locked bool
}

// Lock acquires the guard or returns revert.ErrReentrant.
func (g *Guard) Lock() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked {
		return revert.ErrReentrant
	}
	g.locked = true
	return nil
}

// Unlock releases the guard.
func (g *Guard) Unlock() {
	g.mu.Lock()
	g.locked = false
	g.mu.Unlock()
}

// Locked reports whether an operation currently holds the guard.
func (g *Guard) Locked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked
}
