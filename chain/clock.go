// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "sync"

// Clock exposes the host's block height and block timestamp (unix seconds).
type Clock interface {
	BlockNumber() uint64
	Now() uint64
}

// ManualClock is a Clock advanced explicitly by the host or by tests.
type ManualClock struct {
	mu    sync.RWMutex
	block uint64
	now   uint64
}

// NewManualClock starts a clock at the given height and timestamp.
func NewManualClock(block, now uint64) *ManualClock {
	return &ManualClock{block: block, now: now}
}

func (c *ManualClock) BlockNumber() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.block
}

func (c *ManualClock) Now() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Advance moves the clock forward by blocks and seconds.
func (c *ManualClock) Advance(blocks, seconds uint64) {
	c.mu.Lock()
	c.block += blocks
	c.now += seconds
	c.mu.Unlock()
}

// Set moves the clock to an absolute height and timestamp. Going backwards
// is ignored.
func (c *ManualClock) Set(block, now uint64) {
	c.mu.Lock()
	if block > c.block {
		c.block = block
	}
	if now > c.now {
		c.now = now
	}
	c.mu.Unlock()
}
