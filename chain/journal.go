// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chain holds the execution primitives shared by all contracts in an
// environment: the undo journal, the block clock and the re-entrancy guard.
package chain

import "sync"

// Journal records undo actions for every state mutation of the current
// transaction. Snapshot/RevertToSnapshot mirror the EVM StateDB contract.
// Undo actions must restore state directly and never journal themselves.
type Journal struct {
	mu      sync.Mutex
	entries []func()
}

// NewJournal returns an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Append records undo. Appending to a nil journal is a no-op so standalone
// contracts can run unjournaled.
func (j *Journal) Append(undo func()) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.entries = append(j.entries, undo)
	j.mu.Unlock()
}

// Snapshot returns an identifier for the current journal position.
func (j *Journal) Snapshot() int {
	if j == nil {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// RevertToSnapshot undoes every mutation recorded after id, newest first.
func (j *Journal) RevertToSnapshot(id int) {
	if j == nil {
		return
	}
	j.mu.Lock()
	if id < 0 || id > len(j.entries) {
		j.mu.Unlock()
		return
	}
	undo := make([]func(), len(j.entries)-id)
	copy(undo, j.entries[id:])
	j.entries = j.entries[:id]
	j.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// Reset drops all entries. Called once the outermost transaction commits.
func (j *Journal) Reset() {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.entries = j.entries[:0]
	j.mu.Unlock()
}

// Len returns the number of pending undo entries.
func (j *Journal) Len() int {
	return j.Snapshot()
}
