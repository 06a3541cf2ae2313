// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"sync"

	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/chain"
)

// Record is one emitted event with its position in the log.
type Record struct {
	Index    uint64
	Block    uint64
	Contract common.Address
	Event    Event
}

// Log is the append-only event log of an environment. Emission is journaled:
// events of a reverted operation disappear together with its state changes,
// committed events are never removed.
type Log struct {
	mu      sync.RWMutex
	journal *chain.Journal
	clock   chain.Clock
	records []Record
}

// NewLog creates a log bound to the environment journal and clock.
func NewLog(journal *chain.Journal, clock chain.Clock) *Log {
	return &Log{journal: journal, clock: clock}
}

// Emit appends ev on behalf of contract. Emitting on a nil log is a no-op.
func (l *Log) Emit(contract common.Address, ev Event) {
	if l == nil {
		return
	}
	l.mu.Lock()
	var block uint64
	if l.clock != nil {
		block = l.clock.BlockNumber()
	}
	n := len(l.records)
	l.records = append(l.records, Record{
		Index:    uint64(n),
		Block:    block,
		Contract: contract,
		Event:    ev,
	})
	l.mu.Unlock()

	l.journal.Append(func() {
		l.mu.Lock()
		l.records = l.records[:n]
		l.mu.Unlock()
	})
}

// Len returns the number of records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Records returns a copy of every record.
func (l *Log) Records() []Record {
	return l.Since(0)
}

// Since returns the records with Index >= from.
func (l *Log) Since(from int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if from >= len(l.records) {
		return nil
	}
	out := make([]Record, len(l.records)-from)
	copy(out, l.records[from:])
	return out
}

// Named returns the records whose event carries name.
func (l *Log) Named(name string) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Record
	for _, r := range l.records {
		if r.Event.EventName() == name {
			out = append(out, r)
		}
	}
	return out
}
