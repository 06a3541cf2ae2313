// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package host provides the execution environment that runs contract
// operations: one serial transaction stream per environment with journaled
// rollback, event emission and batched persistence.
package host

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/chain"
	"github.com/parsdao/swapfarm/events"
	"github.com/parsdao/swapfarm/metrics"
	"github.com/parsdao/swapfarm/revert"
	"github.com/parsdao/swapfarm/state"
)

type txKey struct{}

// Env is shared by every contract deployed into the same environment.
type Env struct {
	journal *chain.Journal
	clock   chain.Clock
	events  *events.Log
	store   *state.Store
	metrics *metrics.Metrics
	logger  *zap.Logger

	// sem admits one top-level operation at a time.
	sem chan struct{}

	mu      sync.Mutex
	dirty   map[string]state.Record
	order   []string
	pending []func(*metrics.Metrics)
}

// Option configures an Env.
type Option func(*Env)

// WithStore persists touched records at every commit.
func WithStore(s *state.Store) Option {
	return func(e *Env) { e.store = s }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Env) { e.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Env) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an environment driven by clock.
func New(clock chain.Clock, opts ...Option) *Env {
	journal := chain.NewJournal()
	e := &Env{
		journal: journal,
		clock:   clock,
		events:  events.NewLog(journal, clock),
		logger:  zap.NewNop(),
		sem:     make(chan struct{}, 1),
		dirty:   make(map[string]state.Record),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Env) Journal() *chain.Journal       { return e.journal }
func (e *Env) Clock() chain.Clock            { return e.clock }
func (e *Env) Events() *events.Log           { return e.events }
func (e *Env) Store() *state.Store           { return e.store }
func (e *Env) Metrics() *metrics.Metrics     { return e.metrics }
func (e *Env) Logger() *zap.Logger           { return e.logger }
func (e *Env) BlockNumber() uint64           { return e.clock.BlockNumber() }
func (e *Env) Now() uint64                   { return e.clock.Now() }
func (e *Env) InTx(ctx context.Context) bool { return ctx.Value(txKey{}) == e }

// Atomic runs fn as one all-or-nothing operation. A top-level call waits for
// the environment (honoring ctx while waiting), and on failure every
// journaled mutation made by fn is undone. A call made from inside another
// operation of the same environment joins it and reverts only its own part.
func (e *Env) Atomic(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if e.InTx(ctx) {
		snap := e.journal.Snapshot()
		if err := fn(ctx); err != nil {
			e.journal.RevertToSnapshot(snap)
			return err
		}
		return nil
	}

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.sem }()

	ctx = context.WithValue(ctx, txKey{}, e)
	snap := e.journal.Snapshot()
	err := fn(ctx)
	if err == nil {
		err = e.flush()
	}
	if err != nil {
		e.journal.RevertToSnapshot(snap)
		e.clearDirty()
		e.takePending()
		reason := revert.ReasonOf(err)
		e.metrics.RecordRevert(reason)
		e.logger.Debug("operation reverted",
			zap.String("op", op),
			zap.String("reason", reason),
			zap.Uint64("block", e.clock.BlockNumber()),
			zap.Error(err),
		)
		return err
	}
	e.journal.Reset()
	e.metrics.RecordCommit()
	for _, fn := range e.takePending() {
		fn(e.metrics)
	}
	e.logger.Debug("operation committed",
		zap.String("op", op),
		zap.Uint64("block", e.clock.BlockNumber()),
	)
	return nil
}

// Record queues a metrics update that runs once the outermost operation
// commits. Updates queued by a part that reverts are dropped with it.
func (e *Env) Record(fn func(m *metrics.Metrics)) {
	if e.metrics == nil {
		return
	}
	e.mu.Lock()
	e.pending = append(e.pending, fn)
	n := len(e.pending) - 1
	e.mu.Unlock()
	e.journal.Append(func() {
		e.mu.Lock()
		if n < len(e.pending) {
			e.pending = e.pending[:n]
		}
		e.mu.Unlock()
	})
}

func (e *Env) takePending() []func(*metrics.Metrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pending := e.pending
	e.pending = nil
	return pending
}

// Touch marks r for persistence when the current operation commits. The
// record is marshaled at commit time, so later mutations are included.
func (e *Env) Touch(r state.Record) {
	if e.store == nil {
		return
	}
	key := string(r.StorageKey())
	e.mu.Lock()
	if _, ok := e.dirty[key]; !ok {
		e.order = append(e.order, key)
	}
	e.dirty[key] = r
	e.mu.Unlock()
}

func (e *Env) flush() error {
	e.mu.Lock()
	records := make([]state.Record, 0, len(e.order))
	for _, key := range e.order {
		records = append(records, e.dirty[key])
	}
	e.mu.Unlock()

	if e.store == nil || len(records) == 0 {
		return nil
	}
	if err := e.store.Commit(records); err != nil {
		return err
	}
	e.clearDirty()
	return nil
}

func (e *Env) clearDirty() {
	e.mu.Lock()
	e.dirty = make(map[string]state.Record)
	e.order = e.order[:0]
	e.mu.Unlock()
}
