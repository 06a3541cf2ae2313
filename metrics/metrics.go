// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes prometheus collectors for the exchange. Every
// recorder is safe to call on a nil *Metrics.
package metrics

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "swapfarm"

type Metrics struct {
	swaps                prometheus.Counter
	liquidityAdded       prometheus.Counter
	liquidityRemoved     prometheus.Counter
	deposits             prometheus.Counter
	withdrawals          prometheus.Counter
	harvests             prometheus.Counter
	emergencyWithdrawals prometheus.Counter
	committed            prometheus.Counter
	reverted             *prometheus.CounterVec
	reserveA             prometheus.Gauge
	reserveB             prometheus.Gauge
	totalShares          prometheus.Gauge
	totalStaked          *prometheus.GaugeVec
}

// New creates the collectors and registers them on r.
func New(r prometheus.Registerer) (*Metrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	m := &Metrics{
		swaps:                counter("swaps", "number of committed swaps"),
		liquidityAdded:       counter("liquidity_added", "number of committed share mints"),
		liquidityRemoved:     counter("liquidity_removed", "number of committed share burns"),
		deposits:             counter("farm_deposits", "number of committed farm deposits"),
		withdrawals:          counter("farm_withdrawals", "number of committed farm withdrawals"),
		harvests:             counter("farm_harvests", "number of committed harvests"),
		emergencyWithdrawals: counter("farm_emergency_withdrawals", "number of committed emergency withdrawals"),
		committed:            counter("ops_committed", "number of committed operations"),
		reverted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_reverted",
			Help:      "number of reverted operations by reason",
		}, []string{"reason"}),
		reserveA:    gauge("reserve_a", "pair reserve of asset A"),
		reserveB:    gauge("reserve_b", "pair reserve of asset B"),
		totalShares: gauge("total_shares", "outstanding liquidity shares"),
		totalStaked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "farm_total_staked",
			Help:      "amount staked per farm pool",
		}, []string{"pool"}),
	}
	err := errors.Join(
		r.Register(m.swaps),
		r.Register(m.liquidityAdded),
		r.Register(m.liquidityRemoved),
		r.Register(m.deposits),
		r.Register(m.withdrawals),
		r.Register(m.harvests),
		r.Register(m.emergencyWithdrawals),
		r.Register(m.committed),
		r.Register(m.reverted),
		r.Register(m.reserveA),
		r.Register(m.reserveB),
		r.Register(m.totalShares),
		r.Register(m.totalStaked),
	)
	return m, err
}

func inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

func (m *Metrics) RecordSwap() {
	if m != nil {
		inc(m.swaps)
	}
}

func (m *Metrics) RecordMint() {
	if m != nil {
		inc(m.liquidityAdded)
	}
}

func (m *Metrics) RecordBurn() {
	if m != nil {
		inc(m.liquidityRemoved)
	}
}

func (m *Metrics) RecordDeposit() {
	if m != nil {
		inc(m.deposits)
	}
}

func (m *Metrics) RecordWithdraw() {
	if m != nil {
		inc(m.withdrawals)
	}
}

func (m *Metrics) RecordHarvest() {
	if m != nil {
		inc(m.harvests)
	}
}

func (m *Metrics) RecordEmergencyWithdraw() {
	if m != nil {
		inc(m.emergencyWithdrawals)
	}
}

// RecordCommit counts an operation that committed.
func (m *Metrics) RecordCommit() {
	if m != nil {
		inc(m.committed)
	}
}

// RecordRevert counts an operation that reverted with reason.
func (m *Metrics) RecordRevert(reason string) {
	if m != nil {
		m.reverted.WithLabelValues(reason).Inc()
	}
}

// SetReserves publishes the pair reserves. Gauges are float64, so very large
// values lose precision.
func (m *Metrics) SetReserves(a, b, shares *uint256.Int) {
	if m == nil {
		return
	}
	m.reserveA.Set(a.Float64())
	m.reserveB.Set(b.Float64())
	m.totalShares.Set(shares.Float64())
}

func (m *Metrics) SetTotalStaked(pool string, staked *uint256.Int) {
	if m != nil {
		m.totalStaked.WithLabelValues(pool).Set(staked.Float64())
	}
}
