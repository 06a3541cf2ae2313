// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scenario

import (
	"encoding/hex"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/parsdao/swapfarm/amm"
	"github.com/parsdao/swapfarm/dead"
	"github.com/parsdao/swapfarm/events"
)

// Report is the state of an exchange after a scenario.
type Report struct {
	Name     string          `yaml:"name,omitempty"`
	Block    uint64          `yaml:"block"`
	Time     uint64          `yaml:"time"`
	Events   int             `yaml:"events"`
	Pair     PairReport      `yaml:"pair"`
	Pools    []PoolReport    `yaml:"pools,omitempty"`
	Accounts []AccountReport `yaml:"accounts,omitempty"`
	Results  []Result        `yaml:"results"`
	Logs     []LogReport     `yaml:"logs,omitempty"`
}

// PairReport summarizes the pair. Prices are scaled by 1e18.
type PairReport struct {
	ReserveA    string `yaml:"reserveA"`
	ReserveB    string `yaml:"reserveB"`
	TotalShares string `yaml:"totalShares"`
	Locked      string `yaml:"locked"`
	PriceA      string `yaml:"priceA"`
	PriceB      string `yaml:"priceB"`
}

// PoolReport summarizes one farm pool.
type PoolReport struct {
	ID                uint64 `yaml:"id"`
	Asset             string `yaml:"asset"`
	AllocPoints       uint64 `yaml:"allocPoints"`
	TotalStaked       string `yaml:"totalStaked"`
	AccRewardPerShare string `yaml:"accRewardPerShare"`
}

// AccountReport lists the balances, stakes and pending rewards of one
// named account.
type AccountReport struct {
	Name     string            `yaml:"name"`
	Address  string            `yaml:"address"`
	Balances map[string]string `yaml:"balances"`
	Staked   map[uint64]string `yaml:"staked,omitempty"`
	Pending  map[uint64]string `yaml:"pending,omitempty"`
}

// LogReport is one committed event encoded as an EVM log.
type LogReport struct {
	Index    uint64   `yaml:"index"`
	Block    uint64   `yaml:"block"`
	Contract string   `yaml:"contract"`
	Event    string   `yaml:"event"`
	Topics   []string `yaml:"topics"`
	Data     string   `yaml:"data"`
}

// Logs encodes every committed event of the exchange in emission order.
func (r *Runner) Logs() ([]LogReport, error) {
	records := r.x.Env().Events().Records()
	logs := make([]LogReport, 0, len(records))
	for _, rec := range records {
		lg, err := events.EncodeLog(rec)
		if err != nil {
			return nil, err
		}
		contract := lg.Address.Hex()
		if m, ok := r.x.Modules().ByAddress(lg.Address); ok {
			contract = m.Name
		}
		topics := make([]string, len(lg.Topics))
		for i, topic := range lg.Topics {
			topics[i] = topic.Hex()
		}
		logs = append(logs, LogReport{
			Index:    uint64(lg.Index),
			Block:    lg.BlockNumber,
			Contract: contract,
			Event:    rec.Event.EventName(),
			Topics:   topics,
			Data:     "0x" + hex.EncodeToString(lg.Data),
		})
	}
	return logs, nil
}

// Report snapshots the exchange together with the results of a run.
func (r *Runner) Report(sc *Scenario, results []Result) (*Report, error) {
	x := r.x
	pool := x.Pair.Pool()
	rep := &Report{
		Name:   sc.Name,
		Block:  r.clock.BlockNumber(),
		Time:   r.clock.Now(),
		Events: x.Env().Events().Len(),
		Pair: PairReport{
			ReserveA:    pool.ReserveA.Dec(),
			ReserveB:    pool.ReserveB.Dec(),
			TotalShares: pool.TotalShares.Dec(),
			Locked:      dead.Burned(x.Shares).Dec(),
			PriceA:      x.Pair.GetPrice(amm.SideA).Dec(),
			PriceB:      x.Pair.GetPrice(amm.SideB).Dec(),
		},
		Results: results,
	}

	n := x.Farm.PoolLength()
	for pid := 0; pid < n; pid++ {
		fp, err := x.Farm.GetPoolInfo(uint64(pid))
		if err != nil {
			return nil, err
		}
		asset := fp.Asset.Hex()
		if m, ok := x.Modules().ByAddress(fp.Asset); ok {
			asset = m.Name
		}
		rep.Pools = append(rep.Pools, PoolReport{
			ID:                fp.ID,
			Asset:             asset,
			AllocPoints:       fp.AllocPoints,
			TotalStaked:       fp.TotalStaked.Dec(),
			AccRewardPerShare: fp.AccRewardPerShare.Dec(),
		})
	}

	names := make([]string, 0, len(sc.Accounts))
	for name := range sc.Accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		addr := r.account(name)
		acct := AccountReport{
			Name:     name,
			Address:  addr.Hex(),
			Balances: make(map[string]string),
		}
		for _, tok := range []struct {
			name string
			bal  interface{ Dec() string }
		}{
			{"tokenA", x.TokenA.BalanceOf(addr)},
			{"tokenB", x.TokenB.BalanceOf(addr)},
			{"shares", x.Shares.BalanceOf(addr)},
			{"reward", x.Reward.BalanceOf(addr)},
		} {
			acct.Balances[tok.name] = tok.bal.Dec()
		}
		for pid := 0; pid < n; pid++ {
			stake, err := x.Farm.GetUserInfo(uint64(pid), addr)
			if err != nil {
				return nil, err
			}
			if stake.Amount.IsZero() {
				continue
			}
			pending, err := x.Farm.PendingReward(uint64(pid), addr)
			if err != nil {
				return nil, err
			}
			if acct.Staked == nil {
				acct.Staked = make(map[uint64]string)
				acct.Pending = make(map[uint64]string)
			}
			acct.Staked[uint64(pid)] = stake.Amount.Dec()
			acct.Pending[uint64(pid)] = pending.Dec()
		}
		rep.Accounts = append(rep.Accounts, acct)
	}
	return rep, nil
}

// Write encodes the report as YAML.
func (rep *Report) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return err
	}
	return enc.Close()
}
