// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package farm

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/access"
	"github.com/parsdao/swapfarm/asset"
	"github.com/parsdao/swapfarm/chain"
	"github.com/parsdao/swapfarm/host"
	"github.com/parsdao/swapfarm/metrics"
	"github.com/parsdao/swapfarm/revert"
	"github.com/parsdao/swapfarm/state"
)

type stakeID struct {
	pid  uint64
	user common.Address
}

// Farm is a multi-pool staking contract paying one reward token. The farm
// must hold the minter role on the reward token.
type Farm struct {
	address common.Address
	env     *host.Env
	roles   *access.Table
	reward  asset.Mintable
	key     []byte

	// guard is held for the whole of every mutating operation
	guard chain.Guard

	// mu protects everything below for concurrent readers
	mu       sync.RWMutex
	params   Params
	pools    []*poolEntry
	byAsset  map[common.Address]uint64
	stakes   map[stakeID]*stakeEntry
	poolKey  string
	stakeKey string
}

var _ state.Record = (*Farm)(nil)

// NewFarm deploys a farm paying reward.
func NewFarm(env *host.Env, roles *access.Table, cfg Config, reward asset.Mintable) (*Farm, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	hexAddr := cfg.Address.Hex()
	f := &Farm{
		address:  cfg.Address,
		env:      env,
		roles:    roles,
		reward:   reward,
		key:      state.Key("farm/", cfg.Address.Bytes()),
		byAsset:  make(map[common.Address]uint64),
		stakes:   make(map[stakeID]*stakeEntry),
		poolKey:  "farmpool/" + hexAddr + "/",
		stakeKey: "stake/" + hexAddr + "/",
		params: Params{
			StartBlock:   cfg.StartBlock,
			DevFund:      cfg.DevFund,
			FeeRecipient: cfg.FeeRecipient,
		},
	}
	if cfg.EmissionPerBlock != nil {
		f.params.EmissionPerBlock.Set(cfg.EmissionPerBlock)
	}
	return f, nil
}

func (f *Farm) Address() common.Address { return f.address }
func (f *Farm) Reward() asset.Mintable  { return f.reward }

// =========================================================================
// Queries
// =========================================================================

// Params returns a copy of the farm-wide settings.
func (f *Farm) Params() Params {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.params
}

// PoolLength returns the number of registered pools.
func (f *Farm) PoolLength() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.pools)
}

// GetPoolInfo returns a copy of pool pid.
func (f *Farm) GetPoolInfo(pid uint64) (FarmPool, error) {
	e, err := f.entry(pid)
	if err != nil {
		return FarmPool{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return e.pool, nil
}

// GetUserInfo returns a copy of user's stake in pool pid. Users who never
// staked have a zero stake.
func (f *Farm) GetUserInfo(pid uint64, user common.Address) (UserStake, error) {
	if _, err := f.entry(pid); err != nil {
		return UserStake{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if s, ok := f.stakes[stakeID{pid, user}]; ok {
		return s.stake, nil
	}
	return UserStake{}, nil
}

// PoolOf returns the id of the pool staking assetAddr.
func (f *Farm) PoolOf(assetAddr common.Address) (uint64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	pid, ok := f.byAsset[assetAddr]
	return pid, ok
}

// CanHarvest reports whether user's harvest lock on pool pid has expired.
func (f *Farm) CanHarvest(pid uint64, user common.Address) (bool, error) {
	stake, err := f.GetUserInfo(pid, user)
	if err != nil {
		return false, err
	}
	return f.env.Now() >= stake.LockedUntil, nil
}

// =========================================================================
// Internal plumbing
// =========================================================================

type poolEntry struct {
	farm   *Farm
	key    []byte
	ledger asset.Ledger
	pool   FarmPool
}

type stakeEntry struct {
	farm  *Farm
	key   []byte
	id    stakeID
	stake UserStake
}

// exec runs fn atomically while holding the farm's guard.
func (f *Farm) exec(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	// a held guard seen without the operation's context is a re-entrant
	// call that dropped it; waiting on the environment would never return
	if !f.env.InTx(ctx) && f.guard.Locked() {
		return fmt.Errorf("%w: %s during another operation", revert.ErrReentrant, op)
	}
	return f.env.Atomic(ctx, op, func(ctx context.Context) error {
		if err := f.guard.Lock(); err != nil {
			return err
		}
		defer f.guard.Unlock()
		return fn(ctx)
	})
}

func (f *Farm) entry(pid uint64) (*poolEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if pid >= uint64(len(f.pools)) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPool, pid)
	}
	return f.pools[pid], nil
}

func (f *Farm) poolOf(e *poolEntry) FarmPool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return e.pool
}

// stakeOf returns the entry of id, creating an empty one.
func (f *Farm) stakeOf(id stakeID) *stakeEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stakes[id]
	if !ok {
		s = &stakeEntry{
			farm: f,
			key:  state.Key(f.stakeKey, pidBytes(id.pid), id.user.Bytes()),
			id:   id,
		}
		f.stakes[id] = s
	}
	return s
}

func (f *Farm) stakeSnapshot(s *stakeEntry) UserStake {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return s.stake
}

// commitPool installs next as e's state, journaling the previous one.
func (f *Farm) commitPool(e *poolEntry, next FarmPool) {
	f.mu.Lock()
	prev := e.pool
	e.pool = next
	f.mu.Unlock()

	f.env.Journal().Append(func() {
		f.mu.Lock()
		e.pool = prev
		f.mu.Unlock()
	})
	f.env.Touch(e)
	f.env.Record(func(m *metrics.Metrics) {
		m.SetTotalStaked(strconv.FormatUint(next.ID, 10), &next.TotalStaked)
	})
}

func (f *Farm) commitStake(s *stakeEntry, next UserStake) {
	f.mu.Lock()
	prev := s.stake
	s.stake = next
	f.mu.Unlock()

	f.env.Journal().Append(func() {
		f.mu.Lock()
		s.stake = prev
		f.mu.Unlock()
	})
	f.env.Touch(s)
}

func (f *Farm) commitParams(next Params) {
	f.mu.Lock()
	prev := f.params
	f.params = next
	f.mu.Unlock()

	f.env.Journal().Append(func() {
		f.mu.Lock()
		f.params = prev
		f.mu.Unlock()
	})
	f.env.Touch(f)
}

// =========================================================================
// Persistence
// =========================================================================

func (f *Farm) StorageKey() []byte { return f.key }

func (f *Farm) MarshalBinary() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p := &f.params
	return state.NewEncoder(7).
		Uint256(&p.EmissionPerBlock).
		Uint64(p.TotalAllocPoints).
		Uint64(p.StartBlock).
		Address(p.DevFund).
		Address(p.FeeRecipient).
		Bool(p.Emergency).
		Uint64(uint64(len(f.pools))).
		Bytes(), nil
}

func (e *poolEntry) StorageKey() []byte { return e.key }

func (e *poolEntry) MarshalBinary() ([]byte, error) {
	e.farm.mu.RLock()
	defer e.farm.mu.RUnlock()
	p := &e.pool
	return state.NewEncoder(8).
		Uint64(p.ID).
		Address(p.Asset).
		Uint64(p.AllocPoints).
		Uint64(p.LastRewardBlock).
		Uint256(&p.AccRewardPerShare).
		Uint64(uint64(p.DepositFeeBps)).
		Uint64(p.LockupSeconds).
		Uint256(&p.TotalStaked).
		Bytes(), nil
}

func (e *poolEntry) UnmarshalBinary(raw []byte) error {
	d := state.NewDecoder(raw)
	p := &e.pool
	p.ID = d.Uint64()
	p.Asset = d.Address()
	p.AllocPoints = d.Uint64()
	p.LastRewardBlock = d.Uint64()
	d.Uint256(&p.AccRewardPerShare)
	p.DepositFeeBps = uint16(d.Uint64())
	p.LockupSeconds = d.Uint64()
	d.Uint256(&p.TotalStaked)
	return d.Err()
}

func (s *stakeEntry) StorageKey() []byte { return s.key }

func (s *stakeEntry) MarshalBinary() ([]byte, error) {
	s.farm.mu.RLock()
	defer s.farm.mu.RUnlock()
	return state.NewEncoder(6).
		Uint64(s.id.pid).
		Address(s.id.user).
		Uint256(&s.stake.Amount).
		Uint256(&s.stake.RewardDebt).
		Uint64(s.stake.LastHarvestTime).
		Uint64(s.stake.LockedUntil).
		Bytes(), nil
}

func (s *stakeEntry) UnmarshalBinary(raw []byte) error {
	d := state.NewDecoder(raw)
	s.id.pid = d.Uint64()
	s.id.user = d.Address()
	d.Uint256(&s.stake.Amount)
	d.Uint256(&s.stake.RewardDebt)
	s.stake.LastHarvestTime = d.Uint64()
	s.stake.LockedUntil = d.Uint64()
	return d.Err()
}

type paramsRecord struct {
	params Params
	pools  uint64
}

func (r *paramsRecord) UnmarshalBinary(raw []byte) error {
	d := state.NewDecoder(raw)
	d.Uint256(&r.params.EmissionPerBlock)
	r.params.TotalAllocPoints = d.Uint64()
	r.params.StartBlock = d.Uint64()
	r.params.DevFund = d.Address()
	r.params.FeeRecipient = d.Address()
	r.params.Emergency = d.Bool()
	r.pools = d.Uint64()
	return d.Err()
}

// Resolver maps a staked asset address back to its ledger.
type Resolver func(common.Address) (asset.Ledger, error)

// Load restores the farm committed to s, resolving every pool's asset
// through resolve. It reports false when nothing was committed.
func (f *Farm) Load(s *state.Store, resolve Resolver) (bool, error) {
	var rec paramsRecord
	ok, err := s.Get(f.key, &rec)
	if err != nil || !ok {
		return false, err
	}
	if rec.pools > MaxPools {
		return false, fmt.Errorf("%w: %d pools stored", ErrTooManyPools, rec.pools)
	}

	pools := make([]*poolEntry, 0, rec.pools)
	byAsset := make(map[common.Address]uint64, rec.pools)
	for pid := uint64(0); pid < rec.pools; pid++ {
		e := &poolEntry{farm: f, key: f.poolStorageKey(pid)}
		found, err := s.Get(e.key, e)
		if err != nil {
			return false, err
		}
		if !found {
			return false, fmt.Errorf("pool %d of farm %s missing", pid, f.address)
		}
		if e.ledger, err = resolve(e.pool.Asset); err != nil {
			return false, err
		}
		pools = append(pools, e)
		byAsset[e.pool.Asset] = pid
	}

	stakes := make(map[stakeID]*stakeEntry)
	err = s.Iterate(f.stakeKey, func(raw []byte) error {
		st := &stakeEntry{farm: f}
		if err := st.UnmarshalBinary(raw); err != nil {
			return err
		}
		if st.id.pid >= rec.pools {
			return fmt.Errorf("%w: stake in pool %d", ErrUnknownPool, st.id.pid)
		}
		st.key = state.Key(f.stakeKey, pidBytes(st.id.pid), st.id.user.Bytes())
		stakes[st.id] = st
		return nil
	})
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	f.params = rec.params
	f.pools = pools
	f.byAsset = byAsset
	f.stakes = stakes
	f.mu.Unlock()
	return true, nil
}

func (f *Farm) poolStorageKey(pid uint64) []byte {
	return state.Key(f.poolKey, pidBytes(pid))
}

func pidBytes(pid uint64) []byte { return binary.BigEndian.AppendUint64(nil, pid) }
