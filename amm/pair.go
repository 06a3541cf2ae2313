// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/access"
	"github.com/parsdao/swapfarm/asset"
	"github.com/parsdao/swapfarm/chain"
	"github.com/parsdao/swapfarm/events"
	"github.com/parsdao/swapfarm/host"
	"github.com/parsdao/swapfarm/metrics"
	"github.com/parsdao/swapfarm/revert"
	"github.com/parsdao/swapfarm/state"
)

// Pair is a constant-product market between tokenA and tokenB. Liquidity
// is represented by the shares token, which only the pair mints and burns.
type Pair struct {
	address common.Address
	env     *host.Env
	roles   *access.Table
	tokenA  asset.Ledger
	tokenB  asset.Ledger
	shares  asset.Mintable
	key     []byte

	// guard is held for the whole of every mutating operation
	guard chain.Guard

	// mu protects pool for readers running concurrently with an operation
	mu   sync.RWMutex
	pool Pool
}

var _ state.Record = (*Pair)(nil)

// NewPair deploys a pair. roles decides who may change parameters; the pair
// must hold the minter role on shares.
func NewPair(
	env *host.Env,
	roles *access.Table,
	cfg Config,
	tokenA, tokenB asset.Ledger,
	shares asset.Mintable,
) (*Pair, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if tokenA.Address() == tokenB.Address() {
		return nil, fmt.Errorf("%w: %s", ErrIdenticalAssets, tokenA.Address())
	}
	return &Pair{
		address: cfg.Address,
		env:     env,
		roles:   roles,
		tokenA:  tokenA,
		tokenB:  tokenB,
		shares:  shares,
		key:     state.Key("pair/", cfg.Address.Bytes()),
		pool: Pool{
			SwapFeeBps:          cfg.SwapFeeBps,
			ProtocolFeeShareBps: cfg.ProtocolFeeShareBps,
			MaxPriceImpactBps:   cfg.MaxPriceImpactBps,
			FeeRecipient:        cfg.FeeRecipient,
		},
	}, nil
}

func (p *Pair) Address() common.Address { return p.address }
func (p *Pair) TokenA() asset.Ledger    { return p.tokenA }
func (p *Pair) TokenB() asset.Ledger    { return p.tokenB }
func (p *Pair) Shares() asset.Mintable  { return p.shares }

func (p *Pair) token(s Side) asset.Ledger {
	if s == SideA {
		return p.tokenA
	}
	return p.tokenB
}

// =========================================================================
// Queries
// =========================================================================

// Pool returns a copy of the accounting state.
func (p *Pair) Pool() Pool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pool
}

// GetReserves returns both reserves and the height they were last updated.
func (p *Pair) GetReserves() (reserveA, reserveB *uint256.Int, lastBlock uint64) {
	pool := p.Pool()
	return &pool.ReserveA, &pool.ReserveB, pool.LastBlock
}

// GetPrice returns the price of side in units of the other asset, scaled by
// PriceScale. It is zero while the pair is empty.
func (p *Pair) GetPrice(side Side) *uint256.Int {
	pool := p.Pool()
	self, other := pool.reserves(side)
	if self.IsZero() {
		return new(uint256.Int)
	}
	price, err := mulDiv(other, PriceScale, self)
	if err != nil {
		// reserves are capped at 2^112, so the scaled product always fits
		return new(uint256.Int)
	}
	return price
}

// ShareBalance returns the liquidity shares held by owner.
func (p *Pair) ShareBalance(owner common.Address) *uint256.Int {
	return p.shares.BalanceOf(owner)
}

// =========================================================================
// Internal plumbing
// =========================================================================

// exec runs fn atomically while holding the pair's guard.
func (p *Pair) exec(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	// a held guard seen without the operation's context is a re-entrant
	// call that dropped it; waiting on the environment would never return
	if !p.env.InTx(ctx) && p.guard.Locked() {
		return fmt.Errorf("%w: %s during another operation", revert.ErrReentrant, op)
	}
	return p.env.Atomic(ctx, op, func(ctx context.Context) error {
		if err := p.guard.Lock(); err != nil {
			return err
		}
		defer p.guard.Unlock()
		return fn(ctx)
	})
}

// commit installs next as the pool state, journaling the previous one.
func (p *Pair) commit(next Pool) {
	p.mu.Lock()
	prev := p.pool
	p.pool = next
	p.mu.Unlock()

	p.env.Journal().Append(func() {
		p.mu.Lock()
		p.pool = prev
		p.mu.Unlock()
	})
	p.env.Touch(p)
	p.env.Record(func(m *metrics.Metrics) {
		m.SetReserves(&next.ReserveA, &next.ReserveB, &next.TotalShares)
	})
}

// update sets the reserves from balances and emits Sync.
func (p *Pair) update(pool *Pool, balanceA, balanceB *uint256.Int) error {
	if MaxReserve.Lt(balanceA) || MaxReserve.Lt(balanceB) {
		return fmt.Errorf("%w: balances %s, %s", ErrReserveOverflow, balanceA, balanceB)
	}
	pool.ReserveA.Set(balanceA)
	pool.ReserveB.Set(balanceB)
	pool.LastBlock = p.env.BlockNumber()
	p.env.Events().Emit(p.address, events.Sync{ReserveA: pool.ReserveA, ReserveB: pool.ReserveB})
	return nil
}

func (p *Pair) balances() (*uint256.Int, *uint256.Int) {
	return p.tokenA.BalanceOf(p.address), p.tokenB.BalanceOf(p.address)
}

// mintFee mints the protocol's share of the fee growth since the last
// liquidity event. Growth is measured on sqrt(k).
func (p *Pair) mintFee(ctx context.Context, pool *Pool) error {
	if !pool.protocolFeeOn() || pool.KLast.IsZero() {
		return nil
	}
	k, err := mul(&pool.ReserveA, &pool.ReserveB)
	if err != nil {
		return err
	}
	rootK := new(uint256.Int).Sqrt(k)
	rootKLast := new(uint256.Int).Sqrt(&pool.KLast)
	if !rootKLast.Lt(rootK) {
		return nil
	}

	share := uint256.NewInt(uint64(pool.ProtocolFeeShareBps))
	growth, err := mul(new(uint256.Int).Sub(rootK, rootKLast), share)
	if err != nil {
		return err
	}
	den, err := mul(rootK, uint256.NewInt(uint64(FeeDenominator-pool.ProtocolFeeShareBps)))
	if err != nil {
		return err
	}
	weighted, err := mul(rootKLast, share)
	if err != nil {
		return err
	}
	if den, err = add(den, weighted); err != nil {
		return err
	}
	liquidity, err := mulDiv(&pool.TotalShares, growth, den)
	if err != nil {
		return err
	}
	if liquidity.IsZero() {
		return nil
	}
	if err := p.shares.Mint(ctx, p.address, pool.FeeRecipient, liquidity); err != nil {
		return err
	}
	pool.TotalShares.Add(&pool.TotalShares, liquidity)
	p.env.Logger().Debug("protocol fee minted",
		zap.Stringer("pair", p.address),
		zap.Stringer("shares", liquidity),
	)
	return nil
}

// =========================================================================
// Persistence
// =========================================================================

func (p *Pair) StorageKey() []byte { return p.key }

func (p *Pair) MarshalBinary() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return encodePool(&p.pool), nil
}

// Load restores the pool state committed to s, if any.
func (p *Pair) Load(s *state.Store) (bool, error) {
	var rec poolRecord
	ok, err := s.Get(p.key, &rec)
	if err != nil || !ok {
		return false, err
	}
	p.mu.Lock()
	p.pool = rec.pool
	p.mu.Unlock()
	return true, nil
}

type poolRecord struct{ pool Pool }

func encodePool(pool *Pool) []byte {
	return state.NewEncoder(9).
		Uint256(&pool.ReserveA).
		Uint256(&pool.ReserveB).
		Uint256(&pool.TotalShares).
		Uint256(&pool.KLast).
		Uint64(uint64(pool.SwapFeeBps)).
		Uint64(uint64(pool.ProtocolFeeShareBps)).
		Uint64(uint64(pool.MaxPriceImpactBps)).
		Address(pool.FeeRecipient).
		Uint64(pool.LastBlock).
		Bytes()
}

func (r *poolRecord) UnmarshalBinary(raw []byte) error {
	d := state.NewDecoder(raw)
	d.Uint256(&r.pool.ReserveA)
	d.Uint256(&r.pool.ReserveB)
	d.Uint256(&r.pool.TotalShares)
	d.Uint256(&r.pool.KLast)
	r.pool.SwapFeeBps = uint16(d.Uint64())
	r.pool.ProtocolFeeShareBps = uint16(d.Uint64())
	r.pool.MaxPriceImpactBps = uint16(d.Uint64())
	r.pool.FeeRecipient = d.Address()
	r.pool.LastBlock = d.Uint64()
	return d.Err()
}
