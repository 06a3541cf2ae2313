// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/dead"
	"github.com/parsdao/swapfarm/events"
	"github.com/parsdao/swapfarm/metrics"
	"github.com/parsdao/swapfarm/revert"
)

// ComputeDepositAmounts returns the amounts AddLiquidity would pull for the
// given bounds at the current reserves.
func (p *Pair) ComputeDepositAmounts(desiredA, desiredB, minA, minB *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	pool := p.Pool()
	return ComputeDepositAmounts(&pool.ReserveA, &pool.ReserveB, desiredA, desiredB, minA, minB)
}

// Mint issues shares to to for whatever the pair holds above its reserves.
// Callers transfer both assets in first and then call Mint, inside one
// operation.
func (p *Pair) Mint(ctx context.Context, caller, to common.Address) (*uint256.Int, error) {
	var liquidity *uint256.Int
	err := p.exec(ctx, "mint", func(ctx context.Context) (err error) {
		liquidity, err = p.mint(ctx, caller, to)
		return err
	})
	return liquidity, err
}

// Burn redeems every share held by the pair itself and sends the assets to
// to. Callers transfer shares to the pair first.
func (p *Pair) Burn(ctx context.Context, caller, to common.Address) (*uint256.Int, *uint256.Int, error) {
	var amountA, amountB *uint256.Int
	err := p.exec(ctx, "burn", func(ctx context.Context) (err error) {
		amountA, amountB, err = p.burn(ctx, caller, to)
		return err
	})
	return amountA, amountB, err
}

// AddLiquidity computes the ratio-preserving deposit, pulls both assets
// from caller and mints shares to params.To.
func (p *Pair) AddLiquidity(ctx context.Context, caller common.Address, params AddLiquidityParams) (amountA, amountB, liquidity *uint256.Int, err error) {
	err = p.exec(ctx, "addLiquidity", func(ctx context.Context) error {
		if err := p.checkDeadline(params.Deadline); err != nil {
			return err
		}
		if params.DesiredA == nil || params.DesiredB == nil {
			return fmt.Errorf("%w: missing desired amount", ErrInvalidInput)
		}
		if params.DesiredA.IsZero() || params.DesiredB.IsZero() {
			return fmt.Errorf("%w: zero desired amount", ErrInvalidInput)
		}
		var err error
		amountA, amountB, err = p.ComputeDepositAmounts(params.DesiredA, params.DesiredB, orZero(params.MinA), orZero(params.MinB))
		if err != nil {
			return err
		}
		if err := p.tokenA.TransferFrom(ctx, p.address, caller, p.address, amountA); err != nil {
			return err
		}
		if err := p.tokenB.TransferFrom(ctx, p.address, caller, p.address, amountB); err != nil {
			return err
		}
		liquidity, err = p.mint(ctx, caller, params.To)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return amountA, amountB, liquidity, nil
}

// RemoveLiquidity pulls params.Shares from caller, burns them and enforces
// the minimum amounts.
func (p *Pair) RemoveLiquidity(ctx context.Context, caller common.Address, params RemoveLiquidityParams) (amountA, amountB *uint256.Int, err error) {
	err = p.exec(ctx, "removeLiquidity", func(ctx context.Context) error {
		if err := p.checkDeadline(params.Deadline); err != nil {
			return err
		}
		if params.Shares == nil || params.Shares.IsZero() {
			return fmt.Errorf("%w: zero shares", ErrInvalidInput)
		}
		if err := p.shares.TransferFrom(ctx, p.address, caller, p.address, params.Shares); err != nil {
			return err
		}
		var err error
		amountA, amountB, err = p.burn(ctx, caller, params.To)
		if err != nil {
			return err
		}
		if amountA.Lt(orZero(params.MinA)) {
			return fmt.Errorf("%w: %s below minimum %s", ErrInsufficientAAmount, amountA, params.MinA)
		}
		if amountB.Lt(orZero(params.MinB)) {
			return fmt.Errorf("%w: %s below minimum %s", ErrInsufficientBAmount, amountB, params.MinB)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return amountA, amountB, nil
}

func (p *Pair) mint(ctx context.Context, caller, to common.Address) (*uint256.Int, error) {
	if to == (common.Address{}) {
		return nil, revert.ErrZeroAddress
	}
	pool := p.Pool()
	balanceA, balanceB := p.balances()
	if balanceA.Lt(&pool.ReserveA) || balanceB.Lt(&pool.ReserveB) {
		return nil, fmt.Errorf("%w: balance below reserve", ErrInsufficientLiquidityMinted)
	}
	amountA := new(uint256.Int).Sub(balanceA, &pool.ReserveA)
	amountB := new(uint256.Int).Sub(balanceB, &pool.ReserveB)

	if err := p.mintFee(ctx, &pool); err != nil {
		return nil, err
	}

	var liquidity *uint256.Int
	if pool.TotalShares.IsZero() {
		product, err := mul(amountA, amountB)
		if err != nil {
			return nil, err
		}
		root := new(uint256.Int).Sqrt(product)
		if !minLiquidity.Lt(root) {
			return nil, fmt.Errorf("%w: initial liquidity %s", ErrInsufficientLiquidityMinted, root)
		}
		liquidity = root.Sub(root, minLiquidity)
		if err := p.shares.Mint(ctx, p.address, dead.Address, minLiquidity); err != nil {
			return nil, err
		}
		pool.TotalShares.Set(minLiquidity)
	} else {
		byA, err := mulDiv(amountA, &pool.TotalShares, &pool.ReserveA)
		if err != nil {
			return nil, err
		}
		byB, err := mulDiv(amountB, &pool.TotalShares, &pool.ReserveB)
		if err != nil {
			return nil, err
		}
		liquidity = new(uint256.Int).Set(minOf(byA, byB))
	}
	if liquidity.IsZero() {
		return nil, ErrInsufficientLiquidityMinted
	}

	if err := p.shares.Mint(ctx, p.address, to, liquidity); err != nil {
		return nil, err
	}
	pool.TotalShares.Add(&pool.TotalShares, liquidity)
	if err := p.update(&pool, balanceA, balanceB); err != nil {
		return nil, err
	}
	pool.KLast.Mul(&pool.ReserveA, &pool.ReserveB)
	p.commit(pool)

	p.env.Events().Emit(p.address, events.Mint{Sender: caller, AmountA: *amountA, AmountB: *amountB})
	p.env.Record((*metrics.Metrics).RecordMint)
	p.env.Logger().Debug("liquidity minted",
		zap.Stringer("to", to),
		zap.Stringer("amountA", amountA),
		zap.Stringer("amountB", amountB),
		zap.Stringer("shares", liquidity),
	)
	return liquidity, nil
}

func (p *Pair) burn(ctx context.Context, caller, to common.Address) (*uint256.Int, *uint256.Int, error) {
	if to == (common.Address{}) {
		return nil, nil, revert.ErrZeroAddress
	}
	pool := p.Pool()
	balanceA, balanceB := p.balances()
	liquidity := p.shares.BalanceOf(p.address)

	if err := p.mintFee(ctx, &pool); err != nil {
		return nil, nil, err
	}
	if pool.TotalShares.IsZero() {
		return nil, nil, ErrInsufficientLiquidityBurned
	}

	amountA, err := mulDiv(liquidity, balanceA, &pool.TotalShares)
	if err != nil {
		return nil, nil, err
	}
	amountB, err := mulDiv(liquidity, balanceB, &pool.TotalShares)
	if err != nil {
		return nil, nil, err
	}
	if amountA.IsZero() || amountB.IsZero() {
		return nil, nil, fmt.Errorf("%w: %s shares redeem %s/%s", ErrInsufficientLiquidityBurned, liquidity, amountA, amountB)
	}

	if err := p.shares.Burn(ctx, p.address, p.address, liquidity); err != nil {
		return nil, nil, err
	}
	pool.TotalShares.Sub(&pool.TotalShares, liquidity)
	if err := p.tokenA.Transfer(ctx, p.address, to, amountA); err != nil {
		return nil, nil, err
	}
	if err := p.tokenB.Transfer(ctx, p.address, to, amountB); err != nil {
		return nil, nil, err
	}

	balanceA, balanceB = p.balances()
	if err := p.update(&pool, balanceA, balanceB); err != nil {
		return nil, nil, err
	}
	pool.KLast.Mul(&pool.ReserveA, &pool.ReserveB)
	p.commit(pool)

	p.env.Events().Emit(p.address, events.Burn{Sender: caller, AmountA: *amountA, AmountB: *amountB, To: to})
	p.env.Record((*metrics.Metrics).RecordBurn)
	p.env.Logger().Debug("liquidity burned",
		zap.Stringer("to", to),
		zap.Stringer("amountA", amountA),
		zap.Stringer("amountB", amountB),
		zap.Stringer("shares", liquidity),
	)
	return amountA, amountB, nil
}

func (p *Pair) checkDeadline(deadline uint64) error {
	if deadline != 0 && p.env.Now() > deadline {
		return fmt.Errorf("%w: deadline %d, now %d", revert.ErrExpired, deadline, p.env.Now())
	}
	return nil
}

func orZero(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return x
}
