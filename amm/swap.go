// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/events"
	"github.com/parsdao/swapfarm/metrics"
	"github.com/parsdao/swapfarm/revert"
)

// Swap sends the requested outputs to to and verifies that whatever was
// transferred in beforehand keeps the fee-adjusted product from falling.
func (p *Pair) Swap(ctx context.Context, caller common.Address, amountOutA, amountOutB *uint256.Int, to common.Address) error {
	return p.exec(ctx, "swap", func(ctx context.Context) error {
		return p.swap(ctx, caller, orZero(amountOutA), orZero(amountOutB), to)
	})
}

// SwapExactIn sells params.AmountIn of params.AssetIn from caller and
// returns the output sent to params.To.
func (p *Pair) SwapExactIn(ctx context.Context, caller common.Address, params SwapExactInParams) (*uint256.Int, error) {
	var amountOut *uint256.Int
	err := p.exec(ctx, "swapExactIn", func(ctx context.Context) error {
		if err := p.checkDeadline(params.Deadline); err != nil {
			return err
		}
		if params.AmountIn == nil || params.AmountIn.IsZero() {
			return fmt.Errorf("%w: zero input amount", ErrInvalidInput)
		}
		pool := p.Pool()
		reserveIn, reserveOut := pool.reserves(params.AssetIn)
		if err := checkPriceImpact(&pool, params.AmountIn, reserveIn); err != nil {
			return err
		}

		tokenIn := p.token(params.AssetIn)
		if err := tokenIn.TransferFrom(ctx, p.address, caller, p.address, params.AmountIn); err != nil {
			return err
		}
		// quote on what actually arrived so fee-on-transfer assets settle
		balanceIn := tokenIn.BalanceOf(p.address)
		if !reserveIn.Lt(balanceIn) {
			return ErrInsufficientInputAmount
		}
		received := balanceIn.Sub(balanceIn, reserveIn)
		out, err := QuoteOutput(received, reserveIn, reserveOut, pool.SwapFeeBps)
		if err != nil {
			return err
		}
		if out.IsZero() || out.Lt(orZero(params.MinAmountOut)) {
			return fmt.Errorf("%w: got %s, minimum %s", ErrInsufficientOutputAmount, out, orZero(params.MinAmountOut))
		}

		amountOut = out
		outA, outB := splitOut(params.AssetIn, out)
		return p.swap(ctx, caller, outA, outB, params.To)
	})
	if err != nil {
		return nil, err
	}
	return amountOut, nil
}

// SwapExactOut buys params.AmountOut of the asset opposite params.AssetIn
// and returns the input pulled from caller.
func (p *Pair) SwapExactOut(ctx context.Context, caller common.Address, params SwapExactOutParams) (*uint256.Int, error) {
	var amountIn *uint256.Int
	err := p.exec(ctx, "swapExactOut", func(ctx context.Context) error {
		if err := p.checkDeadline(params.Deadline); err != nil {
			return err
		}
		if params.AmountOut == nil || params.AmountOut.IsZero() {
			return fmt.Errorf("%w: zero output amount", ErrInvalidInput)
		}
		pool := p.Pool()
		reserveIn, reserveOut := pool.reserves(params.AssetIn)
		in, err := QuoteInput(params.AmountOut, reserveIn, reserveOut, pool.SwapFeeBps)
		if err != nil {
			return err
		}
		if params.MaxAmountIn != nil && params.MaxAmountIn.Lt(in) {
			return fmt.Errorf("%w: need %s, maximum %s", ErrExcessiveInputAmount, in, params.MaxAmountIn)
		}
		if err := checkPriceImpact(&pool, in, reserveIn); err != nil {
			return err
		}
		if err := p.token(params.AssetIn).TransferFrom(ctx, p.address, caller, p.address, in); err != nil {
			return err
		}

		amountIn = in
		outA, outB := splitOut(params.AssetIn, params.AmountOut)
		return p.swap(ctx, caller, outA, outB, params.To)
	})
	if err != nil {
		return nil, err
	}
	return amountIn, nil
}

// Skim sends any balance above the reserves to to.
func (p *Pair) Skim(ctx context.Context, caller, to common.Address) error {
	return p.exec(ctx, "skim", func(ctx context.Context) error {
		pool := p.Pool()
		balanceA, balanceB := p.balances()
		if pool.ReserveA.Lt(balanceA) {
			if err := p.tokenA.Transfer(ctx, p.address, to, new(uint256.Int).Sub(balanceA, &pool.ReserveA)); err != nil {
				return err
			}
		}
		if pool.ReserveB.Lt(balanceB) {
			if err := p.tokenB.Transfer(ctx, p.address, to, new(uint256.Int).Sub(balanceB, &pool.ReserveB)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Sync forces the reserves to match the balances. An empty pair has no
// reserves to sync; donations to it stay skimmable until the first mint.
func (p *Pair) Sync(ctx context.Context, caller common.Address) error {
	return p.exec(ctx, "sync", func(context.Context) error {
		pool := p.Pool()
		if pool.TotalShares.IsZero() {
			return fmt.Errorf("%w: no shares outstanding", ErrInsufficientLiquidity)
		}
		balanceA, balanceB := p.balances()
		if err := p.update(&pool, balanceA, balanceB); err != nil {
			return err
		}
		p.commit(pool)
		return nil
	})
}

func (p *Pair) swap(ctx context.Context, caller common.Address, amountOutA, amountOutB *uint256.Int, to common.Address) error {
	if amountOutA.IsZero() && amountOutB.IsZero() {
		return ErrInsufficientOutputAmount
	}
	if to == p.tokenA.Address() || to == p.tokenB.Address() {
		return fmt.Errorf("%w: %s", ErrInvalidRecipient, to)
	}
	if to == (common.Address{}) {
		return revert.ErrZeroAddress
	}
	pool := p.Pool()
	if !amountOutA.Lt(&pool.ReserveA) || !amountOutB.Lt(&pool.ReserveB) {
		return fmt.Errorf("%w: out %s/%s, reserves %s/%s",
			ErrInsufficientLiquidity, amountOutA, amountOutB, &pool.ReserveA, &pool.ReserveB)
	}

	if !amountOutA.IsZero() {
		if err := p.tokenA.Transfer(ctx, p.address, to, amountOutA); err != nil {
			return err
		}
	}
	if !amountOutB.IsZero() {
		if err := p.tokenB.Transfer(ctx, p.address, to, amountOutB); err != nil {
			return err
		}
	}

	balanceA, balanceB := p.balances()
	amountInA := inputOf(balanceA, &pool.ReserveA, amountOutA)
	amountInB := inputOf(balanceB, &pool.ReserveB, amountOutB)
	if amountInA.IsZero() && amountInB.IsZero() {
		return ErrInsufficientInputAmount
	}
	if err := checkK(&pool, balanceA, balanceB, amountInA, amountInB); err != nil {
		return err
	}

	if err := p.update(&pool, balanceA, balanceB); err != nil {
		return err
	}
	p.commit(pool)

	p.env.Events().Emit(p.address, events.Swap{
		Sender:     caller,
		AmountAIn:  *amountInA,
		AmountBIn:  *amountInB,
		AmountAOut: *amountOutA,
		AmountBOut: *amountOutB,
		To:         to,
	})
	p.env.Record((*metrics.Metrics).RecordSwap)
	p.env.Logger().Debug("swap committed",
		zap.Stringer("to", to),
		zap.Stringer("amountAIn", amountInA),
		zap.Stringer("amountBIn", amountInB),
		zap.Stringer("amountAOut", amountOutA),
		zap.Stringer("amountBOut", amountOutB),
	)
	return nil
}

// inputOf derives the input of one side: whatever the balance holds above
// what the reserve keeps after the output left.
func inputOf(balance, reserve, out *uint256.Int) *uint256.Int {
	kept := new(uint256.Int).Sub(reserve, out)
	if !kept.Lt(balance) {
		return new(uint256.Int)
	}
	return kept.Sub(balance, kept)
}

// checkK requires (balA*10000 - inA*fee) * (balB*10000 - inB*fee) to be at
// least reserveA*reserveB*10000^2.
func checkK(pool *Pool, balanceA, balanceB, amountInA, amountInB *uint256.Int) error {
	fee := uint256.NewInt(uint64(pool.SwapFeeBps))
	adjusted := func(balance, in *uint256.Int) (*uint256.Int, error) {
		scaled, err := mul(balance, feeDenominator)
		if err != nil {
			return nil, err
		}
		charged, err := mul(in, fee)
		if err != nil {
			return nil, err
		}
		return scaled.Sub(scaled, charged), nil
	}
	adjA, err := adjusted(balanceA, amountInA)
	if err != nil {
		return err
	}
	adjB, err := adjusted(balanceB, amountInB)
	if err != nil {
		return err
	}
	after, err := mul(adjA, adjB)
	if err != nil {
		return err
	}
	before, err := mul(&pool.ReserveA, &pool.ReserveB)
	if err != nil {
		return err
	}
	if before, err = mul(before, uint256.NewInt(FeeDenominator*FeeDenominator)); err != nil {
		return err
	}
	if after.Lt(before) {
		return fmt.Errorf("%w: %s < %s", ErrKInvariant, after, before)
	}
	return nil
}

func checkPriceImpact(pool *Pool, amountIn, reserveIn *uint256.Int) error {
	if pool.MaxPriceImpactBps == 0 {
		return nil
	}
	impact, err := PriceImpactBps(amountIn, reserveIn)
	if err != nil {
		return err
	}
	if uint256.NewInt(uint64(pool.MaxPriceImpactBps)).Lt(impact) {
		return fmt.Errorf("%w: %s bps, cap %d", ErrPriceImpactExceeded, impact, pool.MaxPriceImpactBps)
	}
	return nil
}

func splitOut(assetIn Side, out *uint256.Int) (*uint256.Int, *uint256.Int) {
	if assetIn == SideA {
		return new(uint256.Int), out
	}
	return out, new(uint256.Int)
}
