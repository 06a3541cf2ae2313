// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package farm

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/revert"
)

// accrue advances pool to block without side effects and returns the reward
// the advance has to mint. Nothing accrues while the pool is empty or
// unweighted; the remainder of every integer division stays unminted.
func accrue(pool FarmPool, params *Params, block uint64) (FarmPool, *uint256.Int, error) {
	reward := new(uint256.Int)
	if block <= pool.LastRewardBlock {
		return pool, reward, nil
	}
	if pool.TotalStaked.IsZero() || pool.AllocPoints == 0 || params.TotalAllocPoints == 0 {
		pool.LastRewardBlock = block
		return pool, reward, nil
	}

	emitted, err := mul(uint256.NewInt(block-pool.LastRewardBlock), &params.EmissionPerBlock)
	if err != nil {
		return pool, nil, err
	}
	reward, err = mulDiv(emitted, uint256.NewInt(pool.AllocPoints), uint256.NewInt(params.TotalAllocPoints))
	if err != nil {
		return pool, nil, err
	}
	if !reward.IsZero() {
		perShare, err := mulDiv(reward, accPrecision, &pool.TotalStaked)
		if err != nil {
			return pool, nil, err
		}
		acc, err := add(&pool.AccRewardPerShare, perShare)
		if err != nil {
			return pool, nil, err
		}
		pool.AccRewardPerShare = *acc
	}
	pool.LastRewardBlock = block
	return pool, reward, nil
}

// catchUp brings e up to the current block, minting its reward to the farm
// and the dev fund's cut to the dev fund.
func (f *Farm) catchUp(ctx context.Context, e *poolEntry) error {
	pool := f.poolOf(e)
	params := f.Params()
	next, reward, err := accrue(pool, &params, f.env.BlockNumber())
	if err != nil {
		return err
	}
	if next.LastRewardBlock == pool.LastRewardBlock {
		return nil
	}

	if !reward.IsZero() {
		if err := f.reward.Mint(ctx, f.address, f.address, reward); err != nil {
			return err
		}
		devCut := new(uint256.Int).Div(reward, devFundDivisor)
		if !devCut.IsZero() {
			if err := f.reward.Mint(ctx, f.address, params.DevFund, devCut); err != nil {
				return err
			}
		}
		f.env.Logger().Debug("pool caught up",
			zap.Uint64("pid", pool.ID),
			zap.Uint64("from", pool.LastRewardBlock),
			zap.Uint64("to", next.LastRewardBlock),
			zap.Stringer("reward", reward),
			zap.Stringer("accRewardPerShare", &next.AccRewardPerShare),
		)
	}
	f.commitPool(e, next)
	return nil
}

// MassCatchUp brings every pool up to the current block.
func (f *Farm) MassCatchUp(ctx context.Context) error {
	return f.exec(ctx, "massCatchUp", f.massCatchUp)
}

func (f *Farm) massCatchUp(ctx context.Context) error {
	f.mu.RLock()
	pools := make([]*poolEntry, len(f.pools))
	copy(pools, f.pools)
	f.mu.RUnlock()

	for i := 0; i < len(pools) && i < MaxPools; i++ {
		if err := f.catchUp(ctx, pools[i]); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePool brings pool pid up to the current block.
func (f *Farm) UpdatePool(ctx context.Context, pid uint64) error {
	return f.exec(ctx, "updatePool", func(ctx context.Context) error {
		e, err := f.entry(pid)
		if err != nil {
			return err
		}
		return f.catchUp(ctx, e)
	})
}

// PendingReward returns what user could harvest from pool pid at the
// current block. It simulates the catch-up without committing it.
func (f *Farm) PendingReward(pid uint64, user common.Address) (*uint256.Int, error) {
	e, err := f.entry(pid)
	if err != nil {
		return nil, err
	}
	params := f.Params()
	pool, _, err := accrue(f.poolOf(e), &params, f.env.BlockNumber())
	if err != nil {
		return nil, err
	}
	stake, err := f.GetUserInfo(pid, user)
	if err != nil {
		return nil, err
	}
	return pendingOf(&stake, &pool.AccRewardPerShare)
}

// pendingOf is amount*acc/AccPrecision - rewardDebt, floored at zero.
func pendingOf(stake *UserStake, acc *uint256.Int) (*uint256.Int, error) {
	accrued, err := rewardDebt(&stake.Amount, acc)
	if err != nil {
		return nil, err
	}
	if accrued.Lt(&stake.RewardDebt) {
		return new(uint256.Int), nil
	}
	return accrued.Sub(accrued, &stake.RewardDebt), nil
}

func rewardDebt(amount, acc *uint256.Int) (*uint256.Int, error) {
	return mulDiv(amount, acc, accPrecision)
}

func mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s", revert.ErrOverflow, x, y)
	}
	return z, nil
}

func add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("%w: %s + %s", revert.ErrOverflow, x, y)
	}
	return z, nil
}

// mulDiv computes x*y/d with a 512-bit intermediate product. d is never
// zero at the call sites.
func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s / %s", revert.ErrOverflow, x, y, d)
	}
	return z, nil
}
