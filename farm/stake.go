// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package farm

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/events"
	"github.com/parsdao/swapfarm/metrics"
)

// Deposit settles user's pending reward in pool pid and stakes amount of
// the pool asset. The deposit fee is taken from what actually arrived. A
// zero amount only settles. Returns the amount credited to the stake.
func (f *Farm) Deposit(ctx context.Context, user common.Address, pid uint64, amount *uint256.Int) (*uint256.Int, error) {
	credited := new(uint256.Int)
	err := f.exec(ctx, "deposit", func(ctx context.Context) error {
		e, err := f.entry(pid)
		if err != nil {
			return err
		}
		if err := f.catchUp(ctx, e); err != nil {
			return err
		}
		s := f.stakeOf(stakeID{pid, user})
		pool := f.poolOf(e)
		stake := f.stakeSnapshot(s)
		if err := f.settle(ctx, &pool, &stake, user); err != nil {
			return err
		}

		if amount != nil && !amount.IsZero() {
			before := e.ledger.BalanceOf(f.address)
			if err := e.ledger.TransferFrom(ctx, f.address, user, f.address, amount); err != nil {
				return err
			}
			after := e.ledger.BalanceOf(f.address)
			if !before.Lt(after) {
				return fmt.Errorf("%w: nothing received", ErrInvalidAmount)
			}
			received := after.Sub(after, before)
			fee, err := mulDiv(received, uint256.NewInt(uint64(pool.DepositFeeBps)), basisPoints)
			if err != nil {
				return err
			}
			if !fee.IsZero() {
				if err := e.ledger.Transfer(ctx, f.address, f.Params().FeeRecipient, fee); err != nil {
					return err
				}
			}
			credited = received.Sub(received, fee)

			staked, err := add(&stake.Amount, credited)
			if err != nil {
				return err
			}
			stake.Amount = *staked
			total, err := add(&pool.TotalStaked, credited)
			if err != nil {
				return err
			}
			pool.TotalStaked = *total
			if pool.LockupSeconds > 0 {
				stake.LockedUntil = f.env.Now() + pool.LockupSeconds
			}
		}

		if err := f.rebase(&pool, &stake); err != nil {
			return err
		}
		f.commitPool(e, pool)
		f.commitStake(s, stake)

		f.env.Events().Emit(f.address, events.Deposit{User: user, PoolID: pid, Amount: *credited})
		f.env.Record((*metrics.Metrics).RecordDeposit)
		f.env.Logger().Debug("deposit committed",
			zap.Stringer("user", user),
			zap.Uint64("pid", pid),
			zap.Stringer("amount", credited),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return credited, nil
}

// Withdraw settles user's pending reward in pool pid and returns amount of
// the staked asset.
func (f *Farm) Withdraw(ctx context.Context, user common.Address, pid uint64, amount *uint256.Int) error {
	return f.exec(ctx, "withdraw", func(ctx context.Context) error {
		e, err := f.entry(pid)
		if err != nil {
			return err
		}
		if amount == nil {
			amount = new(uint256.Int)
		}
		if err := f.catchUp(ctx, e); err != nil {
			return err
		}
		s := f.stakeOf(stakeID{pid, user})
		pool := f.poolOf(e)
		stake := f.stakeSnapshot(s)
		if stake.Amount.Lt(amount) {
			return fmt.Errorf("%w: staked %s, requested %s", ErrInsufficientStakedAmount, &stake.Amount, amount)
		}
		if err := f.settle(ctx, &pool, &stake, user); err != nil {
			return err
		}

		if !amount.IsZero() {
			stake.Amount.Sub(&stake.Amount, amount)
			pool.TotalStaked.Sub(&pool.TotalStaked, amount)
		}
		if err := f.rebase(&pool, &stake); err != nil {
			return err
		}
		f.commitPool(e, pool)
		f.commitStake(s, stake)

		if !amount.IsZero() {
			if err := e.ledger.Transfer(ctx, f.address, user, amount); err != nil {
				return err
			}
		}

		f.env.Events().Emit(f.address, events.Withdraw{User: user, PoolID: pid, Amount: *amount})
		f.env.Record((*metrics.Metrics).RecordWithdraw)
		f.env.Logger().Debug("withdraw committed",
			zap.Stringer("user", user),
			zap.Uint64("pid", pid),
			zap.Stringer("amount", amount),
		)
		return nil
	})
}

// Harvest pays user's pending reward in pool pid once the harvest lock has
// expired, and re-arms the lock. Returns the amount paid.
func (f *Farm) Harvest(ctx context.Context, user common.Address, pid uint64) (*uint256.Int, error) {
	var paid *uint256.Int
	err := f.exec(ctx, "harvest", func(ctx context.Context) error {
		e, err := f.entry(pid)
		if err != nil {
			return err
		}
		if err := f.catchUp(ctx, e); err != nil {
			return err
		}
		s := f.stakeOf(stakeID{pid, user})
		pool := f.poolOf(e)
		stake := f.stakeSnapshot(s)

		now := f.env.Now()
		if now < stake.LockedUntil {
			return fmt.Errorf("%w: until %d, now %d", ErrHarvestLocked, stake.LockedUntil, now)
		}
		pending, err := pendingOf(&stake, &pool.AccRewardPerShare)
		if err != nil {
			return err
		}
		if pending.IsZero() {
			return ErrNoPendingReward
		}
		if paid, err = f.safeRewardTransfer(ctx, user, pending); err != nil {
			return err
		}
		stake.LastHarvestTime = now
		if pool.LockupSeconds > 0 {
			stake.LockedUntil = now + pool.LockupSeconds
		}
		if err := f.rebase(&pool, &stake); err != nil {
			return err
		}
		f.commitStake(s, stake)

		f.env.Events().Emit(f.address, events.Harvest{User: user, PoolID: pid, Amount: *paid})
		f.env.Record((*metrics.Metrics).RecordHarvest)
		f.env.Logger().Debug("harvest committed",
			zap.Stringer("user", user),
			zap.Uint64("pid", pid),
			zap.Stringer("amount", paid),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// EmergencyWithdraw returns user's whole stake in pool pid without paying
// rewards. Pending rewards are forfeited. Only allowed while emergency
// withdrawals are enabled.
func (f *Farm) EmergencyWithdraw(ctx context.Context, user common.Address, pid uint64) (*uint256.Int, error) {
	var amount uint256.Int
	err := f.exec(ctx, "emergencyWithdraw", func(ctx context.Context) error {
		e, err := f.entry(pid)
		if err != nil {
			return err
		}
		if !f.Params().Emergency {
			return ErrEmergencyDisabled
		}
		if err := f.catchUp(ctx, e); err != nil {
			return err
		}
		s := f.stakeOf(stakeID{pid, user})
		pool := f.poolOf(e)
		stake := f.stakeSnapshot(s)

		amount = stake.Amount
		pool.TotalStaked.Sub(&pool.TotalStaked, &amount)
		f.commitPool(e, pool)
		f.commitStake(s, UserStake{LastHarvestTime: stake.LastHarvestTime})

		if !amount.IsZero() {
			if err := e.ledger.Transfer(ctx, f.address, user, &amount); err != nil {
				return err
			}
		}

		f.env.Events().Emit(f.address, events.EmergencyWithdraw{User: user, PoolID: pid, Amount: amount})
		f.env.Record((*metrics.Metrics).RecordEmergencyWithdraw)
		f.env.Logger().Warn("emergency withdraw",
			zap.Stringer("user", user),
			zap.Uint64("pid", pid),
			zap.Stringer("amount", &amount),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

// settle pays the reward stake has accrued against pool's accumulator.
func (f *Farm) settle(ctx context.Context, pool *FarmPool, stake *UserStake, user common.Address) error {
	if stake.Amount.IsZero() {
		return nil
	}
	pending, err := pendingOf(stake, &pool.AccRewardPerShare)
	if err != nil || pending.IsZero() {
		return err
	}
	paid, err := f.safeRewardTransfer(ctx, user, pending)
	if err != nil {
		return err
	}
	stake.LastHarvestTime = f.env.Now()
	f.env.Events().Emit(f.address, events.Harvest{User: user, PoolID: pool.ID, Amount: *paid})
	return nil
}

// rebase re-derives the reward debt from the current amount.
func (f *Farm) rebase(pool *FarmPool, stake *UserStake) error {
	debt, err := rewardDebt(&stake.Amount, &pool.AccRewardPerShare)
	if err != nil {
		return err
	}
	stake.RewardDebt = *debt
	return nil
}

// safeRewardTransfer pays up to amount of reward to to, capped at the
// reward balance that does not back staked principal.
func (f *Farm) safeRewardTransfer(ctx context.Context, to common.Address, amount *uint256.Int) (*uint256.Int, error) {
	available := f.reward.BalanceOf(f.address)
	principal := f.stakedReward()
	if !principal.Lt(available) {
		return new(uint256.Int), nil
	}
	available.Sub(available, principal)
	paid := new(uint256.Int).Set(amount)
	if available.Lt(paid) {
		paid.Set(available)
	}
	if err := f.reward.Transfer(ctx, f.address, to, paid); err != nil {
		return nil, err
	}
	return paid, nil
}

// stakedReward sums the principal staked in pools of the reward asset.
func (f *Farm) stakedReward() *uint256.Int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	total := new(uint256.Int)
	rewardAddr := f.reward.Address()
	for i := 0; i < len(f.pools) && i < MaxPools; i++ {
		if p := &f.pools[i].pool; p.Asset == rewardAddr {
			total.Add(total, &p.TotalStaked)
		}
	}
	return total
}
