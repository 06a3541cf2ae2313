// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package farm

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/access"
	"github.com/parsdao/swapfarm/events"
	"github.com/parsdao/swapfarm/revert"
)

// Add registers a staking pool and returns its id. Every existing pool is
// caught up first so elapsed blocks keep their old weighting. Owner only.
func (f *Farm) Add(ctx context.Context, caller common.Address, params PoolParams) (uint64, error) {
	var pid uint64
	err := f.exec(ctx, "add", func(ctx context.Context) error {
		if err := f.roles.Require(caller, access.Owner); err != nil {
			return err
		}
		if params.Asset == nil {
			return ErrInvalidAsset
		}
		assetAddr := params.Asset.Address()
		if assetAddr == (common.Address{}) {
			return fmt.Errorf("%w: pool asset", revert.ErrZeroAddress)
		}
		if err := verifyPoolTerms(params.DepositFeeBps, params.LockupSeconds); err != nil {
			return err
		}
		if _, dup := f.PoolOf(assetAddr); dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePool, assetAddr)
		}
		if f.PoolLength() >= MaxPools {
			return fmt.Errorf("%w: %d", ErrTooManyPools, MaxPools)
		}
		if err := f.massCatchUp(ctx); err != nil {
			return err
		}

		farm := f.Params()
		total := farm.TotalAllocPoints + params.AllocPoints
		if total < farm.TotalAllocPoints {
			return fmt.Errorf("%w: allocation points", revert.ErrOverflow)
		}
		farm.TotalAllocPoints = total

		lastRewardBlock := f.env.BlockNumber()
		if lastRewardBlock < farm.StartBlock {
			lastRewardBlock = farm.StartBlock
		}

		f.mu.Lock()
		pid = uint64(len(f.pools))
		e := &poolEntry{
			farm:   f,
			key:    f.poolStorageKey(pid),
			ledger: params.Asset,
			pool:   FarmPool{ID: pid, Asset: assetAddr},
		}
		f.pools = append(f.pools, e)
		f.byAsset[assetAddr] = pid
		f.mu.Unlock()
		f.env.Journal().Append(func() {
			f.mu.Lock()
			f.pools = f.pools[:pid]
			delete(f.byAsset, assetAddr)
			f.mu.Unlock()
		})

		f.commitPool(e, FarmPool{
			ID:              pid,
			Asset:           assetAddr,
			AllocPoints:     params.AllocPoints,
			LastRewardBlock: lastRewardBlock,
			DepositFeeBps:   params.DepositFeeBps,
			LockupSeconds:   params.LockupSeconds,
		})
		f.commitParams(farm)

		f.env.Events().Emit(f.address, events.PoolAdded{
			PoolID:        pid,
			Asset:         assetAddr,
			AllocPoints:   *uint256.NewInt(params.AllocPoints),
			DepositFeeBps: params.DepositFeeBps,
			LockupSeconds: params.LockupSeconds,
		})
		f.env.Logger().Info("farm pool added",
			zap.Uint64("pid", pid),
			zap.Stringer("asset", assetAddr),
			zap.Uint64("allocPoints", params.AllocPoints),
		)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// Set changes the weight and terms of pool pid. A weight change catches up
// every pool first. Owner or operator.
func (f *Farm) Set(ctx context.Context, caller common.Address, pid, allocPoints uint64, depositFeeBps uint16, lockupSeconds uint64) error {
	return f.exec(ctx, "set", func(ctx context.Context) error {
		if err := f.roles.Require(caller, access.Owner, access.Operator); err != nil {
			return err
		}
		e, err := f.entry(pid)
		if err != nil {
			return err
		}
		if err := verifyPoolTerms(depositFeeBps, lockupSeconds); err != nil {
			return err
		}

		if f.poolOf(e).AllocPoints != allocPoints {
			if err := f.massCatchUp(ctx); err != nil {
				return err
			}
			pool := f.poolOf(e)
			farm := f.Params()
			total := farm.TotalAllocPoints - pool.AllocPoints + allocPoints
			if total < allocPoints {
				return fmt.Errorf("%w: allocation points", revert.ErrOverflow)
			}
			farm.TotalAllocPoints = total
			f.commitParams(farm)
		}

		pool := f.poolOf(e)
		pool.AllocPoints = allocPoints
		pool.DepositFeeBps = depositFeeBps
		pool.LockupSeconds = lockupSeconds
		f.commitPool(e, pool)

		f.env.Events().Emit(f.address, events.PoolUpdated{
			PoolID:        pid,
			AllocPoints:   *uint256.NewInt(allocPoints),
			DepositFeeBps: depositFeeBps,
			LockupSeconds: lockupSeconds,
		})
		return nil
	})
}

// SetEmissionRate changes the reward minted per block. Every pool is caught
// up at the old rate first. Owner or operator.
func (f *Farm) SetEmissionRate(ctx context.Context, caller common.Address, perBlock *uint256.Int) error {
	return f.exec(ctx, "setEmissionRate", func(ctx context.Context) error {
		if err := f.roles.Require(caller, access.Owner, access.Operator); err != nil {
			return err
		}
		if perBlock == nil {
			return fmt.Errorf("%w: missing emission rate", ErrInvalidAmount)
		}
		if err := f.massCatchUp(ctx); err != nil {
			return err
		}
		farm := f.Params()
		prev := farm.EmissionPerBlock
		farm.EmissionPerBlock.Set(perBlock)
		f.commitParams(farm)

		f.env.Events().Emit(f.address, events.EmissionRateUpdated{Caller: caller, Previous: prev, Next: *perBlock})
		f.env.Logger().Info("emission rate updated",
			zap.Stringer("previous", &prev),
			zap.Stringer("next", perBlock),
		)
		return nil
	})
}

// SetEmergency toggles emergency withdrawals. Owner only.
func (f *Farm) SetEmergency(ctx context.Context, caller common.Address, enabled bool) error {
	return f.exec(ctx, "setEmergency", func(context.Context) error {
		if err := f.roles.Require(caller, access.Owner); err != nil {
			return err
		}
		farm := f.Params()
		farm.Emergency = enabled
		f.commitParams(farm)
		f.env.Events().Emit(f.address, events.EmergencyToggled{Caller: caller, Enabled: enabled})
		f.env.Logger().Warn("emergency withdrawals toggled", zap.Bool("enabled", enabled))
		return nil
	})
}

// SetDevFund changes who receives the dev fund cut. Owner only.
func (f *Farm) SetDevFund(ctx context.Context, caller, devFund common.Address) error {
	return f.setRecipient(ctx, caller, "devFund", devFund, func(p *Params) { p.DevFund = devFund })
}

// SetFeeRecipient changes who receives deposit fees. Owner only.
func (f *Farm) SetFeeRecipient(ctx context.Context, caller, recipient common.Address) error {
	return f.setRecipient(ctx, caller, "feeRecipient", recipient, func(p *Params) { p.FeeRecipient = recipient })
}

func (f *Farm) setRecipient(ctx context.Context, caller common.Address, name string, recipient common.Address, apply func(*Params)) error {
	return f.exec(ctx, name, func(context.Context) error {
		if err := f.roles.Require(caller, access.Owner); err != nil {
			return err
		}
		if recipient == (common.Address{}) {
			return fmt.Errorf("%w: %s", revert.ErrZeroAddress, name)
		}
		farm := f.Params()
		apply(&farm)
		f.commitParams(farm)
		f.env.Events().Emit(f.address, events.RecipientUpdated{Caller: caller, Param: name, Recipient: recipient})
		return nil
	})
}
