// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package farm distributes a per-block reward emission across staking pools
// by allocation weight. Each pool keeps a reward-per-share accumulator and
// every stake settles lazily against it.
package farm

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/asset"
	"github.com/parsdao/swapfarm/revert"
)

const (
	// AccPrecision scales AccRewardPerShare.
	AccPrecision = 1_000_000_000_000

	// MaxPools bounds the registry and every mass catch-up loop.
	MaxPools = 256

	BasisPoints      = 10000
	MaxDepositFeeBps = 1000 // 10%
	MaxLockupSeconds = 14 * 24 * 60 * 60

	// DevFundDivisor: the dev fund receives reward/DevFundDivisor on top of
	// every pool reward.
	DevFundDivisor = 10
)

var (
	accPrecision   = uint256.NewInt(AccPrecision)
	basisPoints    = uint256.NewInt(BasisPoints)
	devFundDivisor = uint256.NewInt(DevFundDivisor)
)

// FarmPool is the accounting state of one staking pool.
type FarmPool struct {
	ID                uint64
	Asset             common.Address
	AllocPoints       uint64
	LastRewardBlock   uint64
	AccRewardPerShare uint256.Int
	DepositFeeBps     uint16
	LockupSeconds     uint64
	TotalStaked       uint256.Int
}

// UserStake is one user's position in one pool. After every settlement
// RewardDebt == Amount*AccRewardPerShare/AccPrecision.
type UserStake struct {
	Amount          uint256.Int
	RewardDebt      uint256.Int
	LastHarvestTime uint64
	LockedUntil     uint64
}

// Params are the farm-wide settings.
type Params struct {
	EmissionPerBlock uint256.Int
	TotalAllocPoints uint64
	StartBlock       uint64
	DevFund          common.Address
	FeeRecipient     common.Address
	Emergency        bool
}

// Config holds the deployment parameters of a farm.
type Config struct {
	Address          common.Address
	EmissionPerBlock *uint256.Int
	// StartBlock is the first block that accrues rewards.
	StartBlock   uint64
	DevFund      common.Address
	FeeRecipient common.Address
}

// Verify checks the configuration.
func (c Config) Verify() error {
	if c.Address == (common.Address{}) {
		return fmt.Errorf("%w: farm address", revert.ErrZeroAddress)
	}
	if c.DevFund == (common.Address{}) {
		return fmt.Errorf("%w: dev fund", revert.ErrZeroAddress)
	}
	if c.FeeRecipient == (common.Address{}) {
		return fmt.Errorf("%w: fee recipient", revert.ErrZeroAddress)
	}
	return nil
}

// PoolParams describes a pool to add.
type PoolParams struct {
	Asset         asset.Ledger
	AllocPoints   uint64
	DepositFeeBps uint16
	LockupSeconds uint64
}

func verifyPoolTerms(depositFeeBps uint16, lockupSeconds uint64) error {
	if depositFeeBps > MaxDepositFeeBps {
		return fmt.Errorf("%w: %d bps exceeds %d", ErrInvalidDepositFee, depositFeeBps, MaxDepositFeeBps)
	}
	if lockupSeconds > MaxLockupSeconds {
		return fmt.Errorf("%w: %ds exceeds %ds", ErrInvalidLockup, lockupSeconds, MaxLockupSeconds)
	}
	return nil
}

// Errors - Validation
var (
	ErrInvalidAmount = revert.New(revert.Validation, "INVALID_AMOUNT")
	ErrInvalidAsset  = revert.New(revert.Validation, "INVALID_ASSET")
	ErrUnknownPool   = revert.New(revert.Validation, "UNKNOWN_POOL")
	ErrDuplicatePool = revert.New(revert.Validation, "DUPLICATE_POOL")
)

// Errors - Policy
var (
	ErrInsufficientStakedAmount = revert.New(revert.Policy, "INSUFFICIENT_STAKED_AMOUNT")
	ErrHarvestLocked            = revert.New(revert.Policy, "HARVEST_LOCKED")
	ErrNoPendingReward          = revert.New(revert.Policy, "NO_PENDING_REWARD")
	ErrEmergencyDisabled        = revert.New(revert.Policy, "EMERGENCY_DISABLED")
	ErrInvalidDepositFee        = revert.New(revert.Policy, "INVALID_DEPOSIT_FEE")
	ErrInvalidLockup            = revert.New(revert.Policy, "INVALID_LOCKUP")
	ErrTooManyPools             = revert.New(revert.Policy, "TOO_MANY_POOLS")
)
