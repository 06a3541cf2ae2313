// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package amm implements a constant-product exchange pair for two fungible
// assets: reserve accounting, liquidity shares, fee-adjusted swaps and a
// protocol fee split.
package amm

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/revert"
)

const (
	// FeeDenominator is the basis-point denominator for all fee math.
	FeeDenominator = 10000

	// MinimumLiquidity shares are locked forever on the first deposit.
	MinimumLiquidity = 1000

	MaxSwapFeeBps          = 1000 // 10%
	MaxProtocolFeeShareBps = 5000 // 50%
	MaxPriceImpactBps      = 5000 // 50%

	// DefaultSwapFeeBps matches the classic 0.3% pair fee.
	DefaultSwapFeeBps = 30
)

var (
	// PriceScale is the fixed-point scale of GetPrice.
	PriceScale = uint256.NewInt(1_000_000_000_000_000_000)

	// MaxReserve caps each reserve at 2^112-1 so fee-adjusted products stay
	// inside 256 bits.
	MaxReserve = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 112), uint256.NewInt(1))

	feeDenominator = uint256.NewInt(FeeDenominator)
	minLiquidity   = uint256.NewInt(MinimumLiquidity)
)

// Side selects one of the pair's two assets.
type Side uint8

const (
	SideA Side = iota
	SideB
)

func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// Pool is the pair's accounting state.
type Pool struct {
	ReserveA    uint256.Int
	ReserveB    uint256.Int
	TotalShares uint256.Int
	// KLast is ReserveA*ReserveB after the latest mint or burn, used only
	// for the protocol fee split.
	KLast uint256.Int

	SwapFeeBps          uint16
	ProtocolFeeShareBps uint16
	MaxPriceImpactBps   uint16
	FeeRecipient        common.Address

	// LastBlock is the height of the latest reserve update.
	LastBlock uint64
}

func (p *Pool) reserves(in Side) (*uint256.Int, *uint256.Int) {
	if in == SideA {
		return &p.ReserveA, &p.ReserveB
	}
	return &p.ReserveB, &p.ReserveA
}

// protocolFeeOn reports whether part of the swap fees accrues to the fee
// recipient.
func (p *Pool) protocolFeeOn() bool {
	return p.FeeRecipient != (common.Address{}) && p.ProtocolFeeShareBps > 0
}

// Config holds the deployment parameters of a pair.
type Config struct {
	Address             common.Address
	SwapFeeBps          uint16
	ProtocolFeeShareBps uint16
	MaxPriceImpactBps   uint16
	FeeRecipient        common.Address
}

// Verify checks parameter bounds.
func (c Config) Verify() error {
	if c.Address == (common.Address{}) {
		return fmt.Errorf("%w: pair address", revert.ErrZeroAddress)
	}
	if c.SwapFeeBps > MaxSwapFeeBps {
		return fmt.Errorf("%w: %d bps", ErrInvalidFee, c.SwapFeeBps)
	}
	if c.ProtocolFeeShareBps > MaxProtocolFeeShareBps {
		return fmt.Errorf("%w: %d bps", ErrInvalidProtocolFeeShare, c.ProtocolFeeShareBps)
	}
	if c.MaxPriceImpactBps > MaxPriceImpactBps {
		return fmt.Errorf("%w: %d bps", ErrInvalidPriceImpact, c.MaxPriceImpactBps)
	}
	return nil
}

// SwapExactInParams sells an exact input amount.
type SwapExactInParams struct {
	AssetIn      Side
	AmountIn     *uint256.Int
	MinAmountOut *uint256.Int
	To           common.Address
	// Deadline is a unix timestamp; zero disables the check.
	Deadline uint64
}

// SwapExactOutParams buys an exact output amount.
type SwapExactOutParams struct {
	AssetIn     Side
	AmountOut   *uint256.Int
	MaxAmountIn *uint256.Int
	To          common.Address
	Deadline    uint64
}

// AddLiquidityParams deposits both assets in the current ratio.
type AddLiquidityParams struct {
	DesiredA *uint256.Int
	DesiredB *uint256.Int
	MinA     *uint256.Int
	MinB     *uint256.Int
	To       common.Address
	Deadline uint64
}

// RemoveLiquidityParams redeems shares for both assets.
type RemoveLiquidityParams struct {
	Shares   *uint256.Int
	MinA     *uint256.Int
	MinB     *uint256.Int
	To       common.Address
	Deadline uint64
}

// Errors - Validation
var (
	ErrInvalidInput     = revert.New(revert.Validation, "INVALID_INPUT")
	ErrInvalidRecipient = revert.New(revert.Validation, "INVALID_TO")
	ErrIdenticalAssets  = revert.New(revert.Validation, "IDENTICAL_ADDRESSES")
)

// Errors - Invariant
var (
	ErrKInvariant                  = revert.New(revert.Invariant, "K")
	ErrInsufficientLiquidity       = revert.New(revert.Invariant, "INSUFFICIENT_LIQUIDITY")
	ErrInsufficientLiquidityMinted = revert.New(revert.Invariant, "INSUFFICIENT_LIQUIDITY_MINTED")
	ErrInsufficientLiquidityBurned = revert.New(revert.Invariant, "INSUFFICIENT_LIQUIDITY_BURNED")
	ErrInsufficientOutputAmount    = revert.New(revert.Invariant, "INSUFFICIENT_OUTPUT_AMOUNT")
	ErrInsufficientInputAmount     = revert.New(revert.Invariant, "INSUFFICIENT_INPUT_AMOUNT")
	ErrReserveOverflow             = revert.New(revert.Invariant, "RESERVE_OVERFLOW")
)

// Errors - Policy
var (
	ErrInsufficientAAmount     = revert.New(revert.Policy, "INSUFFICIENT_A_AMOUNT")
	ErrInsufficientBAmount     = revert.New(revert.Policy, "INSUFFICIENT_B_AMOUNT")
	ErrExcessiveInputAmount    = revert.New(revert.Policy, "EXCESSIVE_INPUT_AMOUNT")
	ErrPriceImpactExceeded     = revert.New(revert.Policy, "PRICE_IMPACT_EXCEEDED")
	ErrInvalidFee              = revert.New(revert.Policy, "INVALID_SWAP_FEE")
	ErrInvalidProtocolFeeShare = revert.New(revert.Policy, "INVALID_PROTOCOL_FEE_SHARE")
	ErrInvalidPriceImpact      = revert.New(revert.Policy, "INVALID_PRICE_IMPACT")
)
