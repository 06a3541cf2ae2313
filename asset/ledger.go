// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package asset defines the fungible-asset ledger the exchange settles
// against and an in-process ERC-20 style implementation of it.
package asset

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/revert"
)

// Ledger moves balances of one asset. Any returned error aborts the calling
// operation. from is always an address the host has authenticated or the
// calling contract itself.
type Ledger interface {
	Address() common.Address
	BalanceOf(account common.Address) *uint256.Int
	Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error
}

// Mintable is a ledger whose supply can be created and destroyed by
// privileged callers.
type Mintable interface {
	Ledger
	TotalSupply() *uint256.Int
	Mint(ctx context.Context, minter, to common.Address, amount *uint256.Int) error
	Burn(ctx context.Context, burner, from common.Address, amount *uint256.Int) error
}

// TransferHook runs after a transfer has moved balances. A non-nil error
// aborts the transfer. Hooks receive the operation context and may call back
// into other contracts.
type TransferHook func(ctx context.Context, from, to common.Address, amount *uint256.Int) error

// Errors - Ledger
var (
	ErrInsufficientBalance   = revert.New(revert.Validation, "TRANSFER_AMOUNT_EXCEEDS_BALANCE")
	ErrInsufficientAllowance = revert.New(revert.Validation, "TRANSFER_AMOUNT_EXCEEDS_ALLOWANCE")
	ErrInvalidTransferFee    = revert.New(revert.Validation, "INVALID_TRANSFER_FEE")
)
