// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events defines the observable records emitted by the exchange
// contracts and the append-only log that stores them.
package events

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Event is a typed record. Values returns the fields in ABI input order.
type Event interface {
	EventName() string
	Values() []any
}

func b(x uint256.Int) *big.Int { return x.ToBig() }

func u64(x uint64) *big.Int { return new(big.Int).SetUint64(x) }

// =========================================================================
// Pair events
// =========================================================================

// Mint is emitted when liquidity shares are minted against deposited assets.
type Mint struct {
	Sender  common.Address
	AmountA uint256.Int
	AmountB uint256.Int
}

func (Mint) EventName() string { return "Mint" }
func (e Mint) Values() []any   { return []any{e.Sender, b(e.AmountA), b(e.AmountB)} }

// Burn is emitted when shares are redeemed for the underlying assets.
type Burn struct {
	Sender  common.Address
	AmountA uint256.Int
	AmountB uint256.Int
	To      common.Address
}

func (Burn) EventName() string { return "Burn" }
func (e Burn) Values() []any   { return []any{e.Sender, b(e.AmountA), b(e.AmountB), e.To} }

type Swap struct {
	Sender     common.Address
	AmountAIn  uint256.Int
	AmountBIn  uint256.Int
	AmountAOut uint256.Int
	AmountBOut uint256.Int
	To         common.Address
}

func (Swap) EventName() string { return "Swap" }
func (e Swap) Values() []any {
	return []any{e.Sender, b(e.AmountAIn), b(e.AmountBIn), b(e.AmountAOut), b(e.AmountBOut), e.To}
}

// Sync carries the reserves after every reserve update.
type Sync struct {
	ReserveA uint256.Int
	ReserveB uint256.Int
}

func (Sync) EventName() string { return "Sync" }
func (e Sync) Values() []any   { return []any{b(e.ReserveA), b(e.ReserveB)} }

// =========================================================================
// Farm events
// =========================================================================

type Deposit struct {
	User   common.Address
	PoolID uint64
	Amount uint256.Int
}

func (Deposit) EventName() string { return "Deposit" }
func (e Deposit) Values() []any   { return []any{e.User, u64(e.PoolID), b(e.Amount)} }

type Withdraw struct {
	User   common.Address
	PoolID uint64
	Amount uint256.Int
}

func (Withdraw) EventName() string { return "Withdraw" }
func (e Withdraw) Values() []any   { return []any{e.User, u64(e.PoolID), b(e.Amount)} }

type Harvest struct {
	User   common.Address
	PoolID uint64
	Amount uint256.Int
}

func (Harvest) EventName() string { return "Harvest" }
func (e Harvest) Values() []any   { return []any{e.User, u64(e.PoolID), b(e.Amount)} }

type EmergencyWithdraw struct {
	User   common.Address
	PoolID uint64
	Amount uint256.Int
}

func (EmergencyWithdraw) EventName() string { return "EmergencyWithdraw" }
func (e EmergencyWithdraw) Values() []any   { return []any{e.User, u64(e.PoolID), b(e.Amount)} }

type PoolAdded struct {
	PoolID        uint64
	Asset         common.Address
	AllocPoints   uint256.Int
	DepositFeeBps uint16
	LockupSeconds uint64
}

func (PoolAdded) EventName() string { return "PoolAdded" }
func (e PoolAdded) Values() []any {
	return []any{u64(e.PoolID), e.Asset, b(e.AllocPoints), u64(uint64(e.DepositFeeBps)), u64(e.LockupSeconds)}
}

type PoolUpdated struct {
	PoolID        uint64
	AllocPoints   uint256.Int
	DepositFeeBps uint16
	LockupSeconds uint64
}

func (PoolUpdated) EventName() string { return "PoolUpdated" }
func (e PoolUpdated) Values() []any {
	return []any{u64(e.PoolID), b(e.AllocPoints), u64(uint64(e.DepositFeeBps)), u64(e.LockupSeconds)}
}

type EmissionRateUpdated struct {
	Caller   common.Address
	Previous uint256.Int
	Next     uint256.Int
}

func (EmissionRateUpdated) EventName() string { return "EmissionRateUpdated" }
func (e EmissionRateUpdated) Values() []any {
	return []any{e.Caller, b(e.Previous), b(e.Next)}
}

type EmergencyToggled struct {
	Caller  common.Address
	Enabled bool
}

func (EmergencyToggled) EventName() string { return "EmergencyToggled" }
func (e EmergencyToggled) Values() []any   { return []any{e.Caller, e.Enabled} }

// =========================================================================
// Token and admin events
// =========================================================================

type Transfer struct {
	From  common.Address
	To    common.Address
	Value uint256.Int
}

func (Transfer) EventName() string { return "Transfer" }
func (e Transfer) Values() []any   { return []any{e.From, e.To, b(e.Value)} }

type Approval struct {
	Owner   common.Address
	Spender common.Address
	Value   uint256.Int
}

func (Approval) EventName() string { return "Approval" }
func (e Approval) Values() []any   { return []any{e.Owner, e.Spender, b(e.Value)} }

// ParamUpdated records a numeric parameter change by an admin.
type ParamUpdated struct {
	Caller common.Address
	Param  string
	Value  uint256.Int
}

func (ParamUpdated) EventName() string { return "ParamUpdated" }
func (e ParamUpdated) Values() []any   { return []any{e.Caller, e.Param, b(e.Value)} }

// RecipientUpdated records an address parameter change by an admin.
type RecipientUpdated struct {
	Caller    common.Address
	Param     string
	Recipient common.Address
}

func (RecipientUpdated) EventName() string { return "RecipientUpdated" }
func (e RecipientUpdated) Values() []any   { return []any{e.Caller, e.Param, e.Recipient} }
