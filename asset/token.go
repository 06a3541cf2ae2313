// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/access"
	"github.com/parsdao/swapfarm/events"
	"github.com/parsdao/swapfarm/host"
	"github.com/parsdao/swapfarm/revert"
	"github.com/parsdao/swapfarm/state"
)

// BasisPoints is the denominator of TransferFeeBps.
const BasisPoints = 10000

// Config describes a token deployment.
type Config struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
	Owner    common.Address
	// TransferFeeBps is burned from every transfer. Non-zero values model
	// fee-on-transfer assets.
	TransferFeeBps uint16
}

// Token is an ERC-20 style ledger living in a host environment. Every
// mutation is journaled so it rolls back with the enclosing operation.
type Token struct {
	cfg   Config
	env   *host.Env
	roles *access.Table

	mu         sync.RWMutex
	supply     supplyRecord
	accounts   map[common.Address]*account
	allowances map[common.Address]map[common.Address]*allowance
	hook       TransferHook
	balanceKey string
	allowKey   string
}

var (
	_ Mintable     = (*Token)(nil)
	_ state.Record = (*account)(nil)
)

// NewToken deploys a token. The owner may grant the minter role.
func NewToken(env *host.Env, cfg Config) (*Token, error) {
	if cfg.TransferFeeBps > BasisPoints {
		return nil, ErrInvalidTransferFee
	}
	if cfg.Address == (common.Address{}) {
		return nil, fmt.Errorf("%w: token address", revert.ErrZeroAddress)
	}
	hexAddr := cfg.Address.Hex()
	return &Token{
		cfg:        cfg,
		env:        env,
		roles:      access.NewTable(cfg.Owner),
		supply:     supplyRecord{key: state.Key("supply/", cfg.Address.Bytes())},
		accounts:   make(map[common.Address]*account),
		allowances: make(map[common.Address]map[common.Address]*allowance),
		balanceKey: "bal/" + hexAddr + "/",
		allowKey:   "allow/" + hexAddr + "/",
	}, nil
}

func (t *Token) Address() common.Address { return t.cfg.Address }
func (t *Token) Symbol() string          { return t.cfg.Symbol }
func (t *Token) Decimals() uint8         { return t.cfg.Decimals }

// Roles exposes the token's role table (owner and minters).
func (t *Token) Roles() *access.Table { return t.roles }

// SetHook installs a post-transfer hook. Passing nil removes it.
func (t *Token) SetHook(h TransferHook) {
	t.mu.Lock()
	t.hook = h
	t.mu.Unlock()
}

func (t *Token) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(uint256.Int).Set(&t.supply.total)
}

func (t *Token) BalanceOf(owner common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if a, ok := t.accounts[owner]; ok {
		return new(uint256.Int).Set(&a.balance)
	}
	return new(uint256.Int)
}

func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if a, ok := t.allowances[owner][spender]; ok {
		return new(uint256.Int).Set(&a.amount)
	}
	return new(uint256.Int)
}

// Approve sets the amount spender may move out of owner's balance.
func (t *Token) Approve(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error {
	return t.env.Atomic(ctx, "approve", func(context.Context) error {
		if spender == (common.Address{}) {
			return revert.ErrZeroAddress
		}
		t.mu.Lock()
		t.setAllowance(owner, spender, amount)
		t.mu.Unlock()
		t.env.Events().Emit(t.cfg.Address, events.Approval{Owner: owner, Spender: spender, Value: *amount})
		return nil
	})
}

func (t *Token) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	return t.env.Atomic(ctx, "transfer", func(ctx context.Context) error {
		return t.transfer(ctx, from, to, amount)
	})
}

// TransferFrom moves amount from from to to, spending spender's allowance.
// A spender moving its own funds needs no allowance.
func (t *Token) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error {
	return t.env.Atomic(ctx, "transferFrom", func(ctx context.Context) error {
		if spender != from {
			t.mu.Lock()
			current := t.allowanceLocked(from, spender)
			if current.Lt(amount) {
				t.mu.Unlock()
				return fmt.Errorf("%w: %s allows %s, need %s", ErrInsufficientAllowance, from, current, amount)
			}
			remaining := new(uint256.Int).Sub(current, amount)
			t.setAllowance(from, spender, remaining)
			t.mu.Unlock()
		}
		return t.transfer(ctx, from, to, amount)
	})
}

// Mint creates amount for to. Requires the minter role.
func (t *Token) Mint(ctx context.Context, minter, to common.Address, amount *uint256.Int) error {
	return t.env.Atomic(ctx, "mint", func(context.Context) error {
		if err := t.roles.Require(minter, access.Minter); err != nil {
			return err
		}
		if to == (common.Address{}) {
			return revert.ErrZeroAddress
		}
		t.mu.Lock()
		supply, overflow := new(uint256.Int).AddOverflow(&t.supply.total, amount)
		if overflow {
			t.mu.Unlock()
			return fmt.Errorf("%w: %s supply", revert.ErrOverflow, t.cfg.Symbol)
		}
		t.setSupply(supply)
		acct := t.account(to)
		t.setBalance(acct, new(uint256.Int).Add(&acct.balance, amount))
		t.mu.Unlock()
		t.env.Events().Emit(t.cfg.Address, events.Transfer{To: to, Value: *amount})
		return nil
	})
}

// Burn destroys amount held by from. Requires the minter role; a holder may
// always burn its own balance.
func (t *Token) Burn(ctx context.Context, burner, from common.Address, amount *uint256.Int) error {
	return t.env.Atomic(ctx, "burn", func(context.Context) error {
		if burner != from {
			if err := t.roles.Require(burner, access.Minter); err != nil {
				return err
			}
		}
		t.mu.Lock()
		acct := t.account(from)
		if acct.balance.Lt(amount) {
			t.mu.Unlock()
			return fmt.Errorf("%w: burn %s from %s", ErrInsufficientBalance, amount, from)
		}
		t.setBalance(acct, new(uint256.Int).Sub(&acct.balance, amount))
		t.setSupply(new(uint256.Int).Sub(&t.supply.total, amount))
		t.mu.Unlock()
		t.env.Events().Emit(t.cfg.Address, events.Transfer{From: from, Value: *amount})
		return nil
	})
}

func (t *Token) transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return revert.ErrZeroAddress
	}

	t.mu.Lock()
	src := t.account(from)
	if src.balance.Lt(amount) {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s holds %s, need %s", ErrInsufficientBalance, from, &src.balance, amount)
	}
	fee := new(uint256.Int)
	if t.cfg.TransferFeeBps > 0 {
		fee.MulDivOverflow(amount, uint256.NewInt(uint64(t.cfg.TransferFeeBps)), uint256.NewInt(BasisPoints))
	}
	received := new(uint256.Int).Sub(amount, fee)

	t.setBalance(src, new(uint256.Int).Sub(&src.balance, amount))
	dst := t.account(to)
	t.setBalance(dst, new(uint256.Int).Add(&dst.balance, received))
	if !fee.IsZero() {
		t.setSupply(new(uint256.Int).Sub(&t.supply.total, fee))
	}
	hook := t.hook
	t.mu.Unlock()

	log := t.env.Events()
	log.Emit(t.cfg.Address, events.Transfer{From: from, To: to, Value: *received})
	if !fee.IsZero() {
		log.Emit(t.cfg.Address, events.Transfer{From: from, Value: *fee})
	}
	if hook != nil {
		return hook(ctx, from, to, amount)
	}
	return nil
}

// account returns the record for owner, creating it. Caller holds t.mu.
func (t *Token) account(owner common.Address) *account {
	a, ok := t.accounts[owner]
	if !ok {
		a = &account{key: state.Key(t.balanceKey, owner.Bytes()), owner: owner}
		t.accounts[owner] = a
	}
	return a
}

func (t *Token) setBalance(a *account, v *uint256.Int) {
	prev := a.balance
	t.env.Journal().Append(func() {
		t.mu.Lock()
		a.balance = prev
		t.mu.Unlock()
	})
	a.balance = *v
	t.env.Touch(a)
}

func (t *Token) setSupply(v *uint256.Int) {
	prev := t.supply.total
	t.env.Journal().Append(func() {
		t.mu.Lock()
		t.supply.total = prev
		t.mu.Unlock()
	})
	t.supply.total = *v
	t.env.Touch(&t.supply)
}

func (t *Token) allowanceLocked(owner, spender common.Address) *uint256.Int {
	if a, ok := t.allowances[owner][spender]; ok {
		return &a.amount
	}
	return new(uint256.Int)
}

func (t *Token) setAllowance(owner, spender common.Address, v *uint256.Int) {
	byOwner, ok := t.allowances[owner]
	if !ok {
		byOwner = make(map[common.Address]*allowance)
		t.allowances[owner] = byOwner
	}
	a, ok := byOwner[spender]
	if !ok {
		a = &allowance{key: state.Key(t.allowKey, owner.Bytes(), spender.Bytes()), owner: owner, spender: spender}
		byOwner[spender] = a
	}
	prev := a.amount
	t.env.Journal().Append(func() {
		t.mu.Lock()
		a.amount = prev
		t.mu.Unlock()
	})
	a.amount = *v
	t.env.Touch(a)
}
