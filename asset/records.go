// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/state"
)

type account struct {
	key     []byte
	owner   common.Address
	balance uint256.Int
}

func (a *account) StorageKey() []byte { return a.key }

func (a *account) MarshalBinary() ([]byte, error) {
	return state.NewEncoder(2).Address(a.owner).Uint256(&a.balance).Bytes(), nil
}

func (a *account) UnmarshalBinary(raw []byte) error {
	d := state.NewDecoder(raw)
	a.owner = d.Address()
	d.Uint256(&a.balance)
	return d.Err()
}

type allowance struct {
	key     []byte
	owner   common.Address
	spender common.Address
	amount  uint256.Int
}

func (a *allowance) StorageKey() []byte { return a.key }

func (a *allowance) MarshalBinary() ([]byte, error) {
	return state.NewEncoder(3).Address(a.owner).Address(a.spender).Uint256(&a.amount).Bytes(), nil
}

func (a *allowance) UnmarshalBinary(raw []byte) error {
	d := state.NewDecoder(raw)
	a.owner = d.Address()
	a.spender = d.Address()
	d.Uint256(&a.amount)
	return d.Err()
}

type supplyRecord struct {
	key   []byte
	total uint256.Int
}

func (s *supplyRecord) StorageKey() []byte { return s.key }

func (s *supplyRecord) MarshalBinary() ([]byte, error) {
	return state.NewEncoder(1).Uint256(&s.total).Bytes(), nil
}

func (s *supplyRecord) UnmarshalBinary(raw []byte) error {
	d := state.NewDecoder(raw)
	d.Uint256(&s.total)
	return d.Err()
}

// Load restores supply, balances and allowances previously committed to s.
func (t *Token) Load(s *state.Store) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := s.Get(t.supply.key, &t.supply); err != nil {
		return err
	}
	err := s.Iterate(t.balanceKey, func(raw []byte) error {
		var a account
		if err := a.UnmarshalBinary(raw); err != nil {
			return err
		}
		a.key = state.Key(t.balanceKey, a.owner.Bytes())
		t.accounts[a.owner] = &a
		return nil
	})
	if err != nil {
		return err
	}
	return s.Iterate(t.allowKey, func(raw []byte) error {
		var a allowance
		if err := a.UnmarshalBinary(raw); err != nil {
			return err
		}
		a.key = state.Key(t.allowKey, a.owner.Bytes(), a.spender.Bytes())
		byOwner, ok := t.allowances[a.owner]
		if !ok {
			byOwner = make(map[common.Address]*allowance)
			t.allowances[a.owner] = byOwner
		}
		byOwner[a.spender] = &a
		return nil
	})
}
