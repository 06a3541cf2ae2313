// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dead defines the burn sinks. Balances held by these addresses can
// never move again; the pair locks its minimum liquidity at Address.
package dead

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Standard dead addresses
var (
	ZeroAddress = common.HexToAddress("0x0000000000000000000000000000000000000000")
	Address     = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
	FullAddress = common.HexToAddress("0xdEaD000000000000000000000000000000000000")

	AllAddresses = []common.Address{ZeroAddress, Address, FullAddress}
)

// IsDead reports whether addr is a burn sink.
func IsDead(addr common.Address) bool {
	for _, d := range AllAddresses {
		if addr == d {
			return true
		}
	}
	return false
}

// BalanceReader is the read side of an asset ledger.
type BalanceReader interface {
	BalanceOf(account common.Address) *uint256.Int
}

// Burned sums the balances parked at every sink on ledger.
func Burned(ledger BalanceReader) *uint256.Int {
	total := new(uint256.Int)
	for _, d := range AllAddresses {
		total.Add(total, ledger.BalanceOf(d))
	}
	return total
}
