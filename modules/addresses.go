// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// Exchange contracts use trailing-significant addresses:
//
//	0x0000000000000000000000000000000000PCII
//
// P is the family page (9 = DEX/markets), C the chain slot and II the item.
const (
	// DEXPage is the family page of every exchange contract.
	DEXPage uint8 = 9

	PairAddress   = "0x0000000000000000000000000000000000009010" // constant-product pair
	FarmAddress   = "0x0000000000000000000000000000000000009015" // staking farm
	TokenAAddress = "0x00000000000000000000000000000000000090a0" // pair asset A
	TokenBAddress = "0x00000000000000000000000000000000000090a1" // pair asset B
	SharesAddress = "0x00000000000000000000000000000000000090a2" // liquidity shares
	RewardAddress = "0x00000000000000000000000000000000000090a3" // farm reward
)

// Names under which the exchange registers its contracts.
const (
	PairName   = "pair"
	FarmName   = "farm"
	TokenAName = "tokenA"
	TokenBName = "tokenB"
	SharesName = "shares"
	RewardName = "reward"
)

// ContractAddress builds the address for (page, chain slot, item). It
// returns the zero address when a nibble is out of range.
func ContractAddress(p, c, ii uint8) common.Address {
	if p > 15 || c > 15 {
		return common.Address{}
	}
	selector := fmt.Sprintf("%x%x%02x", p, c, ii)
	return common.HexToAddress("0x0000000000000000000000000000000000" + selector)
}

// DefaultAddresses maps registration names to their default addresses.
func DefaultAddresses() map[string]common.Address {
	return map[string]common.Address{
		PairName:   ContractAddress(DEXPage, 0, 0x10),
		FarmName:   ContractAddress(DEXPage, 0, 0x15),
		TokenAName: ContractAddress(DEXPage, 0, 0xa0),
		TokenBName: ContractAddress(DEXPage, 0, 0xa1),
		SharesName: ContractAddress(DEXPage, 0, 0xa2),
		RewardName: ContractAddress(DEXPage, 0, 0xa3),
	}
}
