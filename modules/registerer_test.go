// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

type stub common.Address

func (s stub) Address() common.Address { return common.Address(s) }

func at(hex string) stub { return stub(common.HexToAddress(hex)) }

func TestContractAddress(t *testing.T) {
	require := require.New(t)
	require.Equal(common.HexToAddress(PairAddress), ContractAddress(DEXPage, 0, 0x10))
	require.Equal(common.HexToAddress(FarmAddress), ContractAddress(DEXPage, 0, 0x15))
	require.Equal(common.HexToAddress(RewardAddress), ContractAddress(DEXPage, 0, 0xa3))
	require.Equal(common.Address{}, ContractAddress(16, 0, 0))

	want := map[string]string{
		PairName:   PairAddress,
		FarmName:   FarmAddress,
		TokenAName: TokenAAddress,
		TokenBName: TokenBAddress,
		SharesName: SharesAddress,
		RewardName: RewardAddress,
	}
	defaults := DefaultAddresses()
	require.Len(defaults, len(want))
	for name, addr := range defaults {
		require.Equal(common.HexToAddress(want[name]), addr, name)
		require.True(DEXRange.Contains(addr), name)
	}
}

func TestRegistry_Register(t *testing.T) {
	require := require.New(t)
	r := NewRegistry()

	require.NoError(r.Register(FarmName, at(FarmAddress)))
	require.NoError(r.Register(PairName, at(PairAddress)))
	require.NoError(r.Register(RewardName, at(RewardAddress)))

	mods := r.Modules()
	require.Len(mods, 3)
	require.Equal(PairName, mods[0].Name)
	require.Equal(FarmName, mods[1].Name)
	require.Equal(RewardName, mods[2].Name)

	m, ok := r.ByAddress(common.HexToAddress(FarmAddress))
	require.True(ok)
	require.Equal(FarmName, m.Name)
	m, ok = r.ByName(PairName)
	require.True(ok)
	require.Equal(common.HexToAddress(PairAddress), m.Address)
	_, ok = r.ByName("missing")
	require.False(ok)
}

func TestRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		register string
		contract Contract
		errMsg   string
	}{
		{"duplicate name", PairName, at("0x0000000000000000000000000000000000009099"), "already used"},
		{"duplicate address", "other", at(PairAddress), "already used"},
		{"outside range", "outside", at("0x0000000000000000000000000000000000008000"), "not in a reserved range"},
		{"burn sink", "sink", at("0x000000000000000000000000000000000000dEaD"), "burn sink"},
		{"no name", "", at("0x0000000000000000000000000000000000009098"), "no name"},
		{"no contract", "nil", nil, "no contract"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			require.NoError(t, r.Register(PairName, at(PairAddress)))
			err := r.Register(tt.register, tt.contract)
			require.ErrorContains(t, err, tt.errMsg)
			require.Len(t, r.Modules(), 1)
		})
	}
}

func TestRegistry_CustomRanges(t *testing.T) {
	wide := AddressRange{
		Start: common.HexToAddress("0x0000000000000000000000000000000000008000"),
		End:   common.HexToAddress("0x0000000000000000000000000000000000008fff"),
	}
	r := NewRegistry(wide)
	require.NoError(t, r.Register("core", at("0x0000000000000000000000000000000000008100")))
	require.Error(t, r.Register(PairName, at(PairAddress)))
}
