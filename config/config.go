// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config describes an exchange deployment: who owns it, where its
// contracts live and how the pair and the farm are parameterized.
package config

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/amm"
	"github.com/parsdao/swapfarm/asset"
	"github.com/parsdao/swapfarm/farm"
	"github.com/parsdao/swapfarm/logging"
	"github.com/parsdao/swapfarm/modules"
)

// Config is the full deployment description.
type Config struct {
	Owner     common.Address   `json:"owner" yaml:"owner" mapstructure:"owner"`
	Operators []common.Address `json:"operators,omitempty" yaml:"operators,omitempty" mapstructure:"operators"`
	Genesis   Genesis          `json:"genesis" yaml:"genesis" mapstructure:"genesis"`
	Tokens    Tokens           `json:"tokens" yaml:"tokens" mapstructure:"tokens"`
	Pair      Pair             `json:"pair" yaml:"pair" mapstructure:"pair"`
	Farm      Farm             `json:"farm" yaml:"farm" mapstructure:"farm"`
	Logging   logging.Config   `json:"logging" yaml:"logging" mapstructure:"logging"`
	Metrics   Metrics          `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// Genesis sets the clock an exchange starts from.
type Genesis struct {
	Block uint64 `json:"block" yaml:"block" mapstructure:"block"`
	Time  uint64 `json:"time" yaml:"time" mapstructure:"time"`
}

// Token describes one token deployment.
type Token struct {
	Address        common.Address `json:"address" yaml:"address" mapstructure:"address"`
	Symbol         string         `json:"symbol" yaml:"symbol" mapstructure:"symbol"`
	Decimals       uint8          `json:"decimals" yaml:"decimals" mapstructure:"decimals"`
	TransferFeeBps uint16         `json:"transferFeeBps,omitempty" yaml:"transferFeeBps,omitempty" mapstructure:"transferFeeBps"`
}

// Tokens are the four ledgers of an exchange.
type Tokens struct {
	A      Token `json:"a" yaml:"a" mapstructure:"a"`
	B      Token `json:"b" yaml:"b" mapstructure:"b"`
	Shares Token `json:"shares" yaml:"shares" mapstructure:"shares"`
	Reward Token `json:"reward" yaml:"reward" mapstructure:"reward"`
}

// Pair parameterizes the constant-product pair.
type Pair struct {
	Address             common.Address `json:"address" yaml:"address" mapstructure:"address"`
	SwapFeeBps          uint16         `json:"swapFeeBps" yaml:"swapFeeBps" mapstructure:"swapFeeBps"`
	ProtocolFeeShareBps uint16         `json:"protocolFeeShareBps" yaml:"protocolFeeShareBps" mapstructure:"protocolFeeShareBps"`
	MaxPriceImpactBps   uint16         `json:"maxPriceImpactBps" yaml:"maxPriceImpactBps" mapstructure:"maxPriceImpactBps"`
	// FeeRecipient receives the protocol fee. Zero turns the fee off.
	FeeRecipient common.Address `json:"feeRecipient,omitempty" yaml:"feeRecipient,omitempty" mapstructure:"feeRecipient"`
}

// Farm parameterizes the staking farm.
type Farm struct {
	Address common.Address `json:"address" yaml:"address" mapstructure:"address"`
	// EmissionPerBlock is a decimal amount in reward base units.
	EmissionPerBlock string         `json:"emissionPerBlock" yaml:"emissionPerBlock" mapstructure:"emissionPerBlock"`
	StartBlock       uint64         `json:"startBlock" yaml:"startBlock" mapstructure:"startBlock"`
	DevFund          common.Address `json:"devFund,omitempty" yaml:"devFund,omitempty" mapstructure:"devFund"`
	FeeRecipient     common.Address `json:"feeRecipient,omitempty" yaml:"feeRecipient,omitempty" mapstructure:"feeRecipient"`
	Pools            []FarmPool     `json:"pools,omitempty" yaml:"pools,omitempty" mapstructure:"pools"`
}

// FarmPool is a pool created at deployment.
type FarmPool struct {
	// Asset names a token of the exchange: tokenA, tokenB, shares or reward.
	Asset         string `json:"asset" yaml:"asset" mapstructure:"asset"`
	AllocPoints   uint64 `json:"allocPoints" yaml:"allocPoints" mapstructure:"allocPoints"`
	DepositFeeBps uint16 `json:"depositFeeBps,omitempty" yaml:"depositFeeBps,omitempty" mapstructure:"depositFeeBps"`
	LockupSeconds uint64 `json:"lockupSeconds,omitempty" yaml:"lockupSeconds,omitempty" mapstructure:"lockupSeconds"`
}

// Metrics selects whether collectors are registered.
type Metrics struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// Default returns a deployment at the default addresses with a 0.3% swap
// fee and one reward token per block. Owner must still be set.
func Default() Config {
	addrs := modules.DefaultAddresses()
	return Config{
		Tokens: Tokens{
			A:      Token{Address: addrs[modules.TokenAName], Symbol: "TKA", Decimals: 18},
			B:      Token{Address: addrs[modules.TokenBName], Symbol: "TKB", Decimals: 18},
			Shares: Token{Address: addrs[modules.SharesName], Symbol: "SLP", Decimals: 18},
			Reward: Token{Address: addrs[modules.RewardName], Symbol: "RWD", Decimals: 18},
		},
		Pair: Pair{
			Address:    addrs[modules.PairName],
			SwapFeeBps: amm.DefaultSwapFeeBps,
		},
		Farm: Farm{
			Address:          addrs[modules.FarmName],
			EmissionPerBlock: "1000000000000000000",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Verify checks the whole configuration and reports every problem found.
func (c *Config) Verify() error {
	var errs []error
	if c.Owner == (common.Address{}) {
		errs = append(errs, errors.New("owner is required"))
	}
	for i, op := range c.Operators {
		if op == (common.Address{}) {
			errs = append(errs, fmt.Errorf("operator %d is the zero address", i))
		}
	}

	seen := make(map[common.Address]string)
	for _, tok := range []struct {
		name string
		tok  Token
	}{
		{modules.TokenAName, c.Tokens.A},
		{modules.TokenBName, c.Tokens.B},
		{modules.SharesName, c.Tokens.Shares},
		{modules.RewardName, c.Tokens.Reward},
	} {
		if tok.tok.Address == (common.Address{}) {
			errs = append(errs, fmt.Errorf("token %s has no address", tok.name))
			continue
		}
		if tok.tok.TransferFeeBps > asset.BasisPoints {
			errs = append(errs, fmt.Errorf("token %s transfer fee %d bps exceeds %d", tok.name, tok.tok.TransferFeeBps, asset.BasisPoints))
		}
		if prev, dup := seen[tok.tok.Address]; dup {
			errs = append(errs, fmt.Errorf("tokens %s and %s share address %s", prev, tok.name, tok.tok.Address))
		}
		seen[tok.tok.Address] = tok.name
	}
	if c.Tokens.Shares.TransferFeeBps != 0 {
		errs = append(errs, errors.New("liquidity shares cannot charge a transfer fee"))
	}

	if err := c.PairConfig().Verify(); err != nil {
		errs = append(errs, fmt.Errorf("pair: %w", err))
	}
	if _, err := c.Emission(); err != nil {
		errs = append(errs, fmt.Errorf("farm: %w", err))
	}
	if c.Farm.Address == (common.Address{}) {
		errs = append(errs, errors.New("farm has no address"))
	}
	assets := make(map[string]bool)
	for i, p := range c.Farm.Pools {
		if _, ok := c.TokenAddress(p.Asset); !ok {
			errs = append(errs, fmt.Errorf("farm pool %d: unknown asset %q", i, p.Asset))
		}
		if assets[p.Asset] {
			errs = append(errs, fmt.Errorf("farm pool %d: asset %q listed twice", i, p.Asset))
		}
		assets[p.Asset] = true
		if p.DepositFeeBps > farm.MaxDepositFeeBps {
			errs = append(errs, fmt.Errorf("farm pool %d: deposit fee %d bps exceeds %d", i, p.DepositFeeBps, farm.MaxDepositFeeBps))
		}
		if p.LockupSeconds > farm.MaxLockupSeconds {
			errs = append(errs, fmt.Errorf("farm pool %d: lockup %ds exceeds %ds", i, p.LockupSeconds, farm.MaxLockupSeconds))
		}
	}
	if len(c.Farm.Pools) > farm.MaxPools {
		errs = append(errs, fmt.Errorf("farm: %d pools exceeds %d", len(c.Farm.Pools), farm.MaxPools))
	}
	if err := c.Logging.Verify(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	return errors.Join(errs...)
}

// Emission parses the farm's per-block emission.
func (c *Config) Emission() (*uint256.Int, error) {
	if c.Farm.EmissionPerBlock == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(c.Farm.EmissionPerBlock)
	if err != nil {
		return nil, fmt.Errorf("invalid emission %q: %w", c.Farm.EmissionPerBlock, err)
	}
	return v, nil
}

// TokenAddress resolves a token registration name.
func (c *Config) TokenAddress(name string) (common.Address, bool) {
	switch name {
	case modules.TokenAName:
		return c.Tokens.A.Address, true
	case modules.TokenBName:
		return c.Tokens.B.Address, true
	case modules.SharesName:
		return c.Tokens.Shares.Address, true
	case modules.RewardName:
		return c.Tokens.Reward.Address, true
	default:
		return common.Address{}, false
	}
}

// PairConfig converts to the pair's deployment parameters.
func (c *Config) PairConfig() amm.Config {
	return amm.Config{
		Address:             c.Pair.Address,
		SwapFeeBps:          c.Pair.SwapFeeBps,
		ProtocolFeeShareBps: c.Pair.ProtocolFeeShareBps,
		MaxPriceImpactBps:   c.Pair.MaxPriceImpactBps,
		FeeRecipient:        c.Pair.FeeRecipient,
	}
}

// FarmConfig converts to the farm's deployment parameters. The dev fund
// and the deposit fee recipient default to the owner.
func (c *Config) FarmConfig() (farm.Config, error) {
	emission, err := c.Emission()
	if err != nil {
		return farm.Config{}, err
	}
	cfg := farm.Config{
		Address:          c.Farm.Address,
		EmissionPerBlock: emission,
		StartBlock:       c.Farm.StartBlock,
		DevFund:          c.Farm.DevFund,
		FeeRecipient:     c.Farm.FeeRecipient,
	}
	if cfg.DevFund == (common.Address{}) {
		cfg.DevFund = c.Owner
	}
	if cfg.FeeRecipient == (common.Address{}) {
		cfg.FeeRecipient = c.Owner
	}
	return cfg, nil
}

// TokenConfig converts a token entry to its deployment parameters.
func (c *Config) TokenConfig(t Token) asset.Config {
	return asset.Config{
		Address:        t.Address,
		Symbol:         t.Symbol,
		Decimals:       t.Decimals,
		Owner:          c.Owner,
		TransferFeeBps: t.TransferFeeBps,
	}
}
