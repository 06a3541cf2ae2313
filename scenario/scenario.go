// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scenario runs scripted sequences of pair and farm operations
// against an exchange driven by a manual clock.
package scenario

import (
	"errors"
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"gopkg.in/yaml.v3"
)

// Operations a step may perform.
const (
	OpMint              = "mint"
	OpAddLiquidity      = "addLiquidity"
	OpRemoveLiquidity   = "removeLiquidity"
	OpSwap              = "swap"
	OpDeposit           = "deposit"
	OpWithdraw          = "withdraw"
	OpHarvest           = "harvest"
	OpEmergencyWithdraw = "emergencyWithdraw"
	OpSetEmergency      = "setEmergency"
	OpAdvance           = "advance"
)

// Scenario is a named list of steps. Accounts maps names usable in from
// and to fields to addresses; hex addresses are accepted as well.
type Scenario struct {
	Name     string            `yaml:"name"`
	Accounts map[string]string `yaml:"accounts,omitempty"`
	Steps    []Step            `yaml:"steps"`
}

// Step is one operation. Amounts are decimal strings in base units.
type Step struct {
	Op     string `yaml:"op"`
	From   string `yaml:"from,omitempty"`
	To     string `yaml:"to,omitempty"`
	Token  string `yaml:"token,omitempty"`
	Amount string `yaml:"amount,omitempty"`
	// AmountB is the asset B side of addLiquidity.
	AmountB string `yaml:"amountB,omitempty"`
	Min     string `yaml:"min,omitempty"`
	MinB    string `yaml:"minB,omitempty"`
	Max     string `yaml:"max,omitempty"`
	// AssetIn is "A" or "B".
	AssetIn  string `yaml:"assetIn,omitempty"`
	ExactOut bool   `yaml:"exactOut,omitempty"`
	Pool     uint64 `yaml:"pool,omitempty"`
	Blocks   uint64 `yaml:"blocks,omitempty"`
	Seconds  uint64 `yaml:"seconds,omitempty"`
	Enabled  bool   `yaml:"enabled,omitempty"`
	// Expect is the revert reason the step must fail with.
	Expect string `yaml:"expect,omitempty"`
}

// Parse decodes a YAML scenario, rejecting unknown fields.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := sc.Verify(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Verify checks that every step names a known operation with its required
// fields.
func (sc *Scenario) Verify() error {
	var errs []error
	for name, hex := range sc.Accounts {
		if !common.IsHexAddress(hex) {
			errs = append(errs, fmt.Errorf("account %s: invalid address %q", name, hex))
		}
	}
	for i, s := range sc.Steps {
		if err := s.verify(); err != nil {
			errs = append(errs, fmt.Errorf("step %d (%s): %w", i, s.Op, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Step) verify() error {
	need := func(fields ...string) error {
		for i := 0; i < len(fields); i += 2 {
			if fields[i+1] == "" {
				return fmt.Errorf("missing %s", fields[i])
			}
		}
		return nil
	}
	switch s.Op {
	case OpMint:
		return need("token", s.Token, "to", s.To, "amount", s.Amount)
	case OpAddLiquidity:
		return need("from", s.From, "amount", s.Amount, "amountB", s.AmountB)
	case OpRemoveLiquidity, OpDeposit, OpWithdraw:
		return need("from", s.From, "amount", s.Amount)
	case OpSwap:
		if s.AssetIn != "A" && s.AssetIn != "B" {
			return fmt.Errorf("assetIn must be A or B, got %q", s.AssetIn)
		}
		return need("from", s.From, "amount", s.Amount)
	case OpHarvest, OpEmergencyWithdraw:
		return need("from", s.From)
	case OpSetEmergency:
		return nil
	case OpAdvance:
		if s.Blocks == 0 && s.Seconds == 0 {
			return errors.New("advance needs blocks or seconds")
		}
		return nil
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
}

// amount parses an optional decimal amount; empty means zero.
func amount(field, v string) (*uint256.Int, error) {
	if v == "" {
		return new(uint256.Int), nil
	}
	x, err := uint256.FromDecimal(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	return x, nil
}
