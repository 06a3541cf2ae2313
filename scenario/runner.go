// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package scenario

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/amm"
	"github.com/parsdao/swapfarm/asset"
	"github.com/parsdao/swapfarm/chain"
	"github.com/parsdao/swapfarm/exchange"
	"github.com/parsdao/swapfarm/revert"
)

var maxApproval = new(uint256.Int).SetAllOne()

// Result records what one step did.
type Result struct {
	Step   int    `yaml:"step"`
	Op     string `yaml:"op"`
	Block  uint64 `yaml:"block"`
	Detail string `yaml:"detail,omitempty"`
	// Reverted holds the revert reason of an expected failure.
	Reverted string `yaml:"reverted,omitempty"`
}

// Runner executes scenarios against one exchange. Every account that
// appears in a step grants the pair and the farm an unlimited allowance on
// all four tokens, so scripts never approve explicitly.
type Runner struct {
	x        *exchange.Exchange
	clock    *chain.ManualClock
	log      *zap.Logger
	accounts map[string]common.Address
	approved map[common.Address]bool
}

// NewRunner drives x, advancing clock on advance steps. clock must be the
// clock x was built with.
func NewRunner(x *exchange.Exchange, clock *chain.ManualClock) *Runner {
	return &Runner{
		x:        x,
		clock:    clock,
		log:      x.Env().Logger().Named("scenario"),
		accounts: make(map[string]common.Address),
		approved: make(map[common.Address]bool),
	}
}

// Run executes every step of sc in order. It stops at the first step that
// fails unexpectedly, or that succeeds although a revert was expected.
func (r *Runner) Run(ctx context.Context, sc *Scenario) ([]Result, error) {
	if err := sc.Verify(); err != nil {
		return nil, err
	}
	for name, hex := range sc.Accounts {
		r.accounts[name] = common.HexToAddress(hex)
	}

	results := make([]Result, 0, len(sc.Steps))
	for i := range sc.Steps {
		step := &sc.Steps[i]
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := Result{Step: i, Op: step.Op}
		detail, err := r.step(ctx, step)
		res.Block = r.clock.BlockNumber()
		switch {
		case err != nil && step.Expect == "":
			return results, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		case err != nil:
			if reason := revert.ReasonOf(err); reason != step.Expect {
				return results, fmt.Errorf("step %d (%s): expected %s, reverted with %s: %w", i, step.Op, step.Expect, reason, err)
			}
			res.Reverted = step.Expect
		case step.Expect != "":
			return results, fmt.Errorf("step %d (%s): expected %s, succeeded", i, step.Op, step.Expect)
		default:
			res.Detail = detail
		}
		r.log.Debug("scenario step",
			zap.Int("step", i),
			zap.String("op", step.Op),
			zap.String("detail", res.Detail),
			zap.String("reverted", res.Reverted),
		)
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) step(ctx context.Context, s *Step) (string, error) {
	x := r.x
	from := r.account(s.From)
	to := from
	if s.To != "" {
		to = r.account(s.To)
	}
	if s.From != "" {
		if err := r.approve(ctx, from); err != nil {
			return "", err
		}
	}
	amt, err := amount("amount", s.Amount)
	if err != nil {
		return "", err
	}

	switch s.Op {
	case OpMint:
		tok, ok := x.Token(s.Token)
		if !ok {
			return "", fmt.Errorf("unknown token %q", s.Token)
		}
		if err := r.approve(ctx, to); err != nil {
			return "", err
		}
		if err := tok.Mint(ctx, x.Config().Owner, to, amt); err != nil {
			return "", err
		}
		return fmt.Sprintf("minted %s %s to %s", amt, tok.Symbol(), to), nil

	case OpAddLiquidity:
		amtB, err := amount("amountB", s.AmountB)
		if err != nil {
			return "", err
		}
		minA, err := amount("min", s.Min)
		if err != nil {
			return "", err
		}
		minB, err := amount("minB", s.MinB)
		if err != nil {
			return "", err
		}
		a, b, shares, err := x.Pair.AddLiquidity(ctx, from, amm.AddLiquidityParams{
			DesiredA: amt, DesiredB: amtB, MinA: minA, MinB: minB, To: to,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("added %s A + %s B for %s shares", a, b, shares), nil

	case OpRemoveLiquidity:
		minA, err := amount("min", s.Min)
		if err != nil {
			return "", err
		}
		minB, err := amount("minB", s.MinB)
		if err != nil {
			return "", err
		}
		a, b, err := x.Pair.RemoveLiquidity(ctx, from, amm.RemoveLiquidityParams{
			Shares: amt, MinA: minA, MinB: minB, To: to,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("burned %s shares for %s A + %s B", amt, a, b), nil

	case OpSwap:
		in := amm.SideA
		if s.AssetIn == "B" {
			in = amm.SideB
		}
		if s.ExactOut {
			var maxIn *uint256.Int
			if s.Max != "" {
				if maxIn, err = amount("max", s.Max); err != nil {
					return "", err
				}
			}
			paid, err := x.Pair.SwapExactOut(ctx, from, amm.SwapExactOutParams{
				AssetIn: in, AmountOut: amt, MaxAmountIn: maxIn, To: to,
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("paid %s %s for %s %s", paid, in, amt, in.Other()), nil
		}
		minOut, err := amount("min", s.Min)
		if err != nil {
			return "", err
		}
		out, err := x.Pair.SwapExactIn(ctx, from, amm.SwapExactInParams{
			AssetIn: in, AmountIn: amt, MinAmountOut: minOut, To: to,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("sold %s %s for %s %s", amt, in, out, in.Other()), nil

	case OpDeposit:
		credited, err := x.Farm.Deposit(ctx, from, s.Pool, amt)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("staked %s in pool %d", credited, s.Pool), nil

	case OpWithdraw:
		if err := x.Farm.Withdraw(ctx, from, s.Pool, amt); err != nil {
			return "", err
		}
		return fmt.Sprintf("withdrew %s from pool %d", amt, s.Pool), nil

	case OpHarvest:
		paid, err := x.Farm.Harvest(ctx, from, s.Pool)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("harvested %s from pool %d", paid, s.Pool), nil

	case OpEmergencyWithdraw:
		returned, err := x.Farm.EmergencyWithdraw(ctx, from, s.Pool)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("emergency withdrew %s from pool %d", returned, s.Pool), nil

	case OpSetEmergency:
		caller := x.Config().Owner
		if s.From != "" {
			caller = from
		}
		if err := x.Farm.SetEmergency(ctx, caller, s.Enabled); err != nil {
			return "", err
		}
		return fmt.Sprintf("emergency withdrawals enabled=%t", s.Enabled), nil

	case OpAdvance:
		r.clock.Advance(s.Blocks, s.Seconds)
		return fmt.Sprintf("block %d, time %d", r.clock.BlockNumber(), r.clock.Now()), nil
	}
	return "", fmt.Errorf("unknown op %q", s.Op)
}

func (r *Runner) account(name string) common.Address {
	if addr, ok := r.accounts[name]; ok {
		return addr
	}
	return common.HexToAddress(name)
}

func (r *Runner) approve(ctx context.Context, owner common.Address) error {
	if r.approved[owner] {
		return nil
	}
	x := r.x
	for _, tok := range []*asset.Token{x.TokenA, x.TokenB, x.Shares, x.Reward} {
		for _, spender := range []common.Address{x.Pair.Address(), x.Farm.Address()} {
			if err := tok.Approve(ctx, owner, spender, maxApproval); err != nil {
				return err
			}
		}
	}
	r.approved[owner] = true
	return nil
}
