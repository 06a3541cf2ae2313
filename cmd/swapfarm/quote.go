// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/parsdao/swapfarm/amm"
)

type quoteOptions struct {
	reserveIn  string
	reserveOut string
	amount     string
	feeBps     uint16
	exactOut   bool
}

func newQuoteCmd() *cobra.Command {
	opts := &quoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap against the given reserves",
		Long: "Quote the output of selling --amount against --reserve-in/--reserve-out, " +
			"or with --exact-out the input needed to buy --amount. Amounts are decimal base units.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}
	cmd.Flags().StringVar(&opts.reserveIn, "reserve-in", "", "reserve of the asset sold")
	cmd.Flags().StringVar(&opts.reserveOut, "reserve-out", "", "reserve of the asset bought")
	cmd.Flags().StringVar(&opts.amount, "amount", "", "input amount, or output amount with --exact-out")
	cmd.Flags().Uint16Var(&opts.feeBps, "fee-bps", amm.DefaultSwapFeeBps, "swap fee in basis points")
	cmd.Flags().BoolVar(&opts.exactOut, "exact-out", false, "treat --amount as the output")
	for _, name := range []string{"reserve-in", "reserve-out", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (o *quoteOptions) run(cmd *cobra.Command) error {
	parse := func(flag, v string) (*uint256.Int, error) {
		x, err := uint256.FromDecimal(v)
		if err != nil {
			return nil, fmt.Errorf("--%s %q: %w", flag, v, err)
		}
		return x, nil
	}
	reserveIn, err := parse("reserve-in", o.reserveIn)
	if err != nil {
		return err
	}
	reserveOut, err := parse("reserve-out", o.reserveOut)
	if err != nil {
		return err
	}
	amt, err := parse("amount", o.amount)
	if err != nil {
		return err
	}
	if o.feeBps > amm.MaxSwapFeeBps {
		return fmt.Errorf("--fee-bps %d exceeds %d", o.feeBps, amm.MaxSwapFeeBps)
	}

	amountIn, amountOut := amt, amt
	if o.exactOut {
		amountIn, err = amm.QuoteInput(amt, reserveIn, reserveOut, o.feeBps)
	} else {
		amountOut, err = amm.QuoteOutput(amt, reserveIn, reserveOut, o.feeBps)
	}
	if err != nil {
		return err
	}
	impact, err := amm.PriceImpactBps(amountIn, reserveIn)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "amountIn: %s\n", amountIn.Dec())
	fmt.Fprintf(out, "amountOut: %s\n", amountOut.Dec())
	fmt.Fprintf(out, "priceImpactBps: %s\n", impact.Dec())
	return nil
}
