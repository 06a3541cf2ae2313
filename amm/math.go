// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/parsdao/swapfarm/revert"
)

// QuoteOutput returns the output of selling amountIn against the reserves
// with feeBps charged on the input. The result truncates toward zero.
func QuoteOutput(amountIn, reserveIn, reserveOut *uint256.Int, feeBps uint16) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, fmt.Errorf("%w: zero input amount", ErrInvalidInput)
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, fmt.Errorf("%w: empty reserve", ErrInvalidInput)
	}
	if feeBps >= FeeDenominator {
		return nil, fmt.Errorf("%w: fee %d bps", ErrInvalidInput, feeBps)
	}

	inWithFee, err := mul(amountIn, uint256.NewInt(uint64(FeeDenominator-feeBps)))
	if err != nil {
		return nil, err
	}
	den, err := mul(reserveIn, feeDenominator)
	if err != nil {
		return nil, err
	}
	if den, err = add(den, inWithFee); err != nil {
		return nil, err
	}
	return mulDiv(inWithFee, reserveOut, den)
}

// QuoteInput returns the smallest input that buys amountOut, rounded up.
func QuoteInput(amountOut, reserveIn, reserveOut *uint256.Int, feeBps uint16) (*uint256.Int, error) {
	if amountOut.IsZero() {
		return nil, fmt.Errorf("%w: zero output amount", ErrInvalidInput)
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, fmt.Errorf("%w: empty reserve", ErrInvalidInput)
	}
	if feeBps >= FeeDenominator {
		return nil, fmt.Errorf("%w: fee %d bps", ErrInvalidInput, feeBps)
	}
	if !amountOut.Lt(reserveOut) {
		return nil, fmt.Errorf("%w: want %s of %s", ErrInsufficientLiquidity, amountOut, reserveOut)
	}

	num, err := mul(reserveIn, amountOut)
	if err != nil {
		return nil, err
	}
	if num, err = mul(num, feeDenominator); err != nil {
		return nil, err
	}
	den, err := mul(new(uint256.Int).Sub(reserveOut, amountOut), uint256.NewInt(uint64(FeeDenominator-feeBps)))
	if err != nil {
		return nil, err
	}
	in := new(uint256.Int).Div(num, den)
	return add(in, uint256.NewInt(1))
}

// Quote returns the amount of the other asset equivalent to amountA at the
// current ratio.
func Quote(amountA, reserveA, reserveB *uint256.Int) (*uint256.Int, error) {
	if amountA.IsZero() {
		return nil, fmt.Errorf("%w: zero amount", ErrInvalidInput)
	}
	if reserveA.IsZero() || reserveB.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	return mulDiv(amountA, reserveB, reserveA)
}

// ComputeDepositAmounts picks the deposit that keeps the pool ratio, never
// exceeding the desired amounts and failing below the minimums.
func ComputeDepositAmounts(reserveA, reserveB, desiredA, desiredB, minA, minB *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if reserveA.IsZero() && reserveB.IsZero() {
		return new(uint256.Int).Set(desiredA), new(uint256.Int).Set(desiredB), nil
	}

	optimalB, err := Quote(desiredA, reserveA, reserveB)
	if err != nil {
		return nil, nil, err
	}
	if !desiredB.Lt(optimalB) {
		if optimalB.Lt(minB) {
			return nil, nil, fmt.Errorf("%w: %s below minimum %s", ErrInsufficientBAmount, optimalB, minB)
		}
		return new(uint256.Int).Set(desiredA), optimalB, nil
	}

	optimalA, err := Quote(desiredB, reserveB, reserveA)
	if err != nil {
		return nil, nil, err
	}
	if desiredA.Lt(optimalA) || optimalA.Lt(minA) {
		return nil, nil, fmt.Errorf("%w: optimal %s, desired %s, minimum %s", ErrInsufficientAAmount, optimalA, desiredA, minA)
	}
	return optimalA, new(uint256.Int).Set(desiredB), nil
}

// PriceImpactBps is amountIn*10000/reserveIn, truncated.
func PriceImpactBps(amountIn, reserveIn *uint256.Int) (*uint256.Int, error) {
	if reserveIn.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	return mulDiv(amountIn, feeDenominator, reserveIn)
}

func mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s", revert.ErrOverflow, x, y)
	}
	return z, nil
}

func add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("%w: %s + %s", revert.ErrOverflow, x, y)
	}
	return z, nil
}

// mulDiv computes x*y/d with a 512-bit intermediate product.
func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("%w: division by zero", ErrInvalidInput)
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, fmt.Errorf("%w: %s * %s / %s", revert.ErrOverflow, x, y, d)
	}
	return z, nil
}

func minOf(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x
	}
	return y
}
