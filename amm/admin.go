// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/access"
	"github.com/parsdao/swapfarm/events"
)

// SetSwapFee changes the input fee charged on swaps.
func (p *Pair) SetSwapFee(ctx context.Context, caller common.Address, bps uint16) error {
	return p.setParam(ctx, caller, "swapFeeBps", bps, MaxSwapFeeBps, ErrInvalidFee,
		func(pool *Pool) { pool.SwapFeeBps = bps })
}

// SetProtocolFeeShare changes the share of fee growth minted to the fee
// recipient.
func (p *Pair) SetProtocolFeeShare(ctx context.Context, caller common.Address, bps uint16) error {
	return p.setParam(ctx, caller, "protocolFeeShareBps", bps, MaxProtocolFeeShareBps, ErrInvalidProtocolFeeShare,
		func(pool *Pool) { pool.ProtocolFeeShareBps = bps })
}

// SetMaxPriceImpact changes the price impact cap of the swap helpers. Zero
// disables the guard.
func (p *Pair) SetMaxPriceImpact(ctx context.Context, caller common.Address, bps uint16) error {
	return p.setParam(ctx, caller, "maxPriceImpactBps", bps, MaxPriceImpactBps, ErrInvalidPriceImpact,
		func(pool *Pool) { pool.MaxPriceImpactBps = bps })
}

// SetFeeRecipient changes who receives the protocol fee. The zero address
// turns the protocol fee off. Owner only.
func (p *Pair) SetFeeRecipient(ctx context.Context, caller, recipient common.Address) error {
	return p.exec(ctx, "setFeeRecipient", func(context.Context) error {
		if err := p.roles.Require(caller, access.Owner); err != nil {
			return err
		}
		pool := p.Pool()
		pool.FeeRecipient = recipient
		p.commit(pool)
		p.env.Events().Emit(p.address, events.RecipientUpdated{Caller: caller, Param: "feeRecipient", Recipient: recipient})
		return nil
	})
}

func (p *Pair) setParam(
	ctx context.Context,
	caller common.Address,
	name string,
	value, limit uint16,
	bound error,
	apply func(*Pool),
) error {
	return p.exec(ctx, name, func(context.Context) error {
		if err := p.roles.Require(caller, access.Owner, access.Operator); err != nil {
			return err
		}
		if value > limit {
			return fmt.Errorf("%w: %d bps exceeds %d", bound, value, limit)
		}
		pool := p.Pool()
		apply(&pool)
		p.commit(pool)
		p.env.Events().Emit(p.address, events.ParamUpdated{Caller: caller, Param: name, Value: *uint256.NewInt(uint64(value))})
		return nil
	})
}
