// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/types"
)

var (
	ErrUnknownEvent  = errors.New("unknown event")
	ErrValueMismatch = errors.New("event values do not match abi inputs")
)

var (
	addressT = mustType("address")
	uint256T = mustType("uint256")
	boolT    = mustType("bool")
	stringT  = mustType("string")
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

func arg(name string, typ abi.Type, indexed bool) abi.Argument {
	return abi.Argument{Name: name, Type: typ, Indexed: indexed}
}

func event(name string, inputs ...abi.Argument) abi.Event {
	return abi.NewEvent(name, name, false, abi.Arguments(inputs))
}

// Schemas maps event names to their solidity ABI definitions. The pair and
// farm layouts match the classic v2 pair and MasterChef events so existing
// log decoders work unchanged.
var Schemas = map[string]abi.Event{
	"Mint": event("Mint",
		arg("sender", addressT, true), arg("amount0", uint256T, false), arg("amount1", uint256T, false)),
	"Burn": event("Burn",
		arg("sender", addressT, true), arg("amount0", uint256T, false), arg("amount1", uint256T, false),
		arg("to", addressT, true)),
	"Swap": event("Swap",
		arg("sender", addressT, true), arg("amount0In", uint256T, false), arg("amount1In", uint256T, false),
		arg("amount0Out", uint256T, false), arg("amount1Out", uint256T, false), arg("to", addressT, true)),
	"Sync": event("Sync", arg("reserve0", uint256T, false), arg("reserve1", uint256T, false)),
	"Deposit": event("Deposit",
		arg("user", addressT, true), arg("pid", uint256T, true), arg("amount", uint256T, false)),
	"Withdraw": event("Withdraw",
		arg("user", addressT, true), arg("pid", uint256T, true), arg("amount", uint256T, false)),
	"Harvest": event("Harvest",
		arg("user", addressT, true), arg("pid", uint256T, true), arg("amount", uint256T, false)),
	"EmergencyWithdraw": event("EmergencyWithdraw",
		arg("user", addressT, true), arg("pid", uint256T, true), arg("amount", uint256T, false)),
	"PoolAdded": event("PoolAdded",
		arg("pid", uint256T, true), arg("asset", addressT, true), arg("allocPoint", uint256T, false),
		arg("depositFeeBP", uint256T, false), arg("harvestInterval", uint256T, false)),
	"PoolUpdated": event("PoolUpdated",
		arg("pid", uint256T, true), arg("allocPoint", uint256T, false),
		arg("depositFeeBP", uint256T, false), arg("harvestInterval", uint256T, false)),
	"EmissionRateUpdated": event("EmissionRateUpdated",
		arg("caller", addressT, true), arg("previousAmount", uint256T, false), arg("newAmount", uint256T, false)),
	"EmergencyToggled": event("EmergencyToggled", arg("caller", addressT, true), arg("enabled", boolT, false)),
	"Transfer": event("Transfer",
		arg("from", addressT, true), arg("to", addressT, true), arg("value", uint256T, false)),
	"Approval": event("Approval",
		arg("owner", addressT, true), arg("spender", addressT, true), arg("value", uint256T, false)),
	"ParamUpdated": event("ParamUpdated",
		arg("caller", addressT, true), arg("param", stringT, false), arg("value", uint256T, false)),
	"RecipientUpdated": event("RecipientUpdated",
		arg("caller", addressT, true), arg("param", stringT, false), arg("recipient", addressT, true)),
}

// Topic returns topic0 for a canonical event signature such as
// "Transfer(address,address,uint256)".
func Topic(signature string) common.Hash {
	return common.BytesToHash(crypto.Keccak256([]byte(signature)))
}

// EncodeLog renders a record as an EVM log: topic0 is the event id, indexed
// fields follow as topics and the rest is ABI-packed into Data.
func EncodeLog(rec Record) (*types.Log, error) {
	schema, ok := Schemas[rec.Event.EventName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, rec.Event.EventName())
	}
	values := rec.Event.Values()
	if len(values) != len(schema.Inputs) {
		return nil, fmt.Errorf("%w: %s has %d values, want %d",
			ErrValueMismatch, schema.Name, len(values), len(schema.Inputs))
	}

	topics := []common.Hash{schema.ID}
	data := make([]any, 0, len(values))
	for i, input := range schema.Inputs {
		if !input.Indexed {
			data = append(data, values[i])
			continue
		}
		topic, err := topicOf(values[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", schema.Name, input.Name, err)
		}
		topics = append(topics, topic)
	}

	packed, err := schema.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", schema.Name, err)
	}
	return &types.Log{
		Address:     rec.Contract,
		Topics:      topics,
		Data:        packed,
		BlockNumber: rec.Block,
		Index:       uint(rec.Index),
	}, nil
}

func topicOf(v any) (common.Hash, error) {
	switch x := v.(type) {
	case common.Address:
		return common.BytesToHash(x.Bytes()), nil
	case *big.Int:
		return common.BigToHash(x), nil
	default:
		return common.Hash{}, fmt.Errorf("%w: cannot index %T", ErrValueMismatch, v)
	}
}
