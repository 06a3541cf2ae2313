// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package modules keeps track of the contracts deployed into an exchange
// environment, keyed by name and by address.
package modules

import (
	"bytes"

	"github.com/luxfi/geth/common"
)

// Contract is anything deployed at an address.
type Contract interface {
	Address() common.Address
}

// Module is one registered contract.
type Module struct {
	// Name is the unique key the contract is looked up by.
	Name     string
	Address  common.Address
	Contract Contract
}

type moduleArray []Module

func (u moduleArray) Len() int {
	return len(u)
}

func (u moduleArray) Swap(i, j int) {
	u[i], u[j] = u[j], u[i]
}

func (u moduleArray) Less(i, j int) bool {
	return bytes.Compare(u[i].Address.Bytes(), u[j].Address.Bytes()) < 0
}
