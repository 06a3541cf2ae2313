// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/dead"
)

// AddressRange represents a continuous range of addresses
type AddressRange struct {
	Start common.Address
	End   common.Address
}

// Contains returns true iff [addr] is contained within the (inclusive)
// range of addresses defined by [a].
func (a *AddressRange) Contains(addr common.Address) bool {
	addrBytes := addr.Bytes()
	return bytes.Compare(addrBytes, a.Start[:]) >= 0 && bytes.Compare(addrBytes, a.End[:]) <= 0
}

// DEXRange holds every address on the DEX/markets page (0x9000-0x9FFF).
var DEXRange = AddressRange{
	Start: common.HexToAddress("0x0000000000000000000000000000000000009000"),
	End:   common.HexToAddress("0x0000000000000000000000000000000000009fff"),
}

// Registry is an ordered set of deployed contracts. Contracts may only be
// registered inside one of its reserved ranges and never at a burn sink.
type Registry struct {
	mu       sync.RWMutex
	reserved []AddressRange
	// modules is sorted by address for deterministic iteration
	modules []Module
}

// NewRegistry creates a registry accepting addresses in ranges, or in
// DEXRange when none are given.
func NewRegistry(ranges ...AddressRange) *Registry {
	if len(ranges) == 0 {
		ranges = []AddressRange{DEXRange}
	}
	return &Registry{reserved: ranges}
}

// ReservedAddress returns true if [addr] is in one of the registry's ranges
func (r *Registry) ReservedAddress(addr common.Address) bool {
	for _, reservedRange := range r.reserved {
		if reservedRange.Contains(addr) {
			return true
		}
	}
	return false
}

// Register adds a contract under name.
func (r *Registry) Register(name string, c Contract) error {
	if c == nil {
		return fmt.Errorf("module %q has no contract", name)
	}
	if name == "" {
		return fmt.Errorf("module at %s has no name", c.Address())
	}
	address := c.Address()
	if dead.IsDead(address) {
		return fmt.Errorf("address %s overlaps with a burn sink", address)
	}
	if !r.ReservedAddress(address) {
		return fmt.Errorf("address %s not in a reserved range", address)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.modules {
		if m.Name == name {
			return fmt.Errorf("name %s already used by module at %s", name, m.Address)
		}
		if m.Address == address {
			return fmt.Errorf("address %s already used by module %s", address, m.Name)
		}
	}
	r.modules = append(r.modules, Module{Name: name, Address: address, Contract: c})
	sort.Sort(moduleArray(r.modules))
	return nil
}

// ByAddress returns the module deployed at address.
func (r *Registry) ByAddress(address common.Address) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.modules {
		if m.Address == address {
			return m, true
		}
	}
	return Module{}, false
}

// ByName returns the module registered under name.
func (r *Registry) ByName(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

// Modules returns a copy of the registered modules in address order.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Module(nil), r.modules...)
}
