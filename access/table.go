// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package access implements the role table consulted at the entry of every
// privileged operation. Callers are explicit addresses; the table never looks
// at ambient state.
package access

import (
	"fmt"
	"sort"
	"sync"

	"github.com/luxfi/geth/common"

	"github.com/parsdao/swapfarm/revert"
)

// Role is a capability held by an address.
type Role uint8

const (
	// Owner may grant and revoke roles and perform every admin operation.
	Owner Role = iota
	// Operator may tune parameters.
	Operator
	// Minter may create supply on a token.
	Minter
)

func (r Role) String() string {
	switch r {
	case Owner:
		return "owner"
	case Operator:
		return "operator"
	case Minter:
		return "minter"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Table holds one owner and a member set per delegated role.
type Table struct {
	mu      sync.RWMutex
	owner   common.Address
	members map[Role]map[common.Address]struct{}
}

// NewTable creates a table owned by owner.
func NewTable(owner common.Address) *Table {
	return &Table{
		owner: owner,
		members: map[Role]map[common.Address]struct{}{
			Operator: {},
			Minter:   {},
		},
	}
}

// Owner returns the current owner.
func (t *Table) Owner() common.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.owner
}

// Has reports whether account holds role. The owner holds every role.
func (t *Table) Has(account common.Address, role Role) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.has(account, role)
}

func (t *Table) has(account common.Address, role Role) bool {
	if account == t.owner {
		return true
	}
	if role == Owner {
		return false
	}
	_, ok := t.members[role][account]
	return ok
}

// Require fails with revert.ErrUnauthorized unless caller holds at least one
// of roles.
func (t *Table) Require(caller common.Address, roles ...Role) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, role := range roles {
		if t.has(caller, role) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s lacks %v", revert.ErrUnauthorized, caller, roles)
}

// Grant adds account to role. Only the owner may grant.
func (t *Table) Grant(caller common.Address, role Role, account common.Address) error {
	if role == Owner {
		return t.TransferOwnership(caller, account)
	}
	if account == (common.Address{}) {
		return revert.ErrZeroAddress
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return fmt.Errorf("%w: only owner grants %s", revert.ErrUnauthorized, role)
	}
	t.members[role][account] = struct{}{}
	return nil
}

// Revoke removes account from role. Only the owner may revoke.
func (t *Table) Revoke(caller common.Address, role Role, account common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner || role == Owner {
		return fmt.Errorf("%w: cannot revoke %s", revert.ErrUnauthorized, role)
	}
	delete(t.members[role], account)
	return nil
}

// TransferOwnership hands the table to next.
func (t *Table) TransferOwnership(caller, next common.Address) error {
	if next == (common.Address{}) {
		return revert.ErrZeroAddress
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return fmt.Errorf("%w: only owner transfers ownership", revert.ErrUnauthorized)
	}
	t.owner = next
	return nil
}

// Members lists the holders of role sorted by address.
func (t *Table) Members(role Role) []common.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]common.Address, 0, len(t.members[role]))
	for addr := range t.members[role] {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}
