// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package revert defines the failure taxonomy shared by every contract in
// the exchange. A failed operation always aborts as a whole; the returned
// error carries a stable reason string and one of four kinds so callers can
// branch on it without string matching.
package revert

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was aborted.
type Kind uint8

const (
	// Validation covers malformed or out-of-range inputs.
	Validation Kind = iota + 1
	// Invariant covers violations of a conservation or math invariant.
	Invariant
	// Policy covers inputs that are well-formed but refused by a guard.
	Policy
	// Authorization covers callers lacking the required role.
	Authorization
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Invariant:
		return "invariant"
	case Policy:
		return "policy"
	case Authorization:
		return "authorization"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Error is a sentinel failure. Sentinels are compared by identity, so wrap
// them with fmt.Errorf("%w: ...") to add context.
type Error struct {
	Kind   Kind
	Reason string
}

// New returns a sentinel error with the given kind and reason.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func (e *Error) Error() string {
	return e.Reason
}

// Shared sentinels used by more than one package.
var (
	ErrOverflow     = New(Invariant, "OVERFLOW")
	ErrReentrant    = New(Policy, "LOCKED")
	ErrUnauthorized = New(Authorization, "UNAUTHORIZED")
	ErrExpired      = New(Policy, "EXPIRED")
	ErrZeroAddress  = New(Validation, "ZERO_ADDRESS")
)

// As returns the revert error wrapped by err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or 0 if err carries no revert error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return 0
}

// ReasonOf returns the stable reason of err. Errors outside the taxonomy
// report "INTERNAL".
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Reason
	}
	return "INTERNAL"
}
