// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package revert

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindAndReasonSurviveWrapping(t *testing.T) {
	require := require.New(t)

	err := fmt.Errorf("%w: amount 0", ErrOverflow)
	require.ErrorIs(err, ErrOverflow)
	require.Equal(Invariant, KindOf(err))
	require.Equal("OVERFLOW", ReasonOf(err))

	err = fmt.Errorf("deposit: %w", err)
	require.Equal(Invariant, KindOf(err))
}

func TestForeignErrors(t *testing.T) {
	require := require.New(t)

	require.Equal(Kind(0), KindOf(errors.New("boom")))
	require.Equal("INTERNAL", ReasonOf(errors.New("boom")))
	require.Empty(ReasonOf(nil))
}

func TestSentinelsAreDistinct(t *testing.T) {
	a := New(Validation, "SAME")
	b := New(Validation, "SAME")
	require.NotErrorIs(t, a, b)
	require.Equal(t, "policy", Policy.String())
	require.Equal(t, "kind(9)", Kind(9).String())
}
