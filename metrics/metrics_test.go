// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	require := require.New(t)
	r := prometheus.NewRegistry()
	m, err := New(r)
	require.NoError(err)

	m.RecordSwap()
	m.RecordSwap()
	m.RecordRevert("K")
	m.SetReserves(uint256.NewInt(10), uint256.NewInt(20), uint256.NewInt(14))
	m.SetTotalStaked("0", uint256.NewInt(5))

	require.InDelta(2, testutil.ToFloat64(m.swaps), 0)
	require.InDelta(1, testutil.ToFloat64(m.reverted.WithLabelValues("K")), 0)
	require.InDelta(20, testutil.ToFloat64(m.reserveB), 0)
	require.InDelta(5, testutil.ToFloat64(m.totalStaked.WithLabelValues("0")), 0)

	_, err = New(r)
	require.Error(err, "double registration must fail")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordSwap()
	m.RecordRevert("K")
	m.SetReserves(uint256.NewInt(1), uint256.NewInt(1), uint256.NewInt(1))
	m.SetTotalStaked("0", uint256.NewInt(1))
}
