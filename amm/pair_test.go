// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/parsdao/swapfarm/access"
	"github.com/parsdao/swapfarm/asset"
	"github.com/parsdao/swapfarm/chain"
	"github.com/parsdao/swapfarm/dead"
	"github.com/parsdao/swapfarm/host"
	"github.com/parsdao/swapfarm/metrics"
	"github.com/parsdao/swapfarm/revert"
	"github.com/parsdao/swapfarm/state"
)

var (
	pairAddr   = common.HexToAddress("0x0000000000000000000000000000000000009010")
	tokenAAddr = common.HexToAddress("0xaaaa000000000000000000000000000000000001")
	tokenBAddr = common.HexToAddress("0xbbbb000000000000000000000000000000000002")
	lpAddr     = common.HexToAddress("0xcccc000000000000000000000000000000000003")

	owner    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	operator = common.HexToAddress("0x1000000000000000000000000000000000000002")
	treasury = common.HexToAddress("0x1000000000000000000000000000000000000003")
	alice    = common.HexToAddress("0x2000000000000000000000000000000000000001")
	bob      = common.HexToAddress("0x2000000000000000000000000000000000000002")
	carol    = common.HexToAddress("0x2000000000000000000000000000000000000003")

	maxApproval = new(uint256.Int).SetAllOne()
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

// e18 returns v*10^18.
func e18(v uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(v), uint256.NewInt(1_000_000_000_000_000_000))
}

func dec(s string) *uint256.Int { return uint256.MustFromDecimal(s) }

type fixture struct {
	ctx    context.Context
	env    *host.Env
	clock  *chain.ManualClock
	roles  *access.Table
	tokenA *asset.Token
	tokenB *asset.Token
	lp     *asset.Token
	pair   *Pair
	t      require.TestingT
}

type fixtureOptions struct {
	cfg      Config
	feeBpsA  uint16
	hostOpts []host.Option
}

type fixtureOption func(*fixtureOptions)

func withConfig(fn func(*Config)) fixtureOption {
	return func(o *fixtureOptions) { fn(&o.cfg) }
}

func withTransferFeeA(bps uint16) fixtureOption {
	return func(o *fixtureOptions) { o.feeBpsA = bps }
}

func withHost(opts ...host.Option) fixtureOption {
	return func(o *fixtureOptions) { o.hostOpts = append(o.hostOpts, opts...) }
}

func newFixture(t require.TestingT, opts ...fixtureOption) *fixture {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	o := fixtureOptions{cfg: Config{Address: pairAddr, SwapFeeBps: DefaultSwapFeeBps}}
	for _, opt := range opts {
		opt(&o)
	}

	clock := chain.NewManualClock(100, 1_000)
	env := host.New(clock, o.hostOpts...)
	newToken := func(addr common.Address, symbol string, fee uint16) *asset.Token {
		tok, err := asset.NewToken(env, asset.Config{Address: addr, Symbol: symbol, Decimals: 18, Owner: owner, TransferFeeBps: fee})
		require.NoError(t, err)
		require.NoError(t, tok.Roles().Grant(owner, access.Minter, owner))
		return tok
	}
	f := &fixture{
		ctx:    context.Background(),
		env:    env,
		clock:  clock,
		roles:  access.NewTable(owner),
		tokenA: newToken(tokenAAddr, "AAA", o.feeBpsA),
		tokenB: newToken(tokenBAddr, "BBB", 0),
		lp:     newToken(lpAddr, "AAA-BBB", 0),
		t:      t,
	}
	require.NoError(t, f.lp.Roles().Grant(owner, access.Minter, pairAddr))

	pair, err := NewPair(env, f.roles, o.cfg, f.tokenA, f.tokenB, f.lp)
	require.NoError(t, err)
	f.pair = pair
	return f
}

// fund mints both assets to user and approves the pair for everything.
func (f *fixture) fund(user common.Address, amountA, amountB *uint256.Int) {
	require.NoError(f.t, f.tokenA.Mint(f.ctx, owner, user, amountA))
	require.NoError(f.t, f.tokenB.Mint(f.ctx, owner, user, amountB))
	require.NoError(f.t, f.tokenA.Approve(f.ctx, user, pairAddr, maxApproval))
	require.NoError(f.t, f.tokenB.Approve(f.ctx, user, pairAddr, maxApproval))
	require.NoError(f.t, f.lp.Approve(f.ctx, user, pairAddr, maxApproval))
}

// seed funds alice and deposits amountA/amountB as the first liquidity.
func (f *fixture) seed(amountA, amountB *uint256.Int) *uint256.Int {
	f.fund(alice, amountA, amountB)
	_, _, liquidity, err := f.pair.AddLiquidity(f.ctx, alice, AddLiquidityParams{
		DesiredA: amountA,
		DesiredB: amountB,
		To:       alice,
	})
	require.NoError(f.t, err)
	return liquidity
}

func TestNewPair_Validation(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	_, err := NewPair(f.env, f.roles, Config{Address: pairAddr}, f.tokenA, f.tokenA, f.lp)
	require.ErrorIs(err, ErrIdenticalAssets)

	_, err = NewPair(f.env, f.roles, Config{}, f.tokenA, f.tokenB, f.lp)
	require.ErrorIs(err, revert.ErrZeroAddress)

	_, err = NewPair(f.env, f.roles, Config{Address: pairAddr, SwapFeeBps: MaxSwapFeeBps + 1}, f.tokenA, f.tokenB, f.lp)
	require.ErrorIs(err, ErrInvalidFee)

	_, err = NewPair(f.env, f.roles, Config{Address: pairAddr, ProtocolFeeShareBps: MaxProtocolFeeShareBps + 1}, f.tokenA, f.tokenB, f.lp)
	require.ErrorIs(err, ErrInvalidProtocolFeeShare)

	_, err = NewPair(f.env, f.roles, Config{Address: pairAddr, MaxPriceImpactBps: MaxPriceImpactBps + 1}, f.tokenA, f.tokenB, f.lp)
	require.ErrorIs(err, ErrInvalidPriceImpact)
}

func TestPair_FirstDeposit(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	liquidity := f.seed(e18(100), e18(100_000))

	root := new(uint256.Int).Sqrt(new(uint256.Int).Mul(e18(100), e18(100_000)))
	want := new(uint256.Int).Sub(root, u(MinimumLiquidity))
	require.Equal(want, liquidity)
	require.Equal(want, f.lp.BalanceOf(alice))
	require.Equal(u(MinimumLiquidity), f.lp.BalanceOf(dead.Address))
	require.Equal(u(MinimumLiquidity), dead.Burned(f.lp))

	pool := f.pair.Pool()
	require.Equal(*e18(100), pool.ReserveA)
	require.Equal(*e18(100_000), pool.ReserveB)
	require.Equal(*root, pool.TotalShares)
	require.Equal(f.lp.TotalSupply(), &pool.TotalShares)
	require.Equal(uint64(100), pool.LastBlock)

	reserveA, reserveB, last := f.pair.GetReserves()
	require.Equal(e18(100), reserveA)
	require.Equal(e18(100_000), reserveB)
	require.Equal(uint64(100), last)

	require.Len(f.env.Events().Named("Mint"), 1)
	require.Len(f.env.Events().Named("Sync"), 1)
}

func TestPair_FirstDepositTooSmall(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	f.fund(alice, u(1_000), u(1_000))

	_, _, _, err := f.pair.AddLiquidity(f.ctx, alice, AddLiquidityParams{DesiredA: u(1_000), DesiredB: u(1_000), To: alice})
	require.ErrorIs(err, ErrInsufficientLiquidityMinted)
	require.Equal(revert.Invariant, revert.KindOf(err))

	// nothing moved
	require.Equal(u(1_000), f.tokenA.BalanceOf(alice))
	require.True(f.tokenA.BalanceOf(pairAddr).IsZero())
	require.True(f.lp.TotalSupply().IsZero())
}

func TestPair_AddLiquidityKeepsRatio(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	f.seed(e18(100), e18(100_000))
	f.fund(bob, e18(10), e18(20_000))
	before := f.pair.Pool()

	amountA, amountB, liquidity, err := f.pair.AddLiquidity(f.ctx, bob, AddLiquidityParams{
		DesiredA: e18(10),
		DesiredB: e18(20_000),
		To:       bob,
	})
	require.NoError(err)
	require.Equal(e18(10), amountA)
	require.Equal(e18(10_000), amountB)
	require.Equal(e18(10_000), f.tokenB.BalanceOf(bob))

	pool := f.pair.Pool()
	require.Equal(*e18(110), pool.ReserveA)
	require.Equal(*e18(110_000), pool.ReserveB)
	// a tenth of the supply for a tenth of the reserves
	want := new(uint256.Int).Div(&before.TotalShares, u(10))
	require.Equal(want, liquidity)
	require.Equal(*new(uint256.Int).Add(&before.TotalShares, want), pool.TotalShares)
}

func TestPair_AddLiquidityMinimums(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	f.seed(e18(100), e18(100_000))
	f.fund(bob, e18(10), e18(20_000))

	// B is the binding side: optimal B 10000e18 is below MinB
	_, _, _, err := f.pair.AddLiquidity(f.ctx, bob, AddLiquidityParams{
		DesiredA: e18(10),
		DesiredB: e18(20_000),
		MinB:     e18(15_000),
		To:       bob,
	})
	require.ErrorIs(err, ErrInsufficientBAmount)
	require.Equal(revert.Policy, revert.KindOf(err))

	// A is the binding side: optimal A 5e18 is below MinA
	_, _, _, err = f.pair.AddLiquidity(f.ctx, bob, AddLiquidityParams{
		DesiredA: e18(10),
		DesiredB: e18(5_000),
		MinA:     e18(6),
		To:       bob,
	})
	require.ErrorIs(err, ErrInsufficientAAmount)

	_, _, _, err = f.pair.AddLiquidity(f.ctx, bob, AddLiquidityParams{DesiredA: e18(10), To: bob})
	require.ErrorIs(err, ErrInvalidInput)
	require.Equal(revert.Validation, revert.KindOf(err))

	require.Equal(e18(10), f.tokenA.BalanceOf(bob))
	require.Equal(e18(20_000), f.tokenB.BalanceOf(bob))
}

func TestPair_RemoveLiquidity(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	liquidity := f.seed(e18(100), e18(100_000))

	_, _, err := f.pair.RemoveLiquidity(f.ctx, alice, RemoveLiquidityParams{
		Shares: liquidity,
		MinA:   e18(100),
		To:     alice,
	})
	require.ErrorIs(err, ErrInsufficientAAmount)
	require.Equal(liquidity, f.lp.BalanceOf(alice))

	amountA, amountB, err := f.pair.RemoveLiquidity(f.ctx, alice, RemoveLiquidityParams{
		Shares: liquidity,
		To:     alice,
	})
	require.NoError(err)
	require.True(amountA.Lt(e18(100)))
	require.True(amountB.Lt(e18(100_000)))
	require.Equal(amountA, f.tokenA.BalanceOf(alice))
	require.Equal(amountB, f.tokenB.BalanceOf(alice))
	require.True(f.lp.BalanceOf(alice).IsZero())

	// only the locked shares and their reserves remain
	pool := f.pair.Pool()
	require.Equal(*u(MinimumLiquidity), pool.TotalShares)
	require.Equal(*new(uint256.Int).Sub(e18(100), amountA), pool.ReserveA)
	require.Equal(pool.KLast, *new(uint256.Int).Mul(&pool.ReserveA, &pool.ReserveB))
	require.Len(f.env.Events().Named("Burn"), 1)
}

func TestPair_RemoveLiquidityValidation(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	f.seed(e18(100), e18(100_000))

	_, _, err := f.pair.RemoveLiquidity(f.ctx, alice, RemoveLiquidityParams{To: alice})
	require.ErrorIs(err, ErrInvalidInput)

	_, _, err = f.pair.RemoveLiquidity(f.ctx, bob, RemoveLiquidityParams{Shares: u(1), To: bob})
	require.ErrorIs(err, asset.ErrInsufficientAllowance)

	f.clock.Advance(1, 60)
	_, _, err = f.pair.RemoveLiquidity(f.ctx, alice, RemoveLiquidityParams{Shares: u(1), To: alice, Deadline: 1_000})
	require.ErrorIs(err, revert.ErrExpired)
}

func TestPair_GetPrice(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	require.True(f.pair.GetPrice(SideA).IsZero())

	f.seed(e18(100), e18(100_000))
	require.Equal(e18(1_000), f.pair.GetPrice(SideA))
	require.Equal(dec("1000000000000000"), f.pair.GetPrice(SideB))
}

func TestPair_SyncEmptyPair(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	f.fund(bob, u(5), u(7))
	require.NoError(f.tokenA.Transfer(f.ctx, bob, pairAddr, u(5)))
	require.NoError(f.tokenB.Transfer(f.ctx, bob, pairAddr, u(7)))

	err := f.pair.Sync(f.ctx, bob)
	require.ErrorIs(err, ErrInsufficientLiquidity)
	pool := f.pair.Pool()
	require.True(pool.ReserveA.IsZero())
	require.True(pool.ReserveB.IsZero())
	require.True(pool.TotalShares.IsZero())

	// the donation can still be taken back
	require.NoError(f.pair.Skim(f.ctx, bob, bob))
	require.Equal(u(5), f.tokenA.BalanceOf(bob))
	require.Equal(u(7), f.tokenB.BalanceOf(bob))
}

func TestPair_SkimAndSync(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	f.seed(e18(100), e18(100_000))
	f.fund(bob, e18(5), e18(7))

	require.NoError(f.tokenA.Transfer(f.ctx, bob, pairAddr, e18(5)))
	require.NoError(f.pair.Skim(f.ctx, carol, carol))
	require.Equal(e18(5), f.tokenA.BalanceOf(carol))
	require.Equal(*e18(100), f.pair.Pool().ReserveA)

	require.NoError(f.tokenB.Transfer(f.ctx, bob, pairAddr, e18(7)))
	require.NoError(f.pair.Sync(f.ctx, carol))
	require.Equal(*e18(100_007), f.pair.Pool().ReserveB)
}

func TestPair_ReserveOverflow(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	huge := new(uint256.Int).Add(MaxReserve, u(1))
	f.fund(alice, huge, e18(1))

	_, _, _, err := f.pair.AddLiquidity(f.ctx, alice, AddLiquidityParams{DesiredA: huge, DesiredB: e18(1), To: alice})
	require.ErrorIs(err, ErrReserveOverflow)
	pool := f.pair.Pool()
	require.True(pool.ReserveA.IsZero())
	require.True(f.tokenA.BalanceOf(pairAddr).IsZero())
}

func TestPair_PersistAndLoad(t *testing.T) {
	require := require.New(t)
	store := state.NewStore(memdb.New())
	f := newFixture(t, withHost(host.WithStore(store)))
	f.seed(e18(100), e18(100_000))

	restored, err := NewPair(host.New(chain.NewManualClock(0, 0)), f.roles, Config{Address: pairAddr}, f.tokenA, f.tokenB, f.lp)
	require.NoError(err)
	ok, err := restored.Load(store)
	require.NoError(err)
	require.True(ok)
	require.Equal(f.pair.Pool(), restored.Pool())

	other, err := NewPair(f.env, f.roles, Config{Address: carol}, f.tokenA, f.tokenB, f.lp)
	require.NoError(err)
	ok, err = other.Load(store)
	require.NoError(err)
	require.False(ok)
}

// gathered returns the value of the unlabeled counter or gauge name.
func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		if c := m.GetCounter(); c != nil {
			return c.GetValue()
		}
		return m.GetGauge().GetValue()
	}
	return 0
}

func TestPair_MetricsOnlyCountCommitted(t *testing.T) {
	require := require.New(t)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(err)
	f := newFixture(t, withHost(host.WithMetrics(m)))
	liquidity := f.seed(e18(100), e18(100_000))
	require.InDelta(1, gathered(t, reg, "swapfarm_liquidity_added"), 0)
	reserveA := gathered(t, reg, "swapfarm_reserve_a")
	shares := gathered(t, reg, "swapfarm_total_shares")
	require.InEpsilon(100e18, reserveA, 1e-9)

	_, _, err = f.pair.RemoveLiquidity(f.ctx, alice, RemoveLiquidityParams{
		Shares: liquidity,
		MinA:   e18(1_000),
		To:     alice,
	})
	require.ErrorIs(err, ErrInsufficientAAmount)
	require.Zero(gathered(t, reg, "swapfarm_liquidity_removed"))
	require.Equal(reserveA, gathered(t, reg, "swapfarm_reserve_a"))
	require.Equal(shares, gathered(t, reg, "swapfarm_total_shares"))

	half := new(uint256.Int).Div(liquidity, u(2))
	_, _, err = f.pair.RemoveLiquidity(f.ctx, alice, RemoveLiquidityParams{Shares: half, To: alice})
	require.NoError(err)
	require.InDelta(1, gathered(t, reg, "swapfarm_liquidity_removed"), 0)
	require.Less(gathered(t, reg, "swapfarm_reserve_a"), reserveA)
}
