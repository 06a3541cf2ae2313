// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package farm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/parsdao/swapfarm/access"
	"github.com/parsdao/swapfarm/asset"
	"github.com/parsdao/swapfarm/chain"
	"github.com/parsdao/swapfarm/events"
	"github.com/parsdao/swapfarm/host"
	"github.com/parsdao/swapfarm/revert"
	"github.com/parsdao/swapfarm/state"
)

var (
	farmAddr   = common.HexToAddress("0x0000000000000000000000000000000000009015")
	rewardAddr = common.HexToAddress("0xdddd000000000000000000000000000000000001")
	stakeAddr  = common.HexToAddress("0xeeee000000000000000000000000000000000002")
	otherAddr  = common.HexToAddress("0xeeee000000000000000000000000000000000003")

	owner    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	operator = common.HexToAddress("0x1000000000000000000000000000000000000002")
	devFund  = common.HexToAddress("0x1000000000000000000000000000000000000004")
	feeTo    = common.HexToAddress("0x1000000000000000000000000000000000000005")
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

type fixture struct {
	t      require.TestingT
	ctx    context.Context
	env    *host.Env
	clock  *chain.ManualClock
	roles  *access.Table
	reward *asset.Token
	staked *asset.Token
	other  *asset.Token
	farm   *Farm
}

func newFixture(t require.TestingT, opts ...host.Option) *fixture {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	clock := chain.NewManualClock(100, 1_000)
	env := host.New(clock, opts...)
	newToken := func(addr common.Address, symbol string) *asset.Token {
		tok, err := asset.NewToken(env, asset.Config{Address: addr, Symbol: symbol, Decimals: 18, Owner: owner})
		require.NoError(t, err)
		return tok
	}
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		env:    env,
		clock:  clock,
		roles:  access.NewTable(owner),
		reward: newToken(rewardAddr, "RWD"),
		staked: newToken(stakeAddr, "STK"),
		other:  newToken(otherAddr, "ALT"),
	}
	require.NoError(t, f.reward.Roles().Grant(owner, access.Minter, farmAddr))

	farm, err := NewFarm(env, f.roles, Config{
		Address:          farmAddr,
		EmissionPerBlock: e18(10),
		DevFund:          devFund,
		FeeRecipient:     feeTo,
	}, f.reward)
	require.NoError(t, err)
	f.farm = farm
	return f
}

// fund mints amount of tok to user and approves the farm.
func (f *fixture) fund(tok *asset.Token, user common.Address, amount *uint256.Int) {
	require.NoError(f.t, tok.Mint(f.ctx, owner, user, amount))
	require.NoError(f.t, tok.Approve(f.ctx, user, farmAddr, maxApproval))
}

func (f *fixture) addPool(tok *asset.Token, alloc uint64, feeBps uint16, lockup uint64) uint64 {
	pid, err := f.farm.Add(f.ctx, owner, PoolParams{Asset: tok, AllocPoints: alloc, DepositFeeBps: feeBps, LockupSeconds: lockup})
	require.NoError(f.t, err)
	return pid
}

func (f *fixture) deposit(user common.Address, pid uint64, amount *uint256.Int) {
	_, err := f.farm.Deposit(f.ctx, user, pid, amount)
	require.NoError(f.t, err)
}

func (f *fixture) sumStakes(pid uint64, users ...common.Address) *uint256.Int {
	total := new(uint256.Int)
	for _, user := range users {
		stake, err := f.farm.GetUserInfo(pid, user)
		require.NoError(f.t, err)
		total.Add(total, &stake.Amount)
	}
	return total
}

func TestNewFarm_Validation(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	_, err := NewFarm(f.env, f.roles, Config{DevFund: devFund, FeeRecipient: feeTo}, f.reward)
	require.ErrorIs(err, revert.ErrZeroAddress)
	_, err = NewFarm(f.env, f.roles, Config{Address: farmAddr, FeeRecipient: feeTo}, f.reward)
	require.ErrorIs(err, revert.ErrZeroAddress)
	_, err = NewFarm(f.env, f.roles, Config{Address: farmAddr, DevFund: devFund}, f.reward)
	require.ErrorIs(err, revert.ErrZeroAddress)
}

func TestFarm_AccumulatorScenario(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.staked, 1000, 0, 0)
	f.fund(f.staked, alice, e18(10))
	f.deposit(alice, pid, e18(10))

	before, err := f.farm.GetPoolInfo(pid)
	require.NoError(err)
	require.True(before.AccRewardPerShare.IsZero())

	f.clock.Advance(16, 16*2)
	require.NoError(f.farm.UpdatePool(f.ctx, pid))

	after, err := f.farm.GetPoolInfo(pid)
	require.NoError(err)
	// 16 * 10e18 * 1e12 / 10e18
	want := new(uint256.Int).Mul(u(16), e18(10))
	want.Mul(want, u(AccPrecision))
	want.Div(want, e18(10))
	require.Equal(*want, *new(uint256.Int).Sub(&after.AccRewardPerShare, &before.AccRewardPerShare))
	require.Equal(uint64(116), after.LastRewardBlock)

	require.Equal(e18(160), f.reward.BalanceOf(farmAddr))
	require.Equal(e18(16), f.reward.BalanceOf(devFund))

	pending, err := f.farm.PendingReward(pid, alice)
	require.NoError(err)
	require.Equal(e18(160), pending)
}

func TestFarm_NoAccrualWhileEmpty(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.staked, 1000, 0, 0)

	f.clock.Advance(50, 100)
	require.NoError(f.farm.UpdatePool(f.ctx, pid))
	pool, err := f.farm.GetPoolInfo(pid)
	require.NoError(err)
	require.True(pool.AccRewardPerShare.IsZero())
	require.Equal(uint64(150), pool.LastRewardBlock)
	require.True(f.reward.TotalSupply().IsZero())

	// the empty stretch is never paid out later
	f.fund(f.staked, alice, e18(1))
	f.deposit(alice, pid, e18(1))
	pending, err := f.farm.PendingReward(pid, alice)
	require.NoError(err)
	require.True(pending.IsZero())
}

func TestFarm_StartBlock(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	farm, err := NewFarm(f.env, f.roles, Config{
		Address:          farmAddr,
		EmissionPerBlock: e18(1),
		StartBlock:       200,
		DevFund:          devFund,
		FeeRecipient:     feeTo,
	}, f.reward)
	require.NoError(err)
	f.farm = farm

	pid := f.addPool(f.staked, 1, 0, 0)
	f.fund(f.staked, alice, e18(1))
	f.deposit(alice, pid, e18(1))

	f.clock.Advance(100, 100)
	pending, err := f.farm.PendingReward(pid, alice)
	require.NoError(err)
	require.True(pending.IsZero())

	f.clock.Advance(5, 10)
	pending, err = f.farm.PendingReward(pid, alice)
	require.NoError(err)
	require.Equal(e18(5), pending)
}

func TestFarm_PendingMatchesHarvest(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.staked, 1000, 0, 0)
	f.fund(f.staked, alice, e18(3))
	f.fund(f.staked, bob, e18(7))
	f.deposit(alice, pid, e18(3))
	f.deposit(bob, pid, e18(7))

	f.clock.Advance(7, 14)
	for _, user := range []common.Address{alice, bob} {
		pending, err := f.farm.PendingReward(pid, user)
		require.NoError(err)
		paid, err := f.farm.Harvest(f.ctx, user, pid)
		require.NoError(err)
		require.Equal(pending, paid)
		require.Equal(paid, f.reward.BalanceOf(user))
	}
	// 3:7 split of 70e18
	require.Equal(e18(21), f.reward.BalanceOf(alice))
	require.Equal(e18(49), f.reward.BalanceOf(bob))

	_, err := f.farm.Harvest(f.ctx, alice, pid)
	require.ErrorIs(err, ErrNoPendingReward)
	require.Equal(revert.Policy, revert.KindOf(err))
}

func TestFarm_HarvestLockup(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.staked, 1000, 0, 3600)
	f.fund(f.staked, alice, e18(10))
	f.deposit(alice, pid, e18(10))

	stake, err := f.farm.GetUserInfo(pid, alice)
	require.NoError(err)
	require.Equal(uint64(1_000+3600), stake.LockedUntil)

	f.clock.Advance(5, 60)
	_, err = f.farm.Harvest(f.ctx, alice, pid)
	require.ErrorIs(err, ErrHarvestLocked)
	require.Equal("HARVEST_LOCKED", revert.ReasonOf(err))
	ok, err := f.farm.CanHarvest(pid, alice)
	require.NoError(err)
	require.False(ok)

	// a failed harvest leaves the pool untouched
	pool, err := f.farm.GetPoolInfo(pid)
	require.NoError(err)
	require.Equal(uint64(100), pool.LastRewardBlock)

	f.clock.Advance(1, 3600)
	ok, err = f.farm.CanHarvest(pid, alice)
	require.NoError(err)
	require.True(ok)
	paid, err := f.farm.Harvest(f.ctx, alice, pid)
	require.NoError(err)
	require.Equal(e18(60), paid)

	stake, err = f.farm.GetUserInfo(pid, alice)
	require.NoError(err)
	now := f.clock.Now()
	require.Equal(now+3600, stake.LockedUntil)
	require.Equal(now, stake.LastHarvestTime)
}

func TestFarm_DepositSettlesAndFees(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.staked, 1000, 400, 0)
	f.fund(f.staked, alice, e18(20))

	credited, err := f.farm.Deposit(f.ctx, alice, pid, e18(10))
	require.NoError(err)
	require.Equal(dec("9600000000000000000"), credited)
	require.Equal(dec("400000000000000000"), f.staked.BalanceOf(feeTo))
	require.Equal(credited, f.staked.BalanceOf(farmAddr))

	// 24 blocks keep the accumulator exact for a 9.6e18 stake
	f.clock.Advance(24, 48)
	// the second deposit pays what the first one earned
	_, err = f.farm.Deposit(f.ctx, alice, pid, e18(10))
	require.NoError(err)
	require.Equal(e18(240), f.reward.BalanceOf(alice))

	pool, err := f.farm.GetPoolInfo(pid)
	require.NoError(err)
	stake, err := f.farm.GetUserInfo(pid, alice)
	require.NoError(err)
	require.Equal(pool.TotalStaked, stake.Amount)
	require.Equal(dec("19200000000000000000"), &stake.Amount)
	debt, err := rewardDebt(&stake.Amount, &pool.AccRewardPerShare)
	require.NoError(err)
	require.Equal(*debt, stake.RewardDebt)

	// zero deposit is a pure harvest
	f.clock.Advance(1, 2)
	pending, err := f.farm.PendingReward(pid, alice)
	require.NoError(err)
	require.False(pending.IsZero())
	credited, err = f.farm.Deposit(f.ctx, alice, pid, nil)
	require.NoError(err)
	require.True(credited.IsZero())
	require.Equal(new(uint256.Int).Add(e18(240), pending), f.reward.BalanceOf(alice))

	require.Len(f.env.Events().Named("Deposit"), 3)
	require.Len(f.env.Events().Named("Harvest"), 2)
}

func TestFarm_Withdraw(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.staked, 1000, 0, 0)
	f.fund(f.staked, alice, e18(10))
	f.deposit(alice, pid, e18(10))
	f.clock.Advance(2, 4)

	err := f.farm.Withdraw(f.ctx, alice, pid, e18(11))
	require.ErrorIs(err, ErrInsufficientStakedAmount)

	require.NoError(f.farm.Withdraw(f.ctx, alice, pid, e18(4)))
	require.Equal(e18(4), f.staked.BalanceOf(alice))
	require.Equal(e18(20), f.reward.BalanceOf(alice))

	pool, err := f.farm.GetPoolInfo(pid)
	require.NoError(err)
	require.Equal(*e18(6), pool.TotalStaked)

	require.NoError(f.farm.Withdraw(f.ctx, alice, pid, e18(6)))
	stake, err := f.farm.GetUserInfo(pid, alice)
	require.NoError(err)
	require.True(stake.Amount.IsZero())
	require.True(stake.RewardDebt.IsZero())
	require.Equal(e18(10), f.staked.BalanceOf(alice))

	ev := f.env.Events().Named("Withdraw")
	require.Len(ev, 2)
	require.Equal(events.Withdraw{User: alice, PoolID: pid, Amount: *e18(6)}, ev[1].Event)
}

func TestFarm_EmergencyWithdrawForfeitsRewards(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.staked, 1000, 0, 3600)
	f.fund(f.staked, alice, e18(10))
	f.deposit(alice, pid, e18(10))
	f.clock.Advance(10, 20)

	_, err := f.farm.EmergencyWithdraw(f.ctx, alice, pid)
	require.ErrorIs(err, ErrEmergencyDisabled)

	require.ErrorIs(f.farm.SetEmergency(f.ctx, bob, true), revert.ErrUnauthorized)
	require.NoError(f.farm.SetEmergency(f.ctx, owner, true))

	pending, err := f.farm.PendingReward(pid, alice)
	require.NoError(err)
	require.Equal(e18(100), pending)

	amount, err := f.farm.EmergencyWithdraw(f.ctx, alice, pid)
	require.NoError(err)
	require.Equal(e18(10), amount)
	require.Equal(e18(10), f.staked.BalanceOf(alice))
	require.True(f.reward.BalanceOf(alice).IsZero())

	stake, err := f.farm.GetUserInfo(pid, alice)
	require.NoError(err)
	require.True(stake.Amount.IsZero())
	require.True(stake.RewardDebt.IsZero())
	require.Zero(stake.LockedUntil)

	pool, err := f.farm.GetPoolInfo(pid)
	require.NoError(err)
	require.True(pool.TotalStaked.IsZero())

	// the forfeited reward is not preserved for a later stake
	require.NoError(f.staked.Approve(f.ctx, alice, farmAddr, maxApproval))
	f.deposit(alice, pid, e18(10))
	pending, err = f.farm.PendingReward(pid, alice)
	require.NoError(err)
	require.True(pending.IsZero())
	require.Len(f.env.Events().Named("EmergencyWithdraw"), 1)
}

func TestFarm_RegistryValidation(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.staked, 1000, 0, 0)

	_, err := f.farm.Add(f.ctx, bob, PoolParams{Asset: f.other, AllocPoints: 1})
	require.ErrorIs(err, revert.ErrUnauthorized)
	require.Equal(revert.Authorization, revert.KindOf(err))

	_, err = f.farm.Add(f.ctx, owner, PoolParams{Asset: f.staked, AllocPoints: 1})
	require.ErrorIs(err, ErrDuplicatePool)

	_, err = f.farm.Add(f.ctx, owner, PoolParams{Asset: f.other, DepositFeeBps: MaxDepositFeeBps + 1})
	require.ErrorIs(err, ErrInvalidDepositFee)

	_, err = f.farm.Add(f.ctx, owner, PoolParams{Asset: f.other, LockupSeconds: MaxLockupSeconds + 1})
	require.ErrorIs(err, ErrInvalidLockup)

	_, err = f.farm.Add(f.ctx, owner, PoolParams{})
	require.ErrorIs(err, ErrInvalidAsset)

	require.ErrorIs(f.farm.Set(f.ctx, owner, 7, 1, 0, 0), ErrUnknownPool)
	require.ErrorIs(f.farm.Set(f.ctx, owner, pid, 1, MaxDepositFeeBps+1, 0), ErrInvalidDepositFee)
	require.ErrorIs(f.farm.Set(f.ctx, bob, pid, 1, 0, 0), revert.ErrUnauthorized)
	_, err = f.farm.Deposit(f.ctx, alice, 9, e18(1))
	require.ErrorIs(err, ErrUnknownPool)

	require.Equal(1, f.farm.PoolLength())
	require.Equal(uint64(1000), f.farm.Params().TotalAllocPoints)
	require.Len(f.env.Events().Named("PoolAdded"), 1)
}

func TestFarm_SetCatchesUpAtOldWeights(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pidA := f.addPool(f.staked, 1000, 0, 0)
	pidB := f.addPool(f.other, 1000, 0, 0)
	require.Equal(uint64(2000), f.farm.Params().TotalAllocPoints)

	f.fund(f.staked, alice, e18(10))
	f.fund(f.other, bob, e18(10))
	f.deposit(alice, pidA, e18(10))
	f.deposit(bob, pidB, e18(10))

	f.clock.Advance(10, 20)
	require.NoError(f.roles.Grant(owner, access.Operator, operator))
	require.NoError(f.farm.Set(f.ctx, operator, pidB, 3000, 0, 0))
	require.Equal(uint64(4000), f.farm.Params().TotalAllocPoints)

	// both pools were caught up at the even split before the change
	for _, pid := range []uint64{pidA, pidB} {
		pool, err := f.farm.GetPoolInfo(pid)
		require.NoError(err)
		require.Equal(uint64(110), pool.LastRewardBlock)
		require.Equal(*u(5 * AccPrecision), pool.AccRewardPerShare)
	}

	f.clock.Advance(4, 8)
	pendingA, err := f.farm.PendingReward(pidA, alice)
	require.NoError(err)
	pendingB, err := f.farm.PendingReward(pidB, bob)
	require.NoError(err)
	require.Equal(e18(50+10), pendingA)
	require.Equal(e18(50+30), pendingB)
}

func TestFarm_SetEmissionRate(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.staked, 1000, 0, 0)
	f.fund(f.staked, alice, e18(10))
	f.deposit(alice, pid, e18(10))

	f.clock.Advance(10, 20)
	require.ErrorIs(f.farm.SetEmissionRate(f.ctx, bob, u(0)), revert.ErrUnauthorized)
	require.NoError(f.farm.SetEmissionRate(f.ctx, owner, u(0)))
	params := f.farm.Params()
	require.True(params.EmissionPerBlock.IsZero())

	f.clock.Advance(10, 20)
	pending, err := f.farm.PendingReward(pid, alice)
	require.NoError(err)
	require.Equal(e18(100), pending)

	ev := f.env.Events().Named("EmissionRateUpdated")
	require.Len(ev, 1)
	require.Equal(*e18(10), ev[0].Event.(events.EmissionRateUpdated).Previous)
}

func TestFarm_Recipients(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	require.ErrorIs(f.farm.SetDevFund(f.ctx, bob, carol), revert.ErrUnauthorized)
	require.ErrorIs(f.farm.SetDevFund(f.ctx, owner, common.Address{}), revert.ErrZeroAddress)
	require.NoError(f.farm.SetDevFund(f.ctx, owner, carol))
	require.NoError(f.farm.SetFeeRecipient(f.ctx, owner, carol))
	require.Equal(carol, f.farm.Params().DevFund)
	require.Equal(carol, f.farm.Params().FeeRecipient)
	require.Len(f.env.Events().Named("RecipientUpdated"), 2)
}

func TestFarm_RewardPoolKeepsPrincipal(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	pid := f.addPool(f.reward, 1000, 0, 0)
	f.fund(f.reward, alice, e18(10))
	f.deposit(alice, pid, e18(10))

	f.clock.Advance(3, 6)
	paid, err := f.farm.Harvest(f.ctx, alice, pid)
	require.NoError(err)
	require.Equal(e18(30), paid)
	require.Equal(e18(10), f.reward.BalanceOf(farmAddr))

	require.NoError(f.farm.Withdraw(f.ctx, alice, pid, e18(10)))
	require.Equal(e18(40), f.reward.BalanceOf(alice))
	require.True(f.reward.BalanceOf(farmAddr).IsZero())
}

func TestFarm_Reentrancy(t *testing.T) {
	tests := []struct {
		name string
		ctx  func(hook context.Context) context.Context
	}{
		{"operation context", func(hook context.Context) context.Context { return hook }},
		{"fresh context", func(context.Context) context.Context { return context.Background() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			f := newFixture(t)
			pid := f.addPool(f.staked, 1000, 0, 0)
			f.fund(f.staked, alice, e18(10))
			f.deposit(alice, pid, e18(10))
			f.clock.Advance(2, 4)

			f.staked.SetHook(func(ctx context.Context, from, _ common.Address, _ *uint256.Int) error {
				if from != farmAddr {
					return nil
				}
				_, err := f.farm.Harvest(tt.ctx(ctx), alice, pid)
				return err
			})
			done := make(chan error, 1)
			go func() { done <- f.farm.Withdraw(f.ctx, alice, pid, e18(1)) }()
			select {
			case err := <-done:
				require.ErrorIs(err, revert.ErrReentrant)
			case <-time.After(5 * time.Second):
				require.FailNow("withdraw blocked on its own re-entrant call")
			}
			require.True(f.reward.BalanceOf(alice).IsZero())

			stake, err := f.farm.GetUserInfo(pid, alice)
			require.NoError(err)
			require.Equal(*e18(10), stake.Amount)
		})
	}
}

func TestFarm_PersistAndLoad(t *testing.T) {
	require := require.New(t)
	store := state.NewStore(memdb.New())
	f := newFixture(t, host.WithStore(store))
	pidA := f.addPool(f.staked, 1000, 100, 60)
	pidB := f.addPool(f.other, 500, 0, 0)
	f.fund(f.staked, alice, e18(10))
	f.fund(f.other, bob, e18(5))
	f.deposit(alice, pidA, e18(10))
	f.deposit(bob, pidB, e18(5))
	f.clock.Advance(3, 6)
	require.NoError(f.farm.MassCatchUp(f.ctx))

	restored, err := NewFarm(host.New(chain.NewManualClock(0, 0)), f.roles, Config{
		Address:      farmAddr,
		DevFund:      devFund,
		FeeRecipient: feeTo,
	}, f.reward)
	require.NoError(err)
	ledgers := map[common.Address]asset.Ledger{stakeAddr: f.staked, otherAddr: f.other}
	ok, err := restored.Load(store, func(addr common.Address) (asset.Ledger, error) {
		l, found := ledgers[addr]
		if !found {
			return nil, fmt.Errorf("unknown asset %s", addr)
		}
		return l, nil
	})
	require.NoError(err)
	require.True(ok)

	require.Equal(f.farm.Params(), restored.Params())
	require.Equal(2, restored.PoolLength())
	for _, pid := range []uint64{pidA, pidB} {
		want, err := f.farm.GetPoolInfo(pid)
		require.NoError(err)
		got, err := restored.GetPoolInfo(pid)
		require.NoError(err)
		require.Equal(want, got)
	}
	for _, c := range []struct {
		pid  uint64
		user common.Address
	}{{pidA, alice}, {pidB, bob}} {
		want, err := f.farm.GetUserInfo(c.pid, c.user)
		require.NoError(err)
		got, err := restored.GetUserInfo(c.pid, c.user)
		require.NoError(err)
		require.Equal(want, got)
	}
	got, found := restored.PoolOf(otherAddr)
	require.True(found)
	require.Equal(pidB, got)
}

func dec(s string) *uint256.Int { return uint256.MustFromDecimal(s) }
