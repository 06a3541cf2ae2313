// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package exchange deploys a complete exchange from a config: four token
// ledgers, the pair and the farm, sharing one host environment and one
// role table.
package exchange

import (
	"context"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/access"
	"github.com/parsdao/swapfarm/amm"
	"github.com/parsdao/swapfarm/asset"
	"github.com/parsdao/swapfarm/chain"
	"github.com/parsdao/swapfarm/config"
	"github.com/parsdao/swapfarm/farm"
	"github.com/parsdao/swapfarm/host"
	"github.com/parsdao/swapfarm/metrics"
	"github.com/parsdao/swapfarm/modules"
	"github.com/parsdao/swapfarm/state"
)

// Exchange is a deployed pair and farm with their tokens.
type Exchange struct {
	cfg     config.Config
	env     *host.Env
	roles   *access.Table
	modules *modules.Registry
	reg     *prometheus.Registry

	TokenA *asset.Token
	TokenB *asset.Token
	Shares *asset.Token
	Reward *asset.Token
	Pair   *amm.Pair
	Farm   *farm.Farm
}

type options struct {
	clock  chain.Clock
	db     database.Database
	logger *zap.Logger
	reg    *prometheus.Registry
}

// Option configures New.
type Option func(*options)

// WithClock drives the exchange from clock instead of a manual clock
// starting at the configured genesis.
func WithClock(c chain.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithDatabase persists every committed operation to db and restores any
// state already in it.
func WithDatabase(db database.Database) Option {
	return func(o *options) { o.db = db }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry registers the exchange collectors on reg. Without it a
// private registry is created when metrics are enabled.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.reg = reg }
}

// New deploys the exchange described by cfg. When the database holds a
// previous deployment its state is restored and the configured farm pools
// are not added again.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Exchange, error) {
	if err := cfg.Verify(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = chain.NewManualClock(cfg.Genesis.Block, cfg.Genesis.Time)
	}

	hostOpts := []host.Option{host.WithLogger(o.logger)}
	var store *state.Store
	if o.db != nil {
		store = state.NewStore(o.db)
		hostOpts = append(hostOpts, host.WithStore(store))
	}
	if o.reg == nil && cfg.Metrics.Enabled {
		o.reg = prometheus.NewRegistry()
	}
	if o.reg != nil {
		m, err := metrics.New(o.reg)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		hostOpts = append(hostOpts, host.WithMetrics(m))
	}

	x := &Exchange{
		cfg:     cfg,
		env:     host.New(o.clock, hostOpts...),
		roles:   access.NewTable(cfg.Owner),
		modules: modules.NewRegistry(),
		reg:     o.reg,
	}
	for _, op := range cfg.Operators {
		if err := x.roles.Grant(cfg.Owner, access.Operator, op); err != nil {
			return nil, err
		}
	}
	if err := x.deploy(); err != nil {
		return nil, err
	}

	restored := false
	if store != nil {
		var err error
		if restored, err = x.restore(store); err != nil {
			return nil, fmt.Errorf("restoring state: %w", err)
		}
	}
	if !restored {
		if err := x.addPools(ctx); err != nil {
			return nil, err
		}
	}
	x.env.Logger().Info("exchange deployed",
		zap.Stringer("pair", x.Pair.Address()),
		zap.Stringer("farm", x.Farm.Address()),
		zap.Int("farmPools", x.Farm.PoolLength()),
		zap.Bool("restored", restored),
	)
	return x, nil
}

func (x *Exchange) deploy() error {
	cfg := &x.cfg
	var err error
	for _, t := range []struct {
		tok  **asset.Token
		conf config.Token
		name string
	}{
		{&x.TokenA, cfg.Tokens.A, modules.TokenAName},
		{&x.TokenB, cfg.Tokens.B, modules.TokenBName},
		{&x.Shares, cfg.Tokens.Shares, modules.SharesName},
		{&x.Reward, cfg.Tokens.Reward, modules.RewardName},
	} {
		if *t.tok, err = asset.NewToken(x.env, cfg.TokenConfig(t.conf)); err != nil {
			return fmt.Errorf("deploying %s: %w", t.name, err)
		}
	}
	if err := x.Shares.Roles().Grant(cfg.Owner, access.Minter, cfg.Pair.Address); err != nil {
		return err
	}
	if err := x.Reward.Roles().Grant(cfg.Owner, access.Minter, cfg.Farm.Address); err != nil {
		return err
	}

	if x.Pair, err = amm.NewPair(x.env, x.roles, cfg.PairConfig(), x.TokenA, x.TokenB, x.Shares); err != nil {
		return fmt.Errorf("deploying pair: %w", err)
	}
	farmCfg, err := cfg.FarmConfig()
	if err != nil {
		return err
	}
	if x.Farm, err = farm.NewFarm(x.env, x.roles, farmCfg, x.Reward); err != nil {
		return fmt.Errorf("deploying farm: %w", err)
	}

	for name, c := range map[string]modules.Contract{
		modules.TokenAName: x.TokenA,
		modules.TokenBName: x.TokenB,
		modules.SharesName: x.Shares,
		modules.RewardName: x.Reward,
		modules.PairName:   x.Pair,
		modules.FarmName:   x.Farm,
	} {
		if err := x.modules.Register(name, c); err != nil {
			return err
		}
	}
	return nil
}

func (x *Exchange) restore(s *state.Store) (bool, error) {
	for _, tok := range []*asset.Token{x.TokenA, x.TokenB, x.Shares, x.Reward} {
		if err := tok.Load(s); err != nil {
			return false, err
		}
	}
	if _, err := x.Pair.Load(s); err != nil {
		return false, err
	}
	return x.Farm.Load(s, x.Ledger)
}

func (x *Exchange) addPools(ctx context.Context) error {
	for i, p := range x.cfg.Farm.Pools {
		tok, ok := x.Token(p.Asset)
		if !ok {
			return fmt.Errorf("farm pool %d: unknown asset %q", i, p.Asset)
		}
		_, err := x.Farm.Add(ctx, x.cfg.Owner, farm.PoolParams{
			Asset:         tok,
			AllocPoints:   p.AllocPoints,
			DepositFeeBps: p.DepositFeeBps,
			LockupSeconds: p.LockupSeconds,
		})
		if err != nil {
			return fmt.Errorf("farm pool %d: %w", i, err)
		}
	}
	return nil
}

// Token returns the token registered under name.
func (x *Exchange) Token(name string) (*asset.Token, bool) {
	m, ok := x.modules.ByName(name)
	if !ok {
		return nil, false
	}
	tok, ok := m.Contract.(*asset.Token)
	return tok, ok
}

// Ledger resolves a token of the exchange by address.
func (x *Exchange) Ledger(addr common.Address) (asset.Ledger, error) {
	m, ok := x.modules.ByAddress(addr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", farm.ErrInvalidAsset, addr)
	}
	tok, ok := m.Contract.(*asset.Token)
	if !ok {
		return nil, fmt.Errorf("%w: %s is the %s contract", farm.ErrInvalidAsset, addr, m.Name)
	}
	return tok, nil
}

func (x *Exchange) Config() config.Config          { return x.cfg }
func (x *Exchange) Env() *host.Env                 { return x.env }
func (x *Exchange) Roles() *access.Table           { return x.roles }
func (x *Exchange) Modules() *modules.Registry     { return x.modules }
func (x *Exchange) Registry() *prometheus.Registry { return x.reg }
