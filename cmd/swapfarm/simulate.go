// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/luxfi/database/memdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parsdao/swapfarm/chain"
	"github.com/parsdao/swapfarm/exchange"
	"github.com/parsdao/swapfarm/logging"
	"github.com/parsdao/swapfarm/scenario"
)

type simulateOptions struct {
	root    *rootOptions
	metrics bool
	logs    bool
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	opts := &simulateOptions{root: root}
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Replay a scenario against a fresh exchange and print the final state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print collected metrics to stderr")
	cmd.Flags().BoolVar(&opts.logs, "logs", false, "include the committed events as encoded EVM logs")
	return cmd
}

func (o *simulateOptions) run(cmd *cobra.Command, path string) (err error) {
	cfg, err := o.root.load()
	if err != nil {
		return err
	}
	if o.metrics {
		cfg.Metrics.Enabled = true
	}

	logger, closer, err := logging.New("swapfarm", cfg.Logging)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closer.Close())
	}()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc, err := scenario.Parse(f)
	if err != nil {
		return err
	}

	db := memdb.New()
	defer db.Close()
	clock := chain.NewManualClock(cfg.Genesis.Block, cfg.Genesis.Time)
	x, err := exchange.New(cmd.Context(), cfg,
		exchange.WithClock(clock),
		exchange.WithDatabase(db),
		exchange.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	runner := scenario.NewRunner(x, clock)
	results, runErr := runner.Run(cmd.Context(), sc)
	if runErr != nil {
		logger.Error("scenario stopped", zap.String("scenario", sc.Name), zap.Error(runErr))
	}
	rep, err := runner.Report(sc, results)
	if err != nil {
		return err
	}
	if o.logs {
		if rep.Logs, err = runner.Logs(); err != nil {
			return err
		}
	}
	if err := rep.Write(cmd.OutOrStdout()); err != nil {
		return err
	}
	if reg := x.Registry(); reg != nil {
		if err := writeMetrics(cmd.ErrOrStderr(), reg); err != nil {
			return err
		}
	}
	return runErr
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
