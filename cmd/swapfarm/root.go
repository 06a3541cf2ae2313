// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parsdao/swapfarm/config"
)

// Version is set at build time.
var Version = "dev"

type rootOptions struct {
	v          *viper.Viper
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.NewViper()}
	cmd := &cobra.Command{
		Use:           "swapfarm",
		Short:         "constant-product pair and staking farm tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "deployment config file (yaml, json or toml)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = opts.v.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(
		newQuoteCmd(),
		newSimulateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load reads the deployment config. Flags bound to the viper instance take
// precedence over the file and the environment.
func (o *rootOptions) load() (config.Config, error) {
	return config.Load(o.v, o.configPath)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(Version)
		},
	}
}
