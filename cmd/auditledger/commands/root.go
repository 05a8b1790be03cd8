// Package commands implements the auditledger CLI: run and keygen,
// grounded on the teacher's src/cmd/babble/command (cobra+viper wiring,
// persistent flags bound via viper.BindPFlags, cobra.OnInitialize).
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mosaicnetworks/auditledger/internal/config"
)

var conf = config.NewDefaultConfig()

var datadir *string

func init() {
	cobra.OnInitialize(initConfig)

	datadir = RootCmd.PersistentFlags().StringP("datadir", "d", conf.DataDir, "Base configuration directory")

	RootCmd.PersistentFlags().StringP("listen", "l", conf.BindAddr, "Listen IP:Port for this node")
	RootCmd.PersistentFlags().StringSliceP("peers", "p", nil, "Comma-separated list of peer IP:Port addresses")
	RootCmd.PersistentFlags().String("log", conf.LogLevel, "Log level (debug, info, warn, error, fatal, panic)")
	RootCmd.PersistentFlags().String("log-file", "", "Optional file to additionally log info/warn/error to")

	RootCmd.PersistentFlags().Duration("gossip-deadline", conf.GossipDeadline, "Per-peer deadline for audit gossip")
	RootCmd.PersistentFlags().Duration("propose-deadline", conf.ProposeDeadline, "Per-peer deadline for block proposal votes")
	RootCmd.PersistentFlags().Duration("commit-deadline", conf.CommitDeadline, "Per-peer deadline for block commit broadcast")
	RootCmd.PersistentFlags().Duration("heartbeat-period", conf.HeartbeatPeriod, "Leader heartbeat broadcast period")
	RootCmd.PersistentFlags().Duration("heartbeat-tau", conf.HeartbeatTau, "Heartbeat expiry threshold before an election is triggered")
	RootCmd.PersistentFlags().Duration("propose-tick", conf.ProposeTick, "Maximum interval between block proposals")
	RootCmd.PersistentFlags().Int("propose-batch", conf.ProposeBatch, "Mempool size that triggers an early block proposal")
}

func initConfig() {
	viper.AddConfigPath(*datadir)
	viper.SetConfigName("auditledger")

	viper.BindPFlags(RootCmd.PersistentFlags())

	if err := viper.ReadInConfig(); err != nil {
		conf.Logger().WithError(err).Debug("no config file found, using cli/defaults")
	}

	if err := viper.Unmarshal(conf); err != nil {
		conf.Logger().WithError(err).Warn("could not unmarshal config")
	}

	conf.DataDir = *datadir
}

// RootCmd is the root command for auditledger.
var RootCmd = &cobra.Command{
	Use:              "auditledger",
	Short:            "Replicated file-audit ledger node",
	Long:             "auditledger runs one node of a replicated, signed file-audit ledger",
	TraverseChildren: true,
}

// Execute runs the root command.
func Execute() {
	RootCmd.AddCommand(NewRunCmd())
	RootCmd.AddCommand(NewKeygenCmd())

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
