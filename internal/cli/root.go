// Package cli implements the takd command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the build version reported by server_info and --version.
const Version = "0.1.0-dev"

var configFile string

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:     "takd",
	Short:   "takd - token accounting daemon",
	Long:    `takd maintains a fungible token ledger with staking, presale vesting and referral payouts, processed as an ordered transaction log with atomic commits.`,
	Version: Version,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
}
