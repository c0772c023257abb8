package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/subwave-io/subwave/bootstrap"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "subwave",
	Short: "Subscription lifecycle and billing engine for broadband plans",
	Long: `Subwave manages a broadband provider's plan catalog, customer
accounts, subscription lifecycle, usage metering, and revenue reporting.

Quick start:
  subwave serve     # Start the JSON API server

Management:
  subwave plans     # Manage the plan catalog
  subwave accounts  # Manage customer accounts
  subwave revenue   # Revenue reports
  subwave sweep     # Expire lapsed subscriptions
  subwave validate  # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "subwave.yaml", "config file path")
}

// openApp boots stores and services without the HTTP server, for the
// management subcommands. Falls back to env config when the config file
// does not exist.
func openApp() (*bootstrap.App, error) {
	path := cfgFile
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	return bootstrap.New(bootstrap.Options{ConfigPath: path, SkipServer: true})
}
