package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/subwave-io/subwave/adapters/sqlite"
	"github.com/subwave-io/subwave/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the Subwave configuration file.

Checks:
  - YAML syntax is valid
  - Store driver, log level, and plan definitions are well formed
  - Database is writable (optional)

Examples:
  subwave validate
  subwave validate --config /etc/subwave/config.yaml`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	fmt.Printf("  %s Server: %s:%d\n", checkMark, cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  %s Store: %s", checkMark, cfg.Database.Driver)
	if cfg.Database.Driver == "sqlite" {
		fmt.Printf(" (%s)", cfg.Database.DSN)
	}
	fmt.Println()
	fmt.Printf("  %s Usage window: %d days\n", checkMark, cfg.Usage.WindowDays)
	fmt.Printf("  %s Plans configured: %d\n", checkMark, len(cfg.Plans))

	if validateCheckDatabase && cfg.Database.Driver == "sqlite" {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
		} else {
			fmt.Printf("  %s Database writable\n", checkMark)
		}
	}

	fmt.Println()
	fmt.Println("Configuration is valid.")
	return nil
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
