package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/subwave-io/subwave/bootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the subscription API server",
	Long: `Start the Subwave JSON API server.

The server will:
  - Load configuration from subwave.yaml (or --config)
  - Or load configuration from SUBWAVE_* environment variables
  - Open the configured store (memory or sqlite) and run migrations
  - Seed the plan catalog on first boot
  - Serve the subscription API with request logging and metrics

Environment variables (for container deployments):
  SUBWAVE_DATABASE_DRIVER   - memory or sqlite (default: sqlite)
  SUBWAVE_DATABASE_DSN      - Database path (default: subwave.db)
  SUBWAVE_SERVER_PORT       - Server port (default: 8080)
  SUBWAVE_USAGE_WINDOW      - Daily usage samples kept (default: 30)
  SUBWAVE_LOG_LEVEL         - Log level: debug, info, warn, error
  SUBWAVE_METRICS_ENABLED   - Expose /metrics (default: false)

Examples:
  subwave serve
  subwave serve --config /etc/subwave/config.yaml

  # Container (env vars only):
  SUBWAVE_DATABASE_DSN=/data/subwave.db subwave serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if _, err := os.Stat(path); err != nil {
		path = ""
		fmt.Println("Running with environment variables (no config file)")
	}

	app, err := bootstrap.New(bootstrap.Options{ConfigPath: path})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
