package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire active subscriptions past their end date",
	Long: `Flip active subscriptions whose end date has passed to expired.

The sweep is idempotent: running it twice flips nothing new. Intended
for cron; the API exposes the same pass at POST /api/sweep.`,
	RunE: runSweep,
}

var sweepAsOf string

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVar(&sweepAsOf, "as-of", "", "sweep as of this RFC3339 time instead of now")
}

func runSweep(cmd *cobra.Command, args []string) error {
	var asOf time.Time
	if sweepAsOf != "" {
		t, err := time.Parse(time.RFC3339, sweepAsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of time: %w", err)
		}
		asOf = t
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	expired, err := a.Lifecycle.SweepExpirations(context.Background(), asOf)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("Expired %d subscription(s)\n", expired)
	return nil
}
