package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Record and inspect data usage",
	Long: `Record daily consumption samples and inspect usage for an account.

Examples:
  subwave usage record alice 12.5
  subwave usage summary alice
  subwave usage classify alice 0`,
}

var usageRecordCmd = &cobra.Command{
	Use:   "record <account-id> <gb>",
	Short: "Append a daily consumption sample",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsageRecord,
}

var usageSummaryCmd = &cobra.Command{
	Use:   "summary <account-id>",
	Short: "Aggregate the account's usage window",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsageSummary,
}

var usageClassifyCmd = &cobra.Command{
	Use:   "classify <account-id> <index>",
	Short: "Grade a subscription against its data cap",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsageClassify,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.AddCommand(usageRecordCmd)
	usageCmd.AddCommand(usageSummaryCmd)
	usageCmd.AddCommand(usageClassifyCmd)
}

func runUsageRecord(cmd *cobra.Command, args []string) error {
	var gb float64
	if _, err := fmt.Sscanf(args[1], "%f", &gb); err != nil {
		return fmt.Errorf("gb must be a number: %s", args[1])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Meter.RecordDailyUsage(context.Background(), args[0], gb); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}

	fmt.Printf("Recorded %.1f GB for %s\n", gb, args[0])
	return nil
}

func runUsageSummary(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.Meter.UsageSummary(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to summarize: %w", err)
	}

	fmt.Printf("Usage for %s:\n", args[0])
	fmt.Printf("  average: %.1f GB/day\n", s.AverageGB)
	fmt.Printf("  max:     %.1f GB/day\n", s.MaxGB)
	fmt.Printf("  total:   %.1f GB\n", s.TotalGB)
	return nil
}

func runUsageClassify(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.Meter.Classify(context.Background(), args[0], index)
	if err != nil {
		return fmt.Errorf("failed to classify: %w", err)
	}

	fmt.Printf("Tier:         %s\n", c.Tier)
	fmt.Printf("Used:         %.1f%%\n", c.UsedPercent)
	fmt.Printf("Over cap:     %v\n", c.OverCap)
	return nil
}
