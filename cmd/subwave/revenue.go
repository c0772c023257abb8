package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var revenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Revenue reports",
	Long: `Revenue reports over the subscription ledger.

The report prices active sales at the catalog's current rates; the
historical report uses the price captured at time of sale.

Examples:
  subwave revenue report
  subwave revenue historical
  subwave revenue top --n=3`,
}

var revenueReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Per-plan revenue at current catalog prices",
	RunE:  runRevenueReport,
}

var revenueHistoricalCmd = &cobra.Command{
	Use:   "historical",
	Short: "Per-plan revenue at prices captured at sale time",
	RunE:  runRevenueHistorical,
}

var revenueTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Best-earning plans",
	RunE:  runRevenueTop,
}

var topN int

func init() {
	rootCmd.AddCommand(revenueCmd)

	revenueCmd.AddCommand(revenueReportCmd)
	revenueCmd.AddCommand(revenueHistoricalCmd)
	revenueCmd.AddCommand(revenueTopCmd)

	revenueTopCmd.Flags().IntVar(&topN, "n", 3, "number of plans to show")
}

func runRevenueReport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	rows, err := a.Revenue.RevenueByPlan(ctx)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	total, err := a.Revenue.Total(ctx)
	if err != nil {
		return fmt.Errorf("failed to total: %w", err)
	}
	counts, err := a.Revenue.StatusCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count statuses: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLAN\tACTIVE\tREVENUE")
	fmt.Fprintln(w, "----\t------\t-------")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\t$%s\n", row.PlanName, row.Active, row.Revenue.StringFixed(2))
	}
	fmt.Fprintf(w, "TOTAL\t\t$%s\n", total.StringFixed(2))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	for status, n := range counts {
		fmt.Printf("%s: %d\n", status, n)
	}
	return nil
}

func runRevenueHistorical(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	byPlan, err := a.Revenue.HistoricalByPlan(ctx)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	total, err := a.Revenue.HistoricalTotal(ctx)
	if err != nil {
		return fmt.Errorf("failed to total: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLAN\tREVENUE")
	fmt.Fprintln(w, "----\t-------")
	for name, amount := range byPlan {
		fmt.Fprintf(w, "%s\t$%s\n", name, amount.StringFixed(2))
	}
	fmt.Fprintf(w, "TOTAL\t$%s\n", total.StringFixed(2))
	return w.Flush()
}

func runRevenueTop(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.Revenue.TopPlans(context.Background(), topN)
	if err != nil {
		return fmt.Errorf("failed to rank plans: %w", err)
	}

	if len(rows) == 0 {
		fmt.Println("No revenue yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPLAN\tACTIVE\tREVENUE")
	fmt.Fprintln(w, "----\t----\t------\t-------")
	for i, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%d\t$%s\n", i+1, row.PlanName, row.Active, row.Revenue.StringFixed(2))
	}
	return w.Flush()
}
