package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/subwave-io/subwave/app"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Manage the plan catalog",
	Long: `Manage the broadband plan catalog.

Plans define speed, monthly price, and data cap. Catalog order is
significant: removal is by position.

Examples:
  subwave plans list
  subwave plans add --name=Basic --speed="50 Mbps" --price=29.99 --cap="500 GB"
  subwave plans remove 0`,
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog in display order",
	RunE:  runPlansList,
}

var plansAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a plan to the catalog",
	RunE:  runPlansAdd,
}

var plansRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove the plan at a catalog position",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansRemove,
}

var (
	planName        string
	planSpeed       string
	planPrice       string
	planCap         string
	planDescription string
)

func init() {
	rootCmd.AddCommand(plansCmd)

	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansAddCmd)
	plansCmd.AddCommand(plansRemoveCmd)

	plansAddCmd.Flags().StringVar(&planName, "name", "", "plan name (required)")
	plansAddCmd.Flags().StringVar(&planSpeed, "speed", "", "advertised speed, e.g. \"200 Mbps\" (required)")
	plansAddCmd.Flags().StringVar(&planPrice, "price", "", "monthly price, e.g. 49.99 (required)")
	plansAddCmd.Flags().StringVar(&planCap, "cap", "Unlimited", "data cap, e.g. \"500 GB\", \"1 TB\" or Unlimited")
	plansAddCmd.Flags().StringVar(&planDescription, "description", "", "plan description")
	plansAddCmd.MarkFlagRequired("name")
	plansAddCmd.MarkFlagRequired("speed")
	plansAddCmd.MarkFlagRequired("price")
}

func runPlansList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	plans, err := a.Catalog.ListPlans(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list plans: %w", err)
	}

	if len(plans) == 0 {
		fmt.Println("No plans found.")
		fmt.Println()
		fmt.Println("Create a plan with: subwave plans add --name=Basic --speed=\"50 Mbps\" --price=29.99 --cap=\"500 GB\"")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tSPEED\tPRICE\tCAP\tDESCRIPTION")
	fmt.Fprintln(w, "-\t----\t-----\t-----\t---\t-----------")
	for i, p := range plans {
		fmt.Fprintf(w, "%d\t%s\t%s\t$%s\t%s\t%s\n",
			i, p.Name, p.Speed, p.PriceMonthly.StringFixed(2), p.Cap.Label(), p.Description)
	}
	return w.Flush()
}

func runPlansAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Catalog.AddPlan(context.Background(), app.AddPlanInput{
		Name:        planName,
		Speed:       planSpeed,
		Price:       planPrice,
		CapLabel:    planCap,
		Description: planDescription,
	})
	if err != nil {
		return fmt.Errorf("failed to add plan: %w", err)
	}

	fmt.Printf("Added plan %q ($%s/mo, %s)\n", p.Name, p.PriceMonthly.StringFixed(2), p.Cap.Label())
	return nil
}

func runPlansRemove(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("index must be a number: %s", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Catalog.RemovePlan(context.Background(), index); err != nil {
		return fmt.Errorf("failed to remove plan: %w", err)
	}

	fmt.Printf("Removed plan at position %d\n", index)
	return nil
}
