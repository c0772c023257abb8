package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage customer accounts",
	Long: `Manage customer accounts and their subscriptions.

Examples:
  subwave accounts list
  subwave accounts add --id=alice --name="Alice A." --password=s3cret
  subwave accounts show alice
  subwave accounts subscribe alice Basic
  subwave accounts renew alice 0 --months=12
  subwave accounts upgrade alice 0 Premium
  subwave accounts cancel alice 0`,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE:  runAccountsList,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a customer account",
	RunE:  runAccountsAdd,
}

var accountsShowCmd = &cobra.Command{
	Use:   "show <account-id>",
	Short: "Show an account with its subscriptions",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsShow,
}

var accountsSubscribeCmd = &cobra.Command{
	Use:   "subscribe <account-id> <plan>",
	Short: "Subscribe an account to a plan",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountsSubscribe,
}

var accountsRenewCmd = &cobra.Command{
	Use:   "renew <account-id> <index>",
	Short: "Renew a subscription by whole months",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountsRenew,
}

var accountsUpgradeCmd = &cobra.Command{
	Use:   "upgrade <account-id> <index> <plan>",
	Short: "Move a subscription to another plan",
	Args:  cobra.ExactArgs(3),
	RunE:  runAccountsUpgrade,
}

var accountsCancelCmd = &cobra.Command{
	Use:   "cancel <account-id> <index>",
	Short: "Cancel a subscription",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountsCancel,
}

var (
	accountID       string
	accountName     string
	accountPassword string
	renewMonths     int
	accountsLimit   int
	accountsOffset  int
)

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsShowCmd)
	accountsCmd.AddCommand(accountsSubscribeCmd)
	accountsCmd.AddCommand(accountsRenewCmd)
	accountsCmd.AddCommand(accountsUpgradeCmd)
	accountsCmd.AddCommand(accountsCancelCmd)

	accountsAddCmd.Flags().StringVar(&accountID, "id", "", "account ID (generated when omitted)")
	accountsAddCmd.Flags().StringVar(&accountName, "name", "", "display name")
	accountsAddCmd.Flags().StringVar(&accountPassword, "password", "", "password (required)")
	accountsAddCmd.MarkFlagRequired("password")

	accountsListCmd.Flags().IntVar(&accountsLimit, "limit", 50, "accounts per page")
	accountsListCmd.Flags().IntVar(&accountsOffset, "offset", 0, "page offset")

	accountsRenewCmd.Flags().IntVar(&renewMonths, "months", 1, "number of 30-day months (1-24)")
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("index must be a number: %s", arg)
	}
	return index, nil
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	accounts, err := a.Accounts.List(context.Background(), accountsLimit, accountsOffset)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No accounts found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSUBSCRIPTIONS\tCREATED")
	fmt.Fprintln(w, "--\t----\t-------------\t-------")
	for _, acct := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			acct.ID, acct.DisplayName, len(acct.Subscriptions), acct.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.Accounts.Signup(context.Background(), accountID, accountName, accountPassword)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Printf("Created account %q (%s)\n", acct.ID, acct.DisplayName)
	return nil
}

func runAccountsShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.Accounts.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	fmt.Printf("Account:  %s (%s)\n", acct.ID, acct.DisplayName)
	if acct.Contact.Email != "" {
		fmt.Printf("Email:    %s\n", acct.Contact.Email)
	}
	fmt.Printf("Created:  %s\n", acct.CreatedAt.Format("2006-01-02"))
	fmt.Println()

	if len(acct.Subscriptions) == 0 {
		fmt.Println("No subscriptions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPLAN\tSTATUS\tSTART\tEND\tUSED\tCAP")
	fmt.Fprintln(w, "-\t----\t------\t-----\t---\t----\t---")
	for i, rec := range acct.Subscriptions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.1f GB\t%s\n",
			i, rec.PlanName, rec.Status,
			rec.StartDate.Format("2006-01-02"), rec.EndDate.Format("2006-01-02"),
			rec.DataUsedGB, rec.Cap.Label())
	}
	return w.Flush()
}

func runAccountsSubscribe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, index, err := a.Lifecycle.Subscribe(context.Background(), args[0], args[1], time.Time{})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	fmt.Printf("Subscribed %s to %s (index %d) until %s\n", args[0], rec.PlanName, index, rec.EndDate.Format("2006-01-02"))
	return nil
}

func runAccountsRenew(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.Lifecycle.Renew(context.Background(), args[0], index, renewMonths)
	if err != nil {
		return fmt.Errorf("failed to renew: %w", err)
	}

	fmt.Printf("Renewed %s[%d] through %s\n", args[0], index, rec.EndDate.Format("2006-01-02"))
	return nil
}

func runAccountsUpgrade(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.Lifecycle.Upgrade(context.Background(), args[0], index, args[2])
	if err != nil {
		return fmt.Errorf("failed to upgrade: %w", err)
	}

	fmt.Printf("Upgraded %s[%d] to %s\n", args[0], index, rec.PlanName)
	return nil
}

func runAccountsCancel(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Lifecycle.Cancel(context.Background(), args[0], index); err != nil {
		return fmt.Errorf("failed to cancel: %w", err)
	}

	fmt.Printf("Cancelled %s[%d]\n", args[0], index)
	return nil
}
