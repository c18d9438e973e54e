package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var fundsCmd = &cobra.Command{
	Use:   "funds",
	Short: "TEFAS mutual fund lookups",
}

var fundsInfoCmd = &cobra.Command{
	Use:   "info [code]",
	Short: "Show a fund profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runFundsInfo,
}

var fundsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search funds by code or name",
	Args:  cobra.ExactArgs(1),
	RunE:  runFundsSearch,
}

func init() {
	fundsCmd.AddCommand(fundsInfoCmd)
	fundsCmd.AddCommand(fundsSearchCmd)
	rootCmd.AddCommand(fundsCmd)
}

func runFundsInfo(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	p, err := client.Fund(args[0]).Info(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%s - %s\n", p.Code, p.Name)
	fmt.Printf("  Price:       %.6f\n", p.Price)
	fmt.Printf("  Date:        %s\n", p.Date.Format("2006-01-02"))
	fmt.Printf("  Investors:   %.0f\n", p.Investors)
	fmt.Printf("  Total value: %.2f\n", p.TotalValue)
	fmt.Printf("  Returns:     1M %+.2f%%  3M %+.2f%%  6M %+.2f%%  1Y %+.2f%%\n",
		p.Return1M, p.Return3M, p.Return6M, p.Return1Y)
	return nil
}

func runFundsSearch(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	results := client.SearchFunds(context.Background(), args[0])
	if len(results) == 0 {
		fmt.Println("no funds matched")
		return nil
	}
	for _, f := range results {
		fmt.Printf("%-6s %-50s 1Y %+.2f%%\n", f.Code, f.Name, f.Return1Y)
	}
	return nil
}
