package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var inflationCmd = &cobra.Command{
	Use:   "inflation [amount] [from] [to]",
	Short: "Adjust an amount for inflation between two months",
	Long:  "Adjust a lira amount for consumer price inflation, months as YYYY-MM",
	Args:  cobra.ExactArgs(3),
	RunE:  runInflation,
}

func init() {
	rootCmd.AddCommand(inflationCmd)
}

func runInflation(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[0], err)
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	res, err := client.AdjustForInflation(context.Background(), amount, args[1], args[2])
	if err != nil {
		return err
	}

	fmt.Printf("%.2f in %s is worth %.2f in %s money\n",
		res.Amount, res.StartMonth, res.Adjusted, res.EndMonth)
	fmt.Printf("  Cumulative inflation: %+.2f%%\n", res.PercentChange)
	fmt.Printf("  Index: %.2f -> %.2f\n", res.StartIndex, res.EndIndex)
	return nil
}
