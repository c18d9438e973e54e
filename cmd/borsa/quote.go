package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var quoteSource string

var quoteCmd = &cobra.Command{
	Use:   "quote [symbol]",
	Short: "Fetch a quote for a symbol",
	Long:  "Fetch the current quote for an equity, index, FX or crypto symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteSource, "source", "isyatirim", "upstream source name")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	q, err := client.QuoteFrom(context.Background(), quoteSource, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", q.Symbol, q.Source)
	fmt.Printf("  Last:       %.4f\n", q.Last)
	fmt.Printf("  Change:     %+.4f (%+.2f%%)\n", q.Change, q.ChangePercent)
	fmt.Printf("  Open:       %.4f\n", q.Open)
	fmt.Printf("  High/Low:   %.4f / %.4f\n", q.High, q.Low)
	fmt.Printf("  Prev close: %.4f\n", q.PrevClose)
	fmt.Printf("  Volume:     %.0f\n", q.Volume)
	if !q.Time.IsZero() {
		fmt.Printf("  As of:      %s\n", q.Time.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
