package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goborsa/borsa"
)

var (
	historySource   string
	historyPeriod   string
	historyInterval string
)

var historyCmd = &cobra.Command{
	Use:   "history [symbol]",
	Short: "Fetch historical bars for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySource, "source", "isyatirim", "upstream source name")
	historyCmd.Flags().StringVar(&historyPeriod, "period", "1y",
		"lookback period: "+strings.Join(borsa.AcceptedPeriods(), ", "))
	historyCmd.Flags().StringVar(&historyInterval, "interval", "1d",
		"bar interval: "+strings.Join(borsa.AcceptedIntervals(), ", "))
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	period, err := borsa.ParsePeriod(historyPeriod)
	if err != nil {
		return err
	}
	interval, err := borsa.ParseInterval(historyInterval)
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	bars, err := client.HistoryFrom(context.Background(), historySource, args[0],
		borsa.HistoryOptions{Period: period, Interval: interval})
	if err != nil {
		return err
	}

	fmt.Printf("%-12s %10s %10s %10s %10s %12s\n", "DATE", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")
	for _, b := range bars {
		fmt.Printf("%-12s %10.2f %10.2f %10.2f %10.2f %12.0f\n",
			b.Time.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	fmt.Printf("\n%d bars\n", len(bars))
	return nil
}
