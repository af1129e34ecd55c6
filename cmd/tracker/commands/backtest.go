package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yieldchaser/Daily-Manipulation-Tracker/internal/backtest"
)

var (
	backtestFrom   string
	backtestTo     string
	backtestSymbol string
)

// backtestCmd replays scoring over ingested history.
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay scoring over a historical date range",
	Long: `Re-runs the scoring pipeline day by day over already-ingested
history. Useful for checking threshold changes against known episodes.
With --symbol, prints that security's score timeline afterwards.

Example:
  go run ./cmd/tracker backtest --from 2026-06-01 --to 2026-08-28
  go run ./cmd/tracker backtest --from 2026-06-01 --to 2026-08-28 --symbol XYZLTD`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "range start (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "range end (YYYY-MM-DD), default most recent")
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "print this symbol's timeline after the replay")
	backtestCmd.MarkFlagRequired("from")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	from, err := resolveRunDate(backtestFrom)
	if err != nil {
		return err
	}
	to, err := resolveRunDate(backtestTo)
	if err != nil {
		return err
	}

	policy, err := app.policy()
	if err != nil {
		return err
	}

	ctx := context.Background()
	replay := backtest.NewReplay(app.engine(policy), app.bars, app.scores, app.log)

	result, err := replay.Run(ctx, from, to)
	if err != nil {
		return err
	}

	fmt.Printf("Replayed %d trading days (%s to %s): %d scores, %d errors\n",
		result.TradingDays,
		result.From.Format("2006-01-02"), result.To.Format("2006-01-02"),
		result.Scored, result.Errors)

	if backtestSymbol != "" {
		timeline, err := replay.Timeline(ctx, backtestSymbol, from, to)
		if err != nil {
			return err
		}
		fmt.Print("\n" + timeline)
	}
	return nil
}
