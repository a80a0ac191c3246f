package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/newthinker/statarb/internal/backtest"
	"github.com/newthinker/statarb/internal/logger"
)

var (
	btSymbolA string
	btSymbolB string
	btFrom    string
	btTo      string
	btBeta    float64
	btOut     string

	btLookback     int
	btZIn          float64
	btZOut         float64
	btStop         float64
	btTakeProfit   float64
	btConfirmDelta float64
	btCostBps      float64
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest a pair",
	Long:  "Run a z-score mean-reversion backtest on a pair and print performance statistics",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&btSymbolA, "symbol-a", "", "hedge leg symbol (required)")
	backtestCmd.Flags().StringVar(&btSymbolB, "symbol-b", "", "traded leg symbol (required)")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "end date YYYY-MM-DD (required)")
	backtestCmd.Flags().Float64Var(&btBeta, "beta", 0, "hedge ratio; estimated by OLS when omitted")
	backtestCmd.Flags().StringVar(&btOut, "out", "", "write the daily result series to a CSV file")

	backtestCmd.Flags().IntVar(&btLookback, "lookback", 0, "z-score lookback window")
	backtestCmd.Flags().Float64Var(&btZIn, "z-in", 0, "entry threshold")
	backtestCmd.Flags().Float64Var(&btZOut, "z-out", 0, "exit threshold")
	backtestCmd.Flags().Float64Var(&btStop, "stop", 0, "stop-loss threshold")
	backtestCmd.Flags().Float64Var(&btTakeProfit, "take-profit", 0, "take-profit threshold; 0 disables")
	backtestCmd.Flags().Float64Var(&btConfirmDelta, "confirm-delta", 0, "required reversal before entry")
	backtestCmd.Flags().Float64Var(&btCostBps, "cost-bps", -1, "round-trip cost in basis points")

	backtestCmd.MarkFlagRequired("symbol-a")
	backtestCmd.MarkFlagRequired("symbol-b")
	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

// cliParams merges flags the user actually set into the config
// defaults.
func cliParams(cmd *cobra.Command, defaults backtest.Params) backtest.Params {
	p := defaults
	if cmd.Flags().Changed("lookback") {
		p.Lookback = btLookback
	}
	if cmd.Flags().Changed("z-in") {
		p.ZIn = btZIn
	}
	if cmd.Flags().Changed("z-out") {
		p.ZOut = btZOut
	}
	if cmd.Flags().Changed("stop") {
		p.Stop = btStop
	}
	if cmd.Flags().Changed("take-profit") {
		p.TakeProfit = btTakeProfit
		p.TakeProfitEnabled = btTakeProfit > 0
	}
	if cmd.Flags().Changed("confirm-delta") {
		p.ConfirmDelta = btConfirmDelta
	}
	if cmd.Flags().Changed("cost-bps") {
		p.CostBps = btCostBps
	}
	return p
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	start, err := time.Parse("2006-01-02", btFrom)
	if err != nil {
		return fmt.Errorf("invalid from date (expected YYYY-MM-DD): %w", err)
	}
	end, err := time.Parse("2006-01-02", btTo)
	if err != nil {
		return fmt.Errorf("invalid to date (expected YYYY-MM-DD): %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date must be after start date")
	}

	bt, err := newBacktester(cfg, log)
	if err != nil {
		return err
	}

	req := backtest.Request{
		SymbolA: btSymbolA,
		SymbolB: btSymbolB,
		Start:   start,
		End:     end,
		Params:  cliParams(cmd, cfg.Params()),
	}
	if cmd.Flags().Changed("beta") {
		req.Beta = btBeta
		req.BetaKnown = true
	}

	res, err := bt.RunPair(cmd.Context(), req)
	if err != nil {
		return err
	}

	printResult(res)

	if btOut != "" {
		if err := res.WriteCSV(btOut); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		fmt.Printf("\nDaily series written to %s\n", btOut)
	}
	return nil
}

func printResult(res *backtest.Result) {
	fmt.Println("=== Pair Backtest ===")
	fmt.Printf("Pair:        %s / %s\n", res.SymbolB, res.SymbolA)
	fmt.Printf("Bars:        %d\n", res.Len())
	fmt.Printf("Hedge ratio: %.4f\n", res.Beta)
	fmt.Println()
	fmt.Printf("Final equity:  %.4f\n", res.Equity[res.Len()-1])
	fmt.Printf("Ann. return:   %8.2f%%\n", res.Stats.AnnReturn*100)
	fmt.Printf("Ann. vol:      %8.2f%%\n", res.Stats.AnnVol*100)
	fmt.Printf("Sharpe:        %8.2f\n", res.Stats.Sharpe)
	fmt.Printf("Max drawdown:  %8.2f%%\n", res.Stats.MaxDrawdown*100)

	var traded float64
	for _, v := range res.Turnover {
		traded += v
	}
	fmt.Printf("Turnover sum:  %8.2f\n", traded)
	fmt.Printf("Trades:        %d\n", countEntries(res))
}

func countEntries(res *backtest.Result) int {
	n := 0
	for t := 1; t < res.Len(); t++ {
		if res.YPos[t] != 0 && res.YPos[t-1] == 0 && !math.IsNaN(res.YPos[t]) {
			n++
		}
	}
	return n
}
