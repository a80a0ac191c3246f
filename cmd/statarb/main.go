package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "statarb",
	Short: "statarb - statistical arbitrage pair backtester",
	Long: `statarb backtests mean-reversion pair strategies on daily prices.
It estimates hedge ratios, screens pairs for cointegration and runs
z-score entry/exit simulations with transaction costs.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
