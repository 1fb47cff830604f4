package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "golang-backtest",
	Short: "Strategy backtesting and parameter sweep engine",
}

func Execute() error {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(sweepCmd)
	return rootCmd.Execute()
}
