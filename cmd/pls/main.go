package main

import (
	"fmt"
	"os"

	"github.com/aouyang1/go-pls/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logConsole bool
)

// rootCmd is the base command for the pls CLI
var rootCmd = &cobra.Command{
	Use:   "pls",
	Short: "Partial least squares (PLS-SB) regression",
	Long: `pls fits multivariate partial least squares regressions on calibration data stored
as CSV files, saves the fitted model as JSON and predicts outputs for new samples.

Example usage:
  pls fit --x inputs.csv --y outputs.csv --components 3 --out model.json
  pls predict --model model.json --input samples.csv --method iterative
  pls inspect --model model.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logConsole {
			logger.Console(os.Stderr)
		}
		lvl, err := logger.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q, %w", logLevel, err)
		}
		logger.SetLevel(lvl)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Minimum log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", true, "Write human readable logs instead of json lines")

	rootCmd.AddCommand(newFitCmd())
	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newInspectCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
