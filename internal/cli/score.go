package cli

import (
	"time"

	"github.com/spf13/cobra"

	"wallet-credit-score/internal/app"
)

var (
	scoreOpts  app.ScoreOptions
	scoreEvery time.Duration
)

var scoreCmd = &cobra.Command{
	Use:   "score [input]",
	Short: "Score every wallet in a transaction document",
	Long: `Score reads a JSON array of lending-protocol transactions from a file,
an http(s) URL or "-" for stdin, writes per-wallet scores as CSV, renders
a score histogram and prints the score range summary.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := scoreOpts
		if len(args) == 1 {
			opts.Input = args[0]
		}
		if scoreEvery > 0 {
			return getApp().Watch(cmd.Context(), opts, scoreEvery, cmd.OutOrStdout())
		}
		return getApp().Score(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreOpts.Input, "input", "", "Transaction document path, URL or - (defaults to config)")
	scoreCmd.Flags().StringVar(&scoreOpts.CSVPath, "csv", "", "Path to write wallet scores CSV (defaults to config)")
	scoreCmd.Flags().StringVar(&scoreOpts.PNGPath, "png", "", "Path to write score histogram PNG (defaults to config)")
	scoreCmd.Flags().IntVar(&scoreOpts.Bins, "bins", 0, "Histogram bin count (defaults to config)")
	scoreCmd.Flags().BoolVar(&scoreOpts.NoPNG, "no-png", false, "Skip the histogram")
	scoreCmd.Flags().BoolVar(&scoreOpts.NoSummary, "no-summary", false, "Skip the printed range summary")
	scoreCmd.Flags().DurationVar(&scoreEvery, "every", 0, "Re-score on this interval until interrupted")
	scoreCmd.Flags().StringVar(&scoreOpts.MetricsTextfile, "metrics-textfile", "", "Write run metrics in Prometheus textfile format")
}
