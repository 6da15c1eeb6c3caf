package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"wallet-credit-score/internal/metrics"
	"wallet-credit-score/internal/notify"
	"wallet-credit-score/internal/report"
)

// Score runs one batch: load the transaction document, score every wallet,
// write the CSV and histogram, and print the range summary to out.
func (a *App) Score(ctx context.Context, opts ScoreOptions, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	runID := uuid.NewString()
	logger := a.Logger.With().Str("run_id", runID).Logger()

	location := a.Config.ResolveInput(opts.Input)
	src, err := a.newSource(location)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	started := time.Now()

	result, err := a.newPipeline(recorder).Run(ctx, src)
	if err != nil {
		return err
	}

	csvPath := firstNonEmpty(opts.CSVPath, a.Config.Export.CSVPath)
	if csvPath != "" {
		if err := report.WriteCSVFile(csvPath, result.Records); err != nil {
			return err
		}
		logger.Info().Str("path", csvPath).Int("rows", len(result.Records)).Msg("scores written")
	}

	pngPath := firstNonEmpty(opts.PNGPath, a.Config.Export.PNGPath)
	if pngPath != "" && !opts.NoPNG {
		bins := opts.Bins
		if bins <= 0 {
			bins = a.Config.Export.HistogramBins
		}
		err := report.WriteHistogramPNG(pngPath, result.Records, bins)
		switch {
		case errors.Is(err, report.ErrNoScores):
			logger.Warn().Msg("no wallets scored; histogram skipped")
		case err != nil:
			return err
		default:
			logger.Info().Str("path", pngPath).Int("bins", bins).Msg("histogram written")
		}
	}

	if a.Config.Export.Summary && !opts.NoSummary {
		if err := report.PrintSummary(out, result.Records, csvPath); err != nil {
			return fmt.Errorf("print summary: %w", err)
		}
	}

	textfile := firstNonEmpty(opts.MetricsTextfile, a.Config.Metrics.TextfilePath)
	if textfile != "" {
		if err := recorder.WriteTextfile(textfile); err != nil {
			logger.Error().Err(err).Str("path", textfile).Msg("failed to write metrics textfile")
		}
	}

	if notifier := a.newNotifier(); notifier != nil {
		summary := notify.Summarize(
			runID,
			result.Origin,
			result.Stats.Seen+result.Rejected,
			result.Discarded(),
			result.Records,
			time.Since(started),
		)
		if err := notifier.Notify(ctx, summary); err != nil {
			logger.Error().Err(err).Msg("failed to send run summary")
		}
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
