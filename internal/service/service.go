package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/aggregator"
	"wallet-credit-score/internal/metrics"
	"wallet-credit-score/internal/scorer"
	"wallet-credit-score/internal/source"
)

// Options tune the pipeline.
type Options struct {
	Policy          scorer.Policy
	Shards          int
	ScoreWorkers    int
	ChecksumWallets bool
}

// Result is the outcome of one pipeline run.
type Result struct {
	Origin    string
	Records   []scorer.ScoreRecord
	Stats     aggregator.Stats
	Rejected  int
	Normalize source.NormalizeReport
	Duration  time.Duration
}

// Discarded counts input records that contributed nothing to any wallet.
func (r Result) Discarded() int {
	return r.Stats.Discarded() + r.Rejected
}

// Pipeline wires normalisation, aggregation and scoring.
type Pipeline struct {
	normalizer *source.Normalizer
	aggregator *aggregator.Aggregator
	scorer     *scorer.Scorer
	recorder   *metrics.Recorder
	shards     int
	workers    int
	logger     zerolog.Logger
}

// New constructs a pipeline. recorder may be nil.
func New(opts Options, recorder *metrics.Recorder, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		normalizer: source.NewNormalizer(source.NormalizerOptions{ChecksumWallets: opts.ChecksumWallets}, logger),
		aggregator: aggregator.New(logger),
		scorer:     scorer.New(opts.Policy),
		recorder:   recorder,
		shards:     opts.Shards,
		workers:    opts.ScoreWorkers,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run loads a batch from src and processes it.
func (p *Pipeline) Run(ctx context.Context, src source.Source) (Result, error) {
	batch, err := src.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load transactions: %w", err)
	}
	return p.Process(ctx, batch)
}

// Process scores an already decoded batch. The batch's wallet identifiers may
// be rewritten in place by the normaliser.
func (p *Pipeline) Process(ctx context.Context, batch source.Batch) (Result, error) {
	started := time.Now()

	normalized := p.normalizer.Apply(&batch)

	var accs *aggregator.Accumulators
	if p.shards > 1 {
		accs = p.aggregator.AggregateSharded(batch.Transactions, p.shards)
	} else {
		accs = p.aggregator.Aggregate(batch.Transactions)
	}

	records, err := p.scorer.ScoreParallel(ctx, accs, p.workers)
	if err != nil {
		return Result{}, fmt.Errorf("score wallets: %w", err)
	}

	result := Result{
		Origin:    batch.Origin,
		Records:   records,
		Stats:     accs.Stats,
		Rejected:  batch.Rejected,
		Normalize: normalized,
		Duration:  time.Since(started),
	}

	if p.recorder != nil {
		p.recorder.ObserveRun(result.Stats, result.Rejected, result.Records, result.Duration)
	}

	p.logger.Info().
		Str("origin", result.Origin).
		Int("transactions", result.Stats.Seen+result.Rejected).
		Int("applied", result.Stats.Applied).
		Int("discarded", result.Discarded()).
		Int("amount_fallbacks", result.Stats.AmountFallbacks).
		Int("wallets", len(result.Records)).
		Dur("elapsed", result.Duration).
		Msg("pipeline finished")

	if result.Stats.Faults > 0 {
		p.logger.Warn().Int("faults", result.Stats.Faults).Msg("some transactions raised errors and were skipped")
	}
	return result, nil
}
