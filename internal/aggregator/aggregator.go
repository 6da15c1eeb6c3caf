// Package aggregator folds raw lending-protocol transactions into per-wallet
// USD statistics.
package aggregator

import (
	"hash/fnv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Aggregator folds transactions into wallet accumulators. It keeps no state
// between calls.
type Aggregator struct {
	logger zerolog.Logger
}

// New constructs an Aggregator that reports per-transaction faults to logger.
func New(logger zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger.With().Str("component", "aggregator").Logger()}
}

// Aggregate folds transactions with a silent logger.
func Aggregate(transactions []RawTransaction) *Accumulators {
	return New(zerolog.Nop()).Aggregate(transactions)
}

// Aggregate folds transactions in input order. It never fails: malformed
// records are skipped or zero-filled and counted in the result's Stats.
func (g *Aggregator) Aggregate(transactions []RawTransaction) *Accumulators {
	accs := NewAccumulators()
	for i := range transactions {
		g.process(accs, i, transactions[i])
	}

	g.logger.Debug().
		Int("transactions", accs.Stats.Seen).
		Int("applied", accs.Stats.Applied).
		Int("discarded", accs.Stats.Discarded()).
		Int("wallets", accs.Len()).
		Msg("aggregation finished")
	return accs
}

// AggregateSharded partitions transactions by wallet, folds each shard
// concurrently and merges the shards. Values and wallet order match Aggregate.
func (g *Aggregator) AggregateSharded(transactions []RawTransaction, shards int) *Accumulators {
	if shards <= 1 || len(transactions) < shards {
		return g.Aggregate(transactions)
	}

	parts := make([][]int, shards)
	for i := range transactions {
		shard := shardOf(transactions[i].wallet(), shards)
		parts[shard] = append(parts[shard], i)
	}

	results := make([]*Accumulators, shards)
	var group errgroup.Group
	for shard := range parts {
		shard := shard
		group.Go(func() error {
			accs := NewAccumulators()
			for _, i := range parts[shard] {
				g.process(accs, i, transactions[i])
			}
			results[shard] = accs
			return nil
		})
	}
	_ = group.Wait()

	merged := NewAccumulators()
	for _, accs := range results {
		merged.mergeShard(accs)
	}

	g.logger.Debug().
		Int("shards", shards).
		Int("transactions", merged.Stats.Seen).
		Int("wallets", merged.Len()).
		Msg("sharded aggregation finished")
	return merged
}

func shardOf(wallet string, shards int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(wallet))
	return int(h.Sum32() % uint32(shards))
}

func (g *Aggregator) process(accs *Accumulators, index int, tx RawTransaction) {
	accs.Stats.Seen++
	defer func() {
		if r := recover(); r != nil {
			accs.Stats.Faults++
			g.logger.Error().
				Int("index", index).
				Interface("panic", r).
				Msg("error processing transaction")
		}
	}()

	wallet := tx.wallet()
	if wallet == "" {
		accs.Stats.MissingWallet++
		return
	}

	if tx.nullData {
		accs.Stats.NullActionData++
		g.logger.Debug().Int("index", index).Str("wallet", wallet).Msg("discarding transaction with null actionData")
		return
	}

	data := tx.data()
	symbol := data.symbol()

	amount, ok := NormalizeAmount(data.Amount, symbol)
	if !ok {
		accs.Stats.AmountFallbacks++
	}

	price, err := data.price()
	if err != nil {
		accs.Stats.BadPrice++
		g.logger.Debug().Err(err).Int("index", index).Str("wallet", wallet).Msg("discarding transaction with unreadable price")
		return
	}

	ts, err := tx.Timestamp.Int64()
	if err != nil {
		accs.Stats.BadTimestamp++
		g.logger.Debug().Err(err).Int("index", index).Str("wallet", wallet).Msg("discarding transaction with unreadable timestamp")
		return
	}

	usd := amount.InexactFloat64() * price
	accs.wallet(wallet, index).apply(tx.action(), symbol, usd, ts)
	accs.Stats.Applied++
}
