// Package scorer derives a bounded credit score from wallet accumulators.
//
// Each wallet is scored on its own aggregates only; there is no cross-wallet
// normalisation. The raw score is
//
//	base
//	+ min(repay_ratio, cap) * repay_weight
//	- liquidations * liquidation_penalty
//	+ activity adjustment (bonus inside (low, high), penalty at or above high)
//	+ min(assets * diversity_weight, diversity_cap)
//	+ deposit bonus above the deposit threshold
//	+ min(age_days / longevity_days * longevity_weight, longevity_cap)
//
// truncated toward zero and clamped to [min_score, max_score].
package scorer

import (
	"context"
	"math"
	"strconv"

	"golang.org/x/sync/errgroup"

	"wallet-credit-score/internal/aggregator"
)

// ScoreRecord is the per-wallet result.
type ScoreRecord struct {
	Wallet           string  `json:"wallet"`
	Score            int     `json:"score"`
	TotalDepositUSD  float64 `json:"total_deposit_usd"`
	TotalBorrowUSD   float64 `json:"total_borrow_usd"`
	TotalRepayUSD    float64 `json:"total_repay_usd"`
	TotalRedeemUSD   float64 `json:"total_redeem_usd"`
	LiquidationCount int     `json:"liquidation_count"`
	WalletAgeDays    float64 `json:"wallet_age_days"`
	RepayRatio       float64 `json:"repay_ratio"`
	AssetDiversity   int     `json:"asset_diversity"`
	DailyTxRate      float64 `json:"daily_tx_rate"`
	TxCount          int     `json:"tx_count"`
}

// Scorer applies a Policy to wallet accumulators.
type Scorer struct {
	policy Policy
}

// New constructs a Scorer.
func New(policy Policy) *Scorer {
	return &Scorer{policy: policy}
}

// Policy returns the weights in use.
func (s *Scorer) Policy() Policy {
	return s.policy
}

// Score scores wallets with DefaultPolicy.
func Score(accs *aggregator.Accumulators) []ScoreRecord {
	return New(DefaultPolicy()).Score(accs)
}

// Score returns one record per wallet that has at least one timestamp, in the
// accumulator map's order.
func (s *Scorer) Score(accs *aggregator.Accumulators) []ScoreRecord {
	records := make([]ScoreRecord, 0, accs.Len())
	accs.Each(func(wallet string, acc *aggregator.WalletAccumulator) {
		if rec, ok := s.ScoreWallet(wallet, acc); ok {
			records = append(records, rec)
		}
	})
	return records
}

// ScoreParallel scores wallets on up to workers goroutines. The output keeps
// the accumulator map's order.
func (s *Scorer) ScoreParallel(ctx context.Context, accs *aggregator.Accumulators, workers int) ([]ScoreRecord, error) {
	if workers <= 1 {
		return s.Score(accs), nil
	}

	keys := accs.Keys()
	slots := make([]ScoreRecord, len(keys))
	scored := make([]bool, len(keys))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, wallet := range keys {
		i, wallet := i, wallet
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			acc, _ := accs.Get(wallet)
			slots[i], scored[i] = s.ScoreWallet(wallet, acc)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	records := make([]ScoreRecord, 0, len(keys))
	for i := range slots {
		if scored[i] {
			records = append(records, slots[i])
		}
	}
	return records, nil
}

// ScoreWallet scores one wallet. ok is false when the wallet has no timestamps.
func (s *Scorer) ScoreWallet(wallet string, acc *aggregator.WalletAccumulator) (ScoreRecord, bool) {
	if acc == nil {
		return ScoreRecord{}, false
	}
	minTS, maxTS, ok := acc.TimeRange()
	if !ok {
		return ScoreRecord{}, false
	}

	p := s.policy

	var ageDays float64
	if maxTS != minTS {
		ageDays = float64(maxTS-minTS) / p.SecondsPerDay
	}

	txCount := acc.TxCount()
	divisor := ageDays
	if divisor == 0 {
		divisor = 1
	}
	dailyRate := float64(txCount) / divisor

	repayRatio := p.DefaultRepayRatio
	if acc.TotalBorrowUSD > 0 {
		repayRatio = acc.TotalRepayUSD / acc.TotalBorrowUSD
	}

	diversity := acc.AssetCount()

	raw := p.Base
	raw += min(repayRatio, p.RepayRatioCap) * p.RepayWeight
	raw -= float64(acc.LiquidationCount) * p.LiquidationPenalty
	raw += p.activity(dailyRate)
	raw += min(float64(diversity)*p.DiversityWeight, p.DiversityCap)
	if acc.TotalDepositUSD > p.DepositThreshold {
		raw += min(acc.TotalDepositUSD/p.DepositScale*p.DepositWeight, p.DepositCap)
	}
	raw += min(ageDays/p.LongevityDays*p.LongevityWeight, p.LongevityCap)

	return ScoreRecord{
		Wallet:           wallet,
		Score:            p.clamp(raw),
		TotalDepositUSD:  acc.TotalDepositUSD,
		TotalBorrowUSD:   acc.TotalBorrowUSD,
		TotalRepayUSD:    acc.TotalRepayUSD,
		TotalRedeemUSD:   acc.TotalRedeemUSD,
		LiquidationCount: acc.LiquidationCount,
		WalletAgeDays:    Round2(ageDays),
		RepayRatio:       Round2(repayRatio),
		AssetDiversity:   diversity,
		DailyTxRate:      Round2(dailyRate),
		TxCount:          txCount,
	}, true
}

// activity bounds are exclusive on the low side: a rate of exactly ActivityLow
// earns nothing.
func (p Policy) activity(rate float64) float64 {
	switch {
	case rate > p.ActivityLow && rate < p.ActivityHigh:
		return p.ActivityBonus
	case rate >= p.ActivityHigh:
		return -p.ActivityPenalty
	default:
		return 0
	}
}

// clamp truncates toward zero and bounds the result.
func (p Policy) clamp(raw float64) int {
	switch {
	case math.IsNaN(raw):
		return p.MinScore
	case raw >= float64(p.MaxScore):
		return p.MaxScore
	case raw <= float64(p.MinScore):
		return p.MinScore
	}
	return int(math.Trunc(raw))
}

// Round2 rounds to two decimals using the shortest correctly rounded decimal
// form, so exact binary ties go to even.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return out
}
