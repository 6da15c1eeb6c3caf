package aggregator

import (
	"sort"
)

// Action kinds with a dedicated aggregate.
const (
	ActionDeposit     = "deposit"
	ActionBorrow      = "borrow"
	ActionRepay       = "repay"
	ActionRedeem      = "redeemunderlying"
	ActionLiquidation = "liquidationcall"
)

// WalletAccumulator holds the running statistics of one wallet.
type WalletAccumulator struct {
	TotalDepositUSD  float64
	TotalBorrowUSD   float64
	TotalRepayUSD    float64
	TotalRedeemUSD   float64
	LiquidationCount int
	Assets           map[string]struct{}
	Timestamps       []int64
	Actions          map[string]int

	// index of the first transaction applied to this wallet
	first int
}

func newWalletAccumulator(first int) *WalletAccumulator {
	return &WalletAccumulator{
		Assets:  make(map[string]struct{}),
		Actions: make(map[string]int),
		first:   first,
	}
}

// AssetCount returns the number of distinct asset symbols seen.
func (w *WalletAccumulator) AssetCount() int {
	return len(w.Assets)
}

// AssetSymbols returns the asset set in sorted order.
func (w *WalletAccumulator) AssetSymbols() []string {
	out := make([]string, 0, len(w.Assets))
	for symbol := range w.Assets {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// TxCount sums the per-action counters, unrecognised kinds included.
func (w *WalletAccumulator) TxCount() int {
	total := 0
	for _, n := range w.Actions {
		total += n
	}
	return total
}

// TimeRange returns the earliest and latest timestamps. ok is false when the
// wallet has none.
func (w *WalletAccumulator) TimeRange() (minTS, maxTS int64, ok bool) {
	if len(w.Timestamps) == 0 {
		return 0, 0, false
	}
	minTS, maxTS = w.Timestamps[0], w.Timestamps[0]
	for _, ts := range w.Timestamps[1:] {
		if ts < minTS {
			minTS = ts
		}
		if ts > maxTS {
			maxTS = ts
		}
	}
	return minTS, maxTS, true
}

func (w *WalletAccumulator) apply(action, symbol string, usd float64, ts int64) {
	w.Timestamps = append(w.Timestamps, ts)
	w.Assets[symbol] = struct{}{}

	switch action {
	case ActionDeposit:
		w.TotalDepositUSD += usd
	case ActionBorrow:
		w.TotalBorrowUSD += usd
	case ActionRepay:
		w.TotalRepayUSD += usd
	case ActionRedeem:
		w.TotalRedeemUSD += usd
	case ActionLiquidation:
		w.LiquidationCount++
	}

	w.Actions[action]++
}

func (w *WalletAccumulator) merge(other *WalletAccumulator) {
	w.TotalDepositUSD += other.TotalDepositUSD
	w.TotalBorrowUSD += other.TotalBorrowUSD
	w.TotalRepayUSD += other.TotalRepayUSD
	w.TotalRedeemUSD += other.TotalRedeemUSD
	w.LiquidationCount += other.LiquidationCount
	for symbol := range other.Assets {
		w.Assets[symbol] = struct{}{}
	}
	w.Timestamps = append(w.Timestamps, other.Timestamps...)
	for action, n := range other.Actions {
		w.Actions[action] += n
	}
	if other.first < w.first {
		w.first = other.first
	}
}

// Stats counts what happened to each input transaction.
type Stats struct {
	Seen            int `json:"seen"`
	Applied         int `json:"applied"`
	MissingWallet   int `json:"missing_wallet"`
	BadPrice        int `json:"bad_price"`
	BadTimestamp    int `json:"bad_timestamp"`
	NullActionData  int `json:"null_action_data"`
	AmountFallbacks int `json:"amount_fallbacks"`
	Faults          int `json:"faults"`
}

// Add folds other into s.
func (s *Stats) Add(other Stats) {
	s.Seen += other.Seen
	s.Applied += other.Applied
	s.MissingWallet += other.MissingWallet
	s.BadPrice += other.BadPrice
	s.BadTimestamp += other.BadTimestamp
	s.NullActionData += other.NullActionData
	s.AmountFallbacks += other.AmountFallbacks
	s.Faults += other.Faults
}

// Discarded is the number of transactions that contributed nothing.
func (s Stats) Discarded() int {
	return s.MissingWallet + s.NullActionData + s.BadPrice + s.BadTimestamp + s.Faults
}

// Accumulators maps wallet identifiers to their accumulators, preserving the
// order in which wallets were first seen.
type Accumulators struct {
	Stats Stats

	order   []string
	wallets map[string]*WalletAccumulator
}

// NewAccumulators returns an empty map.
func NewAccumulators() *Accumulators {
	return &Accumulators{wallets: make(map[string]*WalletAccumulator)}
}

// Len returns the number of wallets.
func (a *Accumulators) Len() int {
	return len(a.order)
}

// Keys returns wallet identifiers in first-seen order.
func (a *Accumulators) Keys() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Get looks up a wallet.
func (a *Accumulators) Get(wallet string) (*WalletAccumulator, bool) {
	acc, ok := a.wallets[wallet]
	return acc, ok
}

// Each visits wallets in first-seen order.
func (a *Accumulators) Each(fn func(wallet string, acc *WalletAccumulator)) {
	for _, wallet := range a.order {
		fn(wallet, a.wallets[wallet])
	}
}

// mergeShard adds a shard produced by AggregateSharded into a. Matching
// wallets combine additively and the result is ordered by each wallet's first
// applied transaction, which assumes both maps index the same input slice.
// Accumulators of other are copied, so other stays independent of a.
func (a *Accumulators) mergeShard(other *Accumulators) {
	a.Stats.Add(other.Stats)
	for _, wallet := range other.order {
		src := other.wallets[wallet]
		if dst, ok := a.wallets[wallet]; ok {
			dst.merge(src)
			continue
		}
		dst := newWalletAccumulator(src.first)
		dst.merge(src)
		a.wallets[wallet] = dst
		a.order = append(a.order, wallet)
	}
	sort.SliceStable(a.order, func(i, j int) bool {
		return a.wallets[a.order[i]].first < a.wallets[a.order[j]].first
	})
}

func (a *Accumulators) wallet(id string, index int) *WalletAccumulator {
	if acc, ok := a.wallets[id]; ok {
		return acc
	}
	acc := newWalletAccumulator(index)
	a.wallets[id] = acc
	a.order = append(a.order, id)
	return acc
}
