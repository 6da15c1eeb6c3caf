package source

import "wallet-credit-score/internal/aggregator"

func txWithWallet(wallet *string) aggregator.RawTransaction {
	return aggregator.RawTransaction{UserWallet: wallet, Timestamp: aggregator.ScalarOf(1)}
}
