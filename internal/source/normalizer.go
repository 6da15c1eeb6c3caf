package source

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// NormalizerOptions control wallet identifier post-processing.
type NormalizerOptions struct {
	// ChecksumWallets rewrites hex addresses to their EIP-55 form, which merges
	// wallets that differ only in letter case.
	ChecksumWallets bool
}

// NormalizeReport summarises a Normalizer pass.
type NormalizeReport struct {
	NonHex    int
	Rewritten int
}

// Normalizer inspects wallet identifiers before aggregation.
type Normalizer struct {
	opts   NormalizerOptions
	logger zerolog.Logger
}

// NewNormalizer constructs a Normalizer.
func NewNormalizer(opts NormalizerOptions, logger zerolog.Logger) *Normalizer {
	return &Normalizer{opts: opts, logger: logger.With().Str("component", "normalizer").Logger()}
}

// Apply processes the batch in place. Identifiers that are not hex addresses
// are kept as-is and only counted.
func (n *Normalizer) Apply(batch *Batch) NormalizeReport {
	var report NormalizeReport
	for i := range batch.Transactions {
		tx := &batch.Transactions[i]
		if tx.UserWallet == nil || *tx.UserWallet == "" {
			continue
		}

		wallet := *tx.UserWallet
		if !common.IsHexAddress(wallet) {
			report.NonHex++
			continue
		}
		if !n.opts.ChecksumWallets {
			continue
		}

		checksummed := common.HexToAddress(wallet).Hex()
		if checksummed != wallet {
			tx.UserWallet = &checksummed
			report.Rewritten++
		}
	}

	if report.NonHex > 0 {
		n.logger.Warn().Int("count", report.NonHex).Msg("wallet identifiers that are not hex addresses")
	}
	if report.Rewritten > 0 {
		n.logger.Debug().Int("count", report.Rewritten).Msg("wallet identifiers rewritten to checksum form")
	}
	return report
}
