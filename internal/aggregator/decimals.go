package aggregator

import (
	"github.com/shopspring/decimal"
)

// DefaultPrecision applies to any asset missing from the precision table.
const DefaultPrecision int32 = 18

var assetPrecision = map[string]int32{
	"USDC":   6,
	"USDT":   6,
	"DAI":    18,
	"WETH":   18,
	"WBTC":   8,
	"WMATIC": 18,
	"WPOL":   18,
}

// Precision returns the number of decimals the asset's raw amounts are scaled by.
func Precision(symbol string) int32 {
	if p, ok := assetPrecision[symbol]; ok {
		return p
	}
	return DefaultPrecision
}

// NormalizeAmount converts an integer-scaled raw amount into token units.
//
// An amount that cannot be read as an integer normalizes to zero and the
// transaction keeps going with a zero-value contribution. ok is false in that
// case so callers can count the fallback.
func NormalizeAmount(amount Scalar, symbol string) (value decimal.Decimal, ok bool) {
	if amount.Missing() {
		return decimal.Zero, true
	}
	atoms, err := amount.BigInt()
	if err != nil {
		return decimal.Zero, false
	}
	return decimal.NewFromBigInt(atoms, -Precision(symbol)), true
}
