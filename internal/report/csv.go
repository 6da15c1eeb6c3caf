// Package report renders score records as CSV, PNG histograms and console
// summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"wallet-credit-score/internal/scorer"
)

// CSVHeader is the column order of the score export.
var CSVHeader = []string{
	"wallet",
	"score",
	"total_deposit_usd",
	"total_borrow_usd",
	"total_repay_usd",
	"total_redeem_usd",
	"liquidation_count",
	"wallet_age_days",
	"repay_ratio",
	"asset_diversity",
	"daily_tx_rate",
	"tx_count",
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []scorer.ScoreRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.Wallet,
			strconv.Itoa(rec.Score),
			formatFloat(rec.TotalDepositUSD),
			formatFloat(rec.TotalBorrowUSD),
			formatFloat(rec.TotalRepayUSD),
			formatFloat(rec.TotalRedeemUSD),
			strconv.Itoa(rec.LiquidationCount),
			formatFloat(rec.WalletAgeDays),
			formatFloat(rec.RepayRatio),
			strconv.Itoa(rec.AssetDiversity),
			formatFloat(rec.DailyTxRate),
			strconv.Itoa(rec.TxCount),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes records to path, creating parent directories.
func WriteCSVFile(path string, records []scorer.ScoreRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
