package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-score/internal/scorer"
)

func sampleRecords() []scorer.ScoreRecord {
	return []scorer.ScoreRecord{
		{Wallet: "A", Score: 750, TotalDepositUSD: 2000, RepayRatio: 1, AssetDiversity: 1, DailyTxRate: 1, TxCount: 1},
		{Wallet: "B", Score: 0, LiquidationCount: 12, RepayRatio: 0.25, TxCount: 14, WalletAgeDays: 3.5, DailyTxRate: 4},
		{Wallet: "C", Score: 100, TotalBorrowUSD: 123.456, TotalRepayUSD: 0.1, RepayRatio: 0, TxCount: 2},
		{Wallet: "D", Score: 1000, TotalRedeemUSD: 1e-7, TxCount: 40},
		{Wallet: "E", Score: 101, TxCount: 3},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"A", "750", "2000", "0", "0", "0", "0", "0", "1", "1", "1", "1"}, rows[1])
	assert.Equal(t, "123.456", rows[3][3])
	assert.Equal(t, "0.0000001", rows[4][5])
}

func TestWriteCSVFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "scores.csv")
	require.NoError(t, WriteCSVFile(path, sampleRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "wallet,score,total_deposit_usd"))
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]int{0, 100, 500, 1000, 1000}, 4)
	require.Len(t, bins, 4)

	assert.Equal(t, 0.0, bins[0].Low)
	assert.Equal(t, 250.0, bins[0].High)
	assert.Equal(t, 1000.0, bins[3].High)
	assert.Equal(t, []int{2, 0, 1, 2}, counts(bins))
}

func TestHistogramSingleValue(t *testing.T) {
	bins := Histogram([]int{600, 600, 600}, 2)
	require.Len(t, bins, 2)
	assert.Equal(t, 599.5, bins[0].Low)
	assert.Equal(t, 600.5, bins[1].High)
	assert.Equal(t, 3, bins[0].Count+bins[1].Count)

	assert.Nil(t, Histogram(nil, 20))
	assert.Nil(t, Histogram([]int{1}, 0))
}

func TestRangeCounts(t *testing.T) {
	ranges := RangeCounts(sampleRecords())
	require.Len(t, ranges, 10)

	assert.Equal(t, "(0, 100]", ranges[0].Label())
	assert.Equal(t, 1, ranges[0].Count, "100 belongs to (0, 100]")
	assert.Equal(t, 1, ranges[1].Count, "101 belongs to (100, 200]")
	assert.Equal(t, 1, ranges[7].Count)
	assert.Equal(t, 1, ranges[9].Count)

	total := 0
	for _, r := range ranges {
		total += r.Count
	}
	assert.Equal(t, 4, total, "a score of 0 falls in no range")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, sampleRecords(), "wallet_scores.csv"))

	out := buf.String()
	assert.Contains(t, out, "Processed 5 wallets.")
	assert.Contains(t, out, "Scores saved to 'wallet_scores.csv'.")
	assert.Contains(t, out, "Score Range")
	assert.Contains(t, out, "(900, 1000]")
	assert.Equal(t, 13, strings.Count(out, "\n"))
}

func TestWriteHistogramPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "score_distribution.png")
	require.NoError(t, WriteHistogramPNG(path, sampleRecords(), 20))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	assert.ErrorIs(t, WriteHistogramPNG(path, nil, 20), ErrNoScores)
}

func counts(bins []Bin) []int {
	out := make([]int, len(bins))
	for i, b := range bins {
		out[i] = b.Count
	}
	return out
}
