package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"wallet-credit-score/internal/scorer"
)

// RangeCount is the number of wallets whose score falls in (Low, High].
type RangeCount struct {
	Low   int
	High  int
	Count int
}

// Label renders the interval in half-open notation.
func (r RangeCount) Label() string {
	return fmt.Sprintf("(%d, %d]", r.Low, r.High)
}

// RangeCounts buckets scores into (0,100], (100,200] ... (900,1000]. A score
// of exactly 0 belongs to no range.
func RangeCounts(records []scorer.ScoreRecord) []RangeCount {
	out := make([]RangeCount, 10)
	for i := range out {
		out[i] = RangeCount{Low: i * 100, High: (i + 1) * 100}
	}
	for _, rec := range records {
		if rec.Score <= 0 || rec.Score > 1000 {
			continue
		}
		out[(rec.Score-1)/100].Count++
	}
	return out
}

// PrintSummary writes the wallet count, the CSV location if any, and the
// range table.
func PrintSummary(w io.Writer, records []scorer.ScoreRecord, csvPath string) error {
	if _, err := fmt.Fprintf(w, "Processed %d wallets.\n", len(records)); err != nil {
		return err
	}
	if csvPath != "" {
		if _, err := fmt.Fprintf(w, "Scores saved to '%s'.\n", csvPath); err != nil {
			return err
		}
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Score Range\t| Wallet Count")
	for _, rc := range RangeCounts(records) {
		fmt.Fprintf(writer, "%s\t| %d\n", rc.Label(), rc.Count)
	}
	return writer.Flush()
}
