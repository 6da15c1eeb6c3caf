package report

import (
	"errors"
	"fmt"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"

	"wallet-credit-score/internal/scorer"
)

// ErrNoScores is returned when there is nothing to plot.
var ErrNoScores = errors.New("report: no scores to plot")

// Bin is one histogram bucket. The last bin of a histogram includes High.
type Bin struct {
	Low   float64
	High  float64
	Count int
}

// Histogram splits scores into equal-width bins spanning their min and max.
// A single distinct value is widened by 0.5 on each side.
func Histogram(scores []int, bins int) []Bin {
	if len(scores) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}

	low, high := float64(lo), float64(hi)
	if low == high {
		low -= 0.5
		high += 0.5
	}
	width := (high - low) / float64(bins)

	out := make([]Bin, bins)
	for i := range out {
		out[i].Low = low + float64(i)*width
		out[i].High = low + float64(i+1)*width
	}
	out[bins-1].High = high

	for _, s := range scores {
		idx := int((float64(s) - low) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// Scores extracts the score column.
func Scores(records []scorer.ScoreRecord) []int {
	out := make([]int, len(records))
	for i, rec := range records {
		out[i] = rec.Score
	}
	return out
}

// WriteHistogramPNG renders the score distribution as a bar chart.
func WriteHistogramPNG(path string, records []scorer.ScoreRecord, bins int) error {
	hist := Histogram(Scores(records), bins)
	if len(hist) == 0 {
		return ErrNoScores
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	bars := make([]chart.Value, len(hist))
	maxCount := 0
	for i, bin := range hist {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%.0f", bin.Low),
			Value: float64(bin.Count),
		}
		maxCount = max(maxCount, bin.Count)
	}

	graph := chart.BarChart{
		Title:  "Wallet Credit Score Distribution",
		Width:  max(1280, len(bars)*60+160),
		Height: 720,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		BarWidth:   40,
		BarSpacing: 15,
		YAxis: chart.YAxis{
			Name: "Number of Wallets",
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(maxCount) + 1,
			},
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		Bars: bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}
	return file.Close()
}
