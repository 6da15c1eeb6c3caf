package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/report"
	"wallet-credit-score/internal/scorer"
)

// Summary describes one finished scoring run.
type Summary struct {
	RunID        string
	Origin       string
	Transactions int
	Discarded    int
	Wallets      int
	MeanScore    float64
	MinScore     int
	MaxScore     int
	Ranges       []report.RangeCount
	Duration     time.Duration
}

// Summarize builds a Summary from the records of a run.
func Summarize(runID, origin string, transactions, discarded int, records []scorer.ScoreRecord, elapsed time.Duration) Summary {
	s := Summary{
		RunID:        runID,
		Origin:       origin,
		Transactions: transactions,
		Discarded:    discarded,
		Wallets:      len(records),
		Ranges:       report.RangeCounts(records),
		Duration:     elapsed,
	}
	if len(records) == 0 {
		return s
	}

	s.MinScore, s.MaxScore = records[0].Score, records[0].Score
	total := 0
	for _, rec := range records {
		total += rec.Score
		s.MinScore = min(s.MinScore, rec.Score)
		s.MaxScore = max(s.MaxScore, rec.Score)
	}
	s.MeanScore = float64(total) / float64(len(records))
	return s
}

// Notifier delivers run summaries.
type Notifier interface {
	Notify(ctx context.Context, summary Summary) error
}

// TelegramNotifier posts summaries through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "notify_telegram").Logger(),
	}
}

// Notify calls sendMessage with the rendered summary.
func (n *TelegramNotifier) Notify(ctx context.Context, summary Summary) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    RenderMessage(summary),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.OK {
		return fmt.Errorf("telegram returned ok=false: %s", result.Description)
	}

	n.logger.Info().Str("run_id", summary.RunID).Int("wallets", summary.Wallets).Msg("run summary sent")
	return nil
}

// RenderMessage formats a summary as plain text.
func RenderMessage(s Summary) string {
	var b strings.Builder
	b.WriteString("[Wallet Credit Scores]\n")
	if s.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", s.RunID)
	}
	if s.Origin != "" {
		fmt.Fprintf(&b, "Input: %s\n", s.Origin)
	}
	fmt.Fprintf(&b, "Transactions: %d (discarded %d)\n", s.Transactions, s.Discarded)
	fmt.Fprintf(&b, "Wallets: %d\n", s.Wallets)
	if s.Wallets > 0 {
		fmt.Fprintf(&b, "Score mean/min/max: %.1f / %d / %d\n", s.MeanScore, s.MinScore, s.MaxScore)
	}
	for _, r := range s.Ranges {
		if r.Count > 0 {
			fmt.Fprintf(&b, "%s: %d\n", r.Label(), r.Count)
		}
	}
	if s.Duration > 0 {
		fmt.Fprintf(&b, "Took: %s\n", s.Duration.Round(time.Millisecond))
	}
	return b.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
