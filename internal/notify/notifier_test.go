package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-score/internal/scorer"
)

func testSummary() Summary {
	records := []scorer.ScoreRecord{{Score: 750}, {Score: 620}, {Score: 0}}
	return Summarize("run-1", "txs.json", 10, 2, records, 1500*time.Millisecond)
}

func TestSummarize(t *testing.T) {
	s := testSummary()
	assert.Equal(t, 3, s.Wallets)
	assert.Equal(t, 0, s.MinScore)
	assert.Equal(t, 750, s.MaxScore)
	assert.InDelta(t, 456.67, s.MeanScore, 0.01)
	assert.Len(t, s.Ranges, 10)

	empty := Summarize("run-2", "", 0, 0, nil, 0)
	assert.Zero(t, empty.Wallets)
	assert.NotContains(t, RenderMessage(empty), "mean")
}

func TestRenderMessage(t *testing.T) {
	msg := RenderMessage(testSummary())
	assert.Contains(t, msg, "Run: run-1")
	assert.Contains(t, msg, "Transactions: 10 (discarded 2)")
	assert.Contains(t, msg, "Score mean/min/max: 456.7 / 0 / 750")
	assert.Contains(t, msg, "(700, 800]: 1")
	assert.NotContains(t, msg, "(0, 100]")
	assert.Contains(t, msg, "Took: 1.5s")
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/bottoken/sendMessage"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, zerolog.Nop())
	require.NoError(t, notifier.Notify(context.Background(), testSummary()))

	assert.Equal(t, "chat", received["chat_id"])
	assert.Contains(t, received["text"], "Wallets: 3")
}

func TestTelegramNotifierErrors(t *testing.T) {
	notOK := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "chat not found"})
	}))
	defer notOK.Close()

	err := NewTelegramNotifier("token", "chat", notOK.URL, time.Second, zerolog.Nop()).Notify(context.Background(), testSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	err = NewTelegramNotifier("token", "chat", failing.URL, time.Second, zerolog.Nop()).Notify(context.Background(), testSummary())
	assert.Error(t, err)
}
