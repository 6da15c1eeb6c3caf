package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-score/internal/metrics"
	"wallet-credit-score/internal/scorer"
	"wallet-credit-score/internal/service"
)

const body = `[
  {"userWallet": "A", "action": "deposit",
   "actionData": {"assetSymbol": "USDC", "amount": "2000000000", "assetPriceUSD": "1.0"}, "timestamp": 1000},
  {"userWallet": "B", "action": "borrow", "actionData": {"assetSymbol": "USDC", "amount": "1"}, "timestamp": "soon"},
  "not an object"
]`

func newTestServer(t *testing.T, maxBody int64) (*Server, *metrics.Recorder) {
	t.Helper()
	recorder := metrics.NewRecorder()
	pipeline := service.New(service.Options{Policy: scorer.DefaultPolicy()}, recorder, zerolog.Nop())
	return New(Options{MaxBodyBytes: maxBody}, pipeline, recorder, zerolog.Nop()), recorder
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestScores(t *testing.T) {
	srv, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/scores", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Wallets, 1)
	assert.Equal(t, "A", resp.Wallets[0].Wallet)
	assert.Equal(t, 750, resp.Wallets[0].Score)
	assert.Equal(t, 2, resp.Stats.Seen)
	assert.Equal(t, 1, resp.Stats.BadTimestamp)
	assert.Equal(t, 1, resp.Rejected)
}

func TestScoresEmptyArray(t *testing.T) {
	srv, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/scores", strings.NewReader(`[]`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"wallets":[]`)
}

func TestScoresRejectsBadDocuments(t *testing.T) {
	srv, _ := newTestServer(t, 64)

	cases := map[string]struct {
		body string
		code int
	}{
		"object":    {body: `{"userWallet": "A"}`, code: http.StatusBadRequest},
		"truncated": {body: `[{"userWallet": `, code: http.StatusBadRequest},
		"too large": {body: body, code: http.StatusRequestEntityTooLarge},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/scores", strings.NewReader(tc.body)))
			assert.Equal(t, tc.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/scores", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `walletscore_transactions_total{outcome="bad_timestamp"} 1`)
	assert.Contains(t, rec.Body.String(), `walletscore_wallets_scored_total 1`)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/scores", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
