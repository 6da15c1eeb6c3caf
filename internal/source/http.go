package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/version"
)

const maxErrorBody = 4 << 10

// HTTPOptions parameterise the HTTP source.
type HTTPOptions struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// HTTP fetches a transaction document from a URL.
type HTTP struct {
	opts   HTTPOptions
	logger zerolog.Logger
	client *http.Client
}

// NewHTTP constructs an HTTP source.
func NewHTTP(opts HTTPOptions, logger zerolog.Logger) *HTTP {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTP{
		opts:   opts,
		logger: logger.With().Str("component", "http_source").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// Load performs a GET and decodes the body.
func (h *HTTP) Load(ctx context.Context) (Batch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.opts.URL, nil)
	if err != nil {
		return Batch{}, fmt.Errorf("create input request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(h.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", version.UserAgent())
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Batch{}, fmt.Errorf("fetch input: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Batch{}, parseHTTPError(resp.StatusCode, payload)
	}

	batch, err := Decode(resp.Body, h.logger)
	if err != nil {
		return Batch{}, err
	}
	batch.Origin = h.opts.URL

	h.logger.Info().Str("url", h.opts.URL).
		Int("transactions", len(batch.Transactions)).
		Int("rejected", batch.Rejected).
		Msg("fetched transactions")
	return batch, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("input endpoint error (%d): %s", status, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("input endpoint error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("input endpoint error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("input endpoint error (%d)", status)
}

var _ Source = (*HTTP)(nil)
