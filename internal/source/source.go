// Package source loads transaction documents for the scoring pipeline.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/aggregator"
)

// ErrNotArray is returned when the document is not a JSON array of records.
var ErrNotArray = errors.New("transaction document must be a JSON array")

// Batch is a decoded transaction document.
type Batch struct {
	Transactions []aggregator.RawTransaction
	// Rejected counts array elements that did not have the transaction shape,
	// e.g. a numeric userWallet or a string actionData.
	Rejected int
	Origin   string
}

// Source yields a batch of raw transactions.
type Source interface {
	Load(ctx context.Context) (Batch, error)
}

// Options parameterise Open.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Stdin     io.Reader
}

// Open picks a source for location: http(s) URLs are fetched, "-" reads
// Options.Stdin, anything else is a file path.
func Open(location string, opts Options, logger zerolog.Logger) (Source, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, errors.New("input location is empty")
	case location == "-":
		if opts.Stdin == nil {
			return nil, errors.New("stdin input requested but no reader configured")
		}
		return NewReader("stdin", opts.Stdin, logger), nil
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		return NewHTTP(HTTPOptions{URL: location, Timeout: opts.Timeout, UserAgent: opts.UserAgent}, logger), nil
	default:
		return NewFile(location, logger), nil
	}
}

// Decode reads a JSON array and decodes each element independently, so one
// malformed record never discards the rest of the document.
func Decode(r io.Reader, logger zerolog.Logger) (Batch, error) {
	var elements []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&elements); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Batch{}, ErrNotArray
		}
		return Batch{}, fmt.Errorf("decode transactions: %w", err)
	}

	batch := Batch{Transactions: make([]aggregator.RawTransaction, 0, len(elements))}
	for i, raw := range elements {
		var tx aggregator.RawTransaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			batch.Rejected++
			logger.Warn().Err(err).Int("index", i).Msg("skipping malformed transaction record")
			continue
		}
		batch.Transactions = append(batch.Transactions, tx)
	}
	return batch, nil
}
