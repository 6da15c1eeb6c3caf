package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// File reads a transaction document from disk.
type File struct {
	path   string
	logger zerolog.Logger
}

// NewFile constructs a file source.
func NewFile(path string, logger zerolog.Logger) *File {
	return &File{path: path, logger: logger.With().Str("component", "file_source").Logger()}
}

// Load reads and decodes the file.
func (f *File) Load(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return Batch{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	batch, err := Decode(bufio.NewReader(file), f.logger)
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", f.path, err)
	}
	batch.Origin = f.path

	f.logger.Info().Str("path", f.path).
		Int("transactions", len(batch.Transactions)).
		Int("rejected", batch.Rejected).
		Msg("loaded transactions")
	return batch, nil
}

// Reader decodes a document from an arbitrary stream, e.g. stdin.
type Reader struct {
	name   string
	r      io.Reader
	logger zerolog.Logger
}

// NewReader constructs a stream source.
func NewReader(name string, r io.Reader, logger zerolog.Logger) *Reader {
	return &Reader{name: name, r: r, logger: logger.With().Str("component", "stream_source").Logger()}
}

// Load decodes the stream.
func (s *Reader) Load(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	batch, err := Decode(s.r, s.logger)
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", s.name, err)
	}
	batch.Origin = s.name
	return batch, nil
}

var (
	_ Source = (*File)(nil)
	_ Source = (*Reader)(nil)
)
