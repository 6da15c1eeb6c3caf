// Package server exposes the scoring pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"wallet-credit-score/internal/aggregator"
	"wallet-credit-score/internal/metrics"
	"wallet-credit-score/internal/scorer"
	"wallet-credit-score/internal/service"
	"wallet-credit-score/internal/source"
)

// Options configure the HTTP server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
}

// ScoreResponse is the body of a successful POST /v1/scores.
type ScoreResponse struct {
	Wallets  []scorer.ScoreRecord `json:"wallets"`
	Stats    aggregator.Stats     `json:"stats"`
	Rejected int                  `json:"rejected"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves score requests.
type Server struct {
	pipeline     *service.Pipeline
	recorder     *metrics.Recorder
	maxBodyBytes int64
	router       chi.Router
	server       *http.Server
	logger       zerolog.Logger
}

// New builds a server with all routes registered. recorder may be nil, in
// which case /metrics is not mounted.
func New(opts Options, pipeline *service.Pipeline, recorder *metrics.Recorder, logger zerolog.Logger) *Server {
	s := &Server{
		pipeline:     pipeline,
		recorder:     recorder,
		maxBodyBytes: opts.MaxBodyBytes,
		router:       chi.NewRouter(),
		logger:       logger.With().Str("component", "server").Logger(),
	}
	s.routes()

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/v1/scores", s.handleScores)
	if s.recorder != nil {
		s.router.Method(http.MethodGet, "/metrics", s.recorder.Handler())
	}
}

// Handler returns the routed handler, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()

	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	batch, err := source.Decode(body, logger)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return
	}
	batch.Origin = "http"

	result, err := s.pipeline.Process(r.Context(), batch)
	if err != nil {
		logger.Error().Err(err).Msg("scoring request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "scoring failed"})
		return
	}

	writeJSON(w, http.StatusOK, ScoreResponse{
		Wallets:  result.Records,
		Stats:    result.Stats,
		Rejected: result.Rejected,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
