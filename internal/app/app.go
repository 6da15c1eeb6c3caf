package app

import (
	"os"

	"github.com/rs/zerolog"

	"wallet-credit-score/internal/config"
	"wallet-credit-score/internal/metrics"
	"wallet-credit-score/internal/notify"
	"wallet-credit-score/internal/service"
	"wallet-credit-score/internal/source"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newSource(location string) (source.Source, error) {
	return source.Open(location, source.Options{
		Timeout:   a.Config.Input.RequestTimeout,
		UserAgent: a.Config.Input.UserAgent,
		Stdin:     os.Stdin,
	}, a.Logger)
}

func (a *App) newPipeline(recorder *metrics.Recorder) *service.Pipeline {
	return service.New(service.Options{
		Policy:          a.Config.Scoring,
		Shards:          a.Config.Aggregation.Shards,
		ScoreWorkers:    a.Config.Aggregation.ScoreWorkers,
		ChecksumWallets: a.Config.Input.ChecksumWallets,
	}, recorder, a.Logger)
}

func (a *App) newNotifier() notify.Notifier {
	if a.Config.Notify.Telegram.Enabled {
		cfg := a.Config.Notify.Telegram
		return notify.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
	}
	return nil
}

// ScoreOptions override the configured input and outputs of a batch run.
// Empty values fall back to configuration.
type ScoreOptions struct {
	Input           string
	CSVPath         string
	PNGPath         string
	Bins            int
	NoSummary       bool
	NoPNG           bool
	MetricsTextfile string
}

// ServeOptions configure the HTTP scoring endpoint.
type ServeOptions struct {
	Addr string
}
