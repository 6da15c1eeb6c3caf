package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"wallet-credit-score/internal/logging"
	"wallet-credit-score/internal/scorer"
	"wallet-credit-score/internal/version"
)

// Config materialises application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Logging     logging.Config    `mapstructure:"logging"`
	Input       InputConfig       `mapstructure:"input"`
	Scoring     scorer.Policy     `mapstructure:"scoring"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Export      ExportConfig      `mapstructure:"export"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Server      ServerConfig      `mapstructure:"server"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// InputConfig locates and post-processes the transaction document.
type InputConfig struct {
	Path            string        `mapstructure:"path"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	ChecksumWallets bool          `mapstructure:"checksum_wallets"`
}

// AggregationConfig tunes the optional concurrency of the pipeline.
type AggregationConfig struct {
	Shards       int `mapstructure:"shards"`
	ScoreWorkers int `mapstructure:"score_workers"`
}

// ExportConfig sets where results are written.
type ExportConfig struct {
	CSVPath       string `mapstructure:"csv_path"`
	PNGPath       string `mapstructure:"png_path"`
	HistogramBins int    `mapstructure:"histogram_bins"`
	Summary       bool   `mapstructure:"summary"`
}

// NotifyConfig routes run summaries.
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram bot used for run summaries.
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP scoring endpoint.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// MetricsConfig controls the Prometheus textfile written after batch runs.
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

// Load builds configuration from .env, file, environment, and defaults.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("WALLETSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "walletscore")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("input.path", "user-wallet-transactions.json")
	v.SetDefault("input.request_timeout", "30s")
	v.SetDefault("input.user_agent", version.UserAgent())
	v.SetDefault("input.checksum_wallets", false)

	policy := scorer.DefaultPolicy()
	v.SetDefault("scoring.base", policy.Base)
	v.SetDefault("scoring.repay_ratio_cap", policy.RepayRatioCap)
	v.SetDefault("scoring.repay_weight", policy.RepayWeight)
	v.SetDefault("scoring.default_repay_ratio", policy.DefaultRepayRatio)
	v.SetDefault("scoring.liquidation_penalty", policy.LiquidationPenalty)
	v.SetDefault("scoring.activity_low", policy.ActivityLow)
	v.SetDefault("scoring.activity_high", policy.ActivityHigh)
	v.SetDefault("scoring.activity_bonus", policy.ActivityBonus)
	v.SetDefault("scoring.activity_penalty", policy.ActivityPenalty)
	v.SetDefault("scoring.diversity_weight", policy.DiversityWeight)
	v.SetDefault("scoring.diversity_cap", policy.DiversityCap)
	v.SetDefault("scoring.deposit_threshold", policy.DepositThreshold)
	v.SetDefault("scoring.deposit_scale", policy.DepositScale)
	v.SetDefault("scoring.deposit_weight", policy.DepositWeight)
	v.SetDefault("scoring.deposit_cap", policy.DepositCap)
	v.SetDefault("scoring.longevity_days", policy.LongevityDays)
	v.SetDefault("scoring.longevity_weight", policy.LongevityWeight)
	v.SetDefault("scoring.longevity_cap", policy.LongevityCap)
	v.SetDefault("scoring.seconds_per_day", policy.SecondsPerDay)
	v.SetDefault("scoring.min_score", policy.MinScore)
	v.SetDefault("scoring.max_score", policy.MaxScore)

	v.SetDefault("aggregation.shards", 1)
	v.SetDefault("aggregation.score_workers", 1)

	v.SetDefault("export.csv_path", "wallet_scores.csv")
	v.SetDefault("export.png_path", "score_distribution.png")
	v.SetDefault("export.histogram_bins", 20)
	v.SetDefault("export.summary", true)

	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("notify.telegram.timeout", "10s")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", int64(64<<20))

	v.SetDefault("metrics.textfile_path", "")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if c.Aggregation.Shards < 1 {
		return fmt.Errorf("aggregation.shards must be at least 1")
	}
	if c.Aggregation.ScoreWorkers < 1 {
		return fmt.Errorf("aggregation.score_workers must be at least 1")
	}
	if c.Export.HistogramBins <= 0 {
		return fmt.Errorf("export.histogram_bins must be greater than zero")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be greater than zero")
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token is required when telegram is enabled")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

// ResolveInput returns either the CLI override or the configured input location.
func (c *Config) ResolveInput(override string) string {
	if override != "" {
		return override
	}
	return c.Input.Path
}
