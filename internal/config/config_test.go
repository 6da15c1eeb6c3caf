package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-score/internal/scorer"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "walletscore", cfg.App.Name)
	assert.Equal(t, "user-wallet-transactions.json", cfg.Input.Path)
	assert.Equal(t, 30*time.Second, cfg.Input.RequestTimeout)
	assert.Equal(t, scorer.DefaultPolicy(), cfg.Scoring)
	assert.Equal(t, 20, cfg.Export.HistogramBins)
	assert.Equal(t, "wallet_scores.csv", cfg.Export.CSVPath)
	assert.Equal(t, 1, cfg.Aggregation.Shards)
	assert.False(t, cfg.Notify.Telegram.Enabled)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "walletscore.yaml")
	content := `
input:
  path: data/txs.json
scoring:
  liquidation_penalty: 75
  activity_high: 8
aggregation:
  shards: 4
  score_workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("WALLETSCORE_SCORING_BASE", "450")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/txs.json", cfg.Input.Path)
	assert.Equal(t, 75.0, cfg.Scoring.LiquidationPenalty)
	assert.Equal(t, 8.0, cfg.Scoring.ActivityHigh)
	assert.Equal(t, 450.0, cfg.Scoring.Base)
	assert.Equal(t, 100.0, cfg.Scoring.RepayWeight)
	assert.Equal(t, 4, cfg.Aggregation.Shards)
	assert.Equal(t, 8, cfg.Aggregation.ScoreWorkers)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WALLETSCORE_INPUT_PATH=from-dotenv.json\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WALLETSCORE_INPUT_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", cfg.Input.Path)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	broken := *cfg
	broken.Notify.Telegram.Enabled = true
	assert.Error(t, broken.Validate())

	broken = *cfg
	broken.Aggregation.Shards = 0
	assert.Error(t, broken.Validate())

	broken = *cfg
	broken.Scoring.MinScore = 2000
	assert.Error(t, broken.Validate())
}

func TestResolveInput(t *testing.T) {
	cfg := &Config{Input: InputConfig{Path: "default.json"}}
	assert.Equal(t, "default.json", cfg.ResolveInput(""))
	assert.Equal(t, "cli.json", cfg.ResolveInput("cli.json"))
}

// chdir changes the working directory for the test and restores it on
// cleanup (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
