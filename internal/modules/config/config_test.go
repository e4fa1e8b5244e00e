package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/detector"
)

var envKeys = []string{
	"TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "DRY_RUN", "SYMBOLS", "TIMEFRAME", "MARKET_BASE_URL",
	"SCAN_EVERY", "LOG_LEVEL", "ADMIN_PORT", "TRACING_ENABLED",
	"MIN_PROFIT_PCT", "STOP_LOSS_PCT", "VALIDITY_CANDLES", "TOP_N",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  token: abc
  chat_id: 42
scanner:
  symbols: [BTCUSDT]
  every: 5m
detector:
  min_profit_pct: 2.5
  ema_fast: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, []string{"BTCUSDT"}, cfg.Scanner.Symbols)
	assert.Equal(t, 5*time.Minute, cfg.Scanner.Every)

	// незаданные поля остаются дефолтными
	assert.Equal(t, 2.5, cfg.Detector.MinProfitPct)
	assert.Equal(t, 10, cfg.Detector.EMAFast)
	assert.Equal(t, 50, cfg.Detector.EMASlow)
	assert.Equal(t, detector.DefaultConfig().OBStartIndex, cfg.Detector.OBStartIndex)
	assert.Equal(t, "15m", cfg.Market.Interval)
	assert.Equal(t, 3, cfg.Telegram.MaxRetries)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "100500")
	t.Setenv("SYMBOLS", " ethusdt, solusdt ,")
	t.Setenv("TIMEFRAME", "1h")
	t.Setenv("SCAN_EVERY", "1m")
	t.Setenv("MIN_PROFIT_PCT", "3")
	t.Setenv("VALIDITY_CANDLES", "not-a-number")

	cfg, err := Load(writeConfig(t, "telegram:\n  token: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, int64(100500), cfg.Telegram.ChatID)
	assert.Equal(t, []string{"ETHUSDT", "SOLUSDT"}, cfg.Scanner.Symbols)
	assert.Equal(t, "1h", cfg.Market.Interval)
	assert.Equal(t, time.Minute, cfg.Scanner.Every)
	assert.Equal(t, 3.0, cfg.Detector.MinProfitPct)
	assert.Equal(t, 10, cfg.Detector.ValidityCandles)
}

func TestLoad_EmptyFileDryRun(t *testing.T) {
	clearEnv(t)
	t.Setenv("DRY_RUN", "true")

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.True(t, cfg.Telegram.DryRun)
	assert.Len(t, cfg.Scanner.Symbols, 5)
}

func TestLoad_InvalidDetector(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  dry_run: true
detector:
  ema_fast: 80
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, detector.ErrInvalidConfig)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open config file")

	_, err = Load(writeConfig(t, "telegram: [broken"))
	assert.ErrorContains(t, err, "decode config file")

	// без токена и без dry_run
	_, err = Load(writeConfig(t, "log_level: info\n"))
	assert.ErrorContains(t, err, "telegram token")

	_, err = Load(writeConfig(t, "telegram:\n  dry_run: true\nmarket:\n  limit: 50\n"))
	assert.ErrorContains(t, err, "market.limit")
}

func TestAdminAddr(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.AdminAddr())
}

func TestLocalValuesFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "values_local.yaml"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Detector.Validate())
	assert.True(t, cfg.Telegram.DryRun)
}
