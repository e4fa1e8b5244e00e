package config

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"signal_bot/internal/detector"
	"signal_bot/pkg/tracing"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatIDTelegramENV = "TELEGRAM_CHAT_ID"
)

// Config ...
type Config struct {
	Telegram struct {
		Token      string        `yaml:"token"`
		ChatID     int64         `yaml:"chat_id"`
		MaxRetries int           `yaml:"max_retries"`
		RetryDelay time.Duration `yaml:"retry_delay"` // база экспоненциального backoff
		DryRun     bool          `yaml:"dry_run"`     // писать сигналы в лог вместо Telegram
	} `yaml:"telegram"`

	Market struct {
		BaseURL  string        `yaml:"base_url"`
		Interval string        `yaml:"interval"`
		Limit    int           `yaml:"limit"`
		Timeout  time.Duration `yaml:"timeout"`
		RPS      float64       `yaml:"rps"`
		Burst    int           `yaml:"burst"`
	} `yaml:"market"`

	Scanner struct {
		Symbols      []string      `yaml:"symbols"`
		Every        time.Duration `yaml:"every"`
		Concurrency  int           `yaml:"concurrency"`
		FreshCandles int           `yaml:"fresh_candles"` // сигналы старше — уже история
		DedupeTTL    time.Duration `yaml:"dedupe_ttl"`
	} `yaml:"scanner"`

	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	Tracing tracing.Config `yaml:"tracing"`

	LogLevel string `yaml:"log_level"`

	Detector detector.Config `yaml:"detector"`
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := getenvDefault(configFilePathENV, "values_local.yaml")
	dir := getenvDefault(configDirENV, "configs")

	cfg, err := Load(filepath.Join(dir, configFileName))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load читает YAML поверх дефолтов, затем применяет ENV и валидирует.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config file")
	}
	defer func() {
		_ = file.Close()
	}()

	// пустой файл — только дефолты
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode config file")
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	cfg := &Config{
		LogLevel: "info",
		Detector: detector.DefaultConfig(),
	}

	cfg.Telegram.MaxRetries = 3
	cfg.Telegram.RetryDelay = time.Second

	cfg.Market.BaseURL = "https://api.binance.com"
	cfg.Market.Interval = "15m"
	cfg.Market.Limit = 500
	cfg.Market.Timeout = 10 * time.Second
	cfg.Market.RPS = 5
	cfg.Market.Burst = 5

	cfg.Scanner.Symbols = []string{"BTCUSDT", "ETHUSDT", "XRPUSDT", "ADAUSDT", "SOLUSDT"}
	cfg.Scanner.Every = 15 * time.Minute
	cfg.Scanner.Concurrency = 2
	cfg.Scanner.FreshCandles = 3
	cfg.Scanner.DedupeTTL = 24 * time.Hour

	cfg.Service.AdminPort = 8080

	cfg.Tracing.Host = "localhost"
	cfg.Tracing.Port = 6831
	return cfg
}

func (c *Config) applyEnv() {
	if token := os.Getenv(tokenTelegramENV); token != "" {
		c.Telegram.Token = token
	}
	if v := os.Getenv(chatIDTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
	c.Telegram.DryRun = boolFromEnv("DRY_RUN", c.Telegram.DryRun)

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Scanner.Symbols = splitSymbols(v)
	}
	c.Market.Interval = getenvDefault("TIMEFRAME", c.Market.Interval)
	c.Market.BaseURL = getenvDefault("MARKET_BASE_URL", c.Market.BaseURL)
	c.Scanner.Every = durationFromEnv("SCAN_EVERY", c.Scanner.Every)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)
	c.Service.AdminPort = intFromEnv("ADMIN_PORT", c.Service.AdminPort)
	c.Tracing.Enabled = boolFromEnv("TRACING_ENABLED", c.Tracing.Enabled)

	// Дефолты детектора
	c.Detector.MinProfitPct = floatFromEnv("MIN_PROFIT_PCT", c.Detector.MinProfitPct)
	c.Detector.StopLossPct = floatFromEnv("STOP_LOSS_PCT", c.Detector.StopLossPct)
	c.Detector.ValidityCandles = intFromEnv("VALIDITY_CANDLES", c.Detector.ValidityCandles)
	c.Detector.TopN = intFromEnv("TOP_N", c.Detector.TopN)
}

// Validate: конфиг детектора проверяется здесь же, чтобы приложение падало на старте.
func (c *Config) Validate() error {
	if err := c.Detector.Validate(); err != nil {
		return err
	}
	switch {
	case len(c.Scanner.Symbols) == 0:
		return errors.New("scanner.symbols is empty")
	case c.Scanner.Every <= 0:
		return errors.New("scanner.every must be > 0")
	case c.Scanner.Concurrency < 1:
		return errors.New("scanner.concurrency must be >= 1")
	case c.Market.Limit < c.Detector.MinCandles:
		return errors.Errorf("market.limit %d is below detector.min_candles %d", c.Market.Limit, c.Detector.MinCandles)
	case c.Market.RPS <= 0 || c.Market.Burst < 1:
		return errors.New("market.rps and market.burst must be positive")
	case !c.Telegram.DryRun && c.Telegram.Token == "":
		return errors.New("telegram token is empty (set TELEGRAM_TOKEN or dry_run)")
	}
	return nil
}

func (c *Config) AdminAddr() string {
	return c.Service.Host + ":" + strconv.Itoa(c.Service.AdminPort)
}

func splitSymbols(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.ToUpper(strings.TrimSpace(p)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
