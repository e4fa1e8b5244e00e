package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"signal_bot/internal/models"
)

var (
	ErrUnsupportedInterval = errors.New("unsupported interval")
	ErrNoCandles           = errors.New("no closed candles")
)

// StatusError: ответ биржи не 2xx.
type StatusError struct {
	Status int
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("binance http %d: code=%d msg=%s", e.Status, e.Code, e.Msg)
}

type Config struct {
	BaseURL  string
	Interval string
	Limit    int
	Timeout  time.Duration
	RPS      float64
	Burst    int
}

// Client: REST-клиент Binance /api/v3/klines.
type Client struct {
	http     *http.Client
	baseURL  string
	interval string
	limit    int

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
	now     func() time.Time
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	st := gobreaker.Settings{
		Name:     "binance-klines",
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// 4xx — ошибка запроса (кривой символ), а не недоступность биржи
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.Status < 500 && se.Status != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
	}

	return &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		interval: cfg.Interval,
		limit:    cfg.Limit,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		breaker:  gobreaker.NewCircuitBreaker(st),
		log:      log.Named("market"),
		now:      time.Now,
	}
}

// Series: закрытые свечи символа по интервалу и лимиту из конфига.
func (c *Client) Series(ctx context.Context, symbol string) (*models.CandleSeries, error) {
	candles, err := c.GetCandles(ctx, symbol, c.interval, c.limit)
	if err != nil {
		return nil, err
	}
	s, err := models.NewCandleSeries(candles)
	if err != nil {
		return nil, errors.Wrapf(err, "series %s", symbol)
	}
	return s, nil
}

// GetCandles
// KlineRow: [openTime, o, h, l, c, vol, closeTime, quoteVol, trades, takerBase, takerQuote, ignore]
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 500
	}
	iv, err := binanceInterval(interval)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, symbol, iv, limit)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "klines %s %s", symbol, iv)
	}

	var rows [][]interface{}
	if err := sonic.Unmarshal(body.([]byte), &rows); err != nil {
		return nil, errors.Wrapf(err, "decode klines %s", symbol)
	}

	out := parseKlines(rows, c.now())
	if len(out) == 0 {
		return nil, errors.Wrapf(ErrNoCandles, "klines %s %s", symbol, iv)
	}
	if dropped := len(rows) - len(out); dropped > 1 {
		c.log.Debug("klines rows dropped", zap.String("symbol", symbol), zap.Int("dropped", dropped))
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, symbol, interval string, limit int) ([]byte, error) {
	u := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(interval), limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		se := &StatusError{Status: resp.StatusCode, Msg: string(b)}
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if sonic.Unmarshal(b, &apiErr) == nil && apiErr.Msg != "" {
			se.Code, se.Msg = apiErr.Code, apiErr.Msg
		}
		return nil, se
	}
	return b, nil
}

// parseKlines отбрасывает кривые строки и ещё не закрытую свечу,
// сортирует по времени и убирает дубли.
func parseKlines(rows [][]interface{}, now time.Time) []models.Candle {
	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 7 {
			continue
		}
		openMs, ok1 := number(row[0])
		closeMs, ok2 := number(row[6])
		open, ok3 := number(row[1])
		high, ok4 := number(row[2])
		low, ok5 := number(row[3])
		closep, ok6 := number(row[4])
		vol, ok7 := number(row[5])
		if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
			continue
		}
		if closep <= 0 || high < low {
			continue
		}
		if time.UnixMilli(int64(closeMs)).After(now) {
			continue
		}

		out = append(out, models.Candle{
			Time:   time.UnixMilli(int64(openMs)).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closep,
			Volume: vol,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	uniq := out[:0]
	for i, c := range out {
		if i > 0 && c.Time.Equal(uniq[len(uniq)-1].Time) {
			continue
		}
		uniq = append(uniq, c)
	}
	return uniq
}

func number(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func binanceInterval(tf string) (string, error) {
	switch s := strings.ToLower(strings.TrimSpace(tf)); s {
	case "1m", "3m", "5m", "15m", "30m",
		"1h", "2h", "4h", "6h", "8h", "12h",
		"1d", "3d", "1w":
		return s, nil
	case "60m":
		return "1h", nil
	case "1mo", "1mth":
		return "1M", nil
	}
	return "", errors.Wrapf(ErrUnsupportedInterval, "%q", tf)
}
