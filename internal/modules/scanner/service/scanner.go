package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"signal_bot/internal/detector"
	"signal_bot/internal/models"
	healthsvc "signal_bot/internal/modules/health/service"
	telegram "signal_bot/internal/modules/telegram_bot/service"
	"signal_bot/pkg/tracing"
)

// Fetcher отдаёт закрытые свечи по символу.
type Fetcher interface {
	Series(ctx context.Context, symbol string) (*models.CandleSeries, error)
}

// Analyzer: детектор сигналов, в проде *detector.Engine.
type Analyzer interface {
	Analyze(s *models.CandleSeries) detector.Report
}

type Config struct {
	Symbols      []string
	Interval     string
	Every        time.Duration
	Concurrency  int
	FreshCandles int
	Validity     int // окно форвард-оценки детектора
	DedupeTTL    time.Duration
}

// Scanner раз в Every прогоняет детектор по всем символам и шлёт новые сигналы.
type Scanner struct {
	cfg      Config
	fetcher  Fetcher
	analyzer Analyzer
	notifier telegram.Notifier
	state    *healthsvc.State
	metrics  *healthsvc.Metrics
	log      *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time // symbol|kind|unix -> когда отправлен
}

func NewScanner(
	cfg Config,
	fetcher Fetcher,
	analyzer Analyzer,
	notifier telegram.Notifier,
	state *healthsvc.State,
	metrics *healthsvc.Metrics,
	log *zap.Logger,
) *Scanner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		cfg:      cfg,
		fetcher:  fetcher,
		analyzer: analyzer,
		notifier: notifier,
		state:    state,
		metrics:  metrics,
		log:      log.Named("scanner"),
		now:      time.Now,
		sent:     make(map[string]time.Time),
	}
}

// Run шлёт стартовое сообщение, сразу сканирует и дальше работает по тикеру до отмены ctx.
func (s *Scanner) Run(ctx context.Context) {
	hello := telegram.NewMessage("🚀 Signal bot started", []string{
		fmt.Sprintf("%s every %s", s.cfg.Interval, s.cfg.Every),
		strings.Join(s.cfg.Symbols, ", "),
	})
	if err := s.notifier.Notify(ctx, hello); err != nil {
		s.log.Warn("start message failed", zap.Error(err))
	}

	s.ScanAll(ctx)

	ticker := time.NewTicker(s.cfg.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ScanAll(ctx)
		}
	}
}

// ScanAll: один проход по всем символам. Ошибка символа не останавливает остальные.
func (s *Scanner) ScanAll(ctx context.Context) int {
	var (
		g     errgroup.Group
		mu    sync.Mutex
		total int
	)
	g.SetLimit(s.cfg.Concurrency)

	for _, symbol := range s.cfg.Symbols {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			n, err := s.ScanSymbol(ctx, symbol)
			if err != nil {
				s.log.Error("scan failed", zap.String("symbol", symbol), zap.Error(err))
				return nil
			}
			mu.Lock()
			total += n
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.prune()
	if s.state != nil {
		s.state.MarkScan(s.now(), total)
		s.state.SetReady(true)
	}
	s.log.Info("scan finished", zap.Int("symbols", len(s.cfg.Symbols)), zap.Int("sent", total))
	return total
}

// ScanSymbol: свечи → детектор → свежие и ещё не отправленные → notifier.
// Возвращает число отправленных сигналов.
func (s *Scanner) ScanSymbol(ctx context.Context, symbol string) (sent int, err error) {
	span, ctx := tracing.StartSpan(ctx, "scanner.symbol", opentracing.Tags{"symbol": symbol})
	started := time.Now()
	defer func() {
		span.SetTag("signals.sent", sent)
		if err != nil {
			ext.Error.Set(span, true)
			span.LogKV("error", err.Error())
		}
		span.Finish()
		if s.metrics != nil {
			s.metrics.ObserveScan(time.Since(started))
		}
	}()

	series, err := s.fetcher.Series(ctx, symbol)
	if err != nil {
		if s.metrics != nil {
			s.metrics.FetchErrors.WithLabelValues(symbol).Inc()
		}
		return 0, errors.Wrap(err, "fetch candles")
	}

	rep := s.analyzer.Analyze(series)
	s.recordDiagnostics(rep.Diagnostics)

	n := series.Len()
	for _, sig := range rep.Signals {
		if !s.fresh(sig, n) {
			continue
		}
		key := dedupeKey(symbol, sig)
		if s.seen(key) {
			continue
		}

		if err := s.notifier.Notify(ctx, telegram.FormatSignal(symbol, s.cfg.Interval, sig)); err != nil {
			if s.metrics != nil {
				s.metrics.NotifyErrors.Inc()
			}
			// не помечаем: попробуем на следующем скане
			s.log.Error("notify failed", zap.String("symbol", symbol), zap.Stringer("signal", sig), zap.Error(err))
			continue
		}
		s.markSent(key)
		if s.metrics != nil {
			s.metrics.Signals.WithLabelValues(string(sig.Kind)).Inc()
		}
		sent++
	}

	s.log.Debug("symbol scanned",
		zap.String("symbol", symbol),
		zap.Int("candles", n),
		zap.Int("signals", len(rep.Signals)),
		zap.Int("sent", sent),
	)
	return sent, nil
}

func (s *Scanner) recordDiagnostics(d detector.Diagnostics) {
	if s.metrics == nil {
		return
	}
	for _, name := range detector.Detectors {
		if st := d.For(name); st.Errors > 0 {
			s.metrics.DetectorErrors.WithLabelValues(string(name)).Add(float64(st.Errors))
		}
	}
}

// fresh: сигнал не старше FreshCandles от последней свечи, которую ещё можно оценить.
func (s *Scanner) fresh(sig models.Signal, n int) bool {
	if s.cfg.FreshCandles <= 0 {
		return true
	}
	return sig.Index >= n-s.cfg.Validity-s.cfg.FreshCandles
}

func dedupeKey(symbol string, sig models.Signal) string {
	return fmt.Sprintf("%s|%s|%d", symbol, sig.Kind, sig.Time.Unix())
}

func (s *Scanner) seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.sent[key]
	return ok && s.now().Sub(at) < s.cfg.DedupeTTL
}

func (s *Scanner) markSent(key string) {
	s.mu.Lock()
	s.sent[key] = s.now()
	s.mu.Unlock()
}

// prune выкидывает ключи старше DedupeTTL.
func (s *Scanner) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, at := range s.sent {
		if now.Sub(at) >= s.cfg.DedupeTTL {
			delete(s.sent, k)
		}
	}
}
