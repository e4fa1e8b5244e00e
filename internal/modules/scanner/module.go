package scanner

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"signal_bot/internal/detector"
	"signal_bot/internal/modules/config"
	healthsvc "signal_bot/internal/modules/health/service"
	marketsvc "signal_bot/internal/modules/market/service"
	"signal_bot/internal/modules/scanner/service"
	telegram "signal_bot/internal/modules/telegram_bot/service"
)

func NewEngine(cfg *config.Config, log *zap.Logger) (*detector.Engine, error) {
	return detector.New(cfg.Detector, detector.WithLogger(log.Named("detector")))
}

func NewScanner(
	cfg *config.Config,
	market *marketsvc.Client,
	engine *detector.Engine,
	notifier telegram.Notifier,
	state *healthsvc.State,
	metrics *healthsvc.Metrics,
	log *zap.Logger,
) *service.Scanner {
	return service.NewScanner(service.Config{
		Symbols:      cfg.Scanner.Symbols,
		Interval:     cfg.Market.Interval,
		Every:        cfg.Scanner.Every,
		Concurrency:  cfg.Scanner.Concurrency,
		FreshCandles: cfg.Scanner.FreshCandles,
		Validity:     cfg.Detector.ValidityCandles,
		DedupeTTL:    cfg.Scanner.DedupeTTL,
	}, market, engine, notifier, state, metrics, log)
}

func Run(lc fx.Lifecycle, s *service.Scanner) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				s.Run(runCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("scanner",
		fx.Provide(
			NewEngine,
			NewScanner,
		),
		fx.Invoke(Run),
	)
}
