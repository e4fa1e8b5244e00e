package telegram

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"signal_bot/internal/modules/config"
	healthsvc "signal_bot/internal/modules/health/service"
	"signal_bot/internal/modules/telegram_bot/service"
)

// NewNotifier: dry_run — в лог, иначе Telegram.
func NewNotifier(lc fx.Lifecycle, cfg *config.Config, state *healthsvc.State, log *zap.Logger) (service.Notifier, error) {
	if cfg.Telegram.DryRun {
		log.Info("telegram dry-run: signals go to log")
		return service.NewStdout(log), nil
	}

	t, err := service.NewTelegram(service.Config{
		Token:      cfg.Telegram.Token,
		ChatID:     cfg.Telegram.ChatID,
		MaxRetries: cfg.Telegram.MaxRetries,
		RetryDelay: cfg.Telegram.RetryDelay,
	}, state, log)
	if err != nil {
		return nil, err
	}

	// OnStart-контекст живёт только на время старта, поэтому для long-polling свой.
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			t.Start(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			t.Stop()
			return nil
		},
	})
	return t, nil
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			NewNotifier,
		),
	)
}
