package main

import (
	"context"
	"log"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/market"
	"signal_bot/internal/modules/scanner"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

const serviceName = "signal_bot"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(serviceName)
	return logger.Init(cfg.LogLevel)
}

func newTracer(lc fx.Lifecycle, cfg *config.Config) (opentracing.Tracer, error) {
	tracing.SetServiceName(serviceName)
	tracer, closer, err := tracing.InitTracer(cfg.Tracing)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closer()
			return nil
		},
	})
	return tracer, nil
}

func main() {
	app := fx.New(
		config.Module(),
		fx.Provide(
			newLogger,
			newTracer,
		),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		// трейсер нужен до старта сканера, он глобальный
		fx.Invoke(func(opentracing.Tracer) {}),
		market.Module(),
		health.Module(),
		telegram.Module(),
		scanner.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
