package market

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/market/service"
)

func NewClient(cfg *config.Config, log *zap.Logger) *service.Client {
	return service.NewClient(service.Config{
		BaseURL:  cfg.Market.BaseURL,
		Interval: cfg.Market.Interval,
		Limit:    cfg.Market.Limit,
		Timeout:  cfg.Market.Timeout,
		RPS:      cfg.Market.RPS,
		Burst:    cfg.Market.Burst,
	}, log)
}

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			NewClient,
		),
	)
}
