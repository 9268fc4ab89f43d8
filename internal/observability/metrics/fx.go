package metrics

import (
	"github.com/Cab6701/WaterService/internal/config"
	"go.uber.org/fx"
)

func newConfig(cfg config.Config) Config {
	return Config{
		Enabled:          cfg.Metrics.Enabled,
		ExporterEndpoint: cfg.Metrics.ExporterEndpoint,
		ExporterProtocol: cfg.Metrics.ExporterProtocol,
		ServiceName:      cfg.AppName,
	}
}

var Module = fx.Module("observability.metrics",
	fx.Provide(
		newConfig,
		NewProvider,
		New,
		NewHTTPMetrics,
	),
)
