package main

import (
	"github.com/Cab6701/WaterService/internal/clock"
	"github.com/Cab6701/WaterService/internal/config"
	"github.com/Cab6701/WaterService/internal/logger"
	"github.com/Cab6701/WaterService/internal/observability/metrics"
	"github.com/Cab6701/WaterService/internal/server"
	"github.com/Cab6701/WaterService/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		metrics.Module,
		db.Module,
		server.Module,
	)
	app.Run()
}
