// Package server exposes the billing core over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/Cab6701/WaterService/internal/clock"
	"github.com/Cab6701/WaterService/internal/config"
	"github.com/Cab6701/WaterService/internal/customer"
	customerdomain "github.com/Cab6701/WaterService/internal/customer/domain"
	"github.com/Cab6701/WaterService/internal/customer/registry"
	obslogger "github.com/Cab6701/WaterService/internal/observability/logger"
	obsmetrics "github.com/Cab6701/WaterService/internal/observability/metrics"
	"github.com/Cab6701/WaterService/internal/seed"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config      config.Config
	Log         *zap.Logger
	CustomerSvc customerdomain.Service
}

type Server struct {
	cfg         config.Config
	log         *zap.Logger
	customerSvc customerdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:         p.Config,
		log:         p.Log.Named("server"),
		customerSvc: p.CustomerSvc,
	}
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           cfg.Environment != "production",
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RegisterRoutes mounts the customer API.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")

	v1.GET("/customers", s.ListCustomers)
	v1.POST("/customers", s.CreateCustomer)
	v1.POST("/customers/bulk-status", s.BulkSetStatus)
	v1.POST("/customers/export", s.ExportCustomers)
	v1.GET("/customers/:id", s.GetCustomerByID)
	v1.PUT("/customers/:id", s.UpdateCustomer)
	v1.DELETE("/customers/:id", s.DeleteCustomer)
	v1.PUT("/customers/:id/readings", s.UpsertReading)
	v1.DELETE("/customers/:id/readings/:readingId", s.DeleteReading)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	customer.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server, r *gin.Engine) {
		s.RegisterRoutes(r)
	}),
	// Seeding registers after customer.Module so the snapshot load runs first.
	fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, reg *registry.Registry, clk clock.Clock, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return seed.EnsureSampleCustomers(ctx, cfg, reg, clk, log)
			},
		})
	}),
	fx.Invoke(run),
)
