package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"highland-risk/internal/api"
	"highland-risk/internal/config"
	"highland-risk/internal/gather"
	"highland-risk/internal/observability"
	"highland-risk/internal/risk"
	"highland-risk/internal/scheduler"
	"highland-risk/internal/scoring"
	"highland-risk/internal/services"
	"highland-risk/pkg/client"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting Highland Environmental Risk Engine")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Metrics registry and instruments
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Collaborator clients
	clientCfg := client.ClientConfig{
		Timeout:        cfg.Client.Timeout,
		MaxRetries:     cfg.Client.MaxRetries,
		RetryDelay:     cfg.Client.RetryDelay,
		Multiplier:     cfg.Client.Multiplier,
		BreakerTimeout: cfg.Client.BreakerTimeout,
	}
	sources := gather.Sources{
		Precipitation: client.NewClimateClient(cfg.Sources.ClimateURL, clientCfg, cfg.Sources.PollInterval, cfg.Sources.MaxPolls, logger),
		Temperature:   client.NewClimateClient(cfg.Sources.ClimateURL, clientCfg, cfg.Sources.PollInterval, cfg.Sources.MaxPolls, logger),
		Terrain:       client.NewTerrainClient(cfg.Sources.TerrainURL, clientCfg, logger),
		Vegetation:    client.NewVegetationClient(cfg.Sources.VegetationURL, clientCfg, logger),
		Hazards:       client.NewHazardClient(cfg.Sources.HazardsURL, cfg.Sources.HazardRadiusKm, clientCfg, logger),
	}

	// Risk engine
	normals := scoring.RegionNormals{
		DailyPrecipMM:   cfg.Region.DailyPrecipMM,
		MeanTempC:       cfg.Region.MeanTempC,
		NDVI:            cfg.Region.NDVI,
		WetSeasonMonths: scoring.DefaultNormals().WetSeasonMonths,
	}
	clock := clockwork.NewRealClock()
	gatherer := gather.New(sources, cfg.Risk.LookbackYears, metrics, logger)
	cache := services.NewResultCache(cfg.Cache.TTL, cfg.Cache.MaxSize, clock, logger)
	assessor := services.NewAssessor(
		services.AssessorConfig{
			Bounds:         cfg.Region.Bounds,
			PredictionDays: cfg.Risk.PredictionDays,
			GridBatchSize:  cfg.Risk.GridBatchSize,
		},
		gatherer,
		risk.NewFloodComposer(scoring.DefaultFloodThresholds()),
		risk.NewDroughtComposer(scoring.DefaultDroughtThresholds(), normals),
		risk.NewPredictionComposer(scoring.DefaultPredictionThresholds(), normals),
		cache,
		metrics,
		clock,
		logger,
	)

	// Scheduled sweep over watch locations
	sweeper := scheduler.NewSweeper(assessor, cfg.Scheduler.WatchLocations, cfg.Scheduler.CronSpec, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start risk sweep", zap.Error(err))
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: errorHandler,
	})

	handler := api.NewHandler(assessor, cfg.Region.Bounds, logger)
	api.SetupRoutes(app, handler)

	// Metrics listener on its own port
	metricsServer := &http.Server{
		Addr:    cfg.Server.MetricsAddr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		logger.Info("Starting metrics listener", zap.String("address", cfg.Server.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics listener failed", zap.Error(err))
		}
	}()

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sweeper.Stop()
	cache.Stop()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error("Metrics listener shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
