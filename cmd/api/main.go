package main

import (
	"context"
	"log"
	"time"

	"package-tracker/internal/core/cache"
	"package-tracker/internal/core/config"
	"package-tracker/internal/core/logger"
	"package-tracker/internal/core/proxy"
	"package-tracker/internal/core/server"
	adapter "package-tracker/internal/features/tracking/adapters"
	"package-tracker/internal/features/tracking/handler"
	"package-tracker/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// @title Package Tracker Aggregator API
// @version 1.0
// @description Universal package tracking API supporting USPS, UPS, FedEx, DHL, Amazon, OnTrac and LaserShip.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	resultCache := newResultCache(cfg, l)
	defer resultCache.Close()

	proxySettings := proxy.Settings{
		Enabled:  cfg.Proxy.Enabled,
		Hostname: cfg.Proxy.Hostname,
		Port:     cfg.Proxy.Port,
		Username: cfg.Proxy.Username,
		Password: cfg.Proxy.Password,
	}

	// Registration order decides detection tie-breaks for overlapping patterns.
	registry := service.NewRegistry(
		adapter.NewUSPSAdapter(cfg.USPS),
		adapter.NewUPSAdapter(cfg.UPS),
		adapter.NewFedExAdapter(cfg.FedEx),
		adapter.NewDHLAdapter(cfg.DHL),
		adapter.NewAmazonAdapter(cfg.Amazon, proxySettings),
		adapter.NewOnTracAdapter(cfg.OnTrac),
		adapter.NewLaserShipAdapter(),
	)

	tracker := service.NewTrackerService(registry, resultCache, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	trackingHdl := handler.NewTrackingHandler(tracker)

	srv := server.New(cfg)

	srv.App.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Package Tracker Aggregator API",
			"version": "1.0.0",
			"docs":    "/swagger/index.html",
			"endpoints": fiber.Map{
				"track":    "/api/track/{tracking_number}",
				"batch":    "/api/track/batch",
				"detect":   "/api/detect/{tracking_number}",
				"carriers": "/api/carriers",
			},
		})
	})
	srv.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	srv.App.Post("/api/track/batch", trackingHdl.TrackBatch)
	srv.App.Get("/api/track/:number", trackingHdl.TrackPackage)
	srv.App.Get("/api/detect/:number", trackingHdl.DetectCarrier)
	srv.App.Get("/api/carriers", trackingHdl.ListCarriers)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}

// newResultCache picks the cache backend: Redis when configured, bounded
// in-memory otherwise.
func newResultCache(cfg *config.AppConfig, l *zap.Logger) cache.Cache {
	if cfg.Cache.RedisURL == "" {
		l.Info("Using in-memory result cache", zap.Int("max_entries", cfg.Cache.MaxEntries))
		return cache.NewMemoryAdapter(cfg.Cache.MaxEntries)
	}

	redisCache, err := cache.NewRedisAdapter(cfg.Cache.RedisURL)
	if err != nil {
		l.Fatal("Failed to create Redis cache", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis is unreachable", zap.Error(err))
	}

	l.Info("Using Redis result cache")
	return redisCache
}
