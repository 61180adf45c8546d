package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpmetrics "nycTaxiExplorer/app/echo-server/metrics"
	"nycTaxiExplorer/app/echo-server/router"
	"nycTaxiExplorer/business/analytics"
	"nycTaxiExplorer/business/query"
	"nycTaxiExplorer/business/trip"
	"nycTaxiExplorer/business/zone"
	"nycTaxiExplorer/internal/middleware"
	psqlRepo "nycTaxiExplorer/internal/repository/postgres"
	redisRepo "nycTaxiExplorer/internal/repository/redis"
	"nycTaxiExplorer/internal/rest"
	"nycTaxiExplorer/pkg/cache"
	"nycTaxiExplorer/pkg/config"
	"nycTaxiExplorer/pkg/database"
	redisdb "nycTaxiExplorer/pkg/database/redis"
	"nycTaxiExplorer/pkg/logger"
	"nycTaxiExplorer/pkg/metrics"
	"nycTaxiExplorer/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting NYC Taxi Explorer API", "version", cfg.App.Version)

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	metrics.Init()
	httpmetrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close(db)

	logger.Info("Database connected successfully")

	// Shared redis cache when configured, otherwise per-process memory
	var resultCache cache.Cache = cache.NewMemory(cfg.Cache.TTL)
	if cfg.Redis.Enabled() {
		redisClient, err := redisdb.NewRedisClient(context.Background(), cfg)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
		} else {
			defer redisdb.CloseRedisClient(redisClient)
			resultCache = redisRepo.NewResultCache(redisClient, cfg.Cache.TTL)
			logger.Info("Redis cache enabled", "host", cfg.Redis.RedisHost)
		}
	}

	// Init repo
	tripRepo := psqlRepo.NewTripRepository(db)
	zoneRepo := psqlRepo.NewZoneRepository(db)
	aggRepo := psqlRepo.NewAggregateRepository(db)
	runRepo := psqlRepo.NewPipelineRunRepository(db)

	// Init service
	tripService := trip.NewTripService(tripRepo, cfg.Query.DefaultPageSize, cfg.Query.MaxPageSize)
	zoneService := zone.NewZoneService(zoneRepo)
	queryService := query.NewQueryService(aggRepo, tripRepo, cfg.Query.DefaultQueryLimit, cfg.Query.MaxQueryLimit)
	analyticsService := analytics.NewAnalyticsService(aggRepo, zoneRepo, tripRepo, resultCache, analytics.Options{
		DefaultK:          cfg.Analytics.DefaultK,
		ZThreshold:        cfg.Analytics.ZThreshold,
		AnomalySampleSize: cfg.Analytics.AnomalySampleSize,
	})

	// Init handler
	homeHandler := rest.NewHomeHandler(cfg.App.Name, cfg.App.Version)
	tripHandler := rest.NewTripHandler(tripService)
	zoneHandler := rest.NewZoneHandler(zoneService, queryService, tripService)
	statsHandler := rest.NewStatsHandler(queryService)
	analyticsHandler := rest.NewAnalyticsHandler(analyticsService)
	adminHandler := rest.NewPipelineAdminHandler(runRepo, resultCache)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(httpmetrics.Middleware())

	e.GET("/", homeHandler.Index)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api")
	router.SetupTripRoutes(api, tripHandler)
	router.SetupZoneRoutes(api, zoneHandler)
	router.SetupStatsRoutes(api, statsHandler)
	router.SetupAnalyticsRoutes(api, analyticsHandler)
	router.SetupAdminRoutes(api, adminHandler, middleware.AuthMiddleware(), middleware.AdminOnly())

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
