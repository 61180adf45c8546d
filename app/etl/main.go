package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nycTaxiExplorer/business/pipeline"
	psqlRepo "nycTaxiExplorer/internal/repository/postgres"
	redisRepo "nycTaxiExplorer/internal/repository/redis"
	"nycTaxiExplorer/pkg/config"
	"nycTaxiExplorer/pkg/database"
	redisdb "nycTaxiExplorer/pkg/database/redis"
	"nycTaxiExplorer/pkg/logger"
	"nycTaxiExplorer/pkg/metrics"
	"nycTaxiExplorer/pkg/utils"
)

func main() {
	sample := flag.Int("sample", 0, "only load the first N trip rows (0 loads everything)")
	replace := flag.Bool("replace", true, "truncate trips before seeding")
	adminToken := flag.Duration("admin-token", 0, "print an admin JWT valid for the given duration and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	if *adminToken > 0 {
		token, err := utils.GenerateJWT("etl", "ADMIN", *adminToken)
		if err != nil {
			logger.Fatal("Failed to issue admin token", "error", err)
		}
		fmt.Println(token)
		return
	}

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close(db)

	loader := pipeline.NewLoader(cfg.Pipeline.RawDataDir, cfg.Pipeline.TripFile, cfg.Pipeline.ZoneLookupFile)
	seeder := pipeline.NewSeeder(psqlRepo.NewZoneRepository(db), psqlRepo.NewTripRepository(db), cfg.Pipeline.SeedBatchSize)
	runner := pipeline.NewRunner(loader, seeder, psqlRepo.NewPipelineRunRepository(db))

	start := time.Now()
	run, err := runner.Run(ctx, pipeline.RunOptions{Sample: *sample, Replace: *replace})
	if err != nil {
		logger.Error("Pipeline failed", "run_id", run.ID, "error", err)
		database.Close(db)
		os.Exit(1)
	}

	logger.Info("Pipeline finished",
		"run_id", run.ID,
		"original", run.OriginalCount,
		"final", run.FinalCount,
		"removed", run.RemovedCount,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if !cfg.Redis.Enabled() {
		logger.Info("No shared cache configured; POST /api/admin/cache/flush to refresh a running API")
		return
	}

	// API replicas share analytics through redis; stale entries must go
	client, err := redisdb.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Could not reach redis to invalidate analytics cache", "error", err)
		return
	}
	defer redisdb.CloseRedisClient(client)

	if err := redisRepo.NewResultCache(client, cfg.Cache.TTL).Invalidate(ctx); err != nil {
		logger.Warn("Failed to invalidate analytics cache", "error", err)
		return
	}
	logger.Info("Analytics cache invalidated")
}
