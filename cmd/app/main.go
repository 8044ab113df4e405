// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"profile-scout/internal/config"
	"profile-scout/internal/infra/aggregate"
	"profile-scout/internal/infra/export"
	"profile-scout/internal/infra/history"
	"profile-scout/internal/infra/logging"
	"profile-scout/internal/infra/metrics"
	"profile-scout/internal/infra/prober"
	red "profile-scout/internal/infra/redis"
	"profile-scout/internal/infra/registry"
	"profile-scout/internal/infra/sched"
	"profile-scout/internal/infra/web"
	"profile-scout/internal/infra/worker"
	"profile-scout/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, verbose)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()
	limiter := red.NewCooldownLimiter(redisClient, cfg.Limits.Cooldown)

	// ---- Storage & registry ----
	historyStore, err := history.NewFileStore(cfg.Storage.HistoryDir, cfg.Storage.ArtifactsDir, cfg.Storage.MaxRecordsPerOwner, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("history store init failed")
	}
	jobRegistry := registry.NewInMemory()

	// ---- Probe pipeline ----
	sherlock := prober.NewSherlockProber(cfg.Probe, logger)
	aggregator := aggregate.New(logger)

	pool := worker.NewPool(cfg.Probe.MaxConcurrent, cfg.Probe.QueueSize, logger)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases ----
	searchUC := usecase.NewSearchUseCase(jobRegistry, historyStore, limiter, sherlock, aggregator, pool, logger)
	historyUC := usecase.NewHistoryUseCase(historyStore, logger)
	exportUC := usecase.NewExportUseCase(historyStore, export.New(), cfg.Storage.ArtifactsDir, logger)

	// ---- Registry retention (hourly window, swept every minute) ----
	retention := sched.NewRetentionWorker(time.Minute, cfg.Limits.JobRetention, jobRegistry, logger)
	go func() { _ = retention.Run(ctx) }()

	// ---- HTTP ----
	srv := web.NewServer(searchUC, historyUC, exportUC, logger)
	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}

	logger.Info().Msg("shutdown complete")
}
