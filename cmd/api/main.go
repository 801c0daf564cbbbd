package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/mycrew-backend/api/controllers"
	"github.com/angelmondragon/mycrew-backend/api/routes"
	"github.com/angelmondragon/mycrew-backend/internal/contacts"
	"github.com/angelmondragon/mycrew-backend/internal/cron"
	"github.com/angelmondragon/mycrew-backend/internal/exports"
	"github.com/angelmondragon/mycrew-backend/internal/imports"
	"github.com/angelmondragon/mycrew-backend/internal/integrity"
	"github.com/angelmondragon/mycrew-backend/internal/profile"
	"github.com/angelmondragon/mycrew-backend/internal/transfer"
	"github.com/angelmondragon/mycrew-backend/pkg/config"
	"github.com/angelmondragon/mycrew-backend/pkg/db"
	"github.com/angelmondragon/mycrew-backend/pkg/instance"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
	"github.com/angelmondragon/mycrew-backend/pkg/metrics"
	"github.com/angelmondragon/mycrew-backend/pkg/migrate"
	"github.com/angelmondragon/mycrew-backend/pkg/redis"
	"github.com/angelmondragon/mycrew-backend/pkg/storage"
	"github.com/angelmondragon/mycrew-backend/pkg/storage/gcs"
	"github.com/angelmondragon/mycrew-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Instance:    instance.ID(),
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(context.Background(), "failed to open sql handle", err)
		os.Exit(1)
	}
	if err := migrate.AutoApply(context.Background(), cfg, logg, sqlDB, migrate.Embedded); err != nil {
		logg.Error(context.Background(), "failed to apply migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	checks := map[string]controllers.Pinger{"db": dbClient, "redis": redisClient}
	sink, err := newSink(context.Background(), cfg, logg, checks)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap export sink", err)
		os.Exit(1)
	}

	transferMetrics := metrics.NewTransferMetrics(prometheus.DefaultRegisterer)
	tokens := transfer.Tokens{Yes: cfg.Export.CSVYesToken, No: cfg.Export.CSVNoToken}
	repo := contacts.NewRepository(dbClient.DB())

	contactService, err := contacts.NewService(contacts.ServiceParams{Repo: repo, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create contacts service", err)
		os.Exit(1)
	}

	exportService, err := exports.NewService(exports.ServiceParams{
		Sink:    sink,
		Tokens:  tokens,
		Metrics: transferMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	pendingStore, err := imports.NewRedisPendingStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create pending import store", err)
		os.Exit(1)
	}
	importService, err := imports.NewService(imports.ServiceParams{
		Repo:       repo,
		Pending:    pendingStore,
		Tokens:     tokens,
		PendingTTL: cfg.Import.PendingTTL,
		Metrics:    transferMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create import service", err)
		os.Exit(1)
	}

	profileService, err := profile.NewService(profile.ServiceParams{
		Repo:    profile.NewRepository(dbClient.DB()),
		Exports: exportService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	sweeper, err := integrity.NewSweeper(integrity.SweeperParams{Repo: repo, Metrics: transferMetrics, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create integrity sweeper", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sweep.OnBoot {
		bootSweep(ctx, cfg, logg, redisClient, sweeper)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"sink": cfg.Export.Sink,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			Checks:      checks,
			Gatherer:    prometheus.DefaultGatherer,
			Idempotency: redisClient,
			Contacts:    contactService,
			Exports:     exportService,
			Imports:     importService,
			Profile:     profileService,
			Sweeper:     sweeper,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
		logg.Info(shutdownCtx, "api server stopped")
	}
}

// newSink picks where csv and json exports are written.
func newSink(ctx context.Context, cfg *config.Config, logg *logger.Logger, checks map[string]controllers.Pinger) (storage.Sink, error) {
	if cfg.Export.Sink == config.SinkGCS {
		client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return nil, err
		}
		checks["gcs"] = client
		return client, nil
	}
	return local.NewSink(cfg.Export.Dir, logg)
}

// bootSweep runs the integrity pass once before serving, unless another
// instance already holds the sweep lock.
func bootSweep(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, sweeper *integrity.Sweeper) {
	lock, err := cron.NewRedisLock(redisClient, cron.IntegritySweepJobName, cfg.Sweep.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create sweep lock", err)
		return
	}
	runner, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(cron.NewIntegritySweepJob(sweeper, logg)),
		Lock:     lock,
	})
	if err != nil {
		logg.Error(ctx, "failed to create boot sweep runner", err)
		return
	}
	if err := runner.RunCycle(ctx); err != nil {
		logg.Error(ctx, "boot integrity sweep failed", err)
	}
}
