package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/storm-standings/internal/config"
	"github.com/mauv0809/storm-standings/internal/database"
	server "github.com/mauv0809/storm-standings/internal/http"
	"github.com/mauv0809/storm-standings/internal/metrics"
	notifierslack "github.com/mauv0809/storm-standings/internal/notifier/slack"
	"github.com/mauv0809/storm-standings/internal/processor"
	"github.com/mauv0809/storm-standings/internal/pubsub"
	"github.com/mauv0809/storm-standings/internal/ranking"
	"github.com/mauv0809/storm-standings/internal/roles"
	"github.com/mauv0809/storm-standings/internal/scheduler"
	"github.com/mauv0809/storm-standings/internal/slack"
	"github.com/mauv0809/storm-standings/internal/stats"
	"github.com/mauv0809/storm-standings/internal/storage"
	"github.com/mauv0809/storm-standings/internal/tracker"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	var backend storage.Backend
	switch cfg.Store.Backend {
	case config.BackendFile:
		log.Info("Using file store", "path", cfg.Store.Path, "backup", cfg.Store.BackupPath)
		backend = storage.NewFileBackend(cfg.Store.Path, cfg.Store.BackupPath)
	default:
		backend = storage.NewSQLBackend(db)
	}
	store := storage.New(backend)
	root := store.Load(ctx)

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	counters := metrics.New(db)
	metricsSvc.SetRegisteredPlayers(len(root.Members()))

	directory := slack.NewDirectory(cfg.Slack.Token)
	notifier := notifierslack.NewNotifier(cfg.Slack.Token, cfg.LookbackLimit, metricsSvc)
	synchronizer := roles.New(directory, cfg.Roles, ranking.DefaultTierSizes, metricsSvc)

	var statsClient stats.Client
	if cfg.Stats.APIKey != "" {
		statsClient = stats.NewClient(cfg.Stats.APIKey, cfg.Stats.BaseURL, cfg.Stats.RequestsPerSecond)
	} else {
		log.Warn("STATS_API_KEY not set, player stats will not be refreshed")
	}
	var pubsubClient pubsub.PubSubClient
	if cfg.ProjectID != "" {
		pubsubClient, err = pubsub.New(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		defer pubsubClient.Close()
	}

	svc := tracker.New(store, directory, statsClient, pubsubClient, metricsSvc, counters, cfg.AdminUserIDs)
	proc := processor.New(store, directory, notifier, synchronizer, metricsSvc, counters)

	s := server.NewServer(store, svc, proc, notifier, counters, metricsHandler, cfg, pubsubClient)

	loop := scheduler.New(cfg.Schedule.Interval,
		func(ctx context.Context) { svc.RefreshStats(ctx) },
		func(ctx context.Context) { proc.RunCycle(ctx, cfg.DryRun) },
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port, "update_interval", cfg.Schedule.Interval)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", "error", err)
		}
		stop()
	case <-ctx.Done():
		log.Info("Shutdown signal received")

		// Create a context with a timeout for the shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	// Let an in-flight cycle finish before the store goes away.
	wg.Wait()
	log.Info("Server process shutting down")
}
