package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/cricket-ladder/internal/boltstore"
	"github.com/mauv0809/cricket-ladder/internal/config"
	"github.com/mauv0809/cricket-ladder/internal/database"
	"github.com/mauv0809/cricket-ladder/internal/digest"
	server "github.com/mauv0809/cricket-ladder/internal/http"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/notifier/slack"
	"github.com/mauv0809/cricket-ladder/internal/processor"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
)

// openStore builds the configured persistence backend.
func openStore(cfg config.Config) (league.Store, func(), error) {
	if cfg.StoreBackend == "bolt" {
		store, err := boltstore.New(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error("Failed to close bolt store", "error", err)
			}
		}, nil
	}
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	if err != nil {
		return nil, nil, err
	}
	return league.NewStore(db), dbTeardown, nil
}

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown log level, keeping default", "level", cfg.LogLevel)
	}

	opts, err := cfg.LeagueOptions()
	if err != nil {
		log.Fatalf("Invalid league configuration: %s", err)
	}

	store, storeTeardown, err := openStore(cfg)
	storeInitDuration := time.Since(startTime)
	log.Info("Store initialization time recorded", "backend", cfg.StoreBackend, "duration_ms", storeInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize store: %s", err)
	}
	defer func() {
		log.Info("Closing store")
		storeTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	dryRun := !cfg.SlackEnabled()
	if dryRun {
		log.Warn("Slack is not configured, notifications run in dry-run mode")
	}

	// Without a GCP project events are handed straight to the processor.
	var proc *processor.Processor
	var ps pubsub.PubSubClient
	if cfg.ProjectID != "" {
		ps = pubsub.New(cfg.ProjectID)
	} else {
		ps = pubsub.NewInProcess(func(topic pubsub.EventType, data []byte) error {
			go func() {
				if err := proc.HandleEvent(topic, data, dryRun); err != nil {
					log.Error("Failed to handle event", "topic", topic, "error", err)
				}
			}()
			return nil
		})
	}
	defer pubsub.Close(ps)

	engine := league.New(store, metricsSvc, ps, opts)
	proc = processor.New(engine, notifier, metricsSvc, ps)
	if err := engine.Open(context.Background()); err != nil {
		log.Fatalf("Failed to open league: %s", err)
	}

	if cfg.DigestInterval > 0 {
		sched, err := digest.Start(cfg.DigestInterval, proc, dryRun)
		if err != nil {
			log.Fatalf("Failed to start leaderboard digest: %s", err)
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				log.Error("Scheduler shutdown failed", "error", err)
			}
		}()
	}

	s := server.NewServer(
		engine,
		metricsSvc,
		metricsHandler,
		cfg,
		notifier,
		proc,
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

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
