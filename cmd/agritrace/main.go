package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agritrace-lab/agritrace/internal/config"
	"github.com/agritrace-lab/agritrace/internal/core/storage"
	"github.com/agritrace-lab/agritrace/internal/core/storage/postgres"
	"github.com/agritrace-lab/agritrace/internal/ledger"
	"github.com/agritrace-lab/agritrace/internal/migrations"
	"github.com/agritrace-lab/agritrace/internal/provenance"
	provapi "github.com/agritrace-lab/agritrace/internal/provenance/api"
	"github.com/agritrace-lab/agritrace/internal/server"
)

func main() {
	configPath := flag.String("config", "agritrace.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	ledgerDelay, err := time.ParseDuration(cfg.Ledger.Delay)
	if err != nil {
		slog.Error("Invalid ledger delay", "value", cfg.Ledger.Delay, "error", err)
		os.Exit(1)
	}
	ledgerTimeout, err := time.ParseDuration(cfg.Ledger.Timeout)
	if err != nil {
		slog.Error("Invalid ledger timeout", "value", cfg.Ledger.Timeout, "error", err)
		os.Exit(1)
	}

	// 2. Initialize Storage
	var (
		store     storage.Store
		dbAdapter *postgres.Adapter
	)
	switch cfg.Database.Type {
	case "postgres":
		dbAdapter, err = postgres.NewAdapter(
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
		)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer dbAdapter.Close()

		// 2.1. Run Database Migrations
		if err := migrations.Run(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		if err := dbAdapter.ValidateSchema(); err != nil {
			slog.Error("Schema validation failed", "error", err)
			os.Exit(1)
		}
		store = dbAdapter
	case "memory":
		slog.Warn("Using in-memory store; all state is lost on restart")
		store = storage.NewMemoryStore()
	default:
		slog.Error("Unsupported database type", "type", cfg.Database.Type)
		os.Exit(1)
	}

	// 3. Initialize Ledger (simulated attestation service behind retries)
	led := ledger.NewRetrier(
		ledger.NewSimulator(ledgerDelay, cfg.Ledger.FailureRate),
		cfg.Ledger.MaxRetries,
		ledgerTimeout,
	)

	// 4. Initialize Provenance Core
	profiles, err := provenance.LoadProfiles(cfg.Provenance.ProfilesPath)
	if err != nil {
		slog.Error("Failed to load role profiles", "error", err)
		os.Exit(1)
	}
	core := provenance.NewService(store, led, profiles)

	// 5. Initialize Server
	var db *sql.DB
	if dbAdapter != nil {
		db = dbAdapter.DB()
	}
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), db, cfg.Server.Mode)
	provapi.NewService(core, cfg.Server.MaxBodySizeMB).RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	// Signal handler triggers the shutdown sequence.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("Signal received, shutting down...")
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	// HTTP server blocks until ctx is cancelled.
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
