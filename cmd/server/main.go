package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/geoworld/geoexplorer/internal/config"
	"github.com/geoworld/geoexplorer/internal/database"
	"github.com/geoworld/geoexplorer/internal/game"
	"github.com/geoworld/geoexplorer/internal/leaderboard"
	"github.com/geoworld/geoexplorer/internal/locations"
	"github.com/geoworld/geoexplorer/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	store, err := leaderboard.NewSQLiteStore(ctx, db)
	if err != nil {
		return fmt.Errorf("initializing leaderboard store: %w", err)
	}
	board := leaderboard.New(ctx, store, logger)

	// --- Location source ---
	var finder game.Finder
	if cfg.StreetViewKey != "" {
		finder = locations.NewStreetViewFinder(cfg.StreetViewKey, cfg.StreetViewURL)
		logger.Info("using street view locations")
	} else {
		finder = locations.NewStaticFinder()
		logger.Info("no street view key set, using built-in locations")
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, db, board, finder, cfg.SPADir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
