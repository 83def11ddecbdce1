// Package main is the entry point for the finbook personal finance tracker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adeshpande/finbook/internal/bin"
	"github.com/adeshpande/finbook/internal/config"
	"github.com/adeshpande/finbook/internal/currency"
	"github.com/adeshpande/finbook/internal/database"
	"github.com/adeshpande/finbook/internal/logger"
	"github.com/adeshpande/finbook/internal/server"
	syncadapter "github.com/adeshpande/finbook/internal/sync"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("finbook %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)

	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() { _ = db.Close() }()

	if err := database.RunMigrations(ctx, db); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	settings := currency.NewSettingsService(db)
	if err := settings.Reload(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load currency settings")
	}

	binService := bin.NewService(db, cfg.MaxAttachmentBytes())

	logger.Log.Info().
		Str("db", cfg.DatabasePath).
		Str("currency", settings.Get().Currency).
		Msg("Database initialized successfully")

	if cfg.SyncEnabled {
		syncer := syncadapter.NewSyncer(
			syncadapter.NewClient(cfg.SyncURL, 10*time.Second),
			db,
			cfg.SyncInterval,
		)
		go syncer.Start(ctx)
	}

	api := server.New(db, settings, binService)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Log.Info().Str("addr", cfg.ListenAddr).Msg("Listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal().Err(err).Msg("Server failed")
	}
}
