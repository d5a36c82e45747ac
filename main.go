package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/echomasterleague/league-bot/internal/config"
	"github.com/echomasterleague/league-bot/internal/gate"
	server "github.com/echomasterleague/league-bot/internal/http"
	"github.com/echomasterleague/league-bot/internal/league"
	"github.com/echomasterleague/league-bot/internal/metrics"
	"github.com/echomasterleague/league-bot/internal/sheets"
	"github.com/echomasterleague/league-bot/internal/store"
)

func main() {
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := sheets.NewClient(ctx, cfg.Sheets.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to create sheets client: %s", err)
	}
	db, err := backend.Open(ctx, cfg.Sheets.DBSpreadsheetURL)
	if err != nil {
		log.Fatalf("Failed to open DB spreadsheet: %s", err)
	}
	view, err := backend.Open(ctx, cfg.Sheets.ViewSpreadsheetURL)
	if err != nil {
		log.Fatalf("Failed to open view spreadsheet: %s", err)
	}

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	coreStore := store.New(cfg.Store.CacheTTL, cfg.Store.ReadsPerMinute, cfg.Store.WritesPerMinute, metricsSvc)
	tables := league.NewTables(coreStore)
	if err := tables.Init(ctx, db, view); err != nil {
		log.Fatalf("Failed to initialize tables: %s", err)
	}
	leagueSvc := league.NewService(tables, cfg.League)
	commandGate := gate.New(tables.CommandLocks)

	go coreStore.RunFlusher(ctx, cfg.Store.FlushInterval)

	s := server.NewServer(coreStore, tables, leagueSvc, commandGate, metricsHandler, cfg)

	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

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

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Drain the write queues before the process goes away; an enqueued
		// mutation is a promise to the caller.
		if err := coreStore.Flush(shutdownCtx); err != nil {
			log.Error("Final flush failed", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
