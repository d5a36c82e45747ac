package main

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/echomasterleague/league-bot/internal/league"
	"github.com/echomasterleague/league-bot/internal/metrics"
	"github.com/echomasterleague/league-bot/internal/sheets"
	"github.com/echomasterleague/league-bot/internal/store"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"LEAGUE_DB_SPREADSHEET_URL", "LEAGUE_VIEW_SPREADSHEET_URL"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	config["GOOGLE_APPLICATION_CREDENTIALS"] = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	return config
}

// The seeder creates every league worksheet that is missing from the two
// spreadsheets and writes its header row. Safe to run repeatedly.
func main() {
	log.Info("Starting worksheet seeder...")
	cfg := loadConfig()
	ctx := context.Background()

	backend, err := sheets.NewClient(ctx, cfg["GOOGLE_APPLICATION_CREDENTIALS"])
	if err != nil {
		log.Fatalf("Failed to create sheets client: %s", err)
	}
	db, err := backend.Open(ctx, cfg["LEAGUE_DB_SPREADSHEET_URL"])
	if err != nil {
		log.Fatalf("Failed to open DB spreadsheet: %s", err)
	}
	view, err := backend.Open(ctx, cfg["LEAGUE_VIEW_SPREADSHEET_URL"])
	if err != nil {
		log.Fatalf("Failed to open view spreadsheet: %s", err)
	}

	// A generous rate ceiling is fine for a one-shot tool.
	coreStore := store.New(5*time.Minute, 60, 60, metrics.NewMock())
	tables := league.NewTables(coreStore)
	if err := tables.Init(ctx, db, view); err != nil {
		log.Fatalf("Failed to initialize tables: %s", err)
	}

	log.Info("All worksheets present", "cached", len(coreStore.CacheTimes()))
}
