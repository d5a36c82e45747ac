package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	// A helper for optional integer env vars with a default.
	getEnvInt := func(key string, fallback int) int {
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			return fallback
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s must be an integer, got %q.", key, value)
		}
		return n
	}

	getEnvDefault := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		Port: getEnvDefault("PORT", "8080"),
		Sheets: SheetsConfig{
			DBSpreadsheetURL:   getEnv("LEAGUE_DB_SPREADSHEET_URL"),
			ViewSpreadsheetURL: getEnv("LEAGUE_VIEW_SPREADSHEET_URL"),
			CredentialsFile:    getEnvDefault("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Store: StoreConfig{
			CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
			FlushInterval:   time.Duration(getEnvInt("FLUSH_INTERVAL_SECONDS", 30)) * time.Second,
			ReadsPerMinute:  getEnvInt("READS_PER_MINUTE", 60),
			WritesPerMinute: getEnvInt("WRITES_PER_MINUTE", 60),
		},
		League: LeagueConfig{
			CooldownDays: getEnvInt("COOLDOWN_DAYS", 28),
			InviteTTL:    time.Duration(getEnvInt("INVITE_TTL_HOURS", 72)) * time.Hour,
			TeamMin:      getEnvInt("TEAM_MIN", 4),
			TeamMax:      getEnvInt("TEAM_MAX", 7),
		},
	}
	return cfg
}
