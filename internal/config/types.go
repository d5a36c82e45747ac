package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	Port   string
	Sheets SheetsConfig
	Store  StoreConfig
	League LeagueConfig
}

// SheetsConfig identifies the two backing spreadsheets.
type SheetsConfig struct {
	DBSpreadsheetURL   string
	ViewSpreadsheetURL string
	CredentialsFile    string
}

// StoreConfig tunes the snapshot cache and the flusher.
type StoreConfig struct {
	CacheTTL        time.Duration
	FlushInterval   time.Duration
	ReadsPerMinute  int
	WritesPerMinute int
}

// LeagueConfig holds the league rules enforced by the cross-table helpers.
type LeagueConfig struct {
	CooldownDays int
	InviteTTL    time.Duration
	TeamMin      int
	TeamMax      int
}
