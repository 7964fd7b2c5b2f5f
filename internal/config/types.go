package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	// StoreBackend is "sqlite" (SQLite or Turso) or "bolt".
	StoreBackend string
	BoltPath     string
	Turso        TursoConfig
	Slack        SlackConfig
	ProjectID    string
	League       LeagueConfig
	// DigestInterval is how often the leaderboard is posted to Slack. Zero disables it.
	DigestInterval time.Duration
	LogLevel       string
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// LeagueConfig holds the raw values of the rating and period policies.
type LeagueConfig struct {
	FormulaStrategy string
	ExceptionRule   bool
	CommitTiming    string
	Navigation      string
	AutoPair        bool
}
