package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/rating"
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

	cfg, err := fromEnv(getEnv, os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: Invalid configuration: %s", err)
	}
	return cfg
}

// fromEnv builds a Config from lookup functions so it can be exercised without
// touching the process environment.
func fromEnv(required func(string) string, lookup func(string) (string, bool)) (Config, error) {
	optional := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}
	boolean := func(key string, fallback bool) (bool, error) {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			return fallback, nil
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}

	cfg := Config{
		DBName:        required("DB_NAME"),
		Port:          required("PORT"),
		MigrationsDir: optional("MIGRATIONS_DIR", "./migrations"),
		StoreBackend:  optional("STORE_BACKEND", "sqlite"),
		BoltPath:      optional("BOLT_PATH", "ladder.bolt"),
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL", ""),
			AuthToken:  optional("TURSO_AUTH_TOKEN", ""),
		},
		Slack: SlackConfig{
			Token:         optional("SLACK_BOT_TOKEN", ""),
			ChannelID:     optional("SLACK_CHANNEL_ID", ""),
			SigningSecret: optional("SLACK_SIGNING_SECRET", ""),
		},
		ProjectID: optional("GCP_PROJECT", ""),
		League: LeagueConfig{
			FormulaStrategy: optional("FORMULA_STRATEGY", string(rating.DayWeighted)),
			CommitTiming:    optional("COMMIT_TIMING", string(league.CommitBatch)),
			Navigation:      optional("NAVIGATION", string(league.NavigationStrict)),
		},
		LogLevel: optional("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.League.ExceptionRule, err = boolean("EXCEPTION_RULE", true); err != nil {
		return Config{}, err
	}
	if cfg.League.AutoPair, err = boolean("AUTO_PAIR", true); err != nil {
		return Config{}, err
	}
	if cfg.DigestInterval, err = time.ParseDuration(optional("LEADERBOARD_DIGEST_INTERVAL", "0s")); err != nil {
		return Config{}, fmt.Errorf("LEADERBOARD_DIGEST_INTERVAL: %w", err)
	}
	if cfg.StoreBackend != "sqlite" && cfg.StoreBackend != "bolt" {
		return Config{}, fmt.Errorf("STORE_BACKEND: unknown backend %q", cfg.StoreBackend)
	}
	if _, err := cfg.LeagueOptions(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LeagueOptions converts the raw league settings into engine options.
func (c Config) LeagueOptions() (league.Options, error) {
	strategy, err := rating.ParseStrategy(c.League.FormulaStrategy)
	if err != nil {
		return league.Options{}, fmt.Errorf("FORMULA_STRATEGY: %w", err)
	}
	commit, err := league.ParseCommitTiming(c.League.CommitTiming)
	if err != nil {
		return league.Options{}, fmt.Errorf("COMMIT_TIMING: %w", err)
	}
	nav, err := league.ParseNavigation(c.League.Navigation)
	if err != nil {
		return league.Options{}, fmt.Errorf("NAVIGATION: %w", err)
	}
	return league.Options{
		Policy:     rating.Policy{Strategy: strategy, ExceptionRule: c.League.ExceptionRule},
		Commit:     commit,
		Navigation: nav,
		AutoPair:   c.League.AutoPair,
	}, nil
}

// SlackEnabled reports whether enough Slack settings are present to post messages.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}
