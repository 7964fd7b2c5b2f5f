package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/cricket-ladder/internal/database"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/rating"
)

const seedPeriods = 3

var demoTeams = []struct {
	name   string
	points float64
}{
	{"Strikers", 1000},
	{"Chargers", 950},
	{"Royals", 900},
	{"Titans", 850},
	{"Warriors", 800},
	{"Knights", 750},
}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":          "ladder.db",
		"MIGRATIONS_DIR":   "migrations",
		"FORMULA_STRATEGY": string(rating.DayWeighted),
	}
	for _, key := range []string{"DB_NAME", "MIGRATIONS_DIR", "FORMULA_STRATEGY", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting league seeder...")
	cfg := loadConfig()

	strategy, err := rating.ParseStrategy(cfg["FORMULA_STRATEGY"])
	if err != nil {
		log.Fatalf("Invalid formula strategy: %s", err)
	}

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	opts := league.DefaultOptions()
	opts.Policy = rating.Policy{Strategy: strategy, ExceptionRule: true}
	engine := league.New(league.NewStore(db), metrics.NewService(), nil, opts)

	ctx := context.Background()
	if err := engine.Open(ctx); err != nil {
		log.Fatalf("Failed to open league: %s", err)
	}

	for _, t := range demoTeams {
		team, err := engine.AddTeam(ctx, t.name, t.points)
		if err != nil {
			log.Warn("Skipping team", "name", t.name, "error", err)
			continue
		}
		log.Info("Added team", "id", team.ID, "name", team.Name, "points", team.CurrentPoints)
	}

	start := time.Now().AddDate(0, 0, -seedPeriods)
	for i := range seedPeriods {
		if err := playPeriod(ctx, engine, start.AddDate(0, 0, i)); err != nil {
			log.Fatalf("Failed to seed period: %s", err)
		}
	}

	for _, st := range engine.Leaderboard() {
		log.Info("Standing", "rank", st.Rank, "name", st.Team.Name, "points", st.Team.CurrentPoints)
	}
	log.Info("Seeding finished.", "history", len(engine.History()))
}

// playPeriod picks a random winner for every open matchup and closes the period.
func playPeriod(ctx context.Context, engine *league.Engine, day time.Time) error {
	if _, err := engine.AutoSchedule(ctx); err != nil {
		return fmt.Errorf("failed to schedule: %w", err)
	}
	view := engine.View()
	for _, m := range view.Matchups {
		if m.Applied {
			continue
		}
		winner := m.Team1.ID
		if rand.Intn(2) == 1 {
			winner = m.Team2.ID
		}
		if err := engine.SelectWinner(ctx, m.ID, winner); err != nil {
			return fmt.Errorf("failed to select winner for %s: %w", m.ID, err)
		}
	}
	summary, err := engine.Finalize(ctx, day.Format(time.DateOnly))
	if err != nil {
		return fmt.Errorf("failed to finalize period %d: %w", view.CurrentPeriod, err)
	}
	log.Info("Seeded period", "period", summary.PeriodIndex, "date", summary.CompletedOn, "results", len(summary.Results))
	return nil
}
