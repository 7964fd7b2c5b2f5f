package notifier

import "github.com/mauv0809/cricket-ladder/internal/league"

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For finalized periods
	SendPeriodSummary(summary league.PeriodSummary, dryRun bool) error
	// For matches applied the moment their winner is picked
	SendMatchResult(entry league.HistoryEntry, dryRun bool) error
	// For the scheduled digest
	SendLeaderboard(standings []league.Standing, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(standings []league.Standing) (any, error)
}
