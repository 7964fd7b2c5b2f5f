package processor

import (
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/notifier"
)

// Standings supplies the current leaderboard for digests.
type Standings interface {
	Leaderboard() []league.Standing
}

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}
