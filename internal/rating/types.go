package rating

import "errors"

// Strategy selects the formula family used to transfer points between teams.
type Strategy string

const (
	// DayWeighted averages the team's rating with the opponent's, weighted by the period index.
	DayWeighted Strategy = "day_weighted"
	// CumulativeException keeps a running points sum per team and divides by games played.
	CumulativeException Strategy = "cumulative_exception"
)

const (
	// WinBonus is added to the opponent's rating for a win and subtracted for a loss.
	WinBonus = 100.0
	// ExceptionGap is the rating gap above which the exception rule can fire.
	ExceptionGap = 100.0
)

var (
	ErrSameTeam        = errors.New("a team cannot play against itself")
	ErrUnknownWinner   = errors.New("winner must be one of the two teams")
	ErrInvalidPeriod   = errors.New("period index must be at least 1")
	ErrUnknownStrategy = errors.New("unknown formula strategy")
)

// Policy is the process-wide formula configuration.
type Policy struct {
	Strategy Strategy
	// ExceptionRule enables the gap rule for the cumulative strategy. The
	// day-weighted family never applies it.
	ExceptionRule bool
}

// TracksGames reports whether the policy maintains games played and the points sum.
func (p Policy) TracksGames() bool {
	return p.Strategy == CumulativeException
}

// TeamState is the rating-relevant part of a team.
type TeamState struct {
	ID          string  `json:"id"`
	Points      float64 `json:"points"`
	GamesPlayed int     `json:"games_played"`
	PointsSum   float64 `json:"points_sum"`
}

// Result is the proposed new state for one side of a match.
type Result struct {
	Before TeamState `json:"before"`
	After  TeamState `json:"after"`
	Delta  float64   `json:"delta"`
}

// Outcome is the full proposal for a decided match. Nothing is mutated by
// computing it, so it doubles as the prediction shown before finalizing.
type Outcome struct {
	Team1            Result   `json:"team1"`
	Team2            Result   `json:"team2"`
	WinnerID         string   `json:"winner_id"`
	Strategy         Strategy `json:"strategy"`
	Gap              float64  `json:"gap"`
	ExceptionApplied bool     `json:"exception_applied"`
}
