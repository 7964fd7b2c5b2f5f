package league

import (
	"fmt"
	"strings"
	"time"

	"github.com/mauv0809/cricket-ladder/internal/rating"
)

// CommitTiming controls when rating changes are applied to teams.
type CommitTiming string

const (
	// CommitImmediate applies a match as soon as its winner is selected.
	CommitImmediate CommitTiming = "immediate"
	// CommitBatch records winners and applies them all when the period is finalized.
	CommitBatch CommitTiming = "batch_on_finalize"
)

// NavigationPolicy controls what moving past the current period does.
type NavigationPolicy string

const (
	// NavigationStrict never lets the viewing cursor pass the current period.
	NavigationStrict NavigationPolicy = "strict"
	// NavigationPromote makes the period navigated to the new current period.
	NavigationPromote NavigationPolicy = "promote"
)

func ParseCommitTiming(s string) (CommitTiming, error) {
	switch CommitTiming(strings.ToLower(strings.TrimSpace(s))) {
	case CommitImmediate:
		return CommitImmediate, nil
	case CommitBatch, "batch":
		return CommitBatch, nil
	}
	return "", fmt.Errorf("unknown commit timing %q", s)
}

func ParseNavigation(s string) (NavigationPolicy, error) {
	switch NavigationPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case NavigationStrict:
		return NavigationStrict, nil
	case NavigationPromote:
		return NavigationPromote, nil
	}
	return "", fmt.Errorf("unknown navigation policy %q", s)
}

// Team is a registered competitor.
type Team struct {
	ID             string    `json:"id"`
	Seq            int64     `json:"seq"`
	Name           string    `json:"name"`
	CurrentPoints  float64   `json:"current_points"`
	GamesPlayed    int       `json:"games_played"`
	TotalPointsSum float64   `json:"total_points_sum"`
	CreatedAt      time.Time `json:"created_at"`
}

func (t Team) ratingState() rating.TeamState {
	return rating.TeamState{
		ID:          t.ID,
		Points:      t.CurrentPoints,
		GamesPlayed: t.GamesPlayed,
		PointsSum:   t.TotalPointsSum,
	}
}

func (t *Team) applyRating(s rating.TeamState) {
	t.CurrentPoints = s.Points
	t.GamesPlayed = s.GamesPlayed
	t.TotalPointsSum = s.PointsSum
}

func (t Team) snapshot() TeamSnapshot {
	return TeamSnapshot{
		ID:          t.ID,
		Name:        t.Name,
		Points:      t.CurrentPoints,
		GamesPlayed: t.GamesPlayed,
		PointsSum:   t.TotalPointsSum,
	}
}

// Matchup pairs two teams within a period. WinnerID is empty until decided.
type Matchup struct {
	ID       string `json:"id"`
	Team1ID  string `json:"team1_id"`
	Team2ID  string `json:"team2_id"`
	WinnerID string `json:"winner_id,omitempty"`
	Applied  bool   `json:"applied"`
}

func (m Matchup) Involves(teamID string) bool {
	return m.Team1ID == teamID || m.Team2ID == teamID
}

func (m Matchup) Decided() bool {
	return m.WinnerID != ""
}

// samePair compares the unordered pair of teams.
func (m Matchup) samePair(a, b string) bool {
	return (m.Team1ID == a && m.Team2ID == b) || (m.Team1ID == b && m.Team2ID == a)
}

type Period struct {
	Index       int       `json:"index"`
	Matchups    []Matchup `json:"matchups"`
	Completed   bool      `json:"completed"`
	CompletedOn string    `json:"completed_on,omitempty"`
}

// TeamSnapshot is the state of a team captured when a match was recorded.
type TeamSnapshot struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Points      float64 `json:"points"`
	GamesPlayed int     `json:"games_played"`
	PointsSum   float64 `json:"points_sum"`
}

// HistoryEntry is an immutable record of one applied match.
type HistoryEntry struct {
	ID               string          `json:"id"`
	PeriodIndex      int             `json:"period_index"`
	PlayedOn         string          `json:"played_on"`
	Team1            TeamSnapshot    `json:"team1"`
	Team2            TeamSnapshot    `json:"team2"`
	WinnerID         string          `json:"winner_id"`
	Team1Delta       float64         `json:"team1_delta"`
	Team2Delta       float64         `json:"team2_delta"`
	Team1After       float64         `json:"team1_after"`
	Team2After       float64         `json:"team2_after"`
	Strategy         rating.Strategy `json:"strategy"`
	ExceptionApplied bool            `json:"exception_applied"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

// WinnerName resolves the winner against the snapshots.
func (h HistoryEntry) WinnerName() string {
	if h.WinnerID == h.Team2.ID {
		return h.Team2.Name
	}
	return h.Team1.Name
}

// Standing is one row of the leaderboard.
type Standing struct {
	Rank  int    `json:"rank"`
	Medal string `json:"medal,omitempty"`
	Team  Team   `json:"team"`
}

// PeriodSummary is published once a period has been finalized.
type PeriodSummary struct {
	PeriodIndex int            `json:"period_index"`
	CompletedOn string         `json:"completed_on"`
	Results     []HistoryEntry `json:"results"`
	Standings   []Standing     `json:"standings"`
}

// MatchupView is a matchup resolved against the registry for display.
type MatchupView struct {
	ID         string          `json:"id"`
	Team1      Team            `json:"team1"`
	Team2      Team            `json:"team2"`
	WinnerID   string          `json:"winner_id,omitempty"`
	Applied    bool            `json:"applied"`
	Prediction *rating.Outcome `json:"prediction,omitempty"`
}

// View is the read model of the period currently being looked at.
type View struct {
	CurrentPeriod int             `json:"current_period"`
	ViewingPeriod int             `json:"viewing_period"`
	ReadOnly      bool            `json:"read_only"`
	Completed     bool            `json:"completed"`
	CompletedOn   string          `json:"completed_on,omitempty"`
	GamesPlayed   int             `json:"games_played"`
	Strategy      rating.Strategy `json:"strategy"`
	CommitTiming  CommitTiming    `json:"commit_timing"`
	Matchups      []MatchupView   `json:"matchups"`
	Unmatched     []Team          `json:"unmatched"`
	Teams         []Team          `json:"teams"`
}

// Options fixes the behaviour of an Engine for the life of the process.
type Options struct {
	Policy     rating.Policy
	Commit     CommitTiming
	Navigation NavigationPolicy
	// AutoPair schedules waiting teams whenever a team is added or a new period starts.
	AutoPair bool
	// Clock defaults to time.Now.
	Clock func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Policy:     rating.Policy{Strategy: rating.DayWeighted},
		Commit:     CommitBatch,
		Navigation: NavigationStrict,
		AutoPair:   true,
	}
}
