package league

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var medals = []string{"🥇", "🥈", "🥉"}

// AddTeam registers a new team. Under a strategy that tracks games the team
// inherits the global games counter so it starts level with everyone else.
func (e *Engine) AddTeam(ctx context.Context, name string, initialPoints float64) (Team, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var added Team
	err := e.mutate(ctx, opAddTeam, func(c *change) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return ErrEmptyName
		}
		if math.IsNaN(initialPoints) || math.IsInf(initialPoints, 0) {
			return ErrInvalidPoints
		}
		if c.state.teamByName(name) != nil {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}

		games := 0
		if e.opts.Policy.TracksGames() {
			games = c.state.GamesPlayed
		}
		added = Team{
			ID:             uuid.NewString(),
			Seq:            c.state.NextSeq,
			Name:           name,
			CurrentPoints:  initialPoints,
			GamesPlayed:    games,
			TotalPointsSum: initialPoints * float64(games),
			CreatedAt:      e.opts.Clock(),
		}
		c.state.NextSeq++
		c.state.Teams = append(c.state.Teams, added)

		if e.opts.AutoPair {
			current := c.state.ensurePeriod(c.state.CurrentPeriod)
			if !current.Completed {
				autoPair(c.state, current)
			}
		}
		return nil
	})
	if err != nil {
		return Team{}, err
	}
	log.Info("Team added", "team", added.Name, "id", added.ID, "points", added.CurrentPoints)
	return added, nil
}

// DeleteTeam removes a team and every matchup it takes part in, in every
// period. History entries keep their snapshots.
func (e *Engine) DeleteTeam(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutate(ctx, opDeleteTeam, func(c *change) error {
		t := c.state.team(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, id)
		}
		name := t.Name
		c.state.Teams = slices.DeleteFunc(c.state.Teams, func(t Team) bool { return t.ID == id })

		removed := 0
		for _, p := range c.state.Periods {
			before := len(p.Matchups)
			p.Matchups = slices.DeleteFunc(p.Matchups, func(m Matchup) bool { return m.Involves(id) })
			removed += before - len(p.Matchups)
		}
		log.Info("Team deleted", "team", name, "id", id, "matchups_removed", removed)
		return nil
	})
}

// ListTeams yields the registered teams in insertion order. The sequence reads
// a snapshot taken when it is called and can be ranged over any number of times.
func (e *Engine) ListTeams() iter.Seq[Team] {
	e.mu.Lock()
	teams := slices.Clone(e.state.Teams)
	e.mu.Unlock()

	return func(yield func(Team) bool) {
		for _, t := range teams {
			if !yield(t) {
				return
			}
		}
	}
}

// UpdateGlobalGamesPlayed re-bases every team on n games at its current rating.
func (e *Engine) UpdateGlobalGamesPlayed(ctx context.Context, n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutate(ctx, opGamesPlayed, func(c *change) error {
		if n < 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidGamesPlayed, n)
		}
		c.state.GamesPlayed = n
		for i := range c.state.Teams {
			t := &c.state.Teams[i]
			t.GamesPlayed = n
			t.TotalPointsSum = t.CurrentPoints * float64(n)
		}
		return nil
	})
}

// Leaderboard ranks teams by rating, ties broken by registration order.
func (e *Engine) Leaderboard() []Standing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return standings(e.state.Teams)
}

func standings(teams []Team) []Standing {
	sorted := slices.Clone(teams)
	slices.SortStableFunc(sorted, func(a, b Team) int {
		if c := cmp.Compare(b.CurrentPoints, a.CurrentPoints); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	out := make([]Standing, len(sorted))
	for i, t := range sorted {
		out[i] = Standing{Rank: i + 1, Team: t}
		if i < len(medals) {
			out[i].Medal = medals[i]
		}
	}
	return out
}
