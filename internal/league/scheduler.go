package league

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
	"github.com/mauv0809/cricket-ladder/internal/rating"
)

func paired(p *Period) map[string]bool {
	seen := make(map[string]bool, len(p.Matchups)*2)
	for _, m := range p.Matchups {
		seen[m.Team1ID] = true
		seen[m.Team2ID] = true
	}
	return seen
}

// waiting returns the teams without a matchup in p, in registry order.
func waiting(s *State, p *Period) []Team {
	seen := paired(p)
	var out []Team
	for _, t := range s.Teams {
		if !seen[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// autoPair pairs waiting teams two by two. An odd team out stays waiting.
func autoPair(s *State, p *Period) int {
	w := waiting(s, p)
	created := 0
	for i := 0; i+1 < len(w); i += 2 {
		p.Matchups = append(p.Matchups, Matchup{
			ID:      uuid.NewString(),
			Team1ID: w[i].ID,
			Team2ID: w[i+1].ID,
		})
		created++
	}
	return created
}

func findMatchup(p *Period, id string) int {
	return slices.IndexFunc(p.Matchups, func(m Matchup) bool { return m.ID == id })
}

// AutoSchedule pairs every waiting team in the viewed period.
func (e *Engine) AutoSchedule(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	created := 0
	err := e.mutate(ctx, opAutoSchedule, func(c *change) error {
		p, err := c.requireWritable()
		if err != nil {
			return err
		}
		created = autoPair(c.state, p)
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.Info("Auto-scheduled matchups", "period", e.viewing, "created", created)
	return created, nil
}

// AddMatch pairs two teams manually in the viewed period.
func (e *Engine) AddMatch(ctx context.Context, team1ID, team2ID string) (Matchup, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var added Matchup
	err := e.mutate(ctx, opAddMatch, func(c *change) error {
		p, err := c.requireWritable()
		if err != nil {
			return err
		}
		if team1ID == team2ID || c.state.team(team1ID) == nil || c.state.team(team2ID) == nil {
			return ErrInvalidSelection
		}
		for _, m := range p.Matchups {
			if !m.Applied && m.samePair(team1ID, team2ID) {
				return ErrDuplicateMatch
			}
		}
		seen := paired(p)
		if seen[team1ID] || seen[team2ID] {
			return ErrTeamAlreadyPaired
		}
		added = Matchup{ID: uuid.NewString(), Team1ID: team1ID, Team2ID: team2ID}
		p.Matchups = append(p.Matchups, added)
		return nil
	})
	if err != nil {
		return Matchup{}, err
	}
	return added, nil
}

// RemoveMatch drops a matchup from the viewed period.
func (e *Engine) RemoveMatch(ctx context.Context, matchID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutate(ctx, opRemoveMatch, func(c *change) error {
		p, err := c.requireWritable()
		if err != nil {
			return err
		}
		i := findMatchup(p, matchID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		p.Matchups = slices.Delete(p.Matchups, i, i+1)
		return nil
	})
}

// Reorder rebuilds the viewed period's matchups by pairing the given teams in
// order. Existing matchups, winners included, are discarded; results already
// applied stay in history and still count for the period. A sequence too
// short to form a pair changes nothing.
func (e *Engine) Reorder(ctx context.Context, sequence []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutate(ctx, opReorder, func(c *change) error {
		p, err := c.requireWritable()
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(sequence))
		for _, id := range sequence {
			if seen[id] || c.state.team(id) == nil {
				return fmt.Errorf("%w: %q", ErrInvalidSelection, id)
			}
			seen[id] = true
		}
		if len(sequence) < 2 {
			c.persist = false
			return nil
		}
		rebuilt := make([]Matchup, 0, len(sequence)/2)
		for i := 0; i+1 < len(sequence); i += 2 {
			rebuilt = append(rebuilt, Matchup{
				ID:      uuid.NewString(),
				Team1ID: sequence[i],
				Team2ID: sequence[i+1],
			})
		}
		p.Matchups = rebuilt
		return nil
	})
}

// SelectWinner decides a matchup. With immediate commits the rating change is
// applied and recorded straight away.
func (e *Engine) SelectWinner(ctx context.Context, matchID, teamID string) error {
	defer e.flush()
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutate(ctx, opSelectWinner, func(c *change) error {
		p, err := c.requireWritable()
		if err != nil {
			return err
		}
		i := findMatchup(p, matchID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		m := &p.Matchups[i]
		if !m.Involves(teamID) {
			return ErrInvalidWinner
		}
		if m.Applied {
			return ErrAlreadyApplied
		}
		m.WinnerID = teamID
		if e.opts.Commit != CommitImmediate {
			return nil
		}
		entry, err := e.apply(c, p.Index, m, e.today())
		if err != nil {
			return err
		}
		c.events = append(c.events, event{topic: pubsub.EventMatchApplied, data: entry})
		return nil
	})
}

// apply commits a decided matchup to both teams and records it in history.
func (e *Engine) apply(c *change, periodIdx int, m *Matchup, playedOn string) (HistoryEntry, error) {
	t1, t2 := c.state.team(m.Team1ID), c.state.team(m.Team2ID)
	if t1 == nil || t2 == nil {
		return HistoryEntry{}, fmt.Errorf("%w: matchup %s references a missing team", ErrIntegrity, m.ID)
	}
	out, err := rating.Compute(e.opts.Policy, t1.ratingState(), t2.ratingState(), m.WinnerID, periodIdx)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("%w: matchup %s: %w", ErrIntegrity, m.ID, err)
	}
	id, err := newHistoryID()
	if err != nil {
		return HistoryEntry{}, err
	}

	entry := HistoryEntry{
		ID:               id,
		PeriodIndex:      periodIdx,
		PlayedOn:         playedOn,
		Team1:            t1.snapshot(),
		Team2:            t2.snapshot(),
		WinnerID:         m.WinnerID,
		Team1Delta:       out.Team1.Delta,
		Team2Delta:       out.Team2.Delta,
		Team1After:       out.Team1.After.Points,
		Team2After:       out.Team2.After.Points,
		Strategy:         out.Strategy,
		ExceptionApplied: out.ExceptionApplied,
		RecordedAt:       e.opts.Clock(),
	}
	t1.applyRating(out.Team1.After)
	t2.applyRating(out.Team2.After)
	m.Applied = true
	c.history = append(c.history, entry)
	c.onCommit = append(c.onCommit, func() {
		e.metrics.IncMatchesApplied(1)
		e.metrics.ObserveRatingDelta(out.Team1.Delta)
		e.metrics.ObserveRatingDelta(out.Team2.Delta)
	})
	log.Debug("Match applied", "match", m.ID, "winner", entry.WinnerName(), "exception", out.ExceptionApplied)
	return entry, nil
}

// Predict computes what a matchup would do to both ratings without changing
// anything. An empty winnerID uses the selected winner.
func (e *Engine) Predict(matchID, winnerID string) (rating.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out, err := e.predict(matchID, winnerID)
	if err != nil {
		return rating.Outcome{}, e.reject(opPredict, err)
	}
	return out, nil
}

func (e *Engine) predict(matchID, winnerID string) (rating.Outcome, error) {
	for _, idx := range e.state.PeriodIndexes() {
		p := e.state.Periods[idx]
		i := findMatchup(p, matchID)
		if i < 0 {
			continue
		}
		m := p.Matchups[i]
		if m.Applied {
			return rating.Outcome{}, ErrAlreadyApplied
		}
		if winnerID == "" {
			winnerID = m.WinnerID
		}
		if winnerID == "" {
			return rating.Outcome{}, ErrNoWinner
		}
		if !m.Involves(winnerID) {
			return rating.Outcome{}, ErrInvalidWinner
		}
		t1, t2 := e.state.team(m.Team1ID), e.state.team(m.Team2ID)
		if t1 == nil || t2 == nil {
			return rating.Outcome{}, fmt.Errorf("%w: matchup %s references a missing team", ErrIntegrity, m.ID)
		}
		return rating.Compute(e.opts.Policy, t1.ratingState(), t2.ratingState(), winnerID, idx)
	}
	return rating.Outcome{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
}
