package league

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
	"github.com/mauv0809/cricket-ladder/internal/rating"
)

// Navigate moves the viewing cursor one period back (-1) or forward (+1).
func (e *Engine) Navigate(ctx context.Context, direction int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutate(ctx, opNavigate, func(c *change) error {
		if direction != -1 && direction != 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidDirection, direction)
		}
		c.persist = false
		next := max(c.viewing+direction, 1)
		if next > c.state.CurrentPeriod {
			if e.opts.Navigation == NavigationStrict {
				next = c.state.CurrentPeriod
			} else {
				e.promote(c, next)
			}
		}
		c.viewing = next
		return nil
	})
}

// SetPeriodIndex jumps straight to period n. Only a period past the current
// one can be promoted; earlier periods are just viewed.
func (e *Engine) SetPeriodIndex(ctx context.Context, n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mutate(ctx, opSetPeriod, func(c *change) error {
		if n < 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidPeriodIndex, n)
		}
		c.persist = false
		if n <= c.state.CurrentPeriod {
			c.viewing = n
			return nil
		}
		if e.opts.Navigation == NavigationStrict {
			c.viewing = c.state.CurrentPeriod
			return nil
		}
		e.promote(c, n)
		c.viewing = n
		return nil
	})
}

// promote makes idx the current period.
func (e *Engine) promote(c *change, idx int) {
	c.persist = true
	c.state.CurrentPeriod = idx
	p := c.state.ensurePeriod(idx)
	if e.opts.AutoPair && !p.Completed && len(p.Matchups) == 0 {
		autoPair(c.state, p)
	}
}

// Finalize closes the current period: decided matches are applied in order,
// the period is stamped with date and the next period becomes current. Either
// all of it happens or none of it does.
func (e *Engine) Finalize(ctx context.Context, date string) (PeriodSummary, error) {
	defer e.flush()
	e.mu.Lock()
	defer e.mu.Unlock()

	var summary PeriodSummary
	err := e.mutate(ctx, opFinalize, func(c *change) error {
		p, err := c.requireWritable()
		if err != nil {
			return err
		}
		date, err = e.completionDate(date)
		if err != nil {
			return err
		}

		// Results applied earlier count even if their matchups were rebuilt since.
		decided := 0
		for _, h := range e.history {
			if h.PeriodIndex == p.Index {
				decided++
			}
		}
		for _, m := range p.Matchups {
			if m.Decided() && !m.Applied {
				decided++
			}
		}
		if decided == 0 {
			return ErrNothingToFinalize
		}

		for i := range p.Matchups {
			m := &p.Matchups[i]
			if !m.Decided() || m.Applied {
				continue
			}
			if _, err := e.apply(c, p.Index, m, date); err != nil {
				return err
			}
		}
		p.Completed = true
		p.CompletedOn = date

		if e.opts.Policy.TracksGames() {
			c.state.GamesPlayed++
		}
		c.state.CurrentPeriod = p.Index + 1
		next := c.state.ensurePeriod(c.state.CurrentPeriod)
		if e.opts.AutoPair && !next.Completed && len(next.Matchups) == 0 {
			autoPair(c.state, next)
		}
		c.viewing = c.state.CurrentPeriod

		summary = PeriodSummary{
			PeriodIndex: p.Index,
			CompletedOn: date,
			Results:     e.periodResults(p.Index, c.history),
			Standings:   standings(c.state.Teams),
		}
		c.events = append(c.events, event{topic: pubsub.EventPeriodFinalized, data: summary})
		c.onCommit = append(c.onCommit, e.metrics.IncPeriodsFinalized)
		return nil
	})
	if err != nil {
		return PeriodSummary{}, err
	}
	log.Info("Period finalized", "period", summary.PeriodIndex, "date", summary.CompletedOn, "results", len(summary.Results))
	return summary, nil
}

func (e *Engine) completionDate(date string) (string, error) {
	if date == "" {
		if e.opts.Commit == CommitBatch {
			return "", ErrMissingDate
		}
		return e.today(), nil
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return date, nil
}

// periodResults returns every match recorded for the period in the order it
// was played, including those applied before the period was finalized.
func (e *Engine) periodResults(idx int, pending []HistoryEntry) []HistoryEntry {
	var out []HistoryEntry
	for i := len(e.history) - 1; i >= 0; i-- {
		if e.history[i].PeriodIndex == idx {
			out = append(out, e.history[i])
		}
	}
	for _, h := range pending {
		if h.PeriodIndex == idx {
			out = append(out, h)
		}
	}
	return out
}

// View returns the read model for the period being viewed.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	p := s.period(e.viewing)
	v := View{
		CurrentPeriod: s.CurrentPeriod,
		ViewingPeriod: e.viewing,
		ReadOnly:      e.viewing != s.CurrentPeriod || p.Completed,
		Completed:     p.Completed,
		CompletedOn:   p.CompletedOn,
		GamesPlayed:   s.GamesPlayed,
		Strategy:      e.opts.Policy.Strategy,
		CommitTiming:  e.opts.Commit,
		Matchups:      make([]MatchupView, 0, len(p.Matchups)),
		Unmatched:     waiting(s, p),
		Teams:         append([]Team(nil), s.Teams...),
	}
	for _, m := range p.Matchups {
		mv := MatchupView{ID: m.ID, WinnerID: m.WinnerID, Applied: m.Applied}
		if t := s.team(m.Team1ID); t != nil {
			mv.Team1 = *t
		}
		if t := s.team(m.Team2ID); t != nil {
			mv.Team2 = *t
		}
		if m.Decided() && !m.Applied {
			out, err := rating.Compute(e.opts.Policy, mv.Team1.ratingState(), mv.Team2.ratingState(), m.WinnerID, p.Index)
			if err == nil {
				mv.Prediction = &out
			}
		}
		v.Matchups = append(v.Matchups, mv)
	}
	return v
}
