package league

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// sumTolerance bounds the drift allowed between a team's rating and
// TotalPointsSum/GamesPlayed.
const sumTolerance = 0.05

// State is the whole persisted session: the registry, every period and the
// global counters.
type State struct {
	Teams         []Team          `json:"teams"`
	Periods       map[int]*Period `json:"periods"`
	CurrentPeriod int             `json:"current_period"`
	GamesPlayed   int             `json:"games_played"`
	NextSeq       int64           `json:"next_seq"`
}

// NewState returns an empty session positioned on period 1.
func NewState() *State {
	return &State{
		Periods:       map[int]*Period{1: {Index: 1}},
		CurrentPeriod: 1,
		NextSeq:       1,
	}
}

// Clone returns a deep copy that can be mutated freely.
func (s *State) Clone() *State {
	c := &State{
		Teams:         slices.Clone(s.Teams),
		Periods:       make(map[int]*Period, len(s.Periods)),
		CurrentPeriod: s.CurrentPeriod,
		GamesPlayed:   s.GamesPlayed,
		NextSeq:       s.NextSeq,
	}
	for idx, p := range s.Periods {
		cp := *p
		cp.Matchups = slices.Clone(p.Matchups)
		c.Periods[idx] = &cp
	}
	return c
}

func (s *State) team(id string) *Team {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i]
		}
	}
	return nil
}

func (s *State) teamByName(name string) *Team {
	for i := range s.Teams {
		if strings.EqualFold(s.Teams[i].Name, name) {
			return &s.Teams[i]
		}
	}
	return nil
}

// period returns the period at idx, or an empty stand-in when it has never been touched.
func (s *State) period(idx int) *Period {
	if p, ok := s.Periods[idx]; ok {
		return p
	}
	return &Period{Index: idx}
}

func (s *State) ensurePeriod(idx int) *Period {
	p, ok := s.Periods[idx]
	if !ok {
		p = &Period{Index: idx}
		s.Periods[idx] = p
	}
	return p
}

// PeriodIndexes lists the known periods in ascending order.
func (s *State) PeriodIndexes() []int {
	return slices.Sorted(maps.Keys(s.Periods))
}

// Validate checks the structural invariants of the session.
func (s *State) Validate() error {
	if s.CurrentPeriod < 1 {
		return fmt.Errorf("%w: current period %d", ErrIntegrity, s.CurrentPeriod)
	}
	if s.GamesPlayed < 0 {
		return fmt.Errorf("%w: games played %d", ErrIntegrity, s.GamesPlayed)
	}
	ids := make(map[string]bool, len(s.Teams))
	names := make(map[string]bool, len(s.Teams))
	for _, t := range s.Teams {
		name := strings.ToLower(t.Name)
		if ids[t.ID] || names[name] {
			return fmt.Errorf("%w: duplicate team %q", ErrIntegrity, t.Name)
		}
		if t.Seq >= s.NextSeq {
			return fmt.Errorf("%w: team %q has sequence %d beyond %d", ErrIntegrity, t.Name, t.Seq, s.NextSeq)
		}
		ids[t.ID] = true
		names[name] = true
	}
	for idx, p := range s.Periods {
		if p == nil || p.Index != idx || idx < 1 {
			return fmt.Errorf("%w: malformed period %d", ErrIntegrity, idx)
		}
		paired := make(map[string]bool)
		for _, m := range p.Matchups {
			if !ids[m.Team1ID] || !ids[m.Team2ID] {
				return fmt.Errorf("%w: matchup %s in period %d references an unknown team", ErrIntegrity, m.ID, idx)
			}
			if m.Team1ID == m.Team2ID || paired[m.Team1ID] || paired[m.Team2ID] {
				return fmt.Errorf("%w: team paired twice in period %d", ErrIntegrity, idx)
			}
			if m.Decided() && !m.Involves(m.WinnerID) {
				return fmt.Errorf("%w: matchup %s has a foreign winner", ErrIntegrity, m.ID)
			}
			paired[m.Team1ID] = true
			paired[m.Team2ID] = true
		}
	}
	return nil
}

// checkSums logs teams whose running sum no longer agrees with their rating.
// Drift is tolerated because switching strategies between runs produces it.
func (s *State) checkSums() int {
	drifted := 0
	for _, t := range s.Teams {
		if t.GamesPlayed == 0 {
			continue
		}
		avg := t.TotalPointsSum / float64(t.GamesPlayed)
		if math.Abs(avg-t.CurrentPoints) > sumTolerance {
			log.Warn("Team points sum does not match its rating", "team", t.Name, "points", t.CurrentPoints, "average", avg)
			drifted++
		}
	}
	return drifted
}
