package league

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
	"github.com/mauv0809/cricket-ladder/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A matchup pointing at a team that no longer exists can only come from a
// damaged session, so it is injected directly.
func TestFinalize_IntegrityFailureIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	m := metrics.NewMock()
	e := New(store, m, nil, Options{
		Policy: rating.Policy{Strategy: rating.DayWeighted},
		Commit: CommitBatch,
		Clock:  func() time.Time { return time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, e.Open(ctx))

	a, err := e.AddTeam(ctx, "A", 800)
	require.NoError(t, err)
	b, err := e.AddTeam(ctx, "B", 800)
	require.NoError(t, err)
	good, err := e.AddMatch(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, e.SelectWinner(ctx, good.ID, a.ID))

	p := e.state.Periods[1]
	p.Matchups = append(p.Matchups, Matchup{ID: "broken", Team1ID: "ghost", Team2ID: a.ID, WinnerID: a.ID})
	saves := store.SaveCount()

	_, err = e.Finalize(ctx, "2025-06-01")
	require.ErrorIs(t, err, ErrIntegrity)

	assert.Equal(t, 800.0, e.state.team(a.ID).CurrentPoints, "earlier matchups must not be applied")
	assert.False(t, e.state.Periods[1].Matchups[0].Applied)
	assert.False(t, e.state.Periods[1].Completed)
	assert.Equal(t, 1, e.state.CurrentPeriod)
	assert.Empty(t, e.history)
	assert.Equal(t, saves, store.SaveCount())
	assert.Equal(t, 1, m.Rejections(opFinalize, "integrity"))
}

func TestStateClone_IsDeep(t *testing.T) {
	s := NewState()
	s.Teams = []Team{{ID: "a", Name: "A", Seq: 1}}
	s.NextSeq = 2
	s.Periods[1].Matchups = []Matchup{{ID: "m", Team1ID: "a", Team2ID: "b"}}

	c := s.Clone()
	c.Teams[0].CurrentPoints = 99
	c.Periods[1].Matchups[0].WinnerID = "a"
	c.Periods[2] = &Period{Index: 2}

	assert.Zero(t, s.Teams[0].CurrentPoints)
	assert.Empty(t, s.Periods[1].Matchups[0].WinnerID)
	assert.NotContains(t, s.Periods, 2)
}

func TestStateValidate(t *testing.T) {
	valid := func() *State {
		s := NewState()
		s.Teams = []Team{{ID: "a", Name: "A", Seq: 1}, {ID: "b", Name: "B", Seq: 2}}
		s.NextSeq = 3
		s.Periods[1].Matchups = []Matchup{{ID: "m", Team1ID: "a", Team2ID: "b", WinnerID: "a"}}
		return s
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		damage func(s *State)
	}{
		{"current period below one", func(s *State) { s.CurrentPeriod = 0 }},
		{"negative games", func(s *State) { s.GamesPlayed = -1 }},
		{"duplicate names", func(s *State) { s.Teams[1].Name = "a" }},
		{"sequence not below next", func(s *State) { s.NextSeq = 2 }},
		{"unknown team in matchup", func(s *State) { s.Periods[1].Matchups[0].Team2ID = "z" }},
		{"foreign winner", func(s *State) { s.Periods[1].Matchups[0].WinnerID = "z" }},
		{"mismatched period index", func(s *State) { s.Periods[4] = &Period{Index: 3} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.damage(s)
			assert.ErrorIs(t, s.Validate(), ErrIntegrity)
		})
	}
}

// lockCheckingPublisher records whether the engine lock was free while publishing.
type lockCheckingPublisher struct {
	e           *Engine
	topics      []pubsub.EventType
	lockWasFree []bool
}

func (p *lockCheckingPublisher) SendMessage(topic pubsub.EventType, data any) error {
	p.topics = append(p.topics, topic)
	free := p.e.mu.TryLock()
	if free {
		p.e.mu.Unlock()
	}
	p.lockWasFree = append(p.lockWasFree, free)
	return nil
}

func TestEvents_PublishedAfterLockIsReleased(t *testing.T) {
	ctx := context.Background()
	pub := &lockCheckingPublisher{}
	e := New(NewMockStore(), metrics.NewMock(), pub, Options{
		Policy: rating.Policy{Strategy: rating.DayWeighted},
		Commit: CommitImmediate,
		Clock:  func() time.Time { return time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC) },
	})
	pub.e = e
	require.NoError(t, e.Open(ctx))

	a, err := e.AddTeam(ctx, "A", 800)
	require.NoError(t, err)
	b, err := e.AddTeam(ctx, "B", 800)
	require.NoError(t, err)
	m, err := e.AddMatch(ctx, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, e.SelectWinner(ctx, m.ID, a.ID))
	_, err = e.Finalize(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, []pubsub.EventType{pubsub.EventMatchApplied, pubsub.EventPeriodFinalized}, pub.topics)
	assert.Equal(t, []bool{true, true}, pub.lockWasFree)
	assert.Empty(t, e.outbox)
}
