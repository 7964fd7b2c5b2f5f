package processor

import (
	"errors"
	"testing"

	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/notifier"
	"github.com/mauv0809/cricket-ladder/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type fakeStandings []league.Standing

func (f fakeStandings) Leaderboard() []league.Standing { return f }

func encode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := msgpack.Marshal(v)
	require.NoError(t, err)
	return data
}

// newInProcess returns a real in-process client so messages are decoded the same way as in production.
func newInProcess() pubsub.PubSubClient {
	return pubsub.NewInProcess(func(pubsub.EventType, []byte) error { return nil })
}

func TestProcessor_HandleEvent(t *testing.T) {
	t.Run("period finalized sends a summary", func(t *testing.T) {
		notif := notifier.NewMock()
		p := New(fakeStandings{}, notif, metrics.NewMock(), newInProcess())

		summary := league.PeriodSummary{
			PeriodIndex: 3,
			CompletedOn: "2025-06-03",
			Results: []league.HistoryEntry{{
				ID:       "h1",
				Team1:    league.TeamSnapshot{ID: "a", Name: "Strikers"},
				Team2:    league.TeamSnapshot{ID: "b", Name: "Chargers"},
				WinnerID: "a",
			}},
			Standings: []league.Standing{{Rank: 1, Medal: "🥇", Team: league.Team{ID: "a", Name: "Strikers"}}},
		}
		err := p.HandleEvent(pubsub.EventPeriodFinalized, encode(t, summary), true)
		require.NoError(t, err)

		require.Len(t, notif.SendPeriodSummaryCalls, 1)
		got := notif.SendPeriodSummaryCalls[0]
		assert.Equal(t, 3, got.PeriodIndex)
		assert.Equal(t, "2025-06-03", got.CompletedOn)
		require.Len(t, got.Results, 1)
		assert.Equal(t, "Strikers", got.Results[0].WinnerName())
		assert.Equal(t, "🥇", got.Standings[0].Medal)
		assert.Equal(t, []bool{true}, notif.DryRunCalls)
	})

	t.Run("match applied sends a result", func(t *testing.T) {
		notif := notifier.NewMock()
		p := New(fakeStandings{}, notif, metrics.NewMock(), newInProcess())

		entry := league.HistoryEntry{ID: "h9", PeriodIndex: 1, WinnerID: "b"}
		require.NoError(t, p.HandleEvent(pubsub.EventMatchApplied, encode(t, entry), false))
		require.Len(t, notif.SendMatchResultCalls, 1)
		assert.Equal(t, "h9", notif.SendMatchResultCalls[0].ID)
	})

	t.Run("undecodable payload", func(t *testing.T) {
		notif := notifier.NewMock()
		p := New(fakeStandings{}, notif, metrics.NewMock(), newInProcess())

		err := p.HandleEvent(pubsub.EventPeriodFinalized, []byte{0xc1}, false)
		assert.Error(t, err)
		assert.Empty(t, notif.SendPeriodSummaryCalls)
	})

	t.Run("unknown topic", func(t *testing.T) {
		p := New(fakeStandings{}, notifier.NewMock(), metrics.NewMock(), pubsub.NewMock())
		err := p.HandleEvent("ball-lost", nil, false)
		assert.ErrorIs(t, err, ErrUnknownEvent)
	})

	t.Run("notifier failure is returned", func(t *testing.T) {
		notif := notifier.NewMock()
		expectedErr := errors.New("slack down")
		notif.SendPeriodSummaryFunc = func(league.PeriodSummary, bool) error { return expectedErr }
		p := New(fakeStandings{}, notif, metrics.NewMock(), newInProcess())

		err := p.HandleEvent(pubsub.EventPeriodFinalized, encode(t, league.PeriodSummary{PeriodIndex: 1}), false)
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestProcessor_SendLeaderboardDigest(t *testing.T) {
	t.Run("skips an empty league", func(t *testing.T) {
		notif := notifier.NewMock()
		p := New(fakeStandings{}, notif, metrics.NewMock(), pubsub.NewMock())
		require.NoError(t, p.SendLeaderboardDigest(false))
		assert.Empty(t, notif.SendLeaderboardCalls)
	})

	t.Run("posts the standings", func(t *testing.T) {
		notif := notifier.NewMock()
		standings := fakeStandings{{Rank: 1, Team: league.Team{Name: "Strikers"}}}
		p := New(standings, notif, metrics.NewMock(), pubsub.NewMock())
		require.NoError(t, p.SendLeaderboardDigest(false))
		require.Len(t, notif.SendLeaderboardCalls, 1)
		assert.Equal(t, []league.Standing(standings), notif.SendLeaderboardCalls[0])
	})
}
