package boltstore_test

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/mauv0809/cricket-ladder/internal/boltstore"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/mauv0809/cricket-ladder/internal/metrics"
	"github.com/mauv0809/cricket-ladder/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)

func options() league.Options {
	return league.Options{
		Policy: rating.Policy{Strategy: rating.DayWeighted},
		Commit: league.CommitBatch,
		Clock:  func() time.Time { return fixedNow },
	}
}

func setupStore(t *testing.T) (*boltstore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ladder.db")
	store, err := boltstore.New(path)
	require.NoError(t, err)
	return store, path
}

func TestLoad_Empty(t *testing.T) {
	store, _ := setupStore(t)
	defer store.Close()

	state, history, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentPeriod)
	assert.Equal(t, int64(1), state.NextSeq)
	assert.Empty(t, state.Teams)
	assert.Empty(t, history)
}

func TestRoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	store, path := setupStore(t)

	e := league.New(store, metrics.NewMock(), nil, options())
	require.NoError(t, e.Open(ctx))
	var ids []string
	for _, name := range []string{"Strikers", "Chargers", "Royals"} {
		tm, err := e.AddTeam(ctx, name, 800)
		require.NoError(t, err)
		ids = append(ids, tm.ID)
	}
	m, err := e.AddMatch(ctx, ids[0], ids[1])
	require.NoError(t, err)
	require.NoError(t, e.SelectWinner(ctx, m.ID, ids[1]))
	_, err = e.Finalize(ctx, "2025-06-01")
	require.NoError(t, err)
	m2, err := e.AddMatch(ctx, ids[2], ids[0])
	require.NoError(t, err)
	require.NoError(t, e.SelectWinner(ctx, m2.ID, ids[2]))
	_, err = e.Finalize(ctx, "2025-06-02")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopenedStore, err := boltstore.New(path)
	require.NoError(t, err)
	defer reopenedStore.Close()
	reopened := league.New(reopenedStore, metrics.NewMock(), nil, options())
	require.NoError(t, reopened.Open(ctx))

	assert.Equal(t, slices.Collect(e.ListTeams()), slices.Collect(reopened.ListTeams()))
	assert.Equal(t, e.View(), reopened.View())
	assert.Equal(t, e.Leaderboard(), reopened.Leaderboard())

	history := reopened.History()
	assert.Equal(t, e.History(), history)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].PeriodIndex, "most recent first")
	assert.Equal(t, 3, reopened.View().CurrentPeriod)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)
	defer store.Close()

	s := league.NewState()
	s.Teams = []league.Team{{ID: "a", Seq: 1, Name: "A", CreatedAt: fixedNow}}
	s.NextSeq = 2
	require.NoError(t, store.Save(ctx, s, []league.HistoryEntry{{ID: "h1", PeriodIndex: 1}}))
	require.NoError(t, store.Reset(ctx))

	state, history, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Teams)
	assert.Empty(t, history)
}

func TestLoad_CorruptValue(t *testing.T) {
	ctx := context.Background()
	store, path := setupStore(t)
	require.NoError(t, store.Close())

	db, err := bolt.Open(path, 0600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("teams")).Put([]byte{0, 0, 0, 0, 0, 0, 0, 1}, []byte("{broken"))
	}))
	require.NoError(t, db.Close())

	store, err = boltstore.New(path)
	require.NoError(t, err)
	defer store.Close()

	_, _, err = store.Load(ctx)
	require.ErrorIs(t, err, league.ErrCorruptState)

	e := league.New(store, metrics.NewMock(), nil, options())
	require.NoError(t, e.Open(ctx))
	assert.Empty(t, slices.Collect(e.ListTeams()))
}

func TestSave_CancelledContext(t *testing.T) {
	store, _ := setupStore(t)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := store.Save(ctx, league.NewState(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
