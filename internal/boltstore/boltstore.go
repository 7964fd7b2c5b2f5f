// Package boltstore keeps the league session in a single BoltDB file, one
// bucket per namespace with JSON values.
package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strconv"
	"time"

	"github.com/boltdb/bolt"
	"github.com/mauv0809/cricket-ladder/internal/league"
	"github.com/pkg/errors"
)

var (
	bucketTeams   = []byte("teams")
	bucketPeriods = []byte("periods")
	bucketSession = []byte("session")
	bucketHistory = []byte("history")

	keyCurrentPeriod = []byte("current_period")
	keyGamesPlayed   = []byte("games_played")
	keyNextSeq       = []byte("next_seq")
)

type Store struct {
	db *bolt.DB
}

// New opens (or creates) the database file at path.
func New(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketTeams, bucketPeriods, bucketSession, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "unable to create bucket %s", name)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "unable to close database")
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (s *Store) Load(ctx context.Context) (*league.State, []league.HistoryEntry, error) {
	state := league.NewState()
	var history []league.HistoryEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		session := tx.Bucket(bucketSession)
		for key, dst := range map[string]func(int64){
			string(keyCurrentPeriod): func(v int64) { state.CurrentPeriod = int(v) },
			string(keyGamesPlayed):   func(v int64) { state.GamesPlayed = int(v) },
			string(keyNextSeq):       func(v int64) { state.NextSeq = v },
		} {
			raw := session.Get([]byte(key))
			if raw == nil {
				continue
			}
			v, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return errors.Wrapf(league.ErrCorruptState, "session %s: %v", key, err)
			}
			dst(v)
		}

		err := tx.Bucket(bucketTeams).ForEach(func(k, v []byte) error {
			var t league.Team
			if err := json.Unmarshal(v, &t); err != nil {
				return errors.Wrapf(league.ErrCorruptState, "unable to unmarshal team: %v", err)
			}
			state.Teams = append(state.Teams, t)
			return nil
		})
		if err != nil {
			return err
		}

		err = tx.Bucket(bucketPeriods).ForEach(func(k, v []byte) error {
			var p league.Period
			if err := json.Unmarshal(v, &p); err != nil {
				return errors.Wrapf(league.ErrCorruptState, "unable to unmarshal period: %v", err)
			}
			state.Periods[p.Index] = &p
			return nil
		})
		if err != nil {
			return err
		}

		// Newest entries carry the highest keys.
		c := tx.Bucket(bucketHistory).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var h league.HistoryEntry
			if err := json.Unmarshal(v, &h); err != nil {
				return errors.Wrapf(league.ErrCorruptState, "unable to unmarshal history entry: %v", err)
			}
			history = append(history, h)
		}
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to load league state")
	}
	return state, history, nil
}

// Save replaces the teams and periods buckets and appends history in one
// read-write transaction.
func (s *Store) Save(ctx context.Context, state *league.State, appended []league.HistoryEntry) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		teams, err := recreate(tx, bucketTeams)
		if err != nil {
			return err
		}
		for _, t := range state.Teams {
			data, err := json.Marshal(t)
			if err != nil {
				return errors.Wrap(err, "unable to marshal team into json")
			}
			if err := teams.Put(itob(uint64(t.Seq)), data); err != nil {
				return errors.Wrap(err, "error putting team")
			}
		}

		periods, err := recreate(tx, bucketPeriods)
		if err != nil {
			return err
		}
		for _, idx := range state.PeriodIndexes() {
			data, err := json.Marshal(state.Periods[idx])
			if err != nil {
				return errors.Wrap(err, "unable to marshal period into json")
			}
			if err := periods.Put(itob(uint64(idx)), data); err != nil {
				return errors.Wrap(err, "error putting period")
			}
		}

		session := tx.Bucket(bucketSession)
		counters := map[string]int64{
			string(keyCurrentPeriod): int64(state.CurrentPeriod),
			string(keyGamesPlayed):   int64(state.GamesPlayed),
			string(keyNextSeq):       state.NextSeq,
		}
		for key, value := range counters {
			if err := session.Put([]byte(key), []byte(strconv.FormatInt(value, 10))); err != nil {
				return errors.Wrapf(err, "error putting session %s", key)
			}
		}

		history := tx.Bucket(bucketHistory)
		for _, h := range appended {
			seq, err := history.NextSequence()
			if err != nil {
				return errors.Wrap(err, "unable to allocate history key")
			}
			data, err := json.Marshal(h)
			if err != nil {
				return errors.Wrap(err, "unable to marshal history entry into json")
			}
			if err := history.Put(itob(seq), data); err != nil {
				return errors.Wrap(err, "error putting history entry")
			}
		}
		return nil
	})
	return errors.Wrap(err, "unable to save league state")
}

func (s *Store) Reset(ctx context.Context) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketTeams, bucketPeriods, bucketSession, bucketHistory} {
			if _, err := recreate(tx, name); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "unable to reset league state")
}

func recreate(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	if tx.Bucket(name) != nil {
		if err := tx.DeleteBucket(name); err != nil {
			return nil, errors.Wrapf(err, "unable to delete bucket %s", name)
		}
	}
	b, err := tx.CreateBucket(name)
	return b, errors.Wrapf(err, "unable to create bucket %s", name)
}

var _ league.Store = (*Store)(nil)
