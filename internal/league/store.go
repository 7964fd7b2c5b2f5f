package league

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

const (
	keyCurrentPeriod = "current_period"
	keyGamesPlayed   = "games_played"
	keyNextSeq       = "next_seq"
)

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a Store backed by the SQLite/libSQL schema in migrations/.
func NewStore(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

func (s *store) Load(ctx context.Context) (*State, []HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := NewState()
	if err := s.loadSession(ctx, state); err != nil {
		return nil, nil, err
	}
	if err := s.loadTeams(ctx, state); err != nil {
		return nil, nil, err
	}
	if err := s.loadPeriods(ctx, state); err != nil {
		return nil, nil, err
	}
	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, nil, err
	}
	return state, history, nil
}

func (s *store) loadSession(ctx context.Context, state *State) error {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM session")
	if err != nil {
		return fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("%w: session row: %w", ErrCorruptState, err)
		}
		switch key {
		case keyCurrentPeriod:
			state.CurrentPeriod = int(value)
		case keyGamesPlayed:
			state.GamesPlayed = int(value)
		case keyNextSeq:
			state.NextSeq = value
		}
	}
	return rows.Err()
}

func (s *store) loadTeams(ctx context.Context, state *State) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, name, current_points, games_played, total_points_sum, created_at
		FROM teams
		ORDER BY seq
	`)
	if err != nil {
		return fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t Team
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.Seq, &t.Name, &t.CurrentPoints, &t.GamesPlayed, &t.TotalPointsSum, &createdAt); err != nil {
			return fmt.Errorf("%w: team row: %w", ErrCorruptState, err)
		}
		t.CreatedAt = time.Unix(0, createdAt).UTC()
		state.Teams = append(state.Teams, t)
	}
	return rows.Err()
}

func (s *store) loadPeriods(ctx context.Context, state *State) error {
	rows, err := s.db.QueryContext(ctx, "SELECT idx, completed, completed_on FROM periods")
	if err != nil {
		return fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Period
		var completedOn sql.NullString
		if err := rows.Scan(&p.Index, &p.Completed, &completedOn); err != nil {
			return fmt.Errorf("%w: period row: %w", ErrCorruptState, err)
		}
		p.CompletedOn = completedOn.String
		state.Periods[p.Index] = &p
	}
	if err := rows.Err(); err != nil {
		return err
	}

	mrows, err := s.db.QueryContext(ctx, `
		SELECT id, period_idx, team1_id, team2_id, winner_id, applied
		FROM matchups
		ORDER BY period_idx, position
	`)
	if err != nil {
		return fmt.Errorf("failed to query matchups: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		var m Matchup
		var idx int
		var winnerID sql.NullString
		if err := mrows.Scan(&m.ID, &idx, &m.Team1ID, &m.Team2ID, &winnerID, &m.Applied); err != nil {
			return fmt.Errorf("%w: matchup row: %w", ErrCorruptState, err)
		}
		m.WinnerID = winnerID.String
		p, ok := state.Periods[idx]
		if !ok {
			return fmt.Errorf("%w: matchup %s belongs to unknown period %d", ErrCorruptState, m.ID, idx)
		}
		p.Matchups = append(p.Matchups, m)
	}
	return mrows.Err()
}

func (s *store) loadHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, period_idx, played_on, team1_json, team2_json, winner_id, team1_delta, team2_delta, team1_after, team2_after, strategy, exception_applied, recorded_at
		FROM match_history
		ORDER BY recorded_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history: %w", err)
	}
	defer rows.Close()

	var history []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		var team1JSON, team2JSON string
		var recordedAt int64
		err := rows.Scan(&h.ID, &h.PeriodIndex, &h.PlayedOn, &team1JSON, &team2JSON, &h.WinnerID,
			&h.Team1Delta, &h.Team2Delta, &h.Team1After, &h.Team2After, &h.Strategy, &h.ExceptionApplied, &recordedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: history row: %w", ErrCorruptState, err)
		}
		if err := json.Unmarshal([]byte(team1JSON), &h.Team1); err != nil {
			return nil, fmt.Errorf("%w: history %s team1: %w", ErrCorruptState, h.ID, err)
		}
		if err := json.Unmarshal([]byte(team2JSON), &h.Team2); err != nil {
			return nil, fmt.Errorf("%w: history %s team2: %w", ErrCorruptState, h.ID, err)
		}
		h.RecordedAt = time.Unix(0, recordedAt).UTC()
		history = append(history, h)
	}
	return history, rows.Err()
}

// Save rewrites the registry and the periods and appends the new history
// entries in a single transaction.
func (s *store) Save(ctx context.Context, state *State, appended []HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.writeState(ctx, tx, state); err != nil {
		tx.Rollback()
		return err
	}
	if err := s.appendHistory(ctx, tx, appended); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit league state: %w", err)
	}
	return nil
}

func (s *store) writeState(ctx context.Context, tx *sql.Tx, state *State) error {
	for _, table := range []string{"matchups", "periods", "teams"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	teamStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO teams (id, seq, name, current_points, games_played, total_points_sum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare team insert: %w", err)
	}
	defer teamStmt.Close()
	for _, t := range state.Teams {
		if _, err := teamStmt.ExecContext(ctx, t.ID, t.Seq, t.Name, t.CurrentPoints, t.GamesPlayed, t.TotalPointsSum, t.CreatedAt.UnixNano()); err != nil {
			return fmt.Errorf("failed to insert team %s: %w", t.ID, err)
		}
	}

	periodStmt, err := tx.PrepareContext(ctx, "INSERT INTO periods (idx, completed, completed_on) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare period insert: %w", err)
	}
	defer periodStmt.Close()
	matchStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matchups (id, period_idx, position, team1_id, team2_id, winner_id, applied)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare matchup insert: %w", err)
	}
	defer matchStmt.Close()

	for _, idx := range state.PeriodIndexes() {
		p := state.Periods[idx]
		if _, err := periodStmt.ExecContext(ctx, p.Index, p.Completed, nullString(p.CompletedOn)); err != nil {
			return fmt.Errorf("failed to insert period %d: %w", p.Index, err)
		}
		for pos, m := range p.Matchups {
			if _, err := matchStmt.ExecContext(ctx, m.ID, p.Index, pos, m.Team1ID, m.Team2ID, nullString(m.WinnerID), m.Applied); err != nil {
				return fmt.Errorf("failed to insert matchup %s: %w", m.ID, err)
			}
		}
	}

	counters := map[string]int64{
		keyCurrentPeriod: int64(state.CurrentPeriod),
		keyGamesPlayed:   int64(state.GamesPlayed),
		keyNextSeq:       state.NextSeq,
	}
	for key, value := range counters {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value)
		if err != nil {
			return fmt.Errorf("failed to update session %s: %w", key, err)
		}
	}
	return nil
}

func (s *store) appendHistory(ctx context.Context, tx *sql.Tx, entries []HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO match_history (id, period_idx, played_on, team1_json, team2_json, winner_id, team1_delta, team2_delta, team1_after, team2_after, strategy, exception_applied, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range entries {
		team1JSON, err := json.Marshal(h.Team1)
		if err != nil {
			return err
		}
		team2JSON, err := json.Marshal(h.Team2)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx, h.ID, h.PeriodIndex, h.PlayedOn, string(team1JSON), string(team2JSON), h.WinnerID,
			h.Team1Delta, h.Team2Delta, h.Team1After, h.Team2After, string(h.Strategy), h.ExceptionApplied, h.RecordedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert history entry %s: %w", h.ID, err)
		}
	}
	return nil
}

// Reset wipes every namespace.
func (s *store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, table := range []string{"matchups", "periods", "teams", "session", "match_history"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
