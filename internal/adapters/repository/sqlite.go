package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/okian/dutyrota/internal/domain/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS people (
	position    INTEGER PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	eligibility TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS slot_history (
	slot          TEXT PRIMARY KEY,
	worked_cycle  TEXT NOT NULL,
	last_assigned TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS replays (
	position   INTEGER PRIMARY KEY,
	request_id TEXT NOT NULL UNIQUE,
	result     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore keeps the state in a SQLite database. People are stored one
// row per person with their roster position, history one row per slot and
// replayable runs one row each, oldest first.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (and migrates) the database at path. Use ":memory:"
// for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store: path must not be empty")
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads the roster and history.
func (s *SQLiteStore) Load(ctx context.Context) (model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var marker string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'saved_at'`).Scan(&marker)
	if errors.Is(err, sql.ErrNoRows) {
		return model.State{}, ErrNotFound
	}
	if err != nil {
		return model.State{}, fmt.Errorf("sqlite store: read meta: %w", err)
	}

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return model.State{}, err
	}
	history, err := s.loadHistory(ctx)
	if err != nil {
		return model.State{}, err
	}
	replays, err := s.loadReplays(ctx)
	if err != nil {
		return model.State{}, err
	}
	return model.State{Roster: roster, History: history, Replays: replays}, nil
}

func (s *SQLiteStore) loadRoster(ctx context.Context) (model.Roster, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, eligibility FROM people ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: query people: %w", err)
	}
	defer rows.Close()

	roster := model.Roster{}
	for rows.Next() {
		var (
			p    model.Person
			elig string
		)
		if err := rows.Scan(&p.Name, &elig); err != nil {
			return nil, fmt.Errorf("sqlite store: scan person: %w", err)
		}
		if err := json.Unmarshal([]byte(elig), &p.Eligibility); err != nil {
			return nil, fmt.Errorf("sqlite store: decode eligibility of %s: %w", p.Name, err)
		}
		roster = append(roster, p)
	}
	return roster, rows.Err()
}

func (s *SQLiteStore) loadHistory(ctx context.Context) (model.History, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, worked_cycle, last_assigned FROM slot_history`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: query history: %w", err)
	}
	defer rows.Close()

	history := model.History{}
	for rows.Next() {
		var slot, worked, last string
		if err := rows.Scan(&slot, &worked, &last); err != nil {
			return nil, fmt.Errorf("sqlite store: scan history: %w", err)
		}
		var sh model.SlotHistory
		if err := json.Unmarshal([]byte(worked), &sh.WorkedCycle); err != nil {
			return nil, fmt.Errorf("sqlite store: decode workedCycle of %s: %w", slot, err)
		}
		if err := json.Unmarshal([]byte(last), &sh.LastAssigned); err != nil {
			return nil, fmt.Errorf("sqlite store: decode lastAssigned of %s: %w", slot, err)
		}
		history[model.SlotID(slot)] = sh.Clone()
	}
	return history, rows.Err()
}

func (s *SQLiteStore) loadReplays(ctx context.Context) ([]model.Replay, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT request_id, result FROM replays ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: query replays: %w", err)
	}
	defer rows.Close()

	var replays []model.Replay
	for rows.Next() {
		var (
			r      model.Replay
			result string
		)
		if err := rows.Scan(&r.RequestID, &result); err != nil {
			return nil, fmt.Errorf("sqlite store: scan replay: %w", err)
		}
		r.Result = json.RawMessage(result)
		replays = append(replays, r)
	}
	return replays, rows.Err()
}

// Save replaces the roster, history and replays in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, st model.State) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite store: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM people`); err != nil {
		return fmt.Errorf("sqlite store: clear people: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM slot_history`); err != nil {
		return fmt.Errorf("sqlite store: clear history: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM replays`); err != nil {
		return fmt.Errorf("sqlite store: clear replays: %w", err)
	}

	for i, p := range st.Roster {
		elig, mErr := json.Marshal(p.Eligibility)
		if mErr != nil {
			return fmt.Errorf("sqlite store: encode eligibility of %s: %w", p.Name, mErr)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO people (position, name, eligibility) VALUES (?, ?, ?)`, i, p.Name, string(elig)); err != nil {
			return fmt.Errorf("sqlite store: insert %s: %w", p.Name, err)
		}
	}

	for slot, sh := range st.History {
		sh = sh.Clone()
		worked, _ := json.Marshal(sh.WorkedCycle)
		last, _ := json.Marshal(sh.LastAssigned)
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO slot_history (slot, worked_cycle, last_assigned) VALUES (?, ?, ?)`,
			string(slot), string(worked), string(last)); err != nil {
			return fmt.Errorf("sqlite store: insert history %s: %w", slot, err)
		}
	}

	for i, r := range st.Replays {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO replays (position, request_id, result) VALUES (?, ?, ?)`,
			i, r.RequestID, string(r.Result)); err != nil {
			return fmt.Errorf("sqlite store: insert replay %s: %w", r.RequestID, err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('saved_at', CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`); err != nil {
		return fmt.Errorf("sqlite store: write meta: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite store: commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
