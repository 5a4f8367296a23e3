package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ViewState is the last wall position. Posts and tiles are never stored.
type ViewState struct {
	OffsetX   float64
	OffsetY   float64
	Zoom      float64
	UpdatedAt time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS view_state (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  offset_x REAL NOT NULL,
  offset_y REAL NOT NULL,
  zoom REAL NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ui_preferences (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CheckWritable performs a throwaway write so a read-only database is caught
// at startup rather than on quit.
func (r *Repository) CheckWritable(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO ui_preferences (key, value) VALUES ('__write_check', '1')`); err != nil {
		return fmt.Errorf("write check: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ui_preferences WHERE key = '__write_check'`); err != nil {
		return fmt.Errorf("write check cleanup: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) SaveViewState(ctx context.Context, state ViewState) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO view_state (id, offset_x, offset_y, zoom, updated_at)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  offset_x=excluded.offset_x,
  offset_y=excluded.offset_y,
  zoom=excluded.zoom,
  updated_at=excluded.updated_at
`, state.OffsetX, state.OffsetY, state.Zoom, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	return nil
}

// LoadViewState returns the saved view; ok is false when none was saved.
func (r *Repository) LoadViewState(ctx context.Context) (ViewState, bool, error) {
	var state ViewState
	var updatedAt string
	err := r.db.QueryRowContext(ctx, `
SELECT offset_x, offset_y, zoom, updated_at
FROM view_state
WHERE id = 1
`).Scan(&state.OffsetX, &state.OffsetY, &state.Zoom, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ViewState{}, false, nil
	}
	if err != nil {
		return ViewState{}, false, fmt.Errorf("query view state: %w", err)
	}

	state.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return ViewState{}, false, fmt.Errorf("parse view state updated_at %q: %w", updatedAt, err)
	}
	return state, true, nil
}

func (r *Repository) SavePreferences(ctx context.Context, prefs map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO ui_preferences (key, value)
VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value
`)
	if err != nil {
		return fmt.Errorf("prepare save statement: %w", err)
	}
	defer stmt.Close()

	for key, value := range prefs {
		if _, err := stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("save preference %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) LoadPreferences(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM ui_preferences`)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return prefs, nil
}
