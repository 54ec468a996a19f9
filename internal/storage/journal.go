package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const journalFileName = "history.db"

// JournalEntry is one audited state change: a task completion or a daily
// closeout, with the XP it moved.
type JournalEntry struct {
	ID         int64
	Kind       string // "check", "miss", "closeout"
	TaskID     string
	Title      string
	DayKey     string
	OnTime     bool
	XPDelta    int
	StageAfter int
	RecordedAt time.Time
}

const (
	JournalKindCheck    = "check"
	JournalKindMiss     = "miss"
	JournalKindCloseout = "closeout"
)

// Journal is an append-only local history of completions and closeouts. It is
// observability only: nothing reads it back into the aggregate, and losing it
// never corrupts state.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (and creates if missing) the history database in dir.
func OpenJournal(ctx context.Context, dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, journalFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			task_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			day_key TEXT NOT NULL,
			on_time INTEGER NOT NULL DEFAULT 0,
			xp_delta INTEGER NOT NULL,
			stage_after INTEGER NOT NULL,
			recorded_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_day_key ON events(day_key);`,
		`CREATE INDEX IF NOT EXISTS idx_events_recorded_at ON events(recorded_at);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Append records one entry.
func (j *Journal) Append(ctx context.Context, e JournalEntry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (kind, task_id, title, day_key, on_time, xp_delta, stage_after, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Kind, e.TaskID, e.Title, e.DayKey, boolToInt(e.OnTime), e.XPDelta, e.StageAfter, e.RecordedAt)
	if err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, task_id, title, day_key, on_time, xp_delta, stage_after, recorded_at
		FROM events
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal recent: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var onTime int
		if err := rows.Scan(&e.ID, &e.Kind, &e.TaskID, &e.Title, &e.DayKey, &onTime, &e.XPDelta, &e.StageAfter, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		e.OnTime = onTime != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal rows: %w", err)
	}
	return out, nil
}

// CountByDay returns how many check entries exist for a day key.
func (j *Journal) CountByDay(ctx context.Context, dayKey string) (int, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM events
		WHERE day_key = ? AND kind = ?
	`, dayKey, JournalKindCheck)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("journal count: %w", err)
	}
	return n, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
