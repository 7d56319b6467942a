package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stretching-coach-ai/metagen/internal/history"
	"github.com/stretching-coach-ai/metagen/internal/job"
)

// Sink writes job history events to a SQLite database.
type Sink struct {
	db *sql.DB
}

// New creates a new SQLite history sink.
// DSN format:
//   - "sqlite:///path/to/file.db"
//   - "sqlite://:memory:"
//   - "/path/to/file.db" (without prefix)
//   - ":memory:" (in-memory database)
func New(dsn string) (*Sink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty SQLite DSN")
	}
	if strings.HasPrefix(strings.ToLower(dsn), "sqlite://") {
		dsn = strings.TrimPrefix(dsn, "sqlite://")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	sink := &Sink{db: db}
	if err := sink.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	// Append-only audit table, one row per launch/stop event.
	stmt := `CREATE TABLE IF NOT EXISTS job_history(
		occurred_at TIMESTAMP NOT NULL DEFAULT (CURRENT_TIMESTAMP),
		event TEXT NOT NULL,
		job_id TEXT NOT NULL,
		pid INTEGER NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		item_limit INTEGER NOT NULL DEFAULT 0,
		log_path TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_history(occurred_at, event, job_id, pid, input, output, item_limit, log_path)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?);`,
		e.OccurredAt.UTC(), string(e.Type), e.Job.ID, e.Job.PID,
		e.Job.Input, e.Job.Output, e.Job.Limit, e.Job.LogPath)
	return err
}

// ListRecent returns the n most recent events, newest first.
func (s *Sink) ListRecent(ctx context.Context, n int) ([]history.Event, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, event, job_id, pid, input, output, item_limit, log_path
		FROM job_history ORDER BY occurred_at DESC, rowid DESC LIMIT ?;`, n)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []history.Event
	for rows.Next() {
		var (
			e  history.Event
			t  time.Time
			ev string
			j  job.Job
		)
		if err := rows.Scan(&t, &ev, &j.ID, &j.PID, &j.Input, &j.Output, &j.Limit, &j.LogPath); err != nil {
			return nil, err
		}
		e.OccurredAt = t
		e.Type = history.EventType(ev)
		e.Job = j
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
