// Package sqlite persists timeline events in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/strand/internal/app"
	"github.com/hylla/strand/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository implements app.Repository on a SQLite database.
type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a shared in-memory database, used by tests and
// serve-mode dry runs.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate ensures the events schema.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			start_day TEXT NOT NULL,
			end_day TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_start_day ON events(start_day);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate events schema: %w", err)
		}
	}
	return nil
}

// CreateEvent inserts one event.
func (r *Repository) CreateEvent(ctx context.Context, event domain.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events(id, name, start_day, end_day, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.Name,
		domain.FormatDay(event.Start),
		domain.FormatDay(event.End),
		event.Notes,
		ts(event.CreatedAt),
		ts(event.UpdatedAt),
	)
	return err
}

// UpdateEvent replaces one stored event by id.
func (r *Repository) UpdateEvent(ctx context.Context, event domain.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET name = ?, start_day = ?, end_day = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`,
		event.Name,
		domain.FormatDay(event.Start),
		domain.FormatDay(event.End),
		event.Notes,
		ts(event.UpdatedAt),
		event.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// GetEvent fetches one event by id.
func (r *Repository) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, start_day, end_day, notes, created_at, updated_at
		FROM events
		WHERE id = ?
	`, id)
	return scanEvent(row)
}

// ListEvents returns all events ordered by start day, then id.
func (r *Repository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, start_day, end_day, notes, created_at, updated_at
		FROM events
		ORDER BY start_day ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// DeleteEvent removes one event by id.
func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// DeleteAllEvents clears the event set, used by replace imports.
func (r *Repository) DeleteAllEvents(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events`)
	return err
}

// scanner matches both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEvent decodes one events row.
func scanEvent(row scanner) (domain.Event, error) {
	var (
		event      domain.Event
		startRaw   string
		endRaw     string
		createdRaw string
		updatedRaw string
	)
	if err := row.Scan(&event.ID, &event.Name, &startRaw, &endRaw, &event.Notes, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, app.ErrNotFound
		}
		return domain.Event{}, err
	}
	start, err := domain.ParseDay(startRaw)
	if err != nil {
		return domain.Event{}, fmt.Errorf("decode start_day: %w", err)
	}
	end, err := domain.ParseDay(endRaw)
	if err != nil {
		return domain.Event{}, fmt.Errorf("decode end_day: %w", err)
	}
	event.Start = start
	event.End = end
	event.CreatedAt = parseTS(createdRaw)
	event.UpdatedAt = parseTS(updatedRaw)
	return event, nil
}

// ts encodes a timestamp column value.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS decodes a timestamp column value.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
