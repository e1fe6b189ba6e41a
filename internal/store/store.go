// Package store is the Calendar Store collaborator: named, sluggable
// collections of events behind an at-most-one-claim-per-slug guarantee.
// The extraction pipeline never touches it; callers hand it the finished
// event list.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/calshare/calshare/constants"
	"github.com/calshare/calshare/internal/common"
	"github.com/calshare/calshare/internal/entity"
)

// CalendarStore is the contract the rest of the system depends on. Slug
// allocation is atomic: under concurrent creation at most one caller
// claims any given slug.
type CalendarStore interface {
	CreateCalendar(ctx context.Context, name, description, customSlug string, events []entity.Event) (entity.Calendar, error)
	GetBySlug(ctx context.Context, slug string) (entity.Calendar, error)
	ListEvents(ctx context.Context, calendarID int64, categories []string) ([]entity.Event, error)
	TouchAccess(ctx context.Context, slug string) error
}

const schema = `
CREATE TABLE IF NOT EXISTS calendars (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    access_count INTEGER DEFAULT 0
);
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    calendar_id INTEGER NOT NULL,
    uid TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT,
    location TEXT,
    start_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP NOT NULL,
    all_day BOOLEAN DEFAULT FALSE,
    category TEXT DEFAULT 'general',
    FOREIGN KEY (calendar_id) REFERENCES calendars(id)
);
`

type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the sqlite database at path.
func Open(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// CreateCalendar claims a slug and inserts the calendar with its events in
// one transaction. A taken custom slug is SLUG_CONFLICT; auto-generated
// slugs retry with a fresh suffix.
func (s *SQLiteStore) CreateCalendar(ctx context.Context, name, description, customSlug string, events []entity.Event) (entity.Calendar, error) {
	const maxAttempts = 3

	custom := SanitizeCustomSlug(customSlug)
	slug := custom
	if slug == "" {
		slug = GenerateSlug(name)
	}

	for attempt := 1; ; attempt++ {
		cal, err := s.insertCalendar(ctx, slug, name, description, events)
		if err == nil {
			s.logger.Info("store.calendar.created", "slug", slug, "events", len(events))
			return cal, nil
		}
		if !isUniqueViolation(err) {
			return entity.Calendar{}, fmt.Errorf("create calendar: %w", err)
		}
		if custom != "" {
			return entity.Calendar{}, common.NewAppError(common.CodeSlugConflict,
				"this custom URL is already taken", common.ErrInvalidInput)
		}
		if attempt >= maxAttempts {
			return entity.Calendar{}, common.NewAppError(common.CodeSlugConflict,
				"could not allocate a unique slug", err)
		}
		slug = GenerateSlug(name)
	}
}

func (s *SQLiteStore) insertCalendar(ctx context.Context, slug, name, description string, events []entity.Event) (entity.Calendar, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return entity.Calendar{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO calendars (slug, name, description) VALUES (?, ?, ?)`,
		slug, name, description)
	if err != nil {
		return entity.Calendar{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return entity.Calendar{}, err
	}

	for _, ev := range events {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (calendar_id, uid, title, description, location, start_time, end_time, all_day, category)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ev.UID, ev.Title, ev.Description, ev.Location,
			ev.Start.Format(time.RFC3339), ev.End.Format(time.RFC3339),
			ev.AllDay, string(ev.Category))
		if err != nil {
			return entity.Calendar{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return entity.Calendar{}, err
	}
	return entity.Calendar{ID: id, Slug: slug, Name: name, Description: description}, nil
}

func (s *SQLiteStore) GetBySlug(ctx context.Context, slug string) (entity.Calendar, error) {
	var cal entity.Calendar
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, COALESCE(description, ''), created_at, access_count
		 FROM calendars WHERE slug = ?`, slug).
		Scan(&cal.ID, &cal.Slug, &cal.Name, &cal.Description, &created, &cal.AccessCount)
	if err == sql.ErrNoRows {
		return entity.Calendar{}, common.ErrNotFound
	}
	if err != nil {
		return entity.Calendar{}, fmt.Errorf("get calendar: %w", err)
	}
	if t, perr := time.Parse("2006-01-02 15:04:05", created); perr == nil {
		cal.CreatedAt = t
	}
	return cal, nil
}

// ListEvents returns a calendar's events ordered by start time, optionally
// filtered to the given categories (used for filtered ICS downloads).
func (s *SQLiteStore) ListEvents(ctx context.Context, calendarID int64, categories []string) ([]entity.Event, error) {
	q := `SELECT uid, title, COALESCE(description, ''), COALESCE(location, ''), start_time, end_time, all_day, category
	      FROM events WHERE calendar_id = ?`
	args := []any{calendarID}
	if len(categories) > 0 {
		q += ` AND category IN (?` + strings.Repeat(",?", len(categories)-1) + `)`
		for _, c := range categories {
			args = append(args, c)
		}
	}
	q += ` ORDER BY start_time`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []entity.Event
	for rows.Next() {
		var ev entity.Event
		var startStr, endStr, cat string
		if err := rows.Scan(&ev.UID, &ev.Title, &ev.Description, &ev.Location,
			&startStr, &endStr, &ev.AllDay, &cat); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if ev.Start, err = time.Parse(time.RFC3339, startStr); err != nil {
			s.logger.Warn("store.event.bad_start", "uid", ev.UID, "value", startStr)
			continue
		}
		if ev.End, err = time.Parse(time.RFC3339, endStr); err != nil {
			ev.End = ev.Start
		}
		ev.Category, _ = constants.Canonicalize(cat)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// TouchAccess bumps the access counter for a viewed calendar.
func (s *SQLiteStore) TouchAccess(ctx context.Context, slug string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE calendars SET access_count = access_count + 1 WHERE slug = ?`, slug)
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
