// Package journal provides a SQLite-backed append-only log of the
// current editing session: store mutations, reference lookups, and
// submission outcomes.
//
// The default DSN is ":memory:", so the journal lives and dies with
// the session - nothing persists beyond it. All ordering uses a seq
// INTEGER from the logical clock, never timestamps; the wall-clock
// column is informational only.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// MemoryDSN is the default, session-scoped journal location.
const MemoryDSN = ":memory:"

// Kind labels a journaled event.
type Kind string

const (
	KindSequenceAdded   Kind = "sequence_added"
	KindSequenceRenamed Kind = "sequence_renamed"
	KindSequenceEdited  Kind = "sequence_edited"
	KindSequenceToggled Kind = "sequence_toggled"
	KindSequenceRemoved Kind = "sequence_removed"
	KindFilesAttached   Kind = "files_attached"
	KindFileRenamed     Kind = "file_renamed"
	KindFileRemoved     Kind = "file_removed"
	KindReferenceSet    Kind = "reference_set"
	KindReferenceLookup Kind = "reference_lookup"
	KindSubmission      Kind = "submission"
)

// Event is one journal row.
type Event struct {
	Seq    int64
	Kind   Kind
	Detail string
	At     time.Time
}

// Journal records session events in insertion (seq) order.
type Journal struct {
	db    *sql.DB
	clock *Clock
}

// Open creates or opens the journal database at the given DSN and
// applies the schema. Safe to call with MemoryDSN for a purely
// session-scoped journal.
func Open(dsn string) (*Journal, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite supports one writer at a time; a single connection also
	// keeps an in-memory database from vanishing between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db, clock: NewClock()}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends one event, stamped with the next logical seq.
func (j *Journal) Record(ctx context.Context, kind Kind, detail string) error {
	seq := j.clock.Next()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (seq, kind, detail, at) VALUES (?, ?, ?, ?)`,
		seq, string(kind), detail, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record %s event: %w", kind, err)
	}
	return nil
}

// Events returns all journaled events in seq order.
func (j *Journal) Events(ctx context.Context) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, kind, detail, at FROM events ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e  Event
			at string
		)
		if err := rows.Scan(&e.Seq, (*string)(&e.Kind), &e.Detail, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, at); parseErr == nil {
			e.At = ts
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Len returns the number of journaled events.
func (j *Journal) Len(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
