package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	_ "embed"

	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
)

//go:embed journal.sql
var journalSchema string

// JournalEntry is one settled case as recorded in the journal
type JournalEntry struct {
	ID          int64     `db:"id" json:"-"`
	RunID       string    `db:"run_id" json:"run_id"`
	CaseID      int       `db:"case_id" json:"case_id"`
	Crime       string    `db:"crime" json:"crime"`
	Victim      string    `db:"victim" json:"victim"`
	TimeOfCrime string    `db:"time_of_crime" json:"time_of_crime"`
	Disposition string    `db:"disposition" json:"disposition"`
	Suspect     string    `db:"suspect" json:"suspect,omitempty"`
	Source      string    `db:"source" json:"source,omitempty"`
	Reason      string    `db:"reason" json:"reason,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Journal appends every disposition to a SQLite database
type Journal struct {
	db *sqlx.DB
}

// OpenJournal opens or creates the journal at path. ":memory:" gives a
// private in-memory journal.
func OpenJournal(ctx context.Context, path string) (*Journal, error) {
	dsn := "file::memory:?cache=private"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&_journal_mode=wal&_busy_timeout=5000&_synchronous=normal", path)
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// One connection keeps an in-memory journal alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(time.Hour)

	if _, err := db.ExecContext(ctx, journalSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends an entry. A zero CreatedAt is stamped with the current time.
func (j *Journal) Record(ctx context.Context, e JournalEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := j.db.NamedExecContext(ctx, `
		INSERT INTO dispositions (run_id, case_id, crime, victim, time_of_crime, disposition, suspect, source, reason, created_at)
		VALUES (:run_id, :case_id, :crime, :victim, :time_of_crime, :disposition, :suspect, :source, :reason, :created_at)`, e)
	if err != nil {
		return fmt.Errorf("record case %d: %w", e.CaseID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []JournalEntry
	err := j.db.SelectContext(ctx, &entries, `
		SELECT id, run_id, case_id, crime, victim, time_of_crime, disposition, suspect, source, reason, created_at
		FROM dispositions
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	return entries, nil
}

// ForCase returns every entry recorded for a case, oldest first
func (j *Journal) ForCase(ctx context.Context, caseID int) ([]JournalEntry, error) {
	var entries []JournalEntry
	err := j.db.SelectContext(ctx, &entries, `
		SELECT id, run_id, case_id, crime, victim, time_of_crime, disposition, suspect, source, reason, created_at
		FROM dispositions
		WHERE case_id = ?
		ORDER BY id`, caseID)
	if err != nil {
		return nil, fmt.Errorf("query case %d: %w", caseID, err)
	}
	return entries, nil
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}
