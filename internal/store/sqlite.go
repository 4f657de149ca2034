package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/amishk599/jobdigest/internal/model"
)

// Ensure SQLiteStore implements model.RunStore.
var _ model.RunStore = (*SQLiteStore)(nil)

const runsTable = "digest_runs"

// SQLiteStore keeps a history of sent digests. It is never consulted for
// deduplication; the mailbox remains the source of truth.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// digest_runs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS digest_runs (
		id        TEXT PRIMARY KEY,
		recipient TEXT NOT NULL,
		subject   TEXT NOT NULL,
		total     INTEGER NOT NULL,
		tier1     INTEGER NOT NULL,
		tier2     INTEGER NOT NULL,
		tier3     INTEGER NOT NULL,
		sent_at   DATETIME NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating digest_runs table: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// RecordDigest inserts run. Missing IDs and timestamps are filled in.
func (s *SQLiteStore) RecordDigest(ctx context.Context, run model.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.SentAt.IsZero() {
		run.SentAt = s.now()
	}

	query, args, err := sq.Insert(runsTable).
		Columns("id", "recipient", "subject", "total", "tier1", "tier2", "tier3", "sent_at").
		Values(run.ID, run.Recipient, run.Subject, run.Total, run.Tier1, run.Tier2, run.Tier3, run.SentAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("recording digest run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	query, args, err := sq.Select("id", "recipient", "subject", "total", "tier1", "tier2", "tier3", "sent_at").
		From(runsTable).
		OrderBy("sent_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing digest runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.Recipient, &r.Subject, &r.Total, &r.Tier1, &r.Tier2, &r.Tier3, &r.SentAt); err != nil {
			return nil, fmt.Errorf("scanning digest run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
