package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SnapshotStore keeps page-text snapshots of failed extractions in a
// local SQLite file, so diagnosing markup drift never needs the main
// store or a re-fetch.
type SnapshotStore struct {
	db *sql.DB
}

const snapshotMigration = `
CREATE TABLE IF NOT EXISTS extraction_snapshots (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	enterprise_nr TEXT NOT NULL,
	source        TEXT NOT NULL,
	reason        TEXT NOT NULL,
	page_text     TEXT NOT NULL,
	captured_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_nr ON extraction_snapshots (enterprise_nr);
`

// OpenSnapshots opens (and migrates) the snapshot database at path.
func OpenSnapshots(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "snapshots: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "snapshots: exec %s", pragma)
		}
	}
	if _, err := db.Exec(snapshotMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "snapshots: migrate")
	}
	return &SnapshotStore{db: db}, nil
}

// Save records one page-text snapshot. Oversized pages are truncated;
// the head of the page is what extraction patterns anchor on.
func (s *SnapshotStore) Save(ctx context.Context, enterpriseNr, source, reason, pageText string) error {
	const maxSnapshot = 64 * 1024
	if len(pageText) > maxSnapshot {
		pageText = pageText[:maxSnapshot]
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extraction_snapshots (enterprise_nr, source, reason, page_text, captured_at)
		 VALUES (?, ?, ?, ?, ?)`,
		enterpriseNr, source, reason, pageText, time.Now().UTC().Format(time.RFC3339),
	)
	return eris.Wrapf(err, "snapshots: save %s", enterpriseNr)
}

// Count returns the number of stored snapshots, used in run summaries.
func (s *SnapshotStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM extraction_snapshots`).Scan(&n)
	return n, eris.Wrap(err, "snapshots: count")
}

func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
