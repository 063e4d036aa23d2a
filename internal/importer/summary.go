package importer

import (
	"time"

	"github.com/google/uuid"
)

// Summary is the outcome of one import run.
type Summary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run,omitempty"`

	RowsRead  map[string]int64 `json:"rows_read"`
	Malformed int64            `json:"malformed_rows"`

	InvalidKeys     int64 `json:"invalid_keys"`
	SkippedInactive int64 `json:"skipped_inactive"`
	SkippedNameless int64 `json:"skipped_nameless"`

	Upserted        int64 `json:"upserted"`
	ActivityUpdates int64 `json:"activity_updates"`
	FailedBatches   int64 `json:"failed_batches"`
}

func newSummary(dryRun bool) *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
		RowsRead:  make(map[string]int64),
	}
}

func (s *Summary) record(pass string, counts passCounts) {
	s.RowsRead[pass] += counts.Read
	s.Malformed += counts.Malformed
}
