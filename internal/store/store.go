// Package store persists consolidated company records in Postgres.
package store

import (
	"context"
	"time"

	"github.com/opendata-be/kbo-cli/internal/model"
)

// ActivityUpdate is one targeted per-enterprise update emitted by the
// activity streaming pass: codes are union-inserted into the stored set,
// and Main is applied only when no main code is set yet.
type ActivityUpdate struct {
	EnterpriseNr string
	Codes        []string
	Main         string
}

// Store is the write contract the pipeline holds against the record store.
type Store interface {
	// UpsertCompanies writes one chunk of finalized records with
	// on-conflict(enterprise_nr) semantics, replacing import-owned fields
	// and leaving enrichment fields untouched.
	UpsertCompanies(ctx context.Context, companies []model.Company) (int64, error)

	// ApplyActivityUpdates issues the per-enterprise partial updates of one
	// activity flush batch. Updates within the batch run concurrently with
	// bounded fan-out and are fully awaited before return.
	ApplyActivityUpdates(ctx context.Context, updates []ActivityUpdate) error

	// SelectStaleEnrichment returns up to limit enterprise numbers whose
	// last-enriched timestamp for the source is null or older than
	// now minus threshold.
	SelectStaleEnrichment(ctx context.Context, source string, threshold time.Duration, limit int) ([]string, error)

	// MergeFinancials stores a financial snapshot and stamps the
	// bulk-financial last-enriched timestamp.
	MergeFinancials(ctx context.Context, enterpriseNr string, snap *model.FinancialSnapshot, at time.Time) error

	// MergeRegistryDetails merges the non-empty fields of a registry-detail
	// extraction and stamps the registry last-enriched timestamp.
	MergeRegistryDetails(ctx context.Context, enterpriseNr string, det *model.RegistryDetails, at time.Time) error

	// TouchEnrichment stamps a per-source timestamp without changing data,
	// used for terminal no-data outcomes so the entity is not reselected
	// until it goes stale again.
	TouchEnrichment(ctx context.Context, enterpriseNr, source string, at time.Time) error

	Migrate(ctx context.Context) error
	Close() error
}
