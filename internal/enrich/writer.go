package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/opendata-be/kbo-cli/internal/model"
	"github.com/opendata-be/kbo-cli/internal/store"
)

// Writer merges extraction results into the store and stamps the
// per-source last-enriched timestamp in the same call.
type Writer struct {
	store store.Store
	now   func() time.Time
}

// NewWriter creates a Writer over the record store.
func NewWriter(st store.Store) *Writer {
	return &Writer{store: st, now: time.Now}
}

// WriteFinancials stores a financial snapshot.
func (w *Writer) WriteFinancials(ctx context.Context, enterpriseNr string, snap *model.FinancialSnapshot) error {
	if snap == nil {
		return eris.New("enrich: nil financial snapshot")
	}
	return w.store.MergeFinancials(ctx, enterpriseNr, snap, w.now().UTC())
}

// WriteRegistry merges the non-empty fields of a registry extraction.
func (w *Writer) WriteRegistry(ctx context.Context, enterpriseNr string, det *model.RegistryDetails) error {
	if det.Empty() {
		return eris.New("enrich: empty registry details")
	}
	return w.store.MergeRegistryDetails(ctx, enterpriseNr, det, w.now().UTC())
}

// MarkNoData stamps the per-source timestamp without touching data, so a
// confirmed-empty entity is not reselected until it goes stale again.
func (w *Writer) MarkNoData(ctx context.Context, enterpriseNr, source string) error {
	return w.store.TouchEnrichment(ctx, enterpriseNr, source, w.now().UTC())
}
