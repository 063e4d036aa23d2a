// Package importer joins the six open-data extract CSVs into consolidated
// company records. The identity file is loaded into an in-memory accumulator
// keyed by enterprise number; the name, address, contact, and branch files
// are then streamed against it, records are flushed to the store in fixed
// chunks, and the activity file is streamed last with its own bounded
// batching so the largest source never has to fit in memory.
package importer

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opendata-be/kbo-cli/internal/entnum"
	"github.com/opendata-be/kbo-cli/internal/model"
	"github.com/opendata-be/kbo-cli/internal/store"
)

// Sources names the extract files of one import run. Enterprises is
// mandatory; every other file is skipped when its path is empty.
type Sources struct {
	Enterprises   string
	Denominations string
	Addresses     string
	Contacts      string
	Branches      string
	Activities    string
}

// Options tunes an import run.
type Options struct {
	// BatchSize is the upsert chunk size. Defaults to 1000.
	BatchSize int
	// ActivityKeyLimit bounds how many distinct enterprises the activity
	// pass accumulates before flushing. Defaults to 50000.
	ActivityKeyLimit int
	// ActiveOnly drops enterprises whose status is not active.
	ActiveOnly bool
	// DryRun runs all passes and counters without writing to the store.
	DryRun bool
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 1000
	}
	if o.ActivityKeyLimit <= 0 {
		o.ActivityKeyLimit = 50000
	}
	return o
}

// Importer runs the multi-pass join.
type Importer struct {
	store store.Store
	opts  Options
	obs   Observer
}

// New creates an Importer. A nil observer disables progress callbacks.
func New(st store.Store, opts Options, obs Observer) *Importer {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Importer{store: st, opts: opts.withDefaults(), obs: obs}
}

// Run executes the full import and returns its summary. Store write
// failures on individual chunks are counted, logged, and do not abort
// the run; only source-level failures do.
func (im *Importer) Run(ctx context.Context, src Sources) (*Summary, error) {
	if src.Enterprises == "" {
		return nil, eris.New("importer: enterprises file is required")
	}

	sum := newSummary(im.opts.DryRun)
	builders := make(map[string]*builder)

	if err := im.identityPass(src.Enterprises, builders, sum); err != nil {
		return nil, err
	}
	if src.Denominations != "" {
		if err := im.namesPass(src.Denominations, builders, sum); err != nil {
			return nil, err
		}
	}
	if src.Addresses != "" {
		if err := im.addressPass(src.Addresses, builders, sum); err != nil {
			return nil, err
		}
	}
	if src.Contacts != "" {
		if err := im.contactPass(src.Contacts, builders, sum); err != nil {
			return nil, err
		}
	}
	if src.Branches != "" {
		if err := im.branchPass(src.Branches, builders, sum); err != nil {
			return nil, err
		}
	}

	if err := im.flush(ctx, builders, sum); err != nil {
		return nil, err
	}
	builders = nil // release before the activity pass

	if src.Activities != "" {
		if err := im.activityPass(ctx, src.Activities, sum); err != nil {
			return nil, err
		}
	}

	sum.FinishedAt = time.Now().UTC()
	return sum, nil
}

// identityPass creates one builder per legal entity. Natural persons and
// rows with an invalid enterprise number are dropped.
func (im *Importer) identityPass(path string, builders map[string]*builder, sum *Summary) error {
	im.obs.PassStarted("identity")

	var skipped int64
	counts, err := streamRows(path, func(row *enterpriseRow) error {
		if row.TypeOfEnterprise != typeLegalEntity {
			skipped++
			return nil
		}

		nr, err := entnum.Validate(row.EnterpriseNumber)
		if err != nil {
			sum.InvalidKeys++
			return nil
		}

		status := model.StatusFromCode(row.Status)
		if im.opts.ActiveOnly && status != model.StatusActive {
			sum.SkippedInactive++
			skipped++
			return nil
		}

		b := newBuilder(nr)
		b.status = status
		b.situation = model.SituationFromCode(row.JuridicalSituation)
		b.legalForm = model.LegalFormFromCode(row.JuridicalForm)
		b.startDate = parseExtractDate(row.StartDate)
		builders[nr] = b
		return nil
	})
	if err != nil {
		return err
	}

	sum.record("identity", counts)
	im.obs.PassCompleted("identity", counts.Read, skipped)
	return nil
}

func (im *Importer) namesPass(path string, builders map[string]*builder, sum *Summary) error {
	im.obs.PassStarted("names")

	var skipped int64
	counts, err := streamRows(path, func(row *denominationRow) error {
		b, ok := im.lookup(builders, row.EntityNumber)
		if !ok {
			skipped++
			return nil
		}
		b.setName(row.TypeOfDenomination, row.Language, row.Denomination)
		return nil
	})
	if err != nil {
		return err
	}

	sum.record("names", counts)
	im.obs.PassCompleted("names", counts.Read, skipped)
	return nil
}

func (im *Importer) addressPass(path string, builders map[string]*builder, sum *Summary) error {
	im.obs.PassStarted("addresses")

	var skipped int64
	counts, err := streamRows(path, func(row *addressRow) error {
		if row.TypeOfAddress != addressTypeSeat {
			skipped++
			return nil
		}
		b, ok := im.lookup(builders, row.EntityNumber)
		if !ok {
			skipped++
			return nil
		}
		b.setAddress(&model.Address{
			StreetNL: row.StreetNL,
			StreetFR: row.StreetFR,
			Number:   row.HouseNumber,
			Box:      row.Box,
			ZipCode:  row.Zipcode,
			CityNL:   row.MunicipalityNL,
			CityFR:   row.MunicipalityFR,
		})
		return nil
	})
	if err != nil {
		return err
	}

	sum.record("addresses", counts)
	im.obs.PassCompleted("addresses", counts.Read, skipped)
	return nil
}

func (im *Importer) contactPass(path string, builders map[string]*builder, sum *Summary) error {
	im.obs.PassStarted("contacts")

	var skipped int64
	counts, err := streamRows(path, func(row *contactRow) error {
		if row.EntityContact != contactLevelEnt {
			skipped++
			return nil
		}
		b, ok := im.lookup(builders, row.EntityNumber)
		if !ok {
			skipped++
			return nil
		}
		b.setContact(row.ContactType, row.Value)
		return nil
	})
	if err != nil {
		return err
	}

	sum.record("contacts", counts)
	im.obs.PassCompleted("contacts", counts.Read, skipped)
	return nil
}

func (im *Importer) branchPass(path string, builders map[string]*builder, sum *Summary) error {
	im.obs.PassStarted("branches")

	var skipped int64
	counts, err := streamRows(path, func(row *branchRow) error {
		b, ok := im.lookup(builders, row.EnterpriseNumber)
		if !ok {
			skipped++
			return nil
		}
		b.branchCount++
		return nil
	})
	if err != nil {
		return err
	}

	sum.record("branches", counts)
	im.obs.PassCompleted("branches", counts.Read, skipped)
	return nil
}

// flush finalizes every builder and upserts the records in chunks. A
// failed chunk is counted and logged; the run continues with the next one.
func (im *Importer) flush(ctx context.Context, builders map[string]*builder, sum *Summary) error {
	im.obs.PassStarted("flush")

	chunk := make([]model.Company, 0, im.opts.BatchSize)
	chunkNr := 0

	write := func() error {
		if len(chunk) == 0 {
			return nil
		}
		chunkNr++

		if !im.opts.DryRun {
			n, err := im.store.UpsertCompanies(ctx, chunk)
			if err != nil {
				sum.FailedBatches++
				zap.L().Error("importer: chunk upsert failed",
					zap.Int("chunk", chunkNr),
					zap.Int("rows", len(chunk)),
					zap.Error(err))
			} else {
				sum.Upserted += n
			}
		} else {
			sum.Upserted += int64(len(chunk))
		}

		im.obs.ChunkFlushed("flush", chunkNr, len(chunk))
		chunk = chunk[:0]
		return ctx.Err()
	}

	for _, b := range builders {
		c, ok := b.finalize()
		if !ok {
			sum.SkippedNameless++
			continue
		}
		chunk = append(chunk, c)
		if len(chunk) >= im.opts.BatchSize {
			if err := write(); err != nil {
				return eris.Wrap(err, "importer: flush")
			}
		}
	}
	if err := write(); err != nil {
		return eris.Wrap(err, "importer: flush")
	}

	im.obs.PassCompleted("flush", int64(len(builders)), sum.SkippedNameless)
	return nil
}

// lookup normalizes a row key and resolves its builder. Rows whose key
// does not normalize, or that reference an enterprise outside the
// identity set, are skipped by the caller.
func (im *Importer) lookup(builders map[string]*builder, rawNr string) (*builder, bool) {
	nr, err := entnum.Normalize(rawNr)
	if err != nil {
		return nil, false
	}
	b, ok := builders[nr]
	return b, ok
}

// parseExtractDate converts the extract's dd-mm-yyyy dates to ISO 8601.
// Unparseable dates come back empty rather than failing the row.
func parseExtractDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse("02-01-2006", s)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
