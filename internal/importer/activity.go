package importer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opendata-be/kbo-cli/internal/entnum"
	"github.com/opendata-be/kbo-cli/internal/store"
)

// activityAgg accumulates the codes of one enterprise inside the current
// flush batch. seen dedupes repeated codes within the batch; cross-batch
// duplicates are absorbed by the store's union-insert.
type activityAgg struct {
	codes []string
	seen  map[string]struct{}
	main  string
}

func (a *activityAgg) add(code string, isMain bool) {
	if _, dup := a.seen[code]; !dup {
		a.seen[code] = struct{}{}
		a.codes = append(a.codes, code)
	}
	if isMain && a.main == "" {
		a.main = code
	}
}

// activityPass streams the activity file with memory bounded by the
// distinct-key limit: once the batch holds ActivityKeyLimit enterprises
// it is converted to partial updates and applied, then the batch resets.
// The store unions codes into the existing set and only fills the main
// code when none is stored, so flush boundaries never lose or reorder
// anything.
func (im *Importer) activityPass(ctx context.Context, path string, sum *Summary) error {
	im.obs.PassStarted("activity")

	batch := make(map[string]*activityAgg, im.opts.ActivityKeyLimit)
	chunkNr := 0

	flushBatch := func() error {
		if len(batch) == 0 {
			return nil
		}
		chunkNr++

		updates := make([]store.ActivityUpdate, 0, len(batch))
		for nr, agg := range batch {
			updates = append(updates, store.ActivityUpdate{
				EnterpriseNr: nr,
				Codes:        agg.codes,
				Main:         agg.main,
			})
		}

		if !im.opts.DryRun {
			if err := im.store.ApplyActivityUpdates(ctx, updates); err != nil {
				sum.FailedBatches++
				zap.L().Error("importer: activity batch failed",
					zap.Int("batch", chunkNr),
					zap.Int("enterprises", len(updates)),
					zap.Error(err))
			} else {
				sum.ActivityUpdates += int64(len(updates))
			}
		} else {
			sum.ActivityUpdates += int64(len(updates))
		}

		im.obs.ChunkFlushed("activity", chunkNr, len(updates))
		clear(batch)
		return ctx.Err()
	}

	var skipped int64
	counts, err := streamRows(path, func(row *activityRow) error {
		if !acceptedNaceVersions[row.NaceVersion] || row.NaceCode == "" {
			skipped++
			return nil
		}
		nr, err := entnum.Normalize(row.EntityNumber)
		if err != nil {
			skipped++
			return nil
		}

		agg, ok := batch[nr]
		if !ok {
			if len(batch) >= im.opts.ActivityKeyLimit {
				if err := flushBatch(); err != nil {
					return eris.Wrap(err, "importer: activity flush")
				}
			}
			agg = &activityAgg{seen: make(map[string]struct{}, 4)}
			batch[nr] = agg
		}
		agg.add(row.NaceCode, row.Classification == classificationMain)
		return nil
	})
	if err != nil {
		return err
	}
	if err := flushBatch(); err != nil {
		return eris.Wrap(err, "importer: activity flush")
	}

	sum.record("activity", counts)
	im.obs.PassCompleted("activity", counts.Read, skipped)
	return nil
}
