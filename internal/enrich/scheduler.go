package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/opendata-be/kbo-cli/internal/entnum"
	"github.com/opendata-be/kbo-cli/internal/model"
	"github.com/opendata-be/kbo-cli/internal/store"
)

// Scheduler builds task lists from the store's staleness query. Pure
// selection; nothing is marked until a task reaches a terminal state.
type Scheduler struct {
	store store.Store
}

// NewScheduler creates a Scheduler over the record store.
func NewScheduler(st store.Store) *Scheduler {
	return &Scheduler{store: st}
}

// StaleTasks returns up to limit tasks for entities whose per-source
// timestamp is missing or older than the threshold.
func (s *Scheduler) StaleTasks(ctx context.Context, source string, threshold time.Duration, limit int) ([]Task, error) {
	if err := validSource(source); err != nil {
		return nil, err
	}

	keys, err := s.store.SelectStaleEnrichment(ctx, source, threshold, limit)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: select stale entities")
	}

	tasks := make([]Task, 0, len(keys))
	for _, key := range keys {
		tasks = append(tasks, Task{EnterpriseNr: key, Source: source})
	}
	return tasks, nil
}

// TaskForKey builds a single task after normalizing and checksum-checking
// the key, for targeted one-off enrichment.
func TaskForKey(rawKey, source string) (Task, error) {
	if err := validSource(source); err != nil {
		return Task{}, err
	}

	nr, err := entnum.Validate(rawKey)
	if err != nil {
		return Task{}, err
	}
	return Task{EnterpriseNr: nr, Source: source}, nil
}

func validSource(source string) error {
	switch source {
	case model.SourceFinancials, model.SourceRegistryDetail:
		return nil
	default:
		return eris.Errorf("enrich: unknown source %q", source)
	}
}
