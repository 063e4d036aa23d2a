package enrich

import (
	"bytes"
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/opendata-be/kbo-cli/internal/extract"
	"github.com/opendata-be/kbo-cli/internal/model"
	"github.com/opendata-be/kbo-cli/internal/resilience"
)

// SnapshotSink receives page-text snapshots of failed extractions.
type SnapshotSink interface {
	Save(ctx context.Context, enterpriseNr, source, reason, pageText string) error
}

// exportDownloader is the optional portal capability of pulling the
// filing export linked from a page.
type exportDownloader interface {
	DownloadExport(ctx context.Context, exportURL string) ([]byte, error)
}

// Options tunes one crawl run.
type Options struct {
	// Workers bounds fetch concurrency. Defaults to 4.
	Workers int
	// RequestsPerMinute is the global outbound budget across all workers.
	// Defaults to 20.
	RequestsPerMinute int
	// MinDelay and MaxDelay bound the jittered politeness pause before
	// each navigation. Defaults 2s and 4s.
	MinDelay time.Duration
	MaxDelay time.Duration
	// MaxRetries is how often a transiently failing task is requeued
	// before it is marked failed. Defaults to 3.
	MaxRetries int
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.RequestsPerMinute <= 0 {
		o.RequestsPerMinute = 20
	}
	if o.MinDelay <= 0 && o.MaxDelay <= 0 {
		o.MinDelay = 2 * time.Second
		o.MaxDelay = 4 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	return o
}

// RunSummary aggregates the terminal outcomes of one crawl run.
type RunSummary struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Counts     map[TaskState]int `json:"counts"`
	Outcomes   []Outcome         `json:"-"`
}

// Crawler runs enrichment tasks through a bounded worker pool under a
// global request budget.
type Crawler struct {
	portals map[string]Portal
	writer  *Writer
	snaps   SnapshotSink // optional
	limiter *rate.Limiter
	opts    Options
}

// NewCrawler wires the crawler. snaps may be nil, in which case failed
// extractions are logged but not snapshotted.
func NewCrawler(writer *Writer, snaps SnapshotSink, opts Options, portals ...Portal) *Crawler {
	opts = opts.withDefaults()

	bySource := make(map[string]Portal, len(portals))
	for _, p := range portals {
		bySource[p.Source()] = p
	}

	return &Crawler{
		portals: bySource,
		writer:  writer,
		snaps:   snaps,
		limiter: rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1),
		opts:    opts,
	}
}

// Run processes all tasks and returns the aggregated summary. Individual
// task failures never abort the run; only context cancellation does.
func (c *Crawler) Run(ctx context.Context, tasks []Task) (*RunSummary, error) {
	sum := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Counts:    make(map[TaskState]int),
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for _, task := range tasks {
		g.Go(func() error {
			out := c.process(ctx, task)

			mu.Lock()
			sum.Counts[out.State]++
			sum.Outcomes = append(sum.Outcomes, out)
			mu.Unlock()

			if out.Err != nil {
				zap.L().Warn("enrichment task ended with error",
					zap.String("enterprise_nr", out.Task.EnterpriseNr),
					zap.String("source", out.Task.Source),
					zap.String("state", string(out.State)),
					zap.Int("retries", out.Retries),
					zap.Error(out.Err))
			}
			return ctx.Err()
		})
	}

	err := g.Wait()
	sum.FinishedAt = time.Now().UTC()
	return sum, err
}

// process owns one task from dequeue to its terminal state. Transient
// fetch failures requeue within the owning worker, incrementing the
// retry count up to the budget.
func (c *Crawler) process(ctx context.Context, t Task) Outcome {
	portal, ok := c.portals[t.Source]
	if !ok {
		return Outcome{Task: t, State: StateFailed, Err: eris.Errorf("enrich: no portal for source %q", t.Source)}
	}

	for {
		if err := c.pause(ctx); err != nil {
			return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: err}
		}

		page, err := portal.Fetch(ctx, t.EnterpriseNr)
		if err != nil {
			if !retryable(err) {
				return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: err}
			}
			if t.Retries >= c.opts.MaxRetries {
				return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: err}
			}
			t.Retries++
			continue
		}

		out := c.extract(ctx, portal, t, page)
		if out.State == stateRetry {
			if t.Retries >= c.opts.MaxRetries {
				return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: out.Err}
			}
			t.Retries++
			continue
		}
		return out
	}
}

// stateRetry is an internal marker for transient mid-task failures; it
// never appears in a summary.
const stateRetry TaskState = "retry"

// extract routes a fetched page to its strategy and writes the result.
func (c *Crawler) extract(ctx context.Context, portal Portal, t Task, page *Page) Outcome {
	if IsNoData(page.Text) {
		if err := c.writer.MarkNoData(ctx, t.EnterpriseNr, t.Source); err != nil {
			return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: err}
		}
		return Outcome{Task: t, State: StateNoData, Retries: t.Retries}
	}

	switch t.Source {
	case model.SourceFinancials:
		return c.extractFinancials(ctx, portal, t, page)
	case model.SourceRegistryDetail:
		return c.extractRegistry(ctx, t, page)
	default:
		return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: eris.Errorf("enrich: unknown source %q", t.Source)}
	}
}

func (c *Crawler) extractFinancials(ctx context.Context, portal Portal, t Task, page *Page) Outcome {
	link, ok := extract.FindExportLink(page.HTML, page.URL)
	if !ok {
		return c.extractionFailed(ctx, t, page, "no export link on filing page")
	}

	dl, ok := portal.(exportDownloader)
	if !ok {
		return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: eris.New("enrich: portal cannot download exports")}
	}

	data, err := dl.DownloadExport(ctx, link)
	if err != nil {
		if retryable(err) {
			return Outcome{Task: t, State: stateRetry, Retries: t.Retries, Err: err}
		}
		return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: err}
	}

	var rubrics extract.Rubrics
	if extract.IsXLSXLink(link) {
		rubrics, err = extract.ParseRubricsXLSX(data)
	} else {
		rubrics, err = extract.ParseRubricsCSV(bytes.NewReader(data))
	}
	if err != nil {
		return c.extractionFailed(ctx, t, page, "export did not parse: "+err.Error())
	}

	year := extract.FilingYear(page.Text, time.Now().Year()-1)
	snap := extract.Financials(year, rubrics)
	if snap == nil {
		return c.extractionFailed(ctx, t, page, "no metric resolved from export")
	}

	if err := c.writer.WriteFinancials(ctx, t.EnterpriseNr, snap); err != nil {
		return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: err}
	}
	return Outcome{Task: t, State: StateSuccess, Retries: t.Retries}
}

func (c *Crawler) extractRegistry(ctx context.Context, t Task, page *Page) Outcome {
	det := extract.RegistryDetails(page.Text)
	if det.Empty() {
		return c.extractionFailed(ctx, t, page, "no registry fields matched")
	}

	if err := c.writer.WriteRegistry(ctx, t.EnterpriseNr, det); err != nil {
		return Outcome{Task: t, State: StateFailed, Retries: t.Retries, Err: err}
	}
	return Outcome{Task: t, State: StateSuccess, Retries: t.Retries}
}

// extractionFailed records the page text for diagnosis. Terminal and not
// retried: refetching the same markup cannot help.
func (c *Crawler) extractionFailed(ctx context.Context, t Task, page *Page, reason string) Outcome {
	if c.snaps != nil {
		if err := c.snaps.Save(ctx, t.EnterpriseNr, t.Source, reason, page.Text); err != nil {
			zap.L().Warn("enrich: snapshot save failed",
				zap.String("enterprise_nr", t.EnterpriseNr),
				zap.Error(err))
		}
	}
	return Outcome{Task: t, State: StateExtractionFailed, Retries: t.Retries, Err: eris.New("enrich: " + reason)}
}

// pause applies the politeness jitter and the global request budget.
func (c *Crawler) pause(ctx context.Context) error {
	if delay := c.jitter(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return c.limiter.Wait(ctx)
}

func (c *Crawler) jitter() time.Duration {
	if c.opts.MaxDelay <= c.opts.MinDelay {
		return c.opts.MinDelay
	}
	return c.opts.MinDelay + time.Duration(rand.Int63n(int64(c.opts.MaxDelay-c.opts.MinDelay)))
}

// retryable treats transient network failures and an open circuit as
// requeueable; everything else is terminal.
func retryable(err error) bool {
	return resilience.IsTransient(err) || eris.Is(err, resilience.ErrCircuitOpen)
}
