package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opendata-be/kbo-cli/internal/enrich"
	"github.com/opendata-be/kbo-cli/internal/fetcher"
	"github.com/opendata-be/kbo-cli/internal/model"
	"github.com/opendata-be/kbo-cli/internal/store"
)

var (
	enrichKey       string
	enrichSource    string
	enrichLimit     int
	enrichStaleDays int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Crawl external portals for stale or missing enrichment data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("enrich"); err != nil {
			return err
		}
		source, err := resolveSource(enrichSource)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		var tasks []enrich.Task
		if enrichKey != "" {
			task, err := enrich.TaskForKey(enrichKey, source)
			if err != nil {
				return err
			}
			tasks = []enrich.Task{task}
		} else {
			limit := enrichLimit
			if limit <= 0 {
				limit = cfg.Enrich.Limit
			}
			staleness := cfg.Enrich.Staleness()
			if enrichStaleDays > 0 {
				staleness = time.Duration(enrichStaleDays) * 24 * time.Hour
			}

			tasks, err = enrich.NewScheduler(st).StaleTasks(ctx, source, staleness, limit)
			if err != nil {
				return err
			}
		}
		if len(tasks) == 0 {
			zap.L().Info("nothing to enrich")
			return nil
		}

		snaps, err := store.OpenSnapshots(cfg.Enrich.SnapshotPath)
		if err != nil {
			return eris.Wrap(err, "open snapshot store")
		}
		defer snaps.Close()

		httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent: cfg.Portal.UserAgent,
			Timeout:   time.Duration(cfg.Portal.TimeoutSecs) * time.Second,
		})

		crawler := enrich.NewCrawler(enrich.NewWriter(st), snaps, enrich.Options{
			Workers:           cfg.Enrich.Workers,
			RequestsPerMinute: cfg.Enrich.RequestsPerMinute,
			MinDelay:          time.Duration(cfg.Enrich.MinDelaySecs) * time.Second,
			MaxDelay:          time.Duration(cfg.Enrich.MaxDelaySecs) * time.Second,
			MaxRetries:        cfg.Enrich.MaxRetries,
		},
			enrich.NewFinancialPortal(httpFetcher, cfg.Portal.FinancialURL),
			enrich.NewRegistryPortal(httpFetcher, cfg.Portal.RegistryURL),
		)

		sum, err := crawler.Run(ctx, tasks)
		if err != nil {
			return eris.Wrap(err, "crawl run")
		}

		zap.L().Info("enrichment complete",
			zap.String("run_id", sum.RunID),
			zap.Int("tasks", len(tasks)),
			zap.Int("success", sum.Counts[enrich.StateSuccess]),
			zap.Int("no_data", sum.Counts[enrich.StateNoData]),
			zap.Int("extraction_failed", sum.Counts[enrich.StateExtractionFailed]),
			zap.Int("failed", sum.Counts[enrich.StateFailed]),
			zap.Duration("elapsed", sum.FinishedAt.Sub(sum.StartedAt)),
		)
		return nil
	},
}

// resolveSource maps the CLI source selector to a store source name.
func resolveSource(s string) (string, error) {
	switch s {
	case "financials":
		return model.SourceFinancials, nil
	case "registry":
		return model.SourceRegistryDetail, nil
	default:
		return "", eris.Errorf("unknown source %q (want financials or registry)", s)
	}
}

func init() {
	enrichCmd.Flags().StringVar(&enrichKey, "key", "", "enrich a single enterprise number")
	enrichCmd.Flags().StringVar(&enrichSource, "source", "financials", "target source: financials or registry")
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "max entities to select (default from config)")
	enrichCmd.Flags().IntVar(&enrichStaleDays, "staleness-days", 0, "re-enrich entities older than this (default from config)")
	rootCmd.AddCommand(enrichCmd)
}
