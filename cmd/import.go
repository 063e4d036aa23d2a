package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opendata-be/kbo-cli/internal/importer"
)

var (
	importEnterprises   string
	importDenominations string
	importAddresses     string
	importContacts      string
	importBranches      string
	importActivities    string
	importBatchSize     int
	importActiveOnly    bool
	importDryRun        bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Join the extract CSVs into the record store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importBatchSize > 0 {
			cfg.Import.BatchSize = importBatchSize
		}
		if cmd.Flags().Changed("active-only") {
			cfg.Import.ActiveOnly = importActiveOnly
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		im := importer.New(st, importer.Options{
			BatchSize:        cfg.Import.BatchSize,
			ActivityKeyLimit: cfg.Import.ActivityKeyLimit,
			ActiveOnly:       cfg.Import.ActiveOnly,
			DryRun:           importDryRun,
		}, importer.NewZapObserver())

		sum, err := im.Run(ctx, importer.Sources{
			Enterprises:   importEnterprises,
			Denominations: importDenominations,
			Addresses:     importAddresses,
			Contacts:      importContacts,
			Branches:      importBranches,
			Activities:    importActivities,
		})
		if err != nil {
			return eris.Wrap(err, "import run")
		}

		zap.L().Info("import complete",
			zap.String("run_id", sum.RunID),
			zap.Bool("dry_run", sum.DryRun),
			zap.Int64("upserted", sum.Upserted),
			zap.Int64("activity_updates", sum.ActivityUpdates),
			zap.Int64("invalid_keys", sum.InvalidKeys),
			zap.Int64("skipped_inactive", sum.SkippedInactive),
			zap.Int64("skipped_nameless", sum.SkippedNameless),
			zap.Int64("malformed_rows", sum.Malformed),
			zap.Int64("failed_batches", sum.FailedBatches),
			zap.Duration("elapsed", sum.FinishedAt.Sub(sum.StartedAt)),
		)

		if sum.FailedBatches > 0 {
			return eris.Errorf("import finished with %d failed batches", sum.FailedBatches)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importEnterprises, "enterprises", "", "path to enterprise.csv (required)")
	importCmd.Flags().StringVar(&importDenominations, "denominations", "", "path to denomination.csv")
	importCmd.Flags().StringVar(&importAddresses, "addresses", "", "path to address.csv")
	importCmd.Flags().StringVar(&importContacts, "contacts", "", "path to contact.csv")
	importCmd.Flags().StringVar(&importBranches, "branches", "", "path to branch.csv")
	importCmd.Flags().StringVar(&importActivities, "activities", "", "path to activity.csv")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "upsert chunk size (default from config)")
	importCmd.Flags().BoolVar(&importActiveOnly, "active-only", true, "drop non-active enterprises")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "run all passes without writing")
	_ = importCmd.MarkFlagRequired("enterprises")
	rootCmd.AddCommand(importCmd)
}
