package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opendata-be/kbo-cli/internal/fetcher"
)

var fetchDest string

var fetchExtractCmd = &cobra.Command{
	Use:   "fetch-extract",
	Short: "Download and unpack the monthly extract archive",
	Long:  "Downloads the full open-data extract (HTTP or FTP) and unpacks the CSVs, ready for the import command.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("fetch-extract"); err != nil {
			return err
		}

		dest := fetchDest
		if dest == "" {
			dest = cfg.Fetch.TempDir
		}
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return eris.Wrapf(err, "create %s", dest)
		}

		httpF := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent: cfg.Portal.UserAgent,
			Timeout:   30 * time.Minute, // multi-GB archive
		})
		ftpF := fetcher.NewFTPFetcher(fetcher.FTPOptions{})

		f, err := fetcher.ForURL(cfg.Fetch.ExtractURL, httpF, ftpF)
		if err != nil {
			return err
		}

		archive := filepath.Join(dest, "extract.zip")
		n, err := f.DownloadToFile(ctx, cfg.Fetch.ExtractURL, archive)
		if err != nil {
			return eris.Wrap(err, "download extract")
		}
		zap.L().Info("extract downloaded",
			zap.String("archive", archive),
			zap.Int64("bytes", n))

		paths, err := fetcher.Unzip(archive, dest)
		if err != nil {
			return eris.Wrap(err, "unpack extract")
		}

		zap.L().Info("extract unpacked",
			zap.String("dir", dest),
			zap.Int("files", len(paths)))
		return nil
	},
}

func init() {
	fetchExtractCmd.Flags().StringVar(&fetchDest, "dest", "", "destination directory (default from config)")
	rootCmd.AddCommand(fetchExtractCmd)
}
