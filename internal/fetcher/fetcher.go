// Package fetcher downloads bulk extract archives over HTTP or FTP.
package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads a URL to a stream or a local file.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path.
	// Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
