package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "kbo-cli/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("EnterpriseNumber,Status\n"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	rc, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "EnterpriseNumber,Status\n", string(body))
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 3})
	rc, err := f.Download(context.Background(), srv.URL)
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxRetries: 3})
	_, err := f.Download(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_DownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "extract.zip")
	f := NewHTTPFetcher(HTTPOptions{})

	n, err := f.DownloadToFile(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.Equal(t, int64(len("archive-bytes")), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(data))
}

func TestForURL(t *testing.T) {
	httpF := NewHTTPFetcher(HTTPOptions{})
	ftpF := NewFTPFetcher(FTPOptions{})

	f, err := ForURL("https://kbopub.example.be/extract.zip", httpF, ftpF)
	require.NoError(t, err)
	assert.Same(t, Fetcher(httpF), f)

	f, err = ForURL("ftp://ftp.example.be/extract.zip", httpF, ftpF)
	require.NoError(t, err)
	assert.Same(t, Fetcher(ftpF), f)

	_, err = ForURL("gopher://example.be/x", httpF, ftpF)
	assert.Error(t, err)
}

func TestParseFTPURL(t *testing.T) {
	host, path, err := parseFTPURL("ftp://ftp.example.be/pub/extract.zip")
	require.NoError(t, err)
	assert.Equal(t, "ftp.example.be:21", host)
	assert.Equal(t, "/pub/extract.zip", path)

	_, _, err = parseFTPURL("https://example.be/x")
	assert.Error(t, err)

	_, _, err = parseFTPURL("ftp://example.be")
	assert.Error(t, err)
}
