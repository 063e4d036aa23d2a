package enrich

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/opendata-be/kbo-cli/internal/entnum"
	"github.com/opendata-be/kbo-cli/internal/extract"
	"github.com/opendata-be/kbo-cli/internal/fetcher"
	"github.com/opendata-be/kbo-cli/internal/model"
	"github.com/opendata-be/kbo-cli/internal/resilience"
)

// Default portal URL patterns. Both take the enterprise number, each in
// the digit shape its portal expects.
const (
	DefaultFinancialURL = "https://consult.cbso.nbb.be/consult-enterprise/%s"
	DefaultRegistryURL  = "https://kbopub.economie.fgov.be/kbopub/toonondernemingps.html?ondernemingsnummer=%s"

	maxPageBytes = 512 * 1024
)

// Page is one fetched portal page, kept both raw (for link discovery)
// and as plaintext (for extraction and no-data matching).
type Page struct {
	URL   string
	Title string
	HTML  string
	Text  string
}

// Portal fetches the page for one enterprise from one external source.
type Portal interface {
	Source() string
	Fetch(ctx context.Context, enterpriseNr string) (*Page, error)
}

// HTTPPortal is a Portal over the shared HTTP fetcher, guarded by a
// per-portal circuit breaker so a down portal fails fast instead of
// burning the whole task queue's retry budget.
type HTTPPortal struct {
	source     string
	urlPattern string
	formatKey  func(string) string
	fetch      fetcher.Fetcher
	breaker    *resilience.CircuitBreaker
}

// NewFinancialPortal targets the filing portal, which addresses entities
// by grouped digits.
func NewFinancialPortal(f fetcher.Fetcher, urlPattern string) *HTTPPortal {
	if urlPattern == "" {
		urlPattern = DefaultFinancialURL
	}
	return newHTTPPortal(model.SourceFinancials, urlPattern, entnum.FormatDigitsGrouped, f)
}

// NewRegistryPortal targets the public detail pages, which take the
// plain 10-digit number.
func NewRegistryPortal(f fetcher.Fetcher, urlPattern string) *HTTPPortal {
	if urlPattern == "" {
		urlPattern = DefaultRegistryURL
	}
	return newHTTPPortal(model.SourceRegistryDetail, urlPattern, func(nr string) string { return nr }, f)
}

func newHTTPPortal(source, urlPattern string, formatKey func(string) string, f fetcher.Fetcher) *HTTPPortal {
	return &HTTPPortal{
		source:     source,
		urlPattern: urlPattern,
		formatKey:  formatKey,
		fetch:      f,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     time.Minute,
			ShouldTrip:       resilience.IsTransient,
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("portal circuit state changed",
					zap.String("portal", source),
					zap.Stringer("from", from),
					zap.Stringer("to", to))
			},
		}),
	}
}

func (p *HTTPPortal) Source() string { return p.source }

// Fetch loads the entity's page and reduces it to plaintext.
func (p *HTTPPortal) Fetch(ctx context.Context, enterpriseNr string) (*Page, error) {
	pageURL := fmt.Sprintf(p.urlPattern, p.formatKey(enterpriseNr))

	body, err := resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) ([]byte, error) {
		rc, err := p.fetch.Download(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(io.LimitReader(rc, maxPageBytes))
	})
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: fetch %s", pageURL)
	}

	html := string(body)
	return &Page{
		URL:   pageURL,
		Title: extract.ExtractTitle(body),
		HTML:  html,
		Text:  extract.StripHTML(html),
	}, nil
}

// DownloadExport pulls a filing export linked from a fetched page.
func (p *HTTPPortal) DownloadExport(ctx context.Context, exportURL string) ([]byte, error) {
	data, err := resilience.ExecuteVal(ctx, p.breaker, func(ctx context.Context) ([]byte, error) {
		rc, err := p.fetch.Download(ctx, exportURL)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(io.LimitReader(rc, 4*1024*1024))
	})
	if err != nil {
		return nil, eris.Wrapf(err, "enrich: download export %s", exportURL)
	}
	return data, nil
}
