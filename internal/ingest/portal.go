package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/aquascope/hydro/backend/pkg/httputil"
	"github.com/aquascope/hydro/backend/pkg/logger"
)

// PortalClient pulls station datasets from the public water-data
// portal. The portal publishes per-district CSV exports behind a plain
// HTML index page, so discovery is a scrape and downloads are throttled
// to stay polite.
type PortalClient struct {
	http    *httputil.Client
	baseURL string
	limiter *rate.Limiter
	logger  *logger.Logger
}

// StationFile is one discovered dataset link
type StationFile struct {
	Name string
	URL  string
}

// NewPortalClient creates a new portal client
func NewPortalClient(http *httputil.Client, baseURL string, perSec float64, burst int, log *logger.Logger) *PortalClient {
	if burst < 1 {
		burst = 1
	}
	return &PortalClient{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
		logger:  log.WithField("module", "portal"),
	}
}

// ListDatasets scrapes the portal index page for CSV dataset links
func (p *PortalClient) ListDatasets(ctx context.Context) ([]StationFile, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	indexURL := p.baseURL + "/datasets"
	resp, err := p.http.Get(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch portal index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("portal index returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse portal index: %w", err)
	}

	var files []StationFile
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".csv") {
			return
		}
		files = append(files, StationFile{
			Name: strings.TrimSpace(sel.Text()),
			URL:  p.resolve(indexURL, href),
		})
	})

	p.logger.WithField("datasets", len(files)).Info("Portal index scraped")
	return files, nil
}

// FetchAndImport downloads every discovered dataset and runs it through
// the importer. Dataset failures are logged and skipped; the sync keeps
// going.
func (p *PortalClient) FetchAndImport(ctx context.Context, importer *Importer, cfg Config) (*Result, error) {
	files, err := p.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}

	total := &Result{}
	for _, file := range files {
		if err := p.limiter.Wait(ctx); err != nil {
			return total, err
		}

		resp, err := p.http.Get(ctx, file.URL)
		if err != nil {
			p.logger.WithError(err).WithField("dataset", file.Name).Warn("Dataset fetch failed")
			continue
		}

		result, err := importer.ImportCSV(ctx, resp.Body, cfg)
		resp.Body.Close()
		if err != nil {
			p.logger.WithError(err).WithField("dataset", file.Name).Warn("Dataset import failed")
			continue
		}

		total.Imported += result.Imported
		total.Skipped += result.Skipped
		total.RowErrors = append(total.RowErrors, result.RowErrors...)
	}

	p.logger.WithFields(map[string]interface{}{
		"imported": total.Imported,
		"skipped":  total.Skipped,
	}).Info("Portal sync completed")

	return total, nil
}

// resolve makes a scraped href absolute against the page it came from
func (p *PortalClient) resolve(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
