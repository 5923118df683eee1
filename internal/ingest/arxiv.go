// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest acquires paper metadata from the arXiv API and writes the
// snapshot the recommender is built from.
package ingest

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-recommender/internal/httputil"
	"github.com/pdiddy/paper-recommender/internal/observability"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

// Defaults for IngestConfig fields left zero.
const (
	DefaultAPIBase    = "https://export.arxiv.org/api/query"
	DefaultQuery      = "cat:cs.AI OR cat:cs.LG"
	DefaultMaxResults = 500
	DefaultPageSize   = 100
)

// DefaultIngestConfig returns the acquisition defaults. arXiv asks clients
// to wait three seconds between calls.
func DefaultIngestConfig() types.IngestConfig {
	return types.IngestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "paper-recommender/0.1",
		},
		APIBase:       DefaultAPIBase,
		Query:         DefaultQuery,
		MaxResults:    DefaultMaxResults,
		PageSize:      DefaultPageSize,
		RatePerSecond: 1.0 / 3.0,
		MaxRetries:    5,
	}
}

// Fetcher pages through arXiv search results.
type Fetcher struct {
	Client  *http.Client
	Limiter *httputil.RateLimiter
	Config  types.IngestConfig
	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// NewFetcher builds a fetcher from cfg, filling zero fields with defaults.
// metrics may be nil.
func NewFetcher(cfg types.IngestConfig, logger zerolog.Logger, metrics *observability.Metrics) *Fetcher {
	def := DefaultIngestConfig()
	if cfg.APIBase == "" {
		cfg.APIBase = def.APIBase
	}
	if cfg.Query == "" {
		cfg.Query = def.Query
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return &Fetcher{
		Client:  &http.Client{Timeout: cfg.Timeout},
		Limiter: httputil.NewRateLimiter(cfg.RatePerSecond),
		Config:  cfg,
		Logger:  observability.WithComponent(logger, "ingest"),
		Metrics: metrics,
	}
}

// Page is one decoded API response.
type Page struct {
	Records      []types.RawRecord
	TotalResults int
}

// Fetch retrieves up to Config.MaxResults records, one page per rate
// limiter token. Paging stops early when arXiv returns a short or empty
// page. Records repeated across pages are kept once.
func (f *Fetcher) Fetch(ctx context.Context) ([]types.RawRecord, error) {
	var (
		records []types.RawRecord
		seen    = make(map[string]bool)
	)
	for start := 0; start < f.Config.MaxResults; {
		n := min(f.Config.PageSize, f.Config.MaxResults-start)
		page, err := f.FetchPage(ctx, start, n)
		f.Metrics.RecordFetchPage(err)
		if err != nil {
			return nil, err
		}
		for _, r := range page.Records {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			records = append(records, r)
		}
		f.Logger.Info().
			Int("start", start).
			Int("page_records", len(page.Records)).
			Int("total_results", page.TotalResults).
			Int("collected", len(records)).
			Msg("fetched arXiv page")

		start += len(page.Records)
		if len(page.Records) < n || (page.TotalResults > 0 && start >= page.TotalResults) {
			break
		}
	}
	return records, nil
}

// FetchPage requests n entries beginning at start.
func (f *Fetcher) FetchPage(ctx context.Context, start, n int) (Page, error) {
	params := url.Values{}
	params.Set("search_query", f.Config.Query)
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(n))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Config.APIBase+"?"+params.Encode(), nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.Config.UserAgent)

	policy := httputil.RetryPolicy{
		MaxRetries: f.Config.MaxRetries,
		Logger:     f.Logger,
		OnRetry:    func(int, int, time.Duration) { f.Metrics.RecordFetchRetry() },
	}
	resp, err := f.Limiter.Do(ctx, f.Client, req, policy)
	if err != nil {
		return Page{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return Page{}, fmt.Errorf("parsing arXiv response: %w", err)
	}

	page := Page{TotalResults: feed.TotalResults}
	for _, e := range feed.Entries {
		if r, ok := e.record(); ok {
			page.Records = append(page.Records, r)
		}
	}
	return page, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	TotalResults int          `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// record converts an entry; entries without a usable id are skipped.
func (e arxivEntry) record() (types.RawRecord, bool) {
	id := extractArxivID(e.ID)
	if id == "" {
		return types.RawRecord{}, false
	}
	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if name := collapseSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}
	return types.RawRecord{
		ID:        id,
		Title:     collapseSpace(e.Title),
		Summary:   collapseSpace(e.Summary),
		Published: strings.TrimSpace(e.Published),
		Authors:   strings.Join(authors, ", "),
	}, true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041",
// "http://arxiv.org/abs/cs/0112017v1" → "cs/0112017").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
