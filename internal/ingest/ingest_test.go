// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-recommender/internal/corpus"
	"github.com/pdiddy/paper-recommender/internal/httputil"
	"github.com/pdiddy/paper-recommender/internal/observability"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <opensearch:totalResults>2</opensearch:totalResults>
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models
  are based on recurrent networks.  </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/cs/0112017v1</id>
    <published>2001-12-14T00:00:00Z</published>
    <title>An Old Paper</title>
    <summary>Old summary.</summary>
    <author><name>Someone</name></author>
  </entry>
  <entry>
    <id>not-an-arxiv-url</id>
    <title>Skipped</title>
  </entry>
</feed>`

// pagedFeed serves total entries, honouring start and max_results.
func pagedFeed(t *testing.T, total int, requests *int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		n, _ := strconv.Atoi(r.URL.Query().Get("max_results"))

		var b strings.Builder
		fmt.Fprintf(&b, `<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">`)
		fmt.Fprintf(&b, `<opensearch:totalResults>%d</opensearch:totalResults>`, total)
		for i := start; i < start+n && i < total; i++ {
			fmt.Fprintf(&b, `<entry><id>http://arxiv.org/abs/2401.%05dv1</id><published>2024-01-01T00:00:00Z</published>`+
				`<title>Paper %d</title><summary>Summary %d</summary><author><name>Author %d</name></author></entry>`, i, i, i, i)
		}
		b.WriteString(`</feed>`)
		fmt.Fprint(w, b.String())
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testFetcher(apiBase string, maxResults, pageSize int) *Fetcher {
	cfg := DefaultIngestConfig()
	cfg.APIBase = apiBase
	cfg.MaxResults = maxResults
	cfg.PageSize = pageSize
	cfg.RatePerSecond = 0
	return NewFetcher(cfg, zerolog.Nop(), nil)
}

func TestFetchPageParsesEntries(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, sampleFeed)
	}))
	defer ts.Close()

	f := testFetcher(ts.URL, 10, 10)
	f.Config.UserAgent = "paper-recommender/test (mailto:ada@example.org)"
	page, err := f.FetchPage(context.Background(), 0, 10)
	require.NoError(t, err)

	assert.Equal(t, 2, page.TotalResults)
	require.Len(t, page.Records, 2)
	assert.Equal(t, types.RawRecord{
		ID:        "1706.03762",
		Title:     "Attention Is All You Need",
		Summary:   "The dominant sequence transduction models are based on recurrent networks.",
		Published: "2017-06-12T17:57:34Z",
		Authors:   "Ashish Vaswani, Noam Shazeer",
	}, page.Records[0])
	assert.Equal(t, "cs/0112017", page.Records[1].ID)

	require.NotNil(t, got)
	assert.Equal(t, "cat:cs.AI OR cat:cs.LG", got.URL.Query().Get("search_query"))
	assert.Equal(t, "0", got.URL.Query().Get("start"))
	assert.Equal(t, "10", got.URL.Query().Get("max_results"))
	assert.Equal(t, "paper-recommender/test (mailto:ada@example.org)", got.Header.Get("User-Agent"))
}

func TestFetchPages(t *testing.T) {
	var requests int32
	ts := pagedFeed(t, 1000, &requests)

	records, err := testFetcher(ts.URL, 250, 100).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 250)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	assert.Equal(t, "2401.00000", records[0].ID)
	assert.Equal(t, "2401.00249", records[249].ID)
}

func TestFetchStopsAtEndOfResults(t *testing.T) {
	var requests int32
	ts := pagedFeed(t, 120, &requests)

	records, err := testFetcher(ts.URL, 500, 100).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 120)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestFetchEmptyFeedIsNotAnError(t *testing.T) {
	var requests int32
	ts := pagedFeed(t, 0, &requests)

	records, err := testFetcher(ts.URL, 500, 100).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestFetchRetriesThrottledPage(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, sampleFeed)
	}))
	defer ts.Close()

	f := testFetcher(ts.URL, 10, 10)
	f.Metrics = observability.NewMetrics(prometheus.NewRegistry(), "test")
	records, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.Metrics.FetchRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.Metrics.FetchPages.WithLabelValues(observability.OutcomeSuccess)))
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"http error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadRequest) }, "HTTP 400"},
		{"bad xml", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "<feed><entry>") }, "parsing arXiv response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := testFetcher(ts.URL, 10, 10).Fetch(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/1706.03762v5", "1706.03762"},
		{"http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"https://arxiv.org/abs/2301.07041v12", "2301.07041"},
		{"http://arxiv.org/abs/cs/0112017v1", "cs/0112017"},
		{"http://example.com/paper", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, extractArxivID(tt.input))
		})
	}
}

type recordingStore struct {
	got []types.RawRecord
	err error
}

func (s *recordingStore) Upsert(_ context.Context, records []types.RawRecord) (int, int, error) {
	s.got = records
	return len(records), 0, s.err
}

func TestRunWritesSnapshotAndCatalog(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sampleFeed)
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "data", "raw_papers.csv")
	store := &recordingStore{}
	res, err := Run(context.Background(), testFetcher(ts.URL, 10, 10), path, store)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Fetched)
	assert.Equal(t, 2, res.Inserted)
	assert.Len(t, store.got, 2)

	written, err := corpus.ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, store.got, written)

	c, dropped := corpus.Prepare(written)
	assert.Zero(t, dropped)
	assert.Equal(t, 2, c.Len())
}

func TestRunWithoutCatalog(t *testing.T) {
	var requests int32
	ts := pagedFeed(t, 0, &requests)

	path := filepath.Join(t.TempDir(), "raw_papers.csv")
	res, err := Run(context.Background(), testFetcher(ts.URL, 10, 10), path, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Fetched)

	written, err := corpus.ReadSnapshot(path)
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestRunCatalogFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sampleFeed)
	}))
	defer ts.Close()

	store := &recordingStore{err: errors.New("disk full")}
	_, err := Run(context.Background(), testFetcher(ts.URL, 10, 10), filepath.Join(t.TempDir(), "s.csv"), store)
	assert.ErrorContains(t, err, "updating catalog")
}
