// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-recommender/internal/observability"
	"github.com/pdiddy/paper-recommender/internal/recommend"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

var now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu      sync.Mutex
	records []types.RawRecord
	err     error
}

func (f *fakeSource) Records(context.Context) ([]types.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, f.err
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func testRecords() []types.RawRecord {
	return []types.RawRecord{
		{ID: "2401.00001", Title: "Graph Neural Networks for Molecules", Summary: "graph neural networks message passing", Published: "2026-06-01", Authors: "Ada Lovelace"},
		{ID: "2401.00002", Title: "Graph Neural Networks Survey", Summary: "graph neural networks overview", Published: "2025-06-01", Authors: "Alan Turing, Grace Hopper"},
		{ID: "2401.00003", Title: "Graph Neural Networks Benchmark", Summary: "graph neural networks evaluation", Published: "2020-01-01", Authors: ""},
		{ID: "2401.00004", Title: "Cooking With Graphs", Summary: "graph neural networks in the kitchen", Published: "2026-06-10", Authors: "Julia Child"},
	}
}

type fixture struct {
	srv     *Server
	src     *fakeSource
	holder  *recommend.Holder
	handler http.Handler
}

func newFixture(t *testing.T, load bool) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg, "test")
	src := &fakeSource{records: testRecords()}
	h := recommend.NewHolder(src, types.DefaultIndexConfig(), types.DefaultRankingConfig(), zerolog.Nop(), metrics)
	h.Now = func() time.Time { return now }
	if load {
		_, err := h.Reload(context.Background())
		require.NoError(t, err)
	}
	srv := New(types.ServerConfig{Address: "127.0.0.1:0"}, h, reg, metrics, zerolog.Nop())
	return &fixture{srv: srv, src: src, holder: h, handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthAndReadiness(t *testing.T) {
	f := newFixture(t, false)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/readyz").Code)

	_, err := f.holder.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/readyz").Code)
}

func TestEndpointsBeforeLoadReturn503(t *testing.T) {
	f := newFixture(t, false)
	for _, path := range []string{
		"/api/v1/papers",
		"/api/v1/papers/2401.00001",
		"/api/v1/papers/2401.00001/recommendations",
		"/api/v1/snapshot",
	} {
		rec := f.do(t, http.MethodGet, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Equal(t, "no snapshot loaded", decode[map[string]string](t, rec)["error"])
	}
}

func TestListPapers(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/v1/papers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	got := decode[listPapersResponse](t, rec)
	assert.Equal(t, 4, got.TotalCount)
	require.Len(t, got.Papers, 4)
	assert.Equal(t, "2401.00001", got.Papers[0].ID)
	assert.Equal(t, []string{}, got.Papers[2].Authors)

	got = decode[listPapersResponse](t, f.do(t, http.MethodGet, "/api/v1/papers?q=SURVEY"))
	assert.Equal(t, 1, got.TotalCount)
	assert.Equal(t, 1, got.Papers[0].Index)

	got = decode[listPapersResponse](t, f.do(t, http.MethodGet, "/api/v1/papers?limit=2&offset=1"))
	assert.Equal(t, 4, got.TotalCount)
	require.Len(t, got.Papers, 2)
	assert.Equal(t, "2401.00002", got.Papers[0].ID)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/papers?limit=0").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/papers?offset=-1").Code)
}

func TestGetPaper(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/v1/papers/2401.00002")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[paperResponse](t, rec)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, "graph neural networks overview", got.Summary)
	assert.Equal(t, []string{"Alan Turing", "Grace Hopper"}, got.Authors)
	assert.Equal(t, "2025-06-01", got.Published)
	assert.Equal(t, "https://arxiv.org/abs/2401.00002", got.URL)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/papers/nope").Code)
}

func TestRecommendations(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/api/v1/papers/2401.00001/recommendations?top_n=2")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[recommendationsResponse](t, rec)

	assert.Equal(t, "2401.00001", got.Query.ID)
	assert.Equal(t, 2, got.TopN)
	require.Len(t, got.Recommendations, 2)
	for i, r := range got.Recommendations {
		assert.NotEqual(t, "2401.00001", r.ID)
		assert.Equal(t, i+1, r.Rank)
		assert.InDelta(t, r.Similarity+r.Boost, r.Score, 1e-9)
		if i > 0 {
			assert.GreaterOrEqual(t, got.Recommendations[i-1].Score, r.Score)
		}
	}

	snap, err := f.holder.Current()
	require.NoError(t, err)
	assert.Equal(t, snap.Generation, got.Generation)
}

func TestRecommendationsDefaultTopN(t *testing.T) {
	f := newFixture(t, true)
	got := decode[recommendationsResponse](t, f.do(t, http.MethodGet, "/api/v1/papers/2401.00001/recommendations"))
	assert.Len(t, got.Recommendations, 3)
	assert.Equal(t, types.DefaultRankingConfig().DefaultTopN, got.TopN)
}

// reloadingHolder swaps in a reordered snapshot right after the first
// Current call, between id lookup and ranking.
type reloadingHolder struct {
	*recommend.Holder
	t    *testing.T
	src  *fakeSource
	once sync.Once
}

func (h *reloadingHolder) Current() (*recommend.Snapshot, error) {
	snap, err := h.Holder.Current()
	h.once.Do(func() {
		h.src.mu.Lock()
		records := testRecords()
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
		h.src.records = records
		h.src.mu.Unlock()
		_, reloadErr := h.Holder.Reload(context.Background())
		require.NoError(h.t, reloadErr)
	})
	return snap, err
}

func TestRecommendationsStayOnLookupSnapshotAcrossReload(t *testing.T) {
	f := newFixture(t, true)
	before, err := f.holder.Current()
	require.NoError(t, err)

	rh := &reloadingHolder{Holder: f.holder, t: t, src: f.src}
	srv := New(types.ServerConfig{Address: "127.0.0.1:0"}, rh, prometheus.NewRegistry(), nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers/2401.00001/recommendations?top_n=3", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	after, err := f.holder.Current()
	require.NoError(t, err)
	require.NotEqual(t, before.Generation, after.Generation, "reload must have happened")

	got := decode[recommendationsResponse](t, rec)
	assert.Equal(t, before.Generation, got.Generation)
	assert.Equal(t, "2401.00001", got.Query.ID)
	require.Len(t, got.Recommendations, 3)
	for _, r := range got.Recommendations {
		assert.NotEqual(t, "2401.00001", r.ID)
		assert.Equal(t, before.Corpus().At(r.Index).ID, r.ID, "index %d", r.Index)
	}
}

func TestRecommendationsBadInput(t *testing.T) {
	f := newFixture(t, true)
	for _, q := range []string{"0", "-1", "abc", "101"} {
		rec := f.do(t, http.MethodGet, "/api/v1/papers/2401.00001/recommendations?top_n="+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/papers/missing/recommendations").Code)
}

func TestSnapshotInfoAndReload(t *testing.T) {
	f := newFixture(t, true)

	before := decode[recommend.Info](t, f.do(t, http.MethodGet, "/api/v1/snapshot"))
	assert.Equal(t, 4, before.Papers)
	assert.Equal(t, "fake", before.Source)
	assert.Positive(t, before.VocabularySize)

	rec := f.do(t, http.MethodPost, "/api/v1/snapshot/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	after := decode[recommend.Info](t, rec)
	assert.NotEqual(t, before.Generation, after.Generation)

	// A failing reload reports 503 and keeps serving the last snapshot.
	f.src.fail(errors.New("disk gone"))
	rec = f.do(t, http.MethodPost, "/api/v1/snapshot/reload")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "paper data unavailable", decode[map[string]string](t, rec)["error"])

	current := decode[recommend.Info](t, f.do(t, http.MethodGet, "/api/v1/snapshot"))
	assert.Equal(t, after.Generation, current.Generation)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, true)
	f.do(t, http.MethodGet, "/api/v1/papers/2401.00001/recommendations?top_n=1")

	rec := f.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "test_recommendations_total"))
	assert.True(t, strings.Contains(body, `route="/api/v1/papers/{paperID}/recommendations"`))
	assert.True(t, strings.Contains(body, "test_snapshot_builds_total"))
}
