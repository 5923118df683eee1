// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-recommender/internal/observability"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

// Holder owns the current snapshot. Readers take the snapshot without
// locking; Reload builds a replacement and swaps it in only on success,
// so a failed reload leaves the previous snapshot serving.
type Holder struct {
	src     Source
	index   types.IndexConfig
	ranking types.RankingConfig
	logger  zerolog.Logger
	metrics *observability.Metrics

	// Now returns the reference time for each request. Defaults to time.Now.
	Now func() time.Time

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewHolder creates an empty holder. Call Reload before serving requests.
// metrics may be nil.
func NewHolder(src Source, index types.IndexConfig, ranking types.RankingConfig, logger zerolog.Logger, metrics *observability.Metrics) *Holder {
	return &Holder{
		src:     src,
		index:   index,
		ranking: ranking,
		logger:  observability.WithComponent(logger, "ranker"),
		metrics: metrics,
		Now:     time.Now,
	}
}

// Reload builds a new snapshot from the source and makes it current.
// Concurrent calls are serialized.
func (h *Holder) Reload(ctx context.Context) (*Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	s, err := Build(ctx, h.src, h.index, h.logger)
	if err != nil {
		h.metrics.RecordSnapshotFailed(time.Since(start))
		h.logger.Error().Err(err).Str("source", h.src.Name()).Msg("snapshot build failed")
		return nil, err
	}

	h.current.Store(s)
	h.metrics.RecordSnapshotBuilt(s.Len(), s.VocabularySize, s.Dropped, s.BuildDuration)
	h.logger.Info().
		Str("generation", s.Generation).
		Int("papers", s.Len()).
		Int("vocabulary_size", s.VocabularySize).
		Int("dropped", s.Dropped).
		Dur("duration", s.BuildDuration).
		Msg("snapshot loaded")
	return s, nil
}

// Set makes s current without rebuilding.
func (h *Holder) Set(s *Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current.Store(s)
}

// Current returns the current snapshot, or ErrNoSnapshot before the first
// successful load.
func (h *Holder) Current() (*Snapshot, error) {
	s := h.current.Load()
	if s == nil {
		return nil, ErrNoSnapshot
	}
	return s, nil
}

// Ready reports whether a snapshot is loaded.
func (h *Holder) Ready() bool { return h.current.Load() != nil }

// Ranking returns the ranking configuration.
func (h *Holder) Ranking() types.RankingConfig { return h.ranking }

// Recommend ranks against the current snapshot at the holder's clock.
// topN of zero means the configured default.
func (h *Holder) Recommend(queryIndex, topN int) ([]types.Recommendation, error) {
	s, err := h.Current()
	if err != nil {
		h.metrics.RecordRecommendationFailed()
		return nil, err
	}
	return h.RecommendIn(s, queryIndex, topN)
}

// RecommendIn ranks against s, a snapshot the caller already holds, so the
// query index and the results come from the same corpus even if a reload
// lands in between. topN of zero means the configured default.
func (h *Holder) RecommendIn(s *Snapshot, queryIndex, topN int) ([]types.Recommendation, error) {
	if s == nil {
		h.metrics.RecordRecommendationFailed()
		return nil, ErrNoSnapshot
	}
	if topN == 0 {
		topN = h.ranking.DefaultTopN
	}

	recs, err := RecommendWith(s, queryIndex, topN, h.Now(), h.ranking)
	if err != nil {
		h.metrics.RecordRecommendationFailed()
		h.logger.Warn().Err(err).
			Int("query_index", queryIndex).
			Int("top_n", topN).
			Msg("recommendation rejected")
		return nil, err
	}

	h.metrics.RecordRecommendation(len(recs))
	h.logger.Info().
		Str("generation", s.Generation).
		Int("query_index", queryIndex).
		Int("top_n", topN).
		Int("result_count", len(recs)).
		Msg("recommendations generated")
	return recs, nil
}
