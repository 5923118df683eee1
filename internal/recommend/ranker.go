// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend ranks papers against a query paper by blending
// textual similarity with a recency boost.
package recommend

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/pdiddy/paper-recommender/pkg/types"
)

var (
	// ErrIndexOutOfRange reports a query position outside the corpus.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidTopN reports a non-positive result count.
	ErrInvalidTopN = errors.New("top_n must be at least 1")

	// ErrNoSnapshot reports that no snapshot has been loaded yet.
	ErrNoSnapshot = errors.New("no snapshot loaded")
)

// Recommend ranks every other paper in s against the paper at queryIndex
// using the default ranking configuration.
func Recommend(s *Snapshot, queryIndex, topN int, now time.Time) ([]types.Recommendation, error) {
	return RecommendWith(s, queryIndex, topN, now, types.DefaultRankingConfig())
}

// RecommendWith scores each candidate as its cosine similarity to the query
// plus DateBoost of its age at now, then returns the topN highest scores.
// Ties go to the lower corpus position. The query paper is never returned.
func RecommendWith(s *Snapshot, queryIndex, topN int, now time.Time, cfg types.RankingConfig) ([]types.Recommendation, error) {
	if s == nil {
		return nil, ErrNoSnapshot
	}
	n := s.Len()
	if queryIndex < 0 || queryIndex >= n {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, queryIndex, n)
	}
	if topN < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopN, topN)
	}

	candidates := make([]types.Recommendation, 0, n-1)
	for i := 0; i < n; i++ {
		if i == queryIndex {
			continue
		}
		p := s.corpus.At(i)
		sim := s.matrix.At(queryIndex, i)
		boost := DateBoost(DaysSince(p.PublishedAt, now), cfg)
		candidates = append(candidates, types.Recommendation{
			Index:      i,
			Paper:      p,
			Similarity: sim,
			Boost:      boost,
			Score:      sim + boost,
		})
	}

	slices.SortStableFunc(candidates, func(a, b types.Recommendation) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates, nil
}
