// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/paper-recommender/internal/corpus"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

// Upserter stores fetched records, typically the SQLite catalog.
type Upserter interface {
	Upsert(ctx context.Context, records []types.RawRecord) (inserted, updated int, err error)
}

// Result summarizes an ingest run.
type Result struct {
	Fetched      int           `json:"fetched" yaml:"fetched"`
	SnapshotPath string        `json:"snapshot_path" yaml:"snapshot_path"`
	Inserted     int           `json:"inserted" yaml:"inserted"`
	Updated      int           `json:"updated" yaml:"updated"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
}

// Run fetches records, writes them to snapshotPath and, when store is not
// nil, upserts them into the catalog. An empty feed still writes a
// header-only snapshot.
func Run(ctx context.Context, f *Fetcher, snapshotPath string, store Upserter) (Result, error) {
	start := time.Now()
	res := Result{SnapshotPath: snapshotPath}

	f.Logger.Info().
		Str("query", f.Config.Query).
		Int("max_results", f.Config.MaxResults).
		Msg("fetching papers from arXiv")

	records, err := f.Fetch(ctx)
	if err != nil {
		return res, fmt.Errorf("fetching papers: %w", err)
	}
	res.Fetched = len(records)

	if err := corpus.WriteSnapshot(snapshotPath, records); err != nil {
		return res, fmt.Errorf("saving snapshot: %w", err)
	}

	if store != nil {
		res.Inserted, res.Updated, err = store.Upsert(ctx, records)
		if err != nil {
			return res, fmt.Errorf("updating catalog: %w", err)
		}
	}

	res.Duration = time.Since(start)
	f.Logger.Info().
		Int("fetched", res.Fetched).
		Str("snapshot", snapshotPath).
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Dur("duration", res.Duration).
		Msg("ingest complete")
	return res, nil
}
