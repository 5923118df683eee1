// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/pdiddy/paper-recommender/internal/catalog"
	"github.com/pdiddy/paper-recommender/internal/corpus"
	"github.com/pdiddy/paper-recommender/internal/recommend"
)

const (
	sourceCSV     = "csv"
	sourceCatalog = "catalog"
)

// openSource returns the record source named by kind. The returned close
// function is never nil.
func openSource(kind string) (recommend.Source, func(), error) {
	switch kind {
	case "", sourceCSV:
		return recommend.CSVSource{Path: appConfig.Corpus.SnapshotPath}, func() {}, nil
	case sourceCatalog:
		store, err := catalog.Open(appConfig.Catalog.Path, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown source %q (want %s or %s)", kind, sourceCSV, sourceCatalog)
	}
}

// resolveQuery maps one of id, title or index to a corpus position.
// Exactly one selector must be set; index < 0 means unset.
func resolveQuery(c *corpus.Corpus, id, title string, index int) (int, error) {
	set := 0
	for _, ok := range []bool{id != "", title != "", index >= 0} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return 0, errors.New("specify exactly one of --id, --title or --index")
	}

	switch {
	case id != "":
		i, ok := c.IndexOf(id)
		if !ok {
			return 0, fmt.Errorf("no paper with id %q", id)
		}
		return i, nil
	case title != "":
		i, ok := c.FindByTitle(title)
		if !ok {
			return 0, fmt.Errorf("no paper titled %q", title)
		}
		return i, nil
	default:
		if index >= c.Len() {
			return 0, fmt.Errorf("%w: %d (corpus has %d papers)", recommend.ErrIndexOutOfRange, index, c.Len())
		}
		return index, nil
	}
}
