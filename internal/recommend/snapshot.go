// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-recommender/internal/corpus"
	"github.com/pdiddy/paper-recommender/internal/index"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

// Source supplies the raw rows a snapshot is built from.
type Source interface {
	// Records returns every row in source order.
	Records(ctx context.Context) ([]types.RawRecord, error)

	// Name identifies the source in logs (e.g. "csv:data/raw_papers.csv").
	Name() string
}

// CSVSource reads a CSV snapshot file.
type CSVSource struct {
	Path string
}

// Records reads the snapshot file.
func (s CSVSource) Records(_ context.Context) ([]types.RawRecord, error) {
	return corpus.ReadSnapshot(s.Path)
}

// Name returns "csv:" followed by the path.
func (s CSVSource) Name() string { return "csv:" + s.Path }

// Snapshot pairs a prepared corpus with the similarity matrix built from
// it. Row i of the matrix always describes paper i of the corpus. A
// snapshot is immutable and safe for concurrent readers.
type Snapshot struct {
	corpus *corpus.Corpus
	matrix *index.Matrix

	// Generation uniquely identifies this build.
	Generation string

	// BuiltAt is when the build finished.
	BuiltAt time.Time

	// Source names where the rows came from.
	Source string

	// VocabularySize is the number of TF-IDF terms.
	VocabularySize int

	// Dropped counts rows removed during preparation.
	Dropped int

	// BuildDuration is the time spent reading, preparing and indexing.
	BuildDuration time.Duration
}

// NewSnapshot bundles c and m. They must describe the same number of papers.
func NewSnapshot(c *corpus.Corpus, m *index.Matrix) (*Snapshot, error) {
	if c == nil || m == nil {
		return nil, fmt.Errorf("snapshot needs both a corpus and a matrix")
	}
	if c.Len() != m.Len() {
		return nil, fmt.Errorf("corpus has %d papers but matrix has %d rows", c.Len(), m.Len())
	}
	return &Snapshot{
		corpus:     c,
		matrix:     m,
		Generation: uuid.NewString(),
		BuiltAt:    time.Now().UTC(),
	}, nil
}

// Corpus returns the snapshot's papers.
func (s *Snapshot) Corpus() *corpus.Corpus { return s.corpus }

// Matrix returns the snapshot's similarity matrix.
func (s *Snapshot) Matrix() *index.Matrix { return s.matrix }

// Len returns the number of papers.
func (s *Snapshot) Len() int { return s.corpus.Len() }

// Build reads src, prepares the corpus and builds the similarity index.
// ctx is checked between phases. Read failures wrap
// corpus.ErrDataUnavailable; indexing failures wrap
// index.ErrModelingFailure.
func Build(ctx context.Context, src Source, cfg types.IndexConfig, logger zerolog.Logger) (*Snapshot, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := src.Records(ctx)
	if err != nil {
		if !errors.Is(err, corpus.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %s: %v", corpus.ErrDataUnavailable, src.Name(), err)
		}
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, dropped := corpus.Prepare(records)
	logger.Info().
		Str("source", src.Name()).
		Int("rows", len(records)).
		Int("papers", c.Len()).
		Int("dropped", dropped).
		Msg("corpus prepared")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, stats, err := index.BuildMatrix(c.Texts(), cfg)
	if err != nil {
		return nil, fmt.Errorf("building similarity index from %s: %w", src.Name(), err)
	}
	logger.Info().
		Int("documents", stats.Documents).
		Int("vocabulary_size", stats.VocabularySize).
		Dur("duration", stats.Duration).
		Msg("similarity index built")

	s, err := NewSnapshot(c, m)
	if err != nil {
		return nil, err
	}
	s.Source = src.Name()
	s.VocabularySize = stats.VocabularySize
	s.Dropped = dropped
	s.BuildDuration = time.Since(start)
	return s, nil
}

// Info summarizes a snapshot for display.
type Info struct {
	Generation     string        `json:"generation" yaml:"generation"`
	BuiltAt        time.Time     `json:"built_at" yaml:"built_at"`
	Source         string        `json:"source" yaml:"source"`
	Papers         int           `json:"papers" yaml:"papers"`
	VocabularySize int           `json:"vocabulary_size" yaml:"vocabulary_size"`
	Dropped        int           `json:"dropped" yaml:"dropped"`
	BuildDuration  time.Duration `json:"build_duration" yaml:"build_duration"`
}

// Info returns the snapshot's metadata.
func (s *Snapshot) Info() Info {
	return Info{
		Generation:     s.Generation,
		BuiltAt:        s.BuiltAt,
		Source:         s.Source,
		Papers:         s.Len(),
		VocabularySize: s.VocabularySize,
		Dropped:        s.Dropped,
		BuildDuration:  s.BuildDuration,
	}
}
