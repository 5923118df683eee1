// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds the TF-IDF representation of a corpus and the dense
// pairwise cosine similarity matrix over it.
package index

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/pdiddy/paper-recommender/pkg/types"
)

// ErrModelingFailure reports that no similarity matrix can be built from
// the corpus, typically because no term survives the document frequency
// threshold.
var ErrModelingFailure = errors.New("modeling failure")

// Matrix is a symmetric N×N cosine similarity matrix stored row-major.
// It is never mutated after BuildMatrix returns.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix builds a matrix from explicit rows. The rows must form a
// square, symmetric matrix with non-negative entries.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	m := &Matrix{n: n, data: make([]float64, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), n)
		}
		copy(m.data[i*n:], row)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if m.At(i, j) < 0 {
				return nil, fmt.Errorf("negative similarity at (%d, %d)", i, j)
			}
			if m.At(i, j) != m.At(j, i) {
				return nil, fmt.Errorf("matrix not symmetric at (%d, %d)", i, j)
			}
		}
	}
	return m, nil
}

// Len returns N, the number of documents.
func (m *Matrix) Len() int { return m.n }

// At returns the similarity between documents i and j.
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	out := make([]float64, m.n)
	copy(out, m.data[i*m.n:(i+1)*m.n])
	return out
}

// Stats describes a completed build.
type Stats struct {
	Documents      int           `json:"documents" yaml:"documents"`
	VocabularySize int           `json:"vocabulary_size" yaml:"vocabulary_size"`
	CandidateTerms int           `json:"candidate_terms" yaml:"candidate_terms"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
}

// BuildMatrix vectorizes docs and computes every pairwise cosine
// similarity. Documents that share no vocabulary term score 0 against
// each other, and a document with no vocabulary term scores 0 against
// everything, itself included.
func BuildMatrix(docs []string, cfg types.IndexConfig) (*Matrix, Stats, error) {
	start := time.Now()
	if cfg.MinDF < 1 {
		cfg.MinDF = 1
	}
	if cfg.NGramMax < 1 {
		cfg.NGramMax = 1
	}
	if len(docs) == 0 {
		return nil, Stats{}, fmt.Errorf("%w: corpus has no documents", ErrModelingFailure)
	}

	vec, counts, candidates := Fit(docs, cfg.MinDF, cfg.NGramMax)
	if vec.Len() == 0 {
		return nil, Stats{}, fmt.Errorf("%w: empty vocabulary (%d documents, %d candidate terms, min_df=%d)",
			ErrModelingFailure, len(docs), candidates, cfg.MinDF)
	}

	rows := make([]Vector, len(docs))
	for i, c := range counts {
		rows[i] = vec.Transform(c)
	}

	m := similarity(rows)
	return m, Stats{
		Documents:      len(docs),
		VocabularySize: vec.Len(),
		CandidateTerms: candidates,
		Duration:       time.Since(start),
	}, nil
}

// similarity fills the upper triangle in parallel and mirrors it.
func similarity(rows []Vector) *Matrix {
	n := len(rows)
	m := &Matrix{n: n, data: make([]float64, n*n)}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				for j := i; j < n; j++ {
					s := rows[i].Dot(rows[j])
					m.data[i*n+j] = s
					m.data[j*n+i] = s
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
	return m
}
