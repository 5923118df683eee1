// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-recommender
// pipeline: raw snapshot rows, prepared papers, recommendation results and
// configuration.
package types

import (
	"strings"
	"time"
)

// RawRecord is one row of the snapshot file exactly as read from disk.
// Title and Summary may be empty; Published is an unparsed date string.
type RawRecord struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Summary   string `json:"summary" yaml:"summary"`
	Published string `json:"published" yaml:"published"`

	// Authors is the comma-joined author list (e.g. "Ada Lovelace, Alan Turing").
	Authors string `json:"authors" yaml:"authors"`
}

// Paper holds a prepared paper. It is immutable once the corpus is built.
type Paper struct {
	// ID is the globally unique identifier (an arXiv ID for ingested papers).
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the publication string as it appeared in the snapshot.
	Published string `json:"published" yaml:"published"`

	// PublishedAt is the parsed publication instant in UTC.
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`

	// CombinedText is title + " " + summary, the vectorizer input.
	CombinedText string `json:"-" yaml:"-"`
}

// AuthorsCSV returns the authors joined with ", " for display.
func (p Paper) AuthorsCSV() string {
	return strings.Join(p.Authors, ", ")
}

// AbstractURL returns the arXiv abstract page for the paper.
func (p Paper) AbstractURL() string {
	if p.ID == "" {
		return ""
	}
	return "https://arxiv.org/abs/" + p.ID
}

// SplitAuthors splits a comma-joined author string into trimmed names,
// dropping empty entries.
func SplitAuthors(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// Recommendation is one ranked candidate for a query paper.
type Recommendation struct {
	// Index is the candidate's position in the snapshot corpus.
	Index int `json:"index" yaml:"index"`

	// Paper is the candidate paper.
	Paper Paper `json:"paper" yaml:"paper"`

	// Similarity is the cosine similarity between query and candidate.
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// Boost is the recency bonus added to the similarity.
	Boost float64 `json:"boost" yaml:"boost"`

	// Score is the hybrid score, Similarity + Boost.
	Score float64 `json:"score" yaml:"score"`
}
