// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus turns raw snapshot rows into the ordered, validated paper
// list that the similarity index and the ranker share.
package corpus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-recommender/pkg/types"
)

// ErrDataUnavailable reports that the snapshot could not be read at all.
// It is fatal to snapshot loading and is never returned for single rows.
var ErrDataUnavailable = errors.New("data unavailable")

// Corpus is an ordered list of prepared papers. A paper's position is its
// row and column in the similarity matrix built from the same corpus.
type Corpus struct {
	papers []types.Paper
	byID   map[string]int
}

// publishedLayouts are tried in order when parsing the published column.
var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// ParsePublished parses a publication string into a UTC instant.
func ParsePublished(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty publication date")
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized publication date %q", s)
}

// Prepare builds a corpus from raw rows. Rows with blank combined text or
// an unparseable publication date are skipped and counted in dropped.
// Surviving rows keep their relative order.
func Prepare(records []types.RawRecord) (*Corpus, int) {
	c := &Corpus{
		papers: make([]types.Paper, 0, len(records)),
		byID:   make(map[string]int, len(records)),
	}
	dropped := 0

	for _, r := range records {
		combined := r.Title + " " + r.Summary
		if strings.TrimSpace(combined) == "" {
			dropped++
			continue
		}
		published, err := ParsePublished(r.Published)
		if err != nil {
			dropped++
			continue
		}

		p := types.Paper{
			ID:           strings.TrimSpace(r.ID),
			Title:        r.Title,
			Summary:      r.Summary,
			Authors:      types.SplitAuthors(r.Authors),
			Published:    r.Published,
			PublishedAt:  published,
			CombinedText: combined,
		}
		// First occurrence wins the id lookup; duplicates still get a row.
		if _, seen := c.byID[p.ID]; !seen && p.ID != "" {
			c.byID[p.ID] = len(c.papers)
		}
		c.papers = append(c.papers, p)
	}

	return c, dropped
}

// Load reads the snapshot at path and prepares it.
func Load(path string, logger zerolog.Logger) (*Corpus, int, error) {
	records, err := ReadSnapshot(path)
	if err != nil {
		return nil, 0, err
	}
	c, dropped := Prepare(records)
	logger.Info().
		Str("path", path).
		Int("rows", len(records)).
		Int("papers", c.Len()).
		Int("dropped", dropped).
		Msg("corpus prepared")
	return c, dropped, nil
}

// Len returns the number of papers.
func (c *Corpus) Len() int { return len(c.papers) }

// At returns the paper at position i. It panics if i is out of range,
// like a slice index.
func (c *Corpus) At(i int) types.Paper { return c.papers[i] }

// Papers returns a copy of the papers in corpus order.
func (c *Corpus) Papers() []types.Paper {
	out := make([]types.Paper, len(c.papers))
	copy(out, c.papers)
	return out
}

// Texts returns the combined text of every paper in corpus order.
func (c *Corpus) Texts() []string {
	texts := make([]string, len(c.papers))
	for i, p := range c.papers {
		texts[i] = p.CombinedText
	}
	return texts
}

// IndexOf returns the position of the paper with the given id.
func (c *Corpus) IndexOf(id string) (int, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	return i, ok
}

// FindByTitle returns the position of the first paper whose title matches
// exactly, falling back to a case- and whitespace-insensitive match.
func (c *Corpus) FindByTitle(title string) (int, bool) {
	for i, p := range c.papers {
		if p.Title == title {
			return i, true
		}
	}
	want := normalizeTitle(title)
	if want == "" {
		return 0, false
	}
	for i, p := range c.papers {
		if normalizeTitle(p.Title) == want {
			return i, true
		}
	}
	return 0, false
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
