// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-recommender/pkg/types"
)

// Output formats accepted by Format.
const (
	FormatNameTable = "table"
	FormatNameJSON  = "json"
	FormatNameYAML  = "yaml"
)

// Result is the flattened, display-ready form of a recommendation.
type Result struct {
	Rank       int      `json:"rank" yaml:"rank"`
	Index      int      `json:"index" yaml:"index"`
	ID         string   `json:"id" yaml:"id"`
	Title      string   `json:"title" yaml:"title"`
	Authors    []string `json:"authors" yaml:"authors"`
	Published  string   `json:"published" yaml:"published"`
	Similarity float64  `json:"similarity" yaml:"similarity"`
	Boost      float64  `json:"boost" yaml:"boost"`
	Score      float64  `json:"score" yaml:"score"`
	URL        string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// Results converts recommendations into ranked display rows.
func Results(recs []types.Recommendation) []Result {
	out := make([]Result, len(recs))
	for i, r := range recs {
		published := ""
		if !r.Paper.PublishedAt.IsZero() {
			published = r.Paper.PublishedAt.Format("2006-01-02")
		}
		authors := r.Paper.Authors
		if authors == nil {
			authors = []string{}
		}
		out[i] = Result{
			Rank:       i + 1,
			Index:      r.Index,
			ID:         r.Paper.ID,
			Title:      r.Paper.Title,
			Authors:    authors,
			Published:  published,
			Similarity: r.Similarity,
			Boost:      r.Boost,
			Score:      r.Score,
			URL:        r.Paper.AbstractURL(),
		}
	}
	return out
}

// Format writes recs to w in the named format.
func Format(format string, query types.Paper, recs []types.Recommendation, w io.Writer) error {
	switch strings.ToLower(format) {
	case "", FormatNameTable:
		FormatTable(query, recs, w)
		return nil
	case FormatNameJSON:
		return FormatJSON(recs, w)
	case FormatNameYAML:
		return FormatYAML(recs, w)
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

// FormatTable writes recommendations as a human-readable table to w.
func FormatTable(query types.Paper, recs []types.Recommendation, w io.Writer) {
	fmt.Fprintf(w, "Papers similar to: %s\n\n", query.Title)
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recommendations found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-56s  %-20s  %-10s  %-6s  %-6s  %-6s\n",
		"Rank", "Title", "Authors", "Published", "Sim", "Boost", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 122))

	for _, r := range Results(recs) {
		fmt.Fprintf(w, "%-4d  %-56s  %-20s  %-10s  %-6.3f  %-6.3f  %-6.3f\n",
			r.Rank, truncate(r.Title, 56), formatAuthors(r.Authors), r.Published,
			r.Similarity, r.Boost, r.Score)
		if r.URL != "" {
			fmt.Fprintf(w, "      %s\n", r.URL)
		}
	}

	fmt.Fprintf(w, "\n%d recommendations\n", len(recs))
}

// FormatJSON writes recommendations as indented JSON to w.
func FormatJSON(recs []types.Recommendation, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Results(recs))
}

// FormatYAML writes recommendations as a YAML list to w.
func FormatYAML(recs []types.Recommendation, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(Results(recs))
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
