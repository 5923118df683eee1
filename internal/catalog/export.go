// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-recommender/internal/corpus"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

// ExportEntry is the exported form of a catalog record.
type ExportEntry struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Summary   string   `json:"summary" yaml:"summary"`
	Published string   `json:"published" yaml:"published"`
	Authors   []string `json:"authors" yaml:"authors"`
	URL       string   `json:"url" yaml:"url"`
}

// ExportSnapshot writes every record to path as a CSV snapshot.
func (s *Store) ExportSnapshot(ctx context.Context, path string) (int, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return 0, err
	}
	if err := corpus.WriteSnapshot(path, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportYAML writes every record to path as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, path string) (int, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return 0, err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	return len(entries), writeFile(path, data)
}

// ExportJSON writes every record to path as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, path string) (int, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return 0, err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}
	return len(entries), writeFile(path, data)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	entries := make([]ExportEntry, len(records))
	for i, r := range records {
		entries[i] = ExportEntry{
			ID:        r.ID,
			Title:     r.Title,
			Summary:   r.Summary,
			Published: r.Published,
			Authors:   types.SplitAuthors(r.Authors),
			URL:       types.Paper{ID: r.ID}.AbstractURL(),
		}
	}
	return entries, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
