// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-recommender/pkg/types"
)

// SnapshotHeader is the column order written by WriteSnapshot.
var SnapshotHeader = []string{"id", "title", "summary", "published", "authors"}

// ReadSnapshot reads the CSV snapshot at path. Columns are matched by
// header name in any order; extra columns are ignored. Any failure to
// read the file as a whole wraps ErrDataUnavailable.
func ReadSnapshot(path string) ([]types.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening snapshot %s: %v", ErrDataUnavailable, path, err)
	}
	defer f.Close()

	records, err := DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading snapshot %s: %v", ErrDataUnavailable, path, err)
	}
	return records, nil
}

// DecodeSnapshot parses CSV snapshot rows from r.
func DecodeSnapshot(r io.Reader) ([]types.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("snapshot is empty")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"id", "published"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("snapshot header missing %q column", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []types.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(records)+2, err)
		}
		records = append(records, types.RawRecord{
			ID:        field(row, "id"),
			Title:     field(row, "title"),
			Summary:   field(row, "summary"),
			Published: field(row, "published"),
			Authors:   field(row, "authors"),
		})
	}
	return records, nil
}

// WriteSnapshot writes records to path as a CSV snapshot, creating the
// parent directory if needed. The file is written to a temporary name and
// renamed so readers never observe a partial snapshot.
func WriteSnapshot(path string, records []types.RawRecord) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.csv")
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodeSnapshot(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming snapshot file: %w", err)
	}
	return nil
}

// EncodeSnapshot writes the header and records as CSV to w.
func EncodeSnapshot(w io.Writer, records []types.RawRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SnapshotHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.ID, r.Title, r.Summary, r.Published, r.Authors}); err != nil {
			return fmt.Errorf("writing record %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	return nil
}
