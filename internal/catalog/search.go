// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-recommender/pkg/types"
)

const defaultSearchLimit = 20

// Search returns records whose title or summary matches query, best match
// first. With FTS5 the query is split into terms that must all appear;
// without it each term is matched as a case-insensitive substring.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.RawRecord, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var (
		stmt string
		args []any
	)
	if s.fts {
		stmt = `SELECT p.id, p.title, p.summary, p.published, p.authors
			FROM papers_fts
			JOIN papers p ON p.seq = papers_fts.rowid
			WHERE papers_fts MATCH ?
			ORDER BY papers_fts.rank, p.seq
			LIMIT ?`
		args = []any{ftsQuery(terms), limit}
	} else {
		var qb strings.Builder
		qb.WriteString(`SELECT id, title, summary, published, authors FROM papers WHERE 1=1`)
		for _, t := range terms {
			qb.WriteString(` AND (lower(title) LIKE ? OR lower(summary) LIKE ?)`)
			like := "%" + strings.ToLower(t) + "%"
			args = append(args, like, like)
		}
		qb.WriteString(` ORDER BY seq LIMIT ?`)
		args = append(args, limit)
		stmt = qb.String()
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ftsQuery quotes each term so user input cannot inject FTS5 operators.
func ftsQuery(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}
