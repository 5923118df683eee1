// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-recommender/internal/corpus"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers [filter]",
	Short: "List papers in the prepared corpus",
	Long: `Prepare the corpus from the CSV snapshot and list it with each paper's
index, the value accepted by "recommend --index". An optional filter keeps
papers whose title contains it, ignoring case.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPapers,
}

func init() {
	f := papersCmd.Flags()
	f.Int("limit", 0, "maximum papers to list (0 for all)")
	f.String("format", "table", "output format: table, json, yaml")
	rootCmd.AddCommand(papersCmd)
}

type paperRow struct {
	Index     int    `json:"index" yaml:"index"`
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Published string `json:"published" yaml:"published"`
}

func runPapers(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	c, dropped, err := corpus.Load(appConfig.Corpus.SnapshotPath, logger)
	if err != nil {
		return err
	}

	filter := ""
	if len(args) == 1 {
		filter = strings.ToLower(args[0])
	}
	rows := filterPapers(c.Papers(), filter, limit)

	out := cmd.OutOrStdout()
	if handled, err := writeStructured(out, format, rows); handled {
		return err
	}
	for _, r := range rows {
		fmt.Fprintf(out, "%5d  %-12s  %s  %s\n", r.Index, r.ID, r.Published, r.Title)
	}
	fmt.Fprintf(out, "\n%d of %d papers (%d dropped)\n", len(rows), c.Len(), dropped)
	return nil
}

// filterPapers keeps papers whose lowercased title contains filter, up to
// limit rows when limit > 0.
func filterPapers(papers []types.Paper, filter string, limit int) []paperRow {
	var rows []paperRow
	for i, p := range papers {
		if filter != "" && !strings.Contains(strings.ToLower(p.Title), filter) {
			continue
		}
		published := ""
		if !p.PublishedAt.IsZero() {
			published = p.PublishedAt.Format("2006-01-02")
		}
		rows = append(rows, paperRow{Index: i, ID: p.ID, Title: p.Title, Published: published})
		if limit > 0 && len(rows) == limit {
			break
		}
	}
	return rows
}
