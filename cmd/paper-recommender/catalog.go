// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-recommender/internal/catalog"
	"github.com/pdiddy/paper-recommender/internal/corpus"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the SQLite paper catalog",
	Long: `The catalog accumulates papers across ingest runs. It can seed the
recommender ("recommend --source catalog"), be exported back to a CSV
snapshot, or be searched by keyword.`,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [snapshot.csv]",
	Short: "Upsert a CSV snapshot into the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appConfig.Corpus.SnapshotPath
		if len(args) == 1 {
			path = args[0]
		}
		records, err := corpus.ReadSnapshot(path)
		if err != nil {
			return err
		}
		store, err := catalog.Open(appConfig.Catalog.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		inserted, updated, err := store.Upsert(cmd.Context(), records)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d inserted, %d updated\n", path, inserted, updated)
		return nil
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export the catalog as a CSV snapshot, YAML or JSON",
	Long: `Write every catalog paper to path. The format follows the file
extension: .yaml/.yml and .json write structured listings, anything else
writes a CSV snapshot usable by "recommend".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := catalog.Open(appConfig.Catalog.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		path := args[0]
		var n int
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			n, err = store.ExportYAML(cmd.Context(), path)
		case ".json":
			n, err = store.ExportJSON(cmd.Context(), path)
		default:
			n, err = store.ExportSnapshot(cmd.Context(), path)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d papers to %s\n", n, path)
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search over catalog titles and abstracts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")

		store, err := catalog.Open(appConfig.Catalog.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if handled, err := writeStructured(out, format, records); handled {
			return err
		}
		for _, r := range records {
			fmt.Fprintf(out, "%-12s  %s\n", r.ID, r.Title)
		}
		fmt.Fprintf(out, "\n%d results\n", len(records))
		return nil
	},
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog size and search mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := catalog.Open(appConfig.Catalog.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		mode := "like"
		if store.FullText() {
			mode = "fts5"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d papers, search=%s\n", appConfig.Catalog.Path, n, mode)
		return nil
	},
}

func init() {
	catalogSearchCmd.Flags().Int("limit", 20, "maximum results")
	catalogSearchCmd.Flags().String("format", "table", "output format: table, json, yaml")

	catalogCmd.AddCommand(catalogImportCmd, catalogExportCmd, catalogSearchCmd, catalogStatsCmd)
	rootCmd.AddCommand(catalogCmd)
}
