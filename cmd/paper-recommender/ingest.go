// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-recommender/internal/catalog"
	"github.com/pdiddy/paper-recommender/internal/ingest"
	"github.com/pdiddy/paper-recommender/internal/secrets"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch paper metadata from arXiv into the snapshot",
	Long: `Query the arXiv API, write the results to the CSV snapshot and, unless
--no-catalog is set, upsert them into the SQLite catalog.

Requests are rate limited to arXiv's published policy and retried on
HTTP 429 and 503. Set the arxiv-contact-email secret to identify yourself
in the User-Agent header.`,
	Example: `  paper-recommender ingest
  paper-recommender ingest --query "cat:cs.CL" --max-results 1000`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.String("query", "", "arXiv search_query (default from ingest.query)")
	f.Int("max-results", 0, "number of papers to fetch (default from ingest.max_results)")
	f.Bool("no-catalog", false, "skip updating the SQLite catalog")
	f.String("format", "table", "output format: table, json, yaml")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	query, _ := cmd.Flags().GetString("query")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	noCatalog, _ := cmd.Flags().GetBool("no-catalog")
	format, _ := cmd.Flags().GetString("format")

	cfg := appConfig.Ingest
	if query != "" {
		cfg.Query = query
	}
	if maxResults > 0 {
		cfg.MaxResults = maxResults
	}
	cfg.UserAgent = loadedSecrets.UserAgent(cfg.UserAgent)
	if loadedSecrets.Get(secrets.KeyArxivContactEmail) == "" {
		logger.Warn().Msg("no arxiv-contact-email secret; arXiv recommends identifying clients")
	}

	fetcher := ingest.NewFetcher(cfg, logger, metrics)

	var store ingest.Upserter
	if !noCatalog {
		s, err := catalog.Open(appConfig.Catalog.Path, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	res, err := ingest.Run(cmd.Context(), fetcher, appConfig.Corpus.SnapshotPath, store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if handled, err := writeStructured(out, format, res); handled {
		return err
	}
	fmt.Fprintf(out, "Fetched %d papers into %s\n", res.Fetched, res.SnapshotPath)
	if !noCatalog {
		fmt.Fprintf(out, "Catalog: %d inserted, %d updated\n", res.Inserted, res.Updated)
	}
	fmt.Fprintf(out, "Took %s\n", res.Duration.Round(time.Millisecond))
	return nil
}
