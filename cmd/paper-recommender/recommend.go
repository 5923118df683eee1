// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-recommender/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend papers similar to a chosen one",
	Long: `Build the similarity index over the current corpus and print the papers
most similar to the selected one, with a small boost for recent work.

Select the query paper with exactly one of --id, --title or --index.`,
	Example: `  paper-recommender recommend --title "Attention Is All You Need"
  paper-recommender recommend --id 2401.01234 --top-n 10 --format json
  paper-recommender recommend --index 0 --source catalog`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.String("id", "", "arXiv ID of the query paper")
	f.String("title", "", "title of the query paper (case and spacing insensitive)")
	f.Int("index", -1, "corpus position of the query paper")
	f.Int("top-n", 0, "number of recommendations (default from ranking.default_top_n)")
	f.String("format", recommend.FormatNameTable, "output format: table, json, yaml")
	f.String("source", sourceCSV, "corpus source: csv or catalog")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	id, _ := cmd.Flags().GetString("id")
	title, _ := cmd.Flags().GetString("title")
	index, _ := cmd.Flags().GetInt("index")
	topN, _ := cmd.Flags().GetInt("top-n")
	format, _ := cmd.Flags().GetString("format")
	sourceKind, _ := cmd.Flags().GetString("source")

	src, closeSource, err := openSource(sourceKind)
	if err != nil {
		return err
	}
	defer closeSource()

	holder := recommend.NewHolder(src, appConfig.Index, appConfig.Ranking, logger, metrics)
	snap, err := holder.Reload(cmd.Context())
	if err != nil {
		return err
	}

	q, err := resolveQuery(snap.Corpus(), id, title, index)
	if err != nil {
		return err
	}
	recs, err := holder.RecommendIn(snap, q, topN)
	if err != nil {
		return err
	}
	return recommend.Format(format, snap.Corpus().At(q), recs, cmd.OutOrStdout())
}
