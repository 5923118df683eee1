// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-recommender/internal/ingest"
	"github.com/pdiddy/paper-recommender/internal/observability"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables and config files can override any of them.
func setDefaults(v *viper.Viper) {
	in := ingest.DefaultIngestConfig()
	v.SetDefault("ingest.api_base", in.APIBase)
	v.SetDefault("ingest.query", in.Query)
	v.SetDefault("ingest.max_results", in.MaxResults)
	v.SetDefault("ingest.page_size", in.PageSize)
	v.SetDefault("ingest.rate_per_second", in.RatePerSecond)
	v.SetDefault("ingest.max_retries", in.MaxRetries)
	v.SetDefault("ingest.timeout", in.Timeout)
	v.SetDefault("ingest.user_agent", "paper-recommender/"+version)

	v.SetDefault("corpus.snapshot_path", "data/raw_papers.csv")

	idx := types.DefaultIndexConfig()
	v.SetDefault("index.min_df", idx.MinDF)
	v.SetDefault("index.ngram_max", idx.NGramMax)

	rk := types.DefaultRankingConfig()
	v.SetDefault("ranking.recency_window_days", rk.RecencyWindowDays)
	v.SetDefault("ranking.max_boost", rk.MaxBoost)
	v.SetDefault("ranking.default_top_n", rk.DefaultTopN)

	v.SetDefault("catalog.path", "data/catalog.db")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	lg := observability.DefaultLoggingConfig()
	v.SetDefault("logging.level", lg.Level)
	v.SetDefault("logging.format", lg.Format)
	v.SetDefault("logging.output", lg.Output)
}

// loadConfig decodes and validates the application configuration.
func loadConfig(v *viper.Viper) (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	// Empty flag values bound to keys shadow the defaults.
	if cfg.Corpus.SnapshotPath == "" {
		cfg.Corpus.SnapshotPath = "data/raw_papers.csv"
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "data/catalog.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = observability.DefaultLoggingConfig().Level
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
