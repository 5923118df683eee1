// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-recommender/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// IngestConfig holds settings for the arXiv acquisition stage.
type IngestConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIBase is the arXiv query endpoint.
	APIBase string `json:"api_base" yaml:"api_base" mapstructure:"api_base" validate:"required,url"`

	// Query is the arXiv search_query expression (default "cat:cs.AI OR cat:cs.LG").
	Query string `json:"query" yaml:"query" mapstructure:"query" validate:"required"`

	// MaxResults is the total number of entries to fetch (default 500).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"gte=1"`

	// PageSize is the number of entries requested per API call (default 100).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size" validate:"gte=1"`

	// RatePerSecond limits API calls; arXiv asks for one call every three seconds.
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second" mapstructure:"rate_per_second" validate:"gt=0"`

	// MaxRetries bounds retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
}

// CorpusConfig locates the snapshot file.
type CorpusConfig struct {
	// SnapshotPath is the CSV snapshot (default "data/raw_papers.csv").
	SnapshotPath string `json:"snapshot_path" yaml:"snapshot_path" mapstructure:"snapshot_path" validate:"required"`
}

// IndexConfig holds TF-IDF vectorizer parameters.
type IndexConfig struct {
	// MinDF drops terms appearing in fewer documents (default 3).
	MinDF int `json:"min_df" yaml:"min_df" mapstructure:"min_df" validate:"gte=1"`

	// NGramMax is the largest n-gram length; 2 means unigrams and bigrams.
	NGramMax int `json:"ngram_max" yaml:"ngram_max" mapstructure:"ngram_max" validate:"gte=1,lte=3"`
}

// DefaultIndexConfig returns the vectorizer defaults.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{MinDF: 3, NGramMax: 2}
}

// RankingConfig holds the hybrid ranker's recency boost parameters.
type RankingConfig struct {
	// RecencyWindowDays is the age at which the boost reaches zero (default 1095).
	RecencyWindowDays int `json:"recency_window_days" yaml:"recency_window_days" mapstructure:"recency_window_days" validate:"gte=1"`

	// MaxBoost is the boost given to a paper published today (default 0.05).
	MaxBoost float64 `json:"max_boost" yaml:"max_boost" mapstructure:"max_boost" validate:"gte=0"`

	// DefaultTopN is used when a caller does not ask for a specific count (default 5).
	DefaultTopN int `json:"default_top_n" yaml:"default_top_n" mapstructure:"default_top_n" validate:"gte=1"`
}

// DefaultRankingConfig returns the ranker defaults.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{RecencyWindowDays: 1095, MaxBoost: 0.05, DefaultTopN: 5}
}

// CatalogConfig locates the SQLite paper catalog.
type CatalogConfig struct {
	// Path is the database file (default "data/catalog.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Address         string        `json:"address" yaml:"address" mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum level (trace, debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console pretty"`

	// Output is stdout or stderr.
	Output string `json:"output" yaml:"output" mapstructure:"output" validate:"omitempty,oneof=stdout stderr"`
}

// AppConfig groups all stage configurations.
type AppConfig struct {
	Ingest  IngestConfig  `json:"ingest" yaml:"ingest" mapstructure:"ingest"`
	Corpus  CorpusConfig  `json:"corpus" yaml:"corpus" mapstructure:"corpus"`
	Index   IndexConfig   `json:"index" yaml:"index" mapstructure:"index"`
	Ranking RankingConfig `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}

var validate = validator.New()

// Validate checks every section against its struct tags.
func (c AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
