// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-recommender CLI: arXiv
// ingest, the SQLite catalog, hybrid recommendations and the HTTP API.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-recommender/internal/observability"
	"github.com/pdiddy/paper-recommender/internal/secrets"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state resolved in PersistentPreRunE.
var (
	appConfig     types.AppConfig
	logger        zerolog.Logger
	loadedSecrets secrets.Secrets
	registry      = prometheus.NewRegistry()
	metrics       *observability.Metrics
)

// rootCmd is the base command for the paper-recommender CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-recommender",
	Short: "Hybrid content and recency recommender for arXiv papers",
	Long: `paper-recommender fetches paper metadata from arXiv, builds a TF-IDF
similarity index over titles and abstracts, and recommends papers similar to
a chosen one, favouring recent work.

Typical use: "paper-recommender ingest" once, then "recommend --title ..." or
"serve" for the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		appConfig = cfg
		logger = observability.NewLogger(cfg.Logging)
		if metrics == nil {
			metrics = observability.NewMetrics(registry, "paper_recommender")
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-recommender.yaml or ~/.config/paper-recommender/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of secret files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("snapshot", "", "CSV snapshot path")
	rootCmd.PersistentFlags().String("catalog", "", "SQLite catalog path")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("corpus.snapshot_path", rootCmd.PersistentFlags().Lookup("snapshot"))
	_ = viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
}

func initConfig() {
	// .env values become environment variables; existing ones win.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-recommender")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-recommender"))
		}
	}

	viper.SetEnvPrefix("PAPER_RECOMMENDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
