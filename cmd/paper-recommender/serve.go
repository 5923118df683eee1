// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-recommender/internal/recommend"
	"github.com/pdiddy/paper-recommender/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over HTTP",
	Long: `Build the initial snapshot and serve the JSON API:

  GET  /api/v1/papers                         list or search papers
  GET  /api/v1/papers/{id}                    one paper
  GET  /api/v1/papers/{id}/recommendations    ranked recommendations
  GET  /api/v1/snapshot                       snapshot metadata
  POST /api/v1/snapshot/reload                rebuild from the source

plus /healthz, /readyz and /metrics. The server does not start when the
initial snapshot cannot be built. A failed reload keeps serving the
previous snapshot.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.address)")
	serveCmd.Flags().String("source", sourceCSV, "corpus source: csv or catalog")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	sourceKind, _ := cmd.Flags().GetString("source")

	cfg := appConfig.Server
	if addr != "" {
		cfg.Address = addr
	}

	src, closeSource, err := openSource(sourceKind)
	if err != nil {
		return err
	}
	defer closeSource()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	holder := recommend.NewHolder(src, appConfig.Index, appConfig.Ranking, logger, metrics)
	if _, err := holder.Reload(ctx); err != nil {
		return fmt.Errorf("building initial snapshot: %w", err)
	}

	srv := server.New(cfg, holder, registry, metrics, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
