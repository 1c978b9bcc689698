package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"car-evaluator/config"
	"car-evaluator/scraper/polovni"
	"car-evaluator/server"
	"car-evaluator/services"
	"car-evaluator/utils"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command. version is reported by /health.
func NewServeCmd(version string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scrape and analyze HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.ServerPort = port
			}
			return runServe(cmd.Context(), cfg, version)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (default from SERVER_PORT)")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config, version string) error {
	logger := utils.NewLogger()
	logger.SetDebug(cfg.Debug)

	policy, err := services.LoadScoringPolicy(cfg.ScoringPolicyPath)
	if err != nil {
		return err
	}

	logger.Info("Starting car-evaluator %s", version)
	logger.Info("Config — concurrency: %d | rate: %dms | retries: %d | policy: %s",
		cfg.MaxConcurrency, cfg.RateLimitMs, cfg.MaxRetries, policy.Version)

	// /api/scrape answers 502 without a browser; /api/analyze still works
	var source server.ListingSource
	fetcher, err := polovni.NewBrowserFetcher(cfg.ChromeBin, logger)
	if err != nil {
		logger.Warn("Browser unavailable, scraping disabled: %v", err)
	} else {
		defer fetcher.Close()
		source = polovni.New(cfg, logger, fetcher)
	}

	handler := server.NewHandler(source,
		services.NewCleaner(logger),
		services.NewAnalyzer(logger, policy),
		logger, version)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           server.SetupRouter(cfg, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signalContext(parent)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
