package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pagelingo/pagelingo/cmd/pagelingo/ui"
	"github.com/pagelingo/pagelingo/internal/api"
	"github.com/pagelingo/pagelingo/internal/config"
	"github.com/pagelingo/pagelingo/internal/observability"
	"github.com/pagelingo/pagelingo/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the PageLingo HTTP API",
	Long: `Start the HTTP server: upload documents, poll session progress,
and fetch the rendered HTML view.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       logLevel(cfg),
		Format:      cfg.Observability.LogFormat,
		ServiceName: "pagelingo-api",
	})

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	repo := store.NewSessionRepository(db)

	cacheClient := newCacheClient(cfg, logger)
	defer cacheClient.Close()

	server := api.NewServer(cfg, logger, cacheClient, repo)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("server listening")
		ui.Info("Listening on http://%s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
