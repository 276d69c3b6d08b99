package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthub/agenthub/internal/cache"
	"github.com/agenthub/agenthub/internal/config"
	"github.com/agenthub/agenthub/internal/logger"
	"github.com/agenthub/agenthub/internal/server"
	"github.com/agenthub/agenthub/internal/services"
	"github.com/agenthub/agenthub/internal/store"
)

// NewServeCmd starts the API server.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the AgentHub API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.Development()})

			db, err := store.Open(cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			defer store.Close(db)

			if err := store.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			// The cache is advisory; run without it when Redis is down.
			c, err := cache.New(cfg.RedisURL, log)
			if err != nil {
				log.Warn().Err(err).Msg("cache unavailable, continuing without it")
				c = nil
			} else {
				defer c.Close()
			}

			srv := server.New(cfg, db, c, services.PlaceholderResponder{}, log)

			httpServer := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           srv.Engine(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Int("port", cfg.Port).Msg("starting server")
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
}
