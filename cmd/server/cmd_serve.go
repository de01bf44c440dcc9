package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	web "catalog/internal/adapters/http"
	"catalog/internal/adapters/storage"
	"catalog/internal/application/workspace"
	"catalog/internal/config"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			b, err := openBackend()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = b.Close() }()

			if err := b.seedAdmin(ctx); err != nil {
				return fmt.Errorf("serve: seeding admin: %w", err)
			}
			if cfg.DataPort == config.DataPortMemory || !cfg.IsProduction() {
				res, err := b.seedCatalog(ctx)
				if err != nil {
					return fmt.Errorf("serve: seeding catalog: %w", err)
				}
				if res.ArtworkTypes > 0 {
					logger.Info("seed_event", "event", "catalog_seeded",
						"artwork_types", res.ArtworkTypes, "materials", res.Materials, "artworks", res.Artworks)
				}
			}

			csrfKey := cfg.CSRFKeyBytes()
			if csrfKey == nil {
				// Development only; Validate requires a key in production.
				csrfKey = make([]byte, 32)
				if _, err := rand.Read(csrfKey); err != nil {
					return fmt.Errorf("serve: generating csrf key: %w", err)
				}
				logger.Warn("csrf_key not set; sessions will not survive a restart")
			}

			workspaces := workspace.NewManager(b.ports, workspace.Config{
				IdleTTL:              cfg.IdleTTL(),
				RollbackOnAddFailure: cfg.Workspace.RollbackAddFailures,
				Recorder:             b.collector,
				Logger:               logger,
			})
			go workspaces.RunSweeper(ctx, cfg.SweepInterval())

			handler := web.NewMux(web.Config{
				StaticDir:      cfg.StaticDir,
				CSRFKey:        csrfKey,
				TrustedOrigins: cfg.TrustedOrigin,
				RateLimit:      cfg.RateLimit,
				SlowRequest:    cfg.SlowRequest(),
				SecureCookies:  cfg.IsProduction(),
			}, web.Deps{
				Workspaces: workspaces,
				Accounts:   b.accounts,
				Collector:  b.collector,
			})

			httpSrv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("catalog starting",
					"version", version,
					"addr", cfg.Addr,
					"env", cfg.Env,
					"data_port", cfg.DataPort,
					"schema", storage.LatestSchemaVersion())
				if listenErr := httpSrv.ListenAndServe(); listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
					errCh <- fmt.Errorf("serve: HTTP server: %w", listenErr)
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
			case startErr := <-errCh:
				return startErr
			}

			const shutdownTimeout = 10 * time.Second
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("serve: graceful shutdown: %w", err)
			}
			// ListenAndServe may return after Shutdown.
			return <-errCh
		},
	}
}
