package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/timetable-console/internal/handler"
	"github.com/noah-isme/timetable-console/internal/session"
	"github.com/noah-isme/timetable-console/pkg/config"
	"github.com/noah-isme/timetable-console/pkg/jobs"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Hour
)

func newServeCommand(c *cli) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port == 0 {
				port = c.cfg.Console.Port
			}
			production := c.cfg.Env == config.EnvProduction
			if production {
				gin.SetMode(gin.ReleaseMode)
			}

			router, err := handler.NewRouter(handler.RouterDeps{
				Console:       c.console,
				Tokens:        session.NewTokens(c.cfg.Console.Secret, c.cfg.Session.TTL),
				Metrics:       c.metrics,
				Logger:        c.logger,
				SecureCookies: production,
				ExposeMetrics: c.cfg.Metrics.Enabled,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			return c.serve(cmd.Context(), srv)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to CONSOLE_PORT)")
	return cmd
}

// serve runs the server and the export janitor until ctx ends, then shuts
// the server down gracefully.
func (c *cli) serve(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.logger.Info("web console starting", zap.String("addr", srv.Addr), zap.String("env", c.cfg.Env), zap.String("api", c.cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.logger.Info("web console shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if store := c.console.ExportStore(); store != nil && c.cfg.Export.Retention > 0 {
		janitor := jobs.NewQueue("export-cleanup", func(_ context.Context, job jobs.Job[time.Duration]) error {
			removed, err := store.CleanupOlderThan(job.Payload)
			if err != nil {
				return err
			}
			if len(removed) > 0 {
				c.logger.Info("old exports removed", zap.Int("count", len(removed)))
			}
			return nil
		}, jobs.Config{RetryDelay: time.Minute, Logger: c.logger})
		janitor.Start(gctx)

		g.Go(func() error {
			defer janitor.Stop()
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()
			for {
				if err := janitor.Enqueue(jobs.Job[time.Duration]{ID: uuid.NewString(), Payload: c.cfg.Export.Retention}); err != nil {
					return nil
				}
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	}

	return g.Wait()
}
