package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/heralds-project/heralds/pkg/api"
	"github.com/heralds-project/heralds/pkg/observability"
)

// shutdownTimeout bounds how long in-flight requests may finish after a
// shutdown signal.
const shutdownTimeout = 15 * time.Second

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning HTTP API",
		Long: `Serve the planning HTTP API.

Routes:
  POST /v1/plans        plan an uploaded scenario
  GET  /v1/plans        list archived plans
  GET  /v1/plans/{id}   fetch an archived plan
  GET  /healthz         liveness
  GET  /metrics         Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

// runServe serves until ctx is cancelled, then drains in-flight requests.
func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg := c.settings()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	metrics := observability.NewPrometheus(prometheus.DefaultRegisterer)
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	archive, err := c.openArchive(ctx)
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
	}

	srv := &http.Server{
		Addr: addr,
		Handler: api.New(api.Options{
			Runner:  runner,
			Store:   archive,
			Planner: cfg.Planner,
			Logger:  c.Logger,
		}),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	c.Logger.Info("serving", "addr", addr, "cache", cfg.Cache.Backend, "archive", cfg.Archive.Backend)

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
