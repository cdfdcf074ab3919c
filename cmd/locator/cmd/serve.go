package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/locator/httpapi"
	"github.com/GoCodeAlone/locator/internal/toggle"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry diagnostics API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to http.addr from config)")
	return cmd
}

func (a *app) handler() http.Handler {
	opts := []httpapi.Option{httpapi.WithLogger(a.logger)}
	if a.registry != nil {
		opts = append(opts, httpapi.WithMetricsHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}
	return httpapi.NewRouter(a.locator, opts...)
}

func (a *app) serve(ctx context.Context, addr string) error {
	// make the lazily created service visible in the listing
	if _, err := toggle.Resolve(a.locator, a.cfg.Toggle.ServiceName); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Serving locator diagnostics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("Shutting down locator diagnostics")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
