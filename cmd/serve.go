package cmd

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/endpoint"
	"github.com/Ruscigno/JobPulse/pkg/service"
	httptransport "github.com/Ruscigno/JobPulse/pkg/transport/http"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the crawl API",
		Long:  `Starts an HTTP server that triggers crawl runs and reports their status.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	runner := service.NewRunner(a.cfg, a.metrics, a.logger)
	svc := service.NewService(runner, a.collector, a.logger, Version)

	handler := httptransport.NewHTTPHandler(endpoint.MakeEndpoints(svc), httptransport.HTTPConfig{
		APIKey:            a.cfg.HTTP.APIKey,
		RequestsPerSecond: a.cfg.HTTP.RequestsPerSecond,
		BurstSize:         a.cfg.HTTP.BurstSize,
		Metrics:           a.metrics,
		Logger:            a.logger,
	})
	srv := &http.Server{
		Addr:              ":" + a.cfg.HTTP.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	return svc.Shutdown(shutdownCtx)
}
