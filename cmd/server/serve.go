package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the image proxy http server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("initializing proxy service")
	app, cleanup, err := InitializeApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	app.cache.StartMonitors(ctx, cfg.Cache.TrimInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRequest(ctx, app.proxy, cfg.Proxy.RequestTimeout, logger))
	mux.HandleFunc("/invalidate", handleInvalidationRequest(ctx, app.invalidator, cfg.Proxy.InvalidateToken, logger))
	mux.HandleFunc("/status", handleStatusRequest(app))
	mux.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithField("address", cfg.Server.Address).Info("listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server did not shut down cleanly")
	}

	app.queue.Wait()
	return nil
}
