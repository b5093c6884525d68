// Package server runs the agentdeck relay: the same-origin token
// validation endpoint plus health and Prometheus endpoints. It handles
// graceful shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/agentdeck/internal/logging"
	"github.com/dmitrijs2005/agentdeck/internal/server/config"
	"github.com/dmitrijs2005/agentdeck/internal/server/relay"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	registry *prometheus.Registry
	handler  http.Handler
}

func NewApp(c *config.Config) (*App, error) {
	if c.ForwardTarget == "" {
		return nil, errors.New("forward target is not set")
	}

	logger := logging.New(os.Stdout, "json", c.LogLevel)

	registry := prometheus.NewRegistry()
	metrics := relay.NewMetrics(registry)
	validate := relay.NewHandler(c.ForwardTarget, &http.Client{Timeout: c.ForwardTimeout}, logger, metrics)

	app := &App{config: c, logger: logger, registry: registry}
	app.handler = app.routes(validate)
	return app, nil
}

func (app *App) routes(validate http.Handler) http.Handler {
	r := mux.NewRouter()
	r.Handle("/validate-token", validate).Methods(http.MethodPost)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a signal arrives, then drains
// in-flight requests for up to ShutdownTimeout.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{Addr: app.config.ListenAddr, Handler: app.handler}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "relay listening", "addr", app.config.ListenAddr, "target", app.config.ForwardTarget)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
