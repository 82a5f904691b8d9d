// Package metrics serves the Prometheus exposition endpoint.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mercator-hq/ganymede/pkg/config"
)

// Server exposes registered metrics over HTTP in the Prometheus text format.
// It is a plain scrape endpoint; metric definitions live with the components
// that record them.
type Server struct {
	addr     string
	path     string
	gatherer prometheus.Gatherer
	srv      *http.Server
	logger   *slog.Logger
}

// NewServer builds a metrics server from config. The gatherer may be nil, in
// which case the default registry is exposed.
func NewServer(cfg config.MetricsConfig, gatherer prometheus.Gatherer) (*Server, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("metrics are disabled in config")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		addr:     cfg.ListenAddress,
		path:     cfg.Path,
		gatherer: gatherer,
		logger:   slog.Default().With("component", "telemetry.metrics"),
	}, nil
}

// Handler returns the exposition handler without starting a listener, for
// embedding into an existing mux.
func (s *Server) Handler() http.Handler {
	return promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Start serves the endpoint until ctx is cancelled. It blocks.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.path, s.Handler())

	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	s.logger.Info("metrics endpoint listening", "address", s.addr, "path", s.path)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
