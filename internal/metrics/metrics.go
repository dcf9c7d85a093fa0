// Package metrics holds the Prometheus counters of the app and an optional
// HTTP endpoint to scrape them during development.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/olablt/gio-openmaps/geocode"
	"github.com/olablt/gio-openmaps/tiles"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// geocodeRequestsTotal counts geocoding lookups by operation and outcome.
var geocodeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "openmaps_geocode_requests_total",
	Help: "Total number of geocoding lookups by operation and outcome.",
}, []string{"op", "outcome"})

// tileFetchesTotal counts tile downloads by outcome.
var tileFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "openmaps_tile_fetches_total",
	Help: "Total number of tile downloads by outcome.",
}, []string{"outcome"})

// Outcome buckets an error into a small fixed label set.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, geocode.ErrEmptyQuery):
		return "empty"
	case errors.Is(err, geocode.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// ObserveGeocode is a geocode.Observer.
func ObserveGeocode(op string, err error) {
	geocodeRequestsTotal.WithLabelValues(op, Outcome(err)).Inc()
}

// ObserveTile matches tiles.Manager's fetch callback.
func ObserveTile(_ tiles.Tile, err error) {
	tileFetchesTotal.WithLabelValues(Outcome(err)).Inc()
}

// Serve exposes /metrics on addr until ctx is done. It returns at once
// when addr is empty.
func Serve(ctx context.Context, addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}
