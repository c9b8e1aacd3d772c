// Package metrics exposes prometheus counters for the bet lifecycle and a
// small HTTP server for /metrics and /healthz.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Metrics holds the process counters. Passed explicitly to whoever records
// them; there is no package-level registry state.
type Metrics struct {
	registry *prometheus.Registry

	BetsCreated    *prometheus.CounterVec
	BetsResolved   *prometheus.CounterVec
	ReactionEvents *prometheus.CounterVec
	SweepDeleted   *prometheus.CounterVec
}

// New creates and registers the bot's counters on a private registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		BetsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betbot_bets_created_total",
			Help: "Bets created, by bet type",
		}, []string{"bet_type"}),
		BetsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betbot_bets_resolved_total",
			Help: "Bets resolved, by outcome",
		}, []string{"status"}),
		ReactionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betbot_reaction_events_total",
			Help: "Reaction events dispatched to the resolution engine",
		}, []string{"kind"}),
		SweepDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betbot_sweep_deleted_total",
			Help: "Bets removed by the cleanup sweep, by reason",
		}, []string{"reason"}),
	}

	registry.MustRegister(m.BetsCreated, m.BetsResolved, m.ReactionEvents, m.SweepDeleted)
	return m
}

// HealthFunc reports whether a dependency is healthy
type HealthFunc func(ctx context.Context) error

// StartServer serves /metrics and /healthz on addr in a background
// goroutine and returns the server for shutdown.
func (m *Metrics) StartServer(addr string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server stopped")
		}
	}()

	return srv
}
