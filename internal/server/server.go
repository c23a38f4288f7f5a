// Package server implements the optional live status server: /healthz,
// /metrics (Prometheus), and /snapshot (JSON) during a run. Off by default;
// when enabled it serves for the whole run, unlike the CSV/console
// exporters, which only run once at Stopped.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loadgen/internal/result"
)

// SnapshotProvider supplies the current (possibly in-progress) metrics
// view; the CLI passes the engine Controller's LiveSnapshot method.
type SnapshotProvider func() result.Snapshot

// Server serves live status endpoints over HTTP while a test is running.
type Server struct {
	addr     string
	logger   *zap.Logger
	provider SnapshotProvider

	httpServer *http.Server

	registry   *prometheus.Registry
	gaugeTotal prometheus.Gauge
	gaugeSucc  prometheus.Gauge
	gaugeFail  prometheus.Gauge
	gaugeTps   prometheus.Gauge

	started atomic.Bool
}

// New builds a Server bound to addr, serving snapshots from provider.
func New(addr string, provider SnapshotProvider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		addr:     addr,
		logger:   logger,
		provider: provider,
		registry: registry,
		gaugeTotal: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "loadgen_total_requests", Help: "Total requests submitted so far.",
		}),
		gaugeSucc: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "loadgen_success_requests", Help: "Successful requests so far.",
		}),
		gaugeFail: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "loadgen_failure_requests", Help: "Failed requests so far.",
		}),
		gaugeTps: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "loadgen_current_tps", Help: "Current observed transactions per second.",
		}),
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.httpServer = &http.Server{Addr: addr, Handler: router}
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := s.provider()
	s.gaugeTotal.Set(float64(snap.TotalRequests))
	s.gaugeSucc.Set(float64(snap.SuccessCount))
	s.gaugeFail.Set(float64(snap.FailureCount))
	if n := len(snap.TpsSamples); n > 0 {
		s.gaugeTps.Set(snap.TpsSamples[n-1].Tps)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Warn("failed to encode snapshot response", zap.Error(err))
	}
}

// Start runs the server in a background goroutine; logged errors other
// than a graceful close never reach the caller, matching the rest of the
// system's policy of never letting an ambient-surface failure abort a run.
func (s *Server) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("live status server exited", zap.Error(err))
		}
	}()
}

// Stop shuts the server down, waiting up to 5s for in-flight requests.
func (s *Server) Stop() {
	if !s.started.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)
}
