package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rook-computer/hud/internal/logging"
)

type APIV1Config struct {
	Overlay Overlay
	Logger  logging.Logger
}

// RegisterAPIV1 registers the control API routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, cfg APIV1Config) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(cfg)))
}

// RegisterMetrics serves reg at /metrics. A nil registry serves the
// default prometheus registry.
func RegisterMetrics(mux *http.ServeMux, reg *prometheus.Registry) {
	if reg == nil {
		mux.Handle("/metrics", promhttp.Handler())
		return
	}
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
}

// NewDefaultMux builds the standard mux used by both the device and simulator:
// - /api/v1/* for the control API
// - /metrics for prometheus
func NewDefaultMux(cfg APIV1Config, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, cfg)
	RegisterMetrics(mux, reg)
	return mux
}
