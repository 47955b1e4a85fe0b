// Package metrics exposes Prometheus counters for the HTTP daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// JobResolutions counts end-time resolutions by outcome
	// (valid, invalid, error).
	JobResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridtools",
		Name:      "job_resolutions_total",
		Help:      "Job end-time resolutions by outcome.",
	}, []string{"outcome"})

	// WarrantyLookups counts vendor support-page lookups by outcome.
	WarrantyLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridtools",
		Name:      "warranty_lookups_total",
		Help:      "Warranty page lookups by outcome.",
	}, []string{"outcome"})
)

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
