package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons used as the reason label of FeaturesSkippedTotal.
const (
	ReasonGeometry   = "geometry"
	ReasonExtrusion  = "extrusion"
	ReasonType       = "type"
	ReasonAttributes = "attributes"
)

var (
	FeaturesReadTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cityenvelope_features_read_total",
		Help: "Total GeoJSON features read",
	})
	BuildingsImportedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityenvelope_buildings_imported_total",
		Help: "Total buildings added to a district by level of detail",
	}, []string{"lod"})
	FeaturesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityenvelope_features_skipped_total",
		Help: "Total features skipped by reason",
	}, []string{"reason"})
	FootprintsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cityenvelope_footprints_dropped_total",
		Help: "Total footprints dropped by the minimum floor area filter",
	})
	ImportDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cityenvelope_import_duration_ms",
		Help:    "Import duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityenvelope_http_requests_total",
		Help: "Total API requests by route and status",
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(FeaturesReadTotal)
	prometheus.MustRegister(BuildingsImportedTotal)
	prometheus.MustRegister(FeaturesSkippedTotal)
	prometheus.MustRegister(FootprintsDroppedTotal)
	prometheus.MustRegister(ImportDurationMs)
	prometheus.MustRegister(HTTPRequestsTotal)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
