package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the Prometheus collectors of the API.
type Registry struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	CheckInsTotal     *prometheus.CounterVec
	ImportRowsTotal   *prometheus.CounterVec
	CacheRequests     *prometheus.CounterVec
	RealtimeClients   prometheus.Gauge
	RealtimePublished prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewRegistry registers every collector on reg. A nil reg gets a fresh
// registry, which keeps tests independent from the global default.
func NewRegistry(reg *prometheus.Registry) *Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := &Registry{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credenciamento_http_requests_total",
				Help: "HTTP requests processed by route, method and status code.",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credenciamento_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credenciamento_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		CheckInsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credenciamento_attendance_movements_total",
				Help: "Attendance movements by type (check_in, check_out, undo).",
			},
			[]string{"type"},
		),
		ImportRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credenciamento_import_rows_total",
				Help: "Spreadsheet import rows by outcome.",
			},
			[]string{"status"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credenciamento_cache_requests_total",
				Help: "Cache lookups by cache name and result.",
			},
			[]string{"cache", "result"},
		),
		RealtimeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credenciamento_realtime_clients",
			Help: "Connected changefeed websocket clients.",
		}),
		RealtimePublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "credenciamento_realtime_published_total",
			Help: "Changes published on the changefeed.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		r.HTTPRequestsTotal,
		r.HTTPRequestDuration,
		r.HTTPRequestsInFlight,
		r.CheckInsTotal,
		r.ImportRowsTotal,
		r.CacheRequests,
		r.RealtimeClients,
		r.RealtimePublished,
	)

	return r
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.gatherer
}
