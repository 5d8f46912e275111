package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects predictor metrics on its own registry and satisfies
// pipeline.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	Predictions        *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
	PredictionDuration prometheus.Histogram
	CacheHits          prometheus.Counter
	Requests           *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	Sessions           prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "segmentor_predictions_total",
				Help: "Total number of predictions by cluster label",
			},
			[]string{"cluster"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "segmentor_rejections_total",
				Help: "Total number of submissions rejected by validation",
			},
			[]string{"field"},
		),
		PredictionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "segmentor_prediction_duration_seconds",
				Help:    "Duration of scale and classify in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "segmentor_cache_hits_total",
				Help: "Total number of predictions served from cache",
			},
		),
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "segmentor_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "segmentor_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Sessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "segmentor_ws_sessions",
				Help: "Number of open websocket sessions",
			},
		),
	}
}

func (m *Metrics) ObservePrediction(label int, elapsed time.Duration, cached bool) {
	m.Predictions.WithLabelValues(strconv.Itoa(label)).Inc()
	if cached {
		m.CacheHits.Inc()
		return
	}
	m.PredictionDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRejection(field string) {
	m.Rejections.WithLabelValues(field).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
