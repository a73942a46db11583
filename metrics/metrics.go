// Package metrics exposes request and upload counters in the prometheus
// format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	Uploads          *prometheus.CounterVec
	InferenceSeconds prometheus.Histogram
}

// New builds the collectors on a private registry so several servers can
// live in one process, as they do in tests.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wardrobe",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wardrobe",
			Name:      "uploads_total",
			Help:      "Classified uploads by outcome.",
		}, []string{"outcome"}),
		InferenceSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wardrobe",
			Name:      "inference_duration_seconds",
			Help:      "Time spent classifying an upload.",
			Buckets:   []float64{0.1, 0.5, 1, 1.5, 2, 5},
		}),
	}
	m.registry.MustRegister(m.Requests, m.Uploads, m.InferenceSeconds)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpload records the outcome of one classification.
func (m *Metrics) ObserveUpload(outcome string, took time.Duration) {
	m.Uploads.WithLabelValues(outcome).Inc()
	m.InferenceSeconds.Observe(took.Seconds())
}

// Middleware counts requests by route pattern, not raw path, to keep the
// label set bounded.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.Requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			return err
		}
	}
}
