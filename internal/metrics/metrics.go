// Package metrics owns the service's Prometheus registry and collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	generations   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	images        *prometheus.CounterVec
	lessonsStored prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lesson_generations_total",
			Help: "Lesson generation attempts by mode and outcome.",
		}, []string{"mode", "outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lesson_generation_stage_seconds",
			Help:    "Duration of each generation stage.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		images: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lesson_images_total",
			Help: "Per-item illustration outcomes.",
		}, []string{"outcome"}),
		lessonsStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "lessons_created_total",
			Help: "Lessons persisted by the repository.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveGeneration(mode, outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveStage(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveImages counts illustrated items by outcome ("ok" or "failed").
func (m *Metrics) ObserveImages(ok, failed int) {
	if m == nil {
		return
	}
	m.images.WithLabelValues("ok").Add(float64(ok))
	m.images.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) ObserveLessonCreated() {
	if m == nil {
		return
	}
	m.lessonsStored.Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
