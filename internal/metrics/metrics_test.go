package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordAndServe(t *testing.T) {
	m := New()
	m.ObserveGeneration("full", "success")
	m.ObserveGeneration("full", "success")
	m.ObserveImages(2, 1)
	m.ObserveStage("content", 120*time.Millisecond)
	m.ObserveHTTP("/v1/lessons", http.MethodGet, http.StatusOK, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations.WithLabelValues("full", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.images.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.images.WithLabelValues("failed")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `lesson_generations_total{mode="full",outcome="success"} 2`), body)
	assert.Contains(t, body, `lesson_images_total{outcome="failed"} 1`)
	assert.Contains(t, body, "http_requests_total")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveGeneration("full", "error")
	m.ObserveImages(1, 1)
	m.ObserveLessonCreated()
	m.ObserveHTTP("/", http.MethodGet, 200, 0)
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
