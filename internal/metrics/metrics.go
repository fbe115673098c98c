// Package metrics exports studio telemetry to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/profile-studio/internal/enhance"
	"github.com/jonathan/profile-studio/internal/profile"
)

const namespace = "profile_studio"

// Metrics records export, preview, enhancement, session and HTTP events.
// A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	gatherer prometheus.Gatherer

	exportDuration *prometheus.HistogramVec
	assetFailures  prometheus.Counter
	reloads        prometheus.Counter
	downloads      *prometheus.CounterVec
	enhanceLatency *prometheus.HistogramVec
	sessions       prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	rateLimited    *prometheus.CounterVec
}

// New registers the studio metrics on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time to rasterize a hosted document.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		assetFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_asset_failures_total",
			Help:      "Stylesheets that could not be fetched during export.",
		}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preview_reloads_total",
			Help:      "Hosted document reloads caused by recompilation.",
		}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download requests by format and result.",
		}, []string{"format", "result"}),
		enhanceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enhance_duration_seconds",
			Help:      "Latency of AI section rewrites.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40},
		}, []string{"section", "result"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open studio sessions.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter, by endpoint pattern.",
		}, []string{"pattern"}),
	}
	collectors := []prometheus.Collector{
		m.exportDuration, m.assetFailures, m.reloads, m.downloads,
		m.enhanceLatency, m.sessions, m.httpRequests, m.httpDuration,
		m.rateLimited,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide metrics, created on first use.
func Default() *Metrics {
	defaultOnce.Do(func() {
		m, err := New(nil)
		if err != nil {
			panic(err)
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// AssetFailed implements export.Observer.
func (m *Metrics) AssetFailed(string) {
	if m == nil {
		return
	}
	m.assetFailures.Inc()
}

// Exported implements export.Observer.
func (m *Metrics) Exported(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.exportDuration.WithLabelValues(result(err)).Observe(d.Seconds())
}

// Reloaded implements preview.Observer.
func (m *Metrics) Reloaded() {
	if m == nil {
		return
	}
	m.reloads.Inc()
}

// Downloaded implements preview.Observer.
func (m *Metrics) Downloaded(format string, err error) {
	if m == nil {
		return
	}
	m.downloads.WithLabelValues(format, result(err)).Inc()
}

// SessionOpened and SessionClosed track the active session gauge.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.sessions.Dec()
	}
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RateLimited counts a request rejected on pattern.
func (m *Metrics) RateLimited(pattern string) {
	if m == nil {
		return
	}
	if pattern == "" {
		pattern = "blocked"
	}
	m.rateLimited.WithLabelValues(pattern).Inc()
}

// Gateway wraps g so every rewrite is timed.
func (m *Metrics) Gateway(g enhance.Gateway) enhance.Gateway {
	if m == nil {
		return g
	}
	return &timedGateway{next: g, m: m}
}

type timedGateway struct {
	next enhance.Gateway
	m    *Metrics
}

func (t *timedGateway) Enhance(ctx context.Context, sectionID string, current profile.Data, instructions string) (profile.Partial, error) {
	start := time.Now()
	p, err := t.next.Enhance(ctx, sectionID, current, instructions)
	t.m.enhanceLatency.WithLabelValues(sectionID, result(err)).Observe(time.Since(start).Seconds())
	return p, err
}
