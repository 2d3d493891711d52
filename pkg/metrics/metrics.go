// Package metrics implements the observability hooks with Prometheus
// collectors.
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	m.Register()
//	http.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/nodedocs/pkg/observability"
)

// Metrics holds the collectors and implements every hook interface.
type Metrics struct {
	gatherer prometheus.Gatherer

	tasksSubmitted prometheus.Counter
	tasksActive    prometheus.Gauge
	taskOutcomes   *prometheus.CounterVec
	taskDuration   prometheus.Histogram
	nodesTotal     *prometheus.CounterVec
	nodesSkipped   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	cacheOps       *prometheus.CounterVec
	cacheBytes     prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		tasksSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "nodedocs_tasks_submitted_total",
			Help: "Documentation tasks submitted",
		}),
		tasksActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "nodedocs_tasks_active",
			Help: "Tasks currently being processed",
		}),
		taskOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nodedocs_task_outcomes_total",
			Help: "Finished tasks by outcome",
		}, []string{"outcome"}),
		taskDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "nodedocs_task_duration_seconds",
			Help:    "Task processing time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		nodesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nodedocs_nodes_documented_total",
			Help: "Leaf documents written by class",
		}, []string{"class"}),
		nodesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nodedocs_nodes_skipped_total",
			Help: "Spawners or nodes that produced no document by reason",
		}, []string{"reason"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nodedocs_render_duration_seconds",
			Help:    "Node render time in seconds by pass",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"pass"}),
		renderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nodedocs_render_errors_total",
			Help: "Failed render passes",
		}, []string{"pass"}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nodedocs_cache_operations_total",
			Help: "Cache operations by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "nodedocs_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nodedocs_http_requests_total",
			Help: "HTTP API requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nodedocs_http_request_duration_seconds",
			Help:    "HTTP API latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Register installs m as the global task, render, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetTaskHooks(m)
	observability.SetRenderHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) OnTaskSubmitted(context.Context, string) { m.tasksSubmitted.Inc() }
func (m *Metrics) OnTaskStart(context.Context, string)     { m.tasksActive.Inc() }

func (m *Metrics) OnTaskComplete(_ context.Context, _ string, outcome string, _ int, d time.Duration) {
	m.tasksActive.Dec()
	m.taskOutcomes.WithLabelValues(outcome).Inc()
	m.taskDuration.Observe(d.Seconds())
}

func (m *Metrics) OnNodeDocumented(_ context.Context, class string) {
	m.nodesTotal.WithLabelValues(class).Inc()
}

func (m *Metrics) OnNodeSkipped(_ context.Context, reason string) {
	m.nodesSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) OnRender(_ context.Context, pass string, d time.Duration, err error) {
	m.renderDuration.WithLabelValues(pass).Observe(d.Seconds())
	if err != nil {
		m.renderErrors.WithLabelValues(pass).Inc()
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.TaskHooks   = (*Metrics)(nil)
	_ observability.RenderHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)
