package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	iamcore "github.com/tenvault/iamcore"
)

type metricsSource interface {
	MetricsSnapshot() iamcore.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	id   iamcore.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{iamcore.MetricLoginSuccess, "iamcore_login_success_total", "Successful authentications."},
	{iamcore.MetricLoginFailure, "iamcore_login_failure_total", "Failed authentication attempts."},
	{iamcore.MetricLoginRateLimited, "iamcore_login_rate_limited_total", "Authentication attempts rejected by the login throttle."},
	{iamcore.MetricLogout, "iamcore_logout_total", "Single-token logouts."},
	{iamcore.MetricForceLogout, "iamcore_force_logout_total", "Force-logout requests."},
	{iamcore.MetricSessionCreated, "iamcore_session_created_total", "Sessions created."},
	{iamcore.MetricSessionInvalidated, "iamcore_session_invalidated_total", "Sessions removed."},
	{iamcore.MetricAuthorizeAllow, "iamcore_authorize_allow_total", "Allowed authorization checks."},
	{iamcore.MetricAuthorizeDeny, "iamcore_authorize_deny_total", "Denied authorization checks."},
	{iamcore.MetricPermissionCacheHit, "iamcore_permission_cache_hit_total", "Permission cache hits."},
	{iamcore.MetricPermissionCacheMiss, "iamcore_permission_cache_miss_total", "Permission cache misses."},
	{iamcore.MetricPermissionCacheCleared, "iamcore_permission_cache_cleared_total", "Permission cache invalidations."},
	{iamcore.MetricTraceWriteFailure, "iamcore_trace_write_failure_total", "Best-effort login trace write failures."},
}

// Collector adapts an engine's metrics snapshot to the Prometheus collector
// contract.
type Collector struct {
	source      metricsSource
	descs       []*prometheus.Desc
	droppedDesc *prometheus.Desc
}

// NewCollector creates a [Collector] reading from the given engine.
func NewCollector(engine *iamcore.Engine) *Collector {
	return NewCollectorFromSource(engine)
}

// NewCollectorFromSource creates a [Collector] from a custom snapshot
// source.
func NewCollectorFromSource(source metricsSource) *Collector {
	c := &Collector{
		source: source,
		droppedDesc: prometheus.NewDesc(
			"iamcore_audit_dropped_total",
			"Audit events dropped under dispatcher backpressure.",
			nil, nil,
		),
	}
	for _, def := range counterDefs {
		c.descs = append(c.descs, prometheus.NewDesc(def.name, def.help, nil, nil))
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.descs {
		ch <- desc
	}
	ch <- c.droppedDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.source == nil {
		return
	}
	snapshot := c.source.MetricsSnapshot()
	for i, def := range counterDefs {
		ch <- prometheus.MustNewConstMetric(
			c.descs[i],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.id]),
		)
	}
	ch <- prometheus.MustNewConstMetric(
		c.droppedDesc,
		prometheus.CounterValue,
		float64(c.source.AuditDropped()),
	)
}

// Handler returns an http.Handler serving only this collector's metrics.
func (c *Collector) Handler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(c)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
