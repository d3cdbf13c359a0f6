package iamcore

import (
	internalmetrics "github.com/tenvault/iamcore/internal/metrics"
)

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful authentications.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts failed authentication attempts.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginRateLimited counts throttled authentication attempts.
	MetricLoginRateLimited = internalmetrics.MetricLoginRateLimited
	// MetricLogout counts single-token logouts.
	MetricLogout = internalmetrics.MetricLogout
	// MetricForceLogout counts force-logout requests.
	MetricForceLogout = internalmetrics.MetricForceLogout
	// MetricSessionCreated counts session cache inserts.
	MetricSessionCreated = internalmetrics.MetricSessionCreated
	// MetricSessionInvalidated counts session cache removals.
	MetricSessionInvalidated = internalmetrics.MetricSessionInvalidated
	// MetricAuthorizeAllow counts allowed authorization checks.
	MetricAuthorizeAllow = internalmetrics.MetricAuthorizeAllow
	// MetricAuthorizeDeny counts denied authorization checks.
	MetricAuthorizeDeny = internalmetrics.MetricAuthorizeDeny
	// MetricPermissionCacheHit counts permission cache hits.
	MetricPermissionCacheHit = internalmetrics.MetricPermissionCacheHit
	// MetricPermissionCacheMiss counts permission cache misses
	// (resolutions).
	MetricPermissionCacheMiss = internalmetrics.MetricPermissionCacheMiss
	// MetricPermissionCacheCleared counts permission cache invalidations.
	MetricPermissionCacheCleared = internalmetrics.MetricPermissionCacheCleared
	// MetricTraceWriteFailure counts best-effort login-trace write
	// failures.
	MetricTraceWriteFailure = internalmetrics.MetricTraceWriteFailure
)

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by cfg. When Enabled
// is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
