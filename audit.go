package iamcore

import (
	"io"

	internalaudit "github.com/tenvault/iamcore/internal/audit"
)

// Audit event types emitted by the engine.
const (
	// EventLoginSuccess records a successful authentication.
	EventLoginSuccess = "login.success"
	// EventLoginFailure records a failed authentication attempt.
	EventLoginFailure = "login.failure"
	// EventLoginRateLimited records an attempt rejected by the throttle.
	EventLoginRateLimited = "login.rate_limited"
	// EventLogout records a single-token logout.
	EventLogout = "logout"
	// EventForceLogout records one session closed by a force logout.
	EventForceLogout = "logout.forced"
	// EventAuthorizeDeny records a denied authorization check.
	EventAuthorizeDeny = "authorize.deny"
	// EventAuthorizationCacheCleared records a permission-cache
	// invalidation.
	EventAuthorizationCacheCleared = "authz_cache.cleared"
)

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
