// Package iamcore is an in-process authentication and authorization engine
// for multi-tenant back-office systems. It authenticates credentials against
// externally stored accounts, issues opaque session tokens, resolves
// permission codes per session with an independently invalidable cache, and
// derives row-level data-scope filters for the data layer.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// iamcore is the public surface. It exposes [Engine], [Builder], [Config],
// collaborator interfaces ([AccountProvider], [RoleProvider], ...), and value
// types (Principal, Account, SessionEntry). Coordination helpers such as
// audit dispatch, metrics counters, login throttling, and token generation
// live under internal/ and are never exported.
//
// Entity persistence is not owned here. The engine consumes account, user,
// role, resource, and org lookups through collaborator interfaces and writes
// login traces through [LoginTraceStore]; it implements no storage itself.
//
// # Caching model
//
// Two token-keyed caches back the engine: the session cache (token to
// authenticated principal) and the permission cache (token to resolved
// permission-code set). The permission cache has a strictly weaker lifetime:
// a role edit clears it without forcing re-login, and the next authorization
// check recomputes the set. Both default to in-memory maps; a Redis-backed
// implementation is available in package cache for deployments that already
// keep sessions out of process.
package iamcore
