package iamcore

import (
	"context"
	"fmt"
	"strings"

	"github.com/tenvault/iamcore/permission"
	"github.com/tenvault/iamcore/scope"
)

// sessionAccess is the authorization state of one session: the resolved
// permission-code set and whether the principal holds the super-admin role.
// It is what the permission cache stores, so a cache hit answers both
// questions without touching the role or resource providers.
type sessionAccess struct {
	superAdmin bool
	codes      permission.Set
}

// Authorize decides whether the current subject may perform an action gated
// by requiredCode. The code may be a comma-joined list, meaning any one of
// the listed codes suffices. Deny returns a [*PermissionDeniedError]
// carrying the missing codes; it is never swallowed here, the calling layer
// maps it to a transport status.
//
// Order of checks: the permission-check feature flag, the cached (or
// freshly resolved) session access, super-admin standing, then the code
// match. A cache hit performs no provider round trips.
func (e *Engine) Authorize(ctx context.Context, requiredCode string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	principal, ok := e.CurrentUser(ctx)
	if !ok {
		missing := permission.Split(requiredCode)
		e.denied(ctx, "", requiredCode, missing)
		return &PermissionDeniedError{Required: requiredCode, Missing: missing}
	}

	// Escape hatch for bootstrap and migration deployments. Not a security
	// boundary.
	if !e.config.Security.EnablePermissionCheck {
		e.metricInc(MetricAuthorizeAllow)
		return nil
	}

	access, err := e.sessionAccess(ctx, principal)
	if err != nil {
		return err
	}

	if access.superAdmin {
		e.metricInc(MetricAuthorizeAllow)
		return nil
	}

	if missing, allowed := access.codes.MatchAny(requiredCode); !allowed {
		e.denied(ctx, principal.UserTypeAndID(), requiredCode, missing)
		return &PermissionDeniedError{Required: requiredCode, Missing: missing}
	}

	e.metricInc(MetricAuthorizeAllow)
	return nil
}

// AuthorizeOperation authorizes by operation identifier, resolving the
// required code through the operation registry. Operations with no
// registered requirement are allowed: registration is what attaches a
// permission gate.
func (e *Engine) AuthorizeOperation(ctx context.Context, operation string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	required, ok := e.registry.Required(operation)
	if !ok || required == "" {
		return nil
	}
	return e.Authorize(ctx, required)
}

// CheckRole reports whether the current subject holds the role code. Direct
// membership test against the role provider, no caching.
func (e *Engine) CheckRole(ctx context.Context, roleCode string) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	principal, ok := e.CurrentUser(ctx)
	if !ok {
		return false, nil
	}
	return e.hasRole(ctx, principal, roleCode)
}

// IsSuperAdmin reports whether the current subject holds the reserved
// super-admin role, answered from the session's cached access state.
func (e *Engine) IsSuperAdmin(ctx context.Context) bool {
	if e == nil {
		return false
	}
	principal, ok := e.CurrentUser(ctx)
	if !ok {
		return false
	}
	access, err := e.sessionAccess(ctx, principal)
	if err != nil {
		e.logger.Error(err, "super admin check failed", "user", principal.UserTypeAndID())
		return false
	}
	return access.superAdmin
}

// ClearAuthorizationCache drops the cached access state of every session
// belonging to the principal, leaving the sessions themselves intact. The
// next authorization check per session recomputes both the code set and the
// super-admin standing. Degrades to a logged warning when the cache
// collaborator is absent or failing.
func (e *Engine) ClearAuthorizationCache(ctx context.Context, userTypeAndID string) {
	if e == nil || e.permissions == nil {
		e.warnCacheUnavailable("clear authorization cache")
		return
	}

	tokens, err := e.permissions.RemoveWhere(ctx, func(entry PermissionEntry) bool {
		return entry.UserTypeAndID == userTypeAndID
	})
	if err != nil {
		e.logger.Error(err, "authorization cache clear failed", "user", userTypeAndID)
		return
	}
	if len(tokens) > 0 {
		e.metricInc(MetricPermissionCacheCleared)
		e.emitAudit(ctx, AuditEvent{
			EventType:     EventAuthorizationCacheCleared,
			UserTypeAndID: userTypeAndID,
			Success:       true,
			Metadata:      map[string]string{"sessions": fmt.Sprint(len(tokens))},
		})
	}
}

// ClearAllAuthorizationCache drops every cached access state, for
// role-permission edits that affect an unknown set of users. Sessions stay
// valid. Degrades to a logged warning when the cache collaborator is absent
// or failing.
func (e *Engine) ClearAllAuthorizationCache(ctx context.Context) {
	if e == nil || e.permissions == nil {
		e.warnCacheUnavailable("clear all authorization cache")
		return
	}
	if err := e.permissions.Clear(ctx); err != nil {
		e.logger.Error(err, "authorization cache clear-all failed")
		return
	}
	e.metricInc(MetricPermissionCacheCleared)
	e.emitAudit(ctx, AuditEvent{
		EventType: EventAuthorizationCacheCleared,
		Success:   true,
		Metadata:  map[string]string{"scope": "all"},
	})
}

// ResolveDataScope derives the row-filter descriptor for the current
// subject. Anonymous callers get the most restrictive filter: own rows
// only, which for an empty user id matches nothing.
func (e *Engine) ResolveDataScope(ctx context.Context) (scope.Filter, error) {
	if e == nil {
		return scope.Filter{}, ErrEngineNotReady
	}
	principal, _ := e.CurrentUser(ctx)
	return e.resolver.Resolve(ctx, principal.UserID, principal.OrgID, principal.DataScope)
}

func (e *Engine) sessionAccess(ctx context.Context, principal Principal) (sessionAccess, error) {
	token, bound := e.currentToken(ctx)
	if !bound || e.permissions == nil {
		// No session to key a cache entry on; resolve uncached.
		return e.resolveAccess(ctx, principal)
	}

	entry, hit, err := e.permissions.Get(ctx, token)
	if err != nil {
		return sessionAccess{}, fmt.Errorf("permission cache read: %w", err)
	}
	if hit {
		e.metricInc(MetricPermissionCacheHit)
		return sessionAccess{
			superAdmin: entry.SuperAdmin,
			codes:      permission.NewSet(entry.Codes...),
		}, nil
	}

	e.metricInc(MetricPermissionCacheMiss)
	access, err := e.resolveAccess(ctx, principal)
	if err != nil {
		return sessionAccess{}, err
	}

	cached := PermissionEntry{
		UserTypeAndID: principal.UserTypeAndID(),
		SuperAdmin:    access.superAdmin,
		Codes:         access.codes.Codes(),
	}
	if err := e.permissions.Put(ctx, token, cached); err != nil {
		// A failed cache write costs recomputation, not correctness.
		e.logger.Error(err, "permission cache write failed", "token", token)
	}
	return access, nil
}

func (e *Engine) resolveAccess(ctx context.Context, principal Principal) (sessionAccess, error) {
	roleCodes, err := e.roles.GetRoleCodes(ctx, principal)
	if err != nil {
		return sessionAccess{}, fmt.Errorf("role lookup: %w", err)
	}

	access := sessionAccess{}
	for _, code := range roleCodes {
		if code == e.config.Security.SuperAdminRole {
			access.superAdmin = true
			break
		}
	}

	permCodes, err := e.resources.GetPermissionCodes(ctx, roleCodes)
	if err != nil {
		return sessionAccess{}, fmt.Errorf("resource permission lookup: %w", err)
	}
	access.codes = permission.NewSet(permCodes...)
	return access, nil
}

func (e *Engine) hasRole(ctx context.Context, principal Principal, roleCode string) (bool, error) {
	roleCodes, err := e.roles.GetRoleCodes(ctx, principal)
	if err != nil {
		return false, fmt.Errorf("role lookup: %w", err)
	}
	for _, code := range roleCodes {
		if code == roleCode {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) denied(ctx context.Context, userTypeAndID, required string, missing []string) {
	e.metricInc(MetricAuthorizeDeny)
	e.emitAudit(ctx, AuditEvent{
		EventType:     EventAuthorizeDeny,
		UserTypeAndID: userTypeAndID,
		Success:       false,
		Metadata: map[string]string{
			"required": required,
			"missing":  strings.Join(missing, permission.Separator),
		},
	})
}

func (e *Engine) warnCacheUnavailable(op string) {
	if e == nil {
		return
	}
	e.logger.Info("cache collaborator absent, operation skipped", "op", op, "reason", ErrCacheUnavailable.Error())
}
