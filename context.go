package iamcore

import (
	"context"
	"sync"
)

// NoTenant is the sentinel returned by [Engine.CurrentTenantID] when no
// principal is bound or the bound principal has no tenant. Callers querying
// tenant id opportunistically outside a request get this value instead of
// an error.
const NoTenant = "0"

type subjectContextKey struct{}

// subjectBinding is the per-request security context. It is carried by
// pointer inside the context so that Logout can detach the subject
// in-place for the remainder of the call chain; concurrent requests each
// hold their own binding and never observe one another's principal.
type subjectBinding struct {
	mu        sync.RWMutex
	token     string
	principal Principal
	bound     bool
}

func (b *subjectBinding) set(token string, p Principal) {
	b.mu.Lock()
	b.token = token
	b.principal = p
	b.bound = true
	b.mu.Unlock()
}

func (b *subjectBinding) clear() {
	b.mu.Lock()
	b.token = ""
	b.principal = Principal{}
	b.bound = false
	b.mu.Unlock()
}

func (b *subjectBinding) get() (string, Principal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.token, b.principal, b.bound
}

func bindingFromContext(ctx context.Context) *subjectBinding {
	if ctx == nil {
		return nil
	}
	binding, _ := ctx.Value(subjectContextKey{}).(*subjectBinding)
	return binding
}

// Attach resolves the session for token and returns a derived context with
// the principal bound for the remainder of the call. Returns
// [ErrSessionNotFound] when the token has no live session.
func (e *Engine) Attach(ctx context.Context, token string) (context.Context, error) {
	if e == nil || e.sessions == nil {
		return ctx, ErrEngineNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	entry, ok, err := e.sessions.Get(ctx, token)
	if err != nil {
		return ctx, err
	}
	if !ok {
		return ctx, ErrSessionNotFound
	}

	binding := &subjectBinding{}
	binding.set(token, entry.Principal)
	return context.WithValue(ctx, subjectContextKey{}, binding), nil
}

// Detach clears the subject binding on ctx, if any. The context itself
// remains usable; subsequent CurrentUser calls report no subject.
func (e *Engine) Detach(ctx context.Context) {
	if binding := bindingFromContext(ctx); binding != nil {
		binding.clear()
	}
}

// CurrentUser returns the principal bound to ctx. Absence is not an error:
// callers interpret ok=false as an anonymous caller.
func (e *Engine) CurrentUser(ctx context.Context) (Principal, bool) {
	binding := bindingFromContext(ctx)
	if binding == nil {
		return Principal{}, false
	}
	_, principal, bound := binding.get()
	return principal, bound
}

// CurrentUserID returns the bound principal's user id, or "" when no
// subject is bound.
func (e *Engine) CurrentUserID(ctx context.Context) string {
	principal, ok := e.CurrentUser(ctx)
	if !ok {
		return ""
	}
	return principal.UserID
}

// CurrentUserTypeAndID returns the bound principal's "userType:userId" key,
// or "" when no subject is bound.
func (e *Engine) CurrentUserTypeAndID(ctx context.Context) string {
	principal, ok := e.CurrentUser(ctx)
	if !ok {
		return ""
	}
	return principal.UserTypeAndID()
}

// CurrentTenantID returns the bound principal's tenant id, or [NoTenant]
// when unbound or tenantless.
func (e *Engine) CurrentTenantID(ctx context.Context) string {
	principal, ok := e.CurrentUser(ctx)
	if !ok || principal.TenantID == "" {
		return NoTenant
	}
	return principal.TenantID
}

func (e *Engine) currentToken(ctx context.Context) (string, bool) {
	binding := bindingFromContext(ctx)
	if binding == nil {
		return "", false
	}
	token, _, bound := binding.get()
	return token, bound
}
