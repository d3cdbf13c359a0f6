package iamcore

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/tenvault/iamcore/internal"
	internalaudit "github.com/tenvault/iamcore/internal/audit"
)

// Authenticate validates the credential against its stored account, issues
// an opaque session token, and opens a login trace. Permissions are not
// resolved here; the permission cache fills lazily on the first Authorize
// call for the session.
func (e *Engine) Authenticate(ctx context.Context, authType AuthType, authAccount, rawSecret string) (AuthResult, error) {
	if e == nil || e.sessions == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	throttleKey := string(authType) + ":" + authAccount
	if !e.limiter.Allow(throttleKey) {
		e.metricInc(MetricLoginRateLimited)
		e.auditLoginFailure(ctx, EventLoginRateLimited, authType, authAccount, ErrLoginRateLimited)
		return AuthResult{}, ErrLoginRateLimited
	}

	account, err := e.accounts.FindAccount(ctx, authType, authAccount)
	if err != nil {
		return AuthResult{}, fmt.Errorf("account lookup: %w", err)
	}
	if account == nil {
		e.metricInc(MetricLoginFailure)
		e.auditLoginFailure(ctx, EventLoginFailure, authType, authAccount, ErrInvalidCredentials)
		return AuthResult{}, ErrInvalidCredentials
	}

	match, err := e.verifyCredential(account, rawSecret)
	if err != nil {
		return AuthResult{}, err
	}
	if !match {
		e.metricInc(MetricLoginFailure)
		e.auditLoginFailure(ctx, EventLoginFailure, authType, authAccount, ErrInvalidCredentials)
		return AuthResult{}, ErrInvalidCredentials
	}

	if err := statusError(account.Status); err != nil {
		e.auditLoginFailure(ctx, EventLoginFailure, authType, authAccount, err)
		return AuthResult{}, err
	}

	user, err := e.users.GetUser(ctx, account.UserType, account.UserID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("user lookup: %w", err)
	}
	if user == nil {
		e.metricInc(MetricLoginFailure)
		e.auditLoginFailure(ctx, EventLoginFailure, authType, authAccount, ErrInvalidCredentials)
		return AuthResult{}, ErrInvalidCredentials
	}
	if err := statusError(user.Status); err != nil {
		e.auditLoginFailure(ctx, EventLoginFailure, authType, authAccount, err)
		return AuthResult{}, err
	}

	principal := Principal{
		UserType:    account.UserType,
		UserID:      account.UserID,
		TenantID:    user.TenantID,
		OrgID:       user.OrgID,
		DisplayName: user.DisplayName,
		DataScope:   user.DataScope,
	}

	token, err := internal.NewToken()
	if err != nil {
		return AuthResult{}, fmt.Errorf("token generation: %w", err)
	}

	now := time.Now().UTC()
	entry := SessionEntry{
		Principal: principal,
		Account:   *account,
		CreatedAt: now,
	}
	if err := e.sessions.Put(ctx, token, entry); err != nil {
		return AuthResult{}, fmt.Errorf("session create: %w", err)
	}

	e.limiter.Reset(throttleKey)
	e.traceLogin(ctx, principal, token, now)

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, AuditEvent{
		EventType:     EventLoginSuccess,
		UserTypeAndID: principal.UserTypeAndID(),
		TenantID:      principal.TenantID,
		Token:         token,
		Success:       true,
	})

	return AuthResult{Token: token, Principal: principal}, nil
}

// Logout closes one session. Idempotent: an absent token is a no-op. The
// login trace is updated best-effort before the caches drop the entries,
// and the subject binding on ctx is detached when it points at this token.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.sessions == nil || e.permissions == nil {
		e.logger.Info("cache collaborator absent, logout skipped", "token", token)
		return nil
	}

	entry, ok, err := e.sessions.Get(ctx, token)
	if err != nil {
		e.logger.Error(err, "session lookup failed during logout", "token", token)
	}
	if ok {
		e.traceLogout(ctx, entry.Principal.UserTypeAndID())
	}

	if err := e.sessions.Remove(ctx, token); err != nil {
		e.logger.Error(err, "session removal failed during logout", "token", token)
	}
	if err := e.permissions.Remove(ctx, token); err != nil {
		e.logger.Error(err, "permission removal failed during logout", "token", token)
	}

	if bound, has := e.currentToken(ctx); has && bound == token {
		e.Detach(ctx)
	}

	if ok {
		e.metricInc(MetricLogout)
		e.metricInc(MetricSessionInvalidated)
		e.emitAudit(ctx, AuditEvent{
			EventType:     EventLogout,
			UserTypeAndID: entry.Principal.UserTypeAndID(),
			TenantID:      entry.Principal.TenantID,
			Token:         token,
			Success:       true,
		})
	}
	return nil
}

// LogoutUser force-closes every session of one principal, identified by the
// "userType:userId" key. The removal acts on a snapshot of the sessions
// present when the scan starts: a session created concurrently, after the
// force-logout request, survives. That race is accepted; see the package
// cache documentation.
func (e *Engine) LogoutUser(ctx context.Context, userTypeAndID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.sessions == nil || e.permissions == nil {
		e.logger.Info("cache collaborator absent, force logout skipped", "user", userTypeAndID)
		return nil
	}

	tokens, err := e.sessions.RemoveWhere(ctx, func(entry SessionEntry) bool {
		return entry.Principal.UserTypeAndID() == userTypeAndID
	})
	if err != nil {
		return fmt.Errorf("force logout scan: %w", err)
	}

	e.metricInc(MetricForceLogout)
	for _, token := range tokens {
		if err := e.permissions.Remove(ctx, token); err != nil {
			e.logger.Error(err, "permission removal failed during force logout", "token", token)
		}
		e.revokeAlias(ctx, token)
		e.traceLogout(ctx, userTypeAndID)

		e.metricInc(MetricSessionInvalidated)
		e.emitAudit(ctx, AuditEvent{
			EventType:     EventForceLogout,
			UserTypeAndID: userTypeAndID,
			Token:         token,
			Success:       true,
		})
	}
	return nil
}

func (e *Engine) verifyCredential(account *Account, provided string) (bool, error) {
	if account.AuthType == AuthTypePassword {
		return e.hasher.Verify(provided, account.SecretSalt, account.AuthSecret)
	}
	if verifier, ok := e.verifiers[account.AuthType]; ok && verifier != nil {
		return verifier(account, provided)
	}
	// Default for non-password types: constant-time opaque secret match.
	return subtle.ConstantTimeCompare([]byte(account.AuthSecret), []byte(provided)) == 1, nil
}

func statusError(status AccountStatus) error {
	switch status {
	case AccountLocked:
		return ErrAccountLocked
	case AccountInactive:
		return ErrAccountInactive
	default:
		return nil
	}
}

func (e *Engine) traceLogin(ctx context.Context, principal Principal, token string, at time.Time) {
	if e.traces == nil {
		return
	}
	trace := LoginTrace{
		ID:            internalaudit.NewEventID(),
		UserTypeAndID: principal.UserTypeAndID(),
		Token:         token,
		LoginAt:       at,
	}
	if err := e.traces.RecordLogin(ctx, trace); err != nil {
		e.metricInc(MetricTraceWriteFailure)
		e.logger.Error(err, "login trace write failed", "user", trace.UserTypeAndID)
	}
}

func (e *Engine) traceLogout(ctx context.Context, userTypeAndID string) {
	if e.traces == nil {
		return
	}
	if err := e.traces.RecordLogout(ctx, userTypeAndID, time.Now().UTC()); err != nil {
		e.metricInc(MetricTraceWriteFailure)
		e.logger.Error(err, "logout trace write failed", "user", userTypeAndID)
	}
}

func (e *Engine) revokeAlias(ctx context.Context, token string) {
	if e.aliases == nil {
		return
	}
	if err := e.aliases.Revoke(ctx, token); err != nil {
		e.logger.Error(err, "token alias revocation failed", "token", token)
	}
}
