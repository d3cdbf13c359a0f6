package iamcore

import (
	"github.com/go-logr/logr"

	"github.com/tenvault/iamcore/cache"
	internalaudit "github.com/tenvault/iamcore/internal/audit"
	internalrate "github.com/tenvault/iamcore/internal/rate"
	"github.com/tenvault/iamcore/password"
	"github.com/tenvault/iamcore/permission"
	"github.com/tenvault/iamcore/scope"
)

// Engine is the authentication and authorization core. Construct it through
// [Builder.Build]; all methods are safe for concurrent use afterwards. The
// session and permission caches are the only mutable shared state; every
// other component is stateless per call.
type Engine struct {
	config Config
	logger logr.Logger

	accounts  AccountProvider
	users     UserProvider
	roles     RoleProvider
	resources ResourceProvider
	traces    LoginTraceStore
	aliases   TokenAliasRegistry

	sessions    cache.Cache[SessionEntry]
	permissions cache.Cache[PermissionEntry]

	hasher    *password.Hasher
	registry  *permission.Registry
	resolver  *scope.Resolver
	verifiers map[AuthType]CredentialVerifier
	metrics   *Metrics
	limiter   *internalrate.Limiter
	audit     *internalaudit.Dispatcher
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.TakeSnapshot()
}

// AuditDropped reports how many audit events were dropped under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// EncryptPwd encrypts a password account in place: generates the salt if
// unset, then replaces AuthSecret with its hash. Non-password accounts are
// left untouched. Callers must invoke it exactly once per plaintext-secret
// lifecycle; calling it again without a fresh plaintext would hash the
// hash.
func (e *Engine) EncryptPwd(account *Account) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if account == nil || account.AuthType != AuthTypePassword {
		return nil
	}

	if account.SecretSalt == "" {
		account.SecretSalt = password.NewSalt()
	}

	hashed, err := e.hasher.Hash(account.AuthSecret, account.SecretSalt)
	if err != nil {
		return err
	}
	account.AuthSecret = hashed
	return nil
}

// EncryptPwdWithSalt hashes a plaintext under an explicit salt and returns
// the hex digest.
func (e *Engine) EncryptPwdWithSalt(plaintext, salt string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	return e.hasher.Hash(plaintext, salt)
}
