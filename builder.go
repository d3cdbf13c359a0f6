package iamcore

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/tenvault/iamcore/cache"
	internalaudit "github.com/tenvault/iamcore/internal/audit"
	internalrate "github.com/tenvault/iamcore/internal/rate"
	"github.com/tenvault/iamcore/password"
	"github.com/tenvault/iamcore/permission"
	"github.com/tenvault/iamcore/scope"
)

// Builder assembles an [Engine]. Configure it during initialization, call
// Build once, and treat the result as immutable.
type Builder struct {
	config Config
	logger logr.Logger

	accounts  AccountProvider
	users     UserProvider
	roles     RoleProvider
	resources ResourceProvider
	orgs      OrgHierarchy
	traces    LoginTraceStore
	aliases   TokenAliasRegistry

	sessions    cache.Cache[SessionEntry]
	permissions cache.Cache[PermissionEntry]

	auditSink AuditSink

	verifiers  map[AuthType]CredentialVerifier
	operations map[string]string

	built bool
}

// New creates a [Builder] with the default configuration and a discarded
// logger.
func New() *Builder {
	return &Builder{
		config:     defaultConfig(),
		logger:     logr.Discard(),
		verifiers:  make(map[AuthType]CredentialVerifier),
		operations: make(map[string]string),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithLogger sets the logger used for best-effort failure reporting.
func (b *Builder) WithLogger(logger logr.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAccountProvider sets the credential lookup collaborator. Required.
func (b *Builder) WithAccountProvider(p AccountProvider) *Builder {
	b.accounts = p
	return b
}

// WithUserProvider sets the user entity lookup collaborator. Required.
func (b *Builder) WithUserProvider(p UserProvider) *Builder {
	b.users = p
	return b
}

// WithRoleProvider sets the role lookup collaborator. Required.
func (b *Builder) WithRoleProvider(p RoleProvider) *Builder {
	b.roles = p
	return b
}

// WithResourceProvider sets the role-to-permission-code lookup
// collaborator. Required.
func (b *Builder) WithResourceProvider(p ResourceProvider) *Builder {
	b.resources = p
	return b
}

// WithOrgHierarchy sets the org-tree query collaborator. Optional; without
// it, SELF_AND_SUB and DEPT_AND_SUB scopes fail to resolve.
func (b *Builder) WithOrgHierarchy(h OrgHierarchy) *Builder {
	b.orgs = h
	return b
}

// WithLoginTraceStore sets the login/logout audit row collaborator.
// Optional; trace writes are best-effort either way.
func (b *Builder) WithLoginTraceStore(s LoginTraceStore) *Builder {
	b.traces = s
	return b
}

// WithTokenAliasRegistry sets the external token alias collaborator used
// during force logout. Optional.
func (b *Builder) WithTokenAliasRegistry(r TokenAliasRegistry) *Builder {
	b.aliases = r
	return b
}

// WithSessionCache replaces the default in-memory session cache.
func (b *Builder) WithSessionCache(c cache.Cache[SessionEntry]) *Builder {
	b.sessions = c
	return b
}

// WithPermissionCache replaces the default in-memory permission cache.
func (b *Builder) WithPermissionCache(c cache.Cache[PermissionEntry]) *Builder {
	b.permissions = c
	return b
}

// WithAuditSink sets the structured audit event sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithCredentialVerifier registers or replaces the verifier for one auth
// type. The password verifier is installed by Build and cannot be replaced.
func (b *Builder) WithCredentialVerifier(authType AuthType, v CredentialVerifier) *Builder {
	b.verifiers[authType] = v
	return b
}

// WithOperation attaches a required-permission-code expression to an
// operation identifier for [Engine.AuthorizeOperation].
func (b *Builder) WithOperation(operation, requiredCode string) *Builder {
	b.operations[operation] = requiredCode
	return b
}

// Build validates the configuration and wiring and constructs the
// [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.accounts == nil {
		return nil, fmt.Errorf("%w: account provider required", ErrConfiguration)
	}
	if b.users == nil {
		return nil, fmt.Errorf("%w: user provider required", ErrConfiguration)
	}
	if b.roles == nil {
		return nil, fmt.Errorf("%w: role provider required", ErrConfiguration)
	}
	if b.resources == nil {
		return nil, fmt.Errorf("%w: resource provider required", ErrConfiguration)
	}
	if _, reserved := b.verifiers[AuthTypePassword]; reserved {
		return nil, fmt.Errorf("%w: password verifier is built in", ErrConfiguration)
	}

	hasher, err := password.New(password.Config{
		Algorithm:  cfg.Password.Algorithm,
		Iterations: cfg.Password.Iterations,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	registry := permission.NewRegistry()
	for operation, required := range b.operations {
		if err := registry.Register(operation, required); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
	}
	registry.Freeze()

	sessions := b.sessions
	if sessions == nil {
		sessions = cache.NewMemory[SessionEntry]()
	}
	permissions := b.permissions
	if permissions == nil {
		permissions = cache.NewMemory[PermissionEntry]()
	}

	verifiers := make(map[AuthType]CredentialVerifier, len(b.verifiers))
	for authType, v := range b.verifiers {
		verifiers[authType] = v
	}

	engine := &Engine{
		config:      cfg,
		logger:      b.logger.WithName("iamcore"),
		accounts:    b.accounts,
		users:       b.users,
		roles:       b.roles,
		resources:   b.resources,
		traces:      b.traces,
		aliases:     b.aliases,
		sessions:    sessions,
		permissions: permissions,
		hasher:      hasher,
		registry:    registry,
		resolver:    scope.NewResolver(b.orgs),
		verifiers:   verifiers,
		metrics:     NewMetrics(cfg.Metrics),
		limiter: internalrate.New(internalrate.Config{
			Enabled:     cfg.Security.EnableLoginThrottle,
			MaxAttempts: cfg.Security.MaxLoginAttempts,
			Cooldown:    cfg.Security.LoginCooldown,
		}),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	b.built = true
	return engine, nil
}
