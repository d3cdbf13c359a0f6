package iamcore

import (
	"time"

	"github.com/tenvault/iamcore/scope"
)

// AuthType discriminates the credential kind of an [Account]. One principal
// may own several accounts, at most one per auth type.
type AuthType string

const (
	// AuthTypePassword is the salted-hash password credential type.
	AuthTypePassword AuthType = "PWD"
	// AuthTypeSSO is a single-sign-on credential; the secret is an opaque
	// token issued by the external identity provider.
	AuthTypeSSO AuthType = "SSO"
	// AuthTypeIM is an external instant-messaging identity credential.
	AuthTypeIM AuthType = "IM"
	// AuthTypeOther covers auth types registered by the caller through
	// [Builder.WithCredentialVerifier].
	AuthTypeOther AuthType = "OTHER"
)

// AccountStatus represents the lifecycle state of an account or user.
type AccountStatus uint8

const (
	// AccountActive allows authentication.
	AccountActive AccountStatus = iota
	// AccountInactive rejects authentication with [ErrAccountInactive].
	AccountInactive
	// AccountLocked rejects authentication with [ErrAccountLocked].
	AccountLocked
)

// UserTypeAndIDSeparator joins the user-type discriminator and user id into
// the cross-cutting lookup key used by force logout and cache invalidation.
const UserTypeAndIDSeparator = ":"

// Principal identifies a logged-in subject. Principals are immutable once
// issued: a role or org change never mutates a live Principal, it invalidates
// the permission cache instead so the next check recomputes.
type Principal struct {
	UserType    string     `json:"user_type"`
	UserID      string     `json:"user_id"`
	TenantID    string     `json:"tenant_id,omitempty"`
	OrgID       string     `json:"org_id,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	DataScope   scope.Type `json:"data_scope,omitempty"`
}

// UserTypeAndID returns the derived "userType:userId" key.
func (p Principal) UserTypeAndID() string {
	return p.UserType + UserTypeAndIDSeparator + p.UserID
}

// Account is one credential record owned by a user. For
// [AuthTypePassword], AuthSecret on disk is always the hashed form and
// SecretSalt is generated exactly once on first encryption.
type Account struct {
	UserType    string        `json:"user_type"`
	UserID      string        `json:"user_id"`
	AuthType    AuthType      `json:"auth_type"`
	AuthAccount string        `json:"auth_account"`
	AuthSecret  string        `json:"auth_secret"`
	SecretSalt  string        `json:"secret_salt,omitempty"`
	Status      AccountStatus `json:"status"`
}

// UserInfo is the owning user entity behind an [Account], looked up through
// [UserProvider] after the credential check succeeds.
type UserInfo struct {
	UserType    string
	UserID      string
	TenantID    string
	OrgID       string
	DisplayName string
	Status      AccountStatus
	DataScope   scope.Type
}

// SessionEntry is the session-cache value: the issued principal, a snapshot
// of the credentials that authenticated it, and the creation time. Entries
// are never mutated in place; a refresh replaces the entry wholesale.
type SessionEntry struct {
	Principal Principal `json:"principal"`
	Account   Account   `json:"account"`
	CreatedAt time.Time `json:"created_at"`
}

// PermissionEntry is the permission-cache value: the permission codes and
// super-admin standing resolved for one session, tagged with the owning
// principal key so that per-user invalidation can match entries without
// consulting the session cache. Carrying SuperAdmin here means a role
// demotion takes effect through the same cache invalidation as a
// permission edit.
type PermissionEntry struct {
	UserTypeAndID string   `json:"user_type_and_id"`
	SuperAdmin    bool     `json:"super_admin,omitempty"`
	Codes         []string `json:"codes"`
}

// LoginTrace is one audit row per login. LogoutAt stays nil while the
// session is open and is set on logout, best-effort.
type LoginTrace struct {
	ID            string     `json:"id"`
	UserTypeAndID string     `json:"user_type_and_id"`
	Token         string     `json:"token"`
	LoginAt       time.Time  `json:"login_at"`
	LogoutAt      *time.Time `json:"logout_at,omitempty"`
}

// AuthResult is returned by [Engine.Authenticate]: the opaque session token
// and the principal it was issued to.
type AuthResult struct {
	Token     string
	Principal Principal
}
