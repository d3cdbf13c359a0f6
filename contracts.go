package iamcore

import (
	"context"
	"time"

	"github.com/tenvault/iamcore/scope"
)

// AccountProvider looks up a credential record by auth type and login
// identifier. Returning (nil, nil) means no such account; the engine maps
// that to [ErrInvalidCredentials] without leaking which field was wrong.
type AccountProvider interface {
	FindAccount(ctx context.Context, authType AuthType, authAccount string) (*Account, error)
}

// UserProvider looks up the owning user entity for an authenticated account.
// Returning (nil, nil) means the user no longer exists.
type UserProvider interface {
	GetUser(ctx context.Context, userType, userID string) (*UserInfo, error)
}

// RoleProvider returns the role codes held by a principal. The engine treats
// the mapping as read-only; edits on the provider side must be followed by
// [Engine.ClearAuthorizationCache] or [Engine.ClearAllAuthorizationCache].
type RoleProvider interface {
	GetRoleCodes(ctx context.Context, p Principal) ([]string, error)
}

// ResourceProvider returns the permission codes granted by a set of roles.
// A single returned element may be a comma-joined list when the resource
// node carries multiple alternative codes; the engine splits and unions.
type ResourceProvider interface {
	GetPermissionCodes(ctx context.Context, roleCodes []string) ([]string, error)
}

// OrgHierarchy answers the org-tree queries behind data-scope resolution.
// It is the same contract package scope consumes.
type OrgHierarchy = scope.OrgQuery

// LoginTraceStore persists login/logout audit rows. All calls are
// best-effort from the engine's point of view: failures are logged and
// never block the security path.
type LoginTraceStore interface {
	RecordLogin(ctx context.Context, trace LoginTrace) error
	RecordLogout(ctx context.Context, userTypeAndID string, at time.Time) error
}

// TokenAliasRegistry tracks externally issued token aliases for a principal
// (one principal may hold several outstanding tokens). Force logout revokes
// aliases through it.
type TokenAliasRegistry interface {
	Revoke(ctx context.Context, token string) error
}

// CredentialVerifier checks a provided secret against a stored account for
// one auth type. The engine registers the password verifier itself; other
// auth types default to a constant-time opaque-secret comparison and may be
// replaced through [Builder.WithCredentialVerifier].
type CredentialVerifier func(stored *Account, provided string) (bool, error)
