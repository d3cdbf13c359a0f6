package scope

import (
	"context"
	"errors"
	"fmt"
)

// Type is the data-scope policy attached to a principal, directly or via
// role.
type Type string

const (
	// Self limits visibility to rows owned by the principal.
	Self Type = "SELF"
	// SelfAndSub extends Self with rows owned by subordinates of the
	// principal's org.
	SelfAndSub Type = "SELF_AND_SUB"
	// Dept limits visibility to rows of the principal's org.
	Dept Type = "DEPT"
	// DeptAndSub extends Dept with all descendant orgs.
	DeptAndSub Type = "DEPT_AND_SUB"
	// All applies no row filter.
	All Type = "ALL"
)

// Column names the filters bind to. The data-access collaborator translates
// them into whatever predicate its query layer uses.
const (
	ColumnUserID = "user_id"
	ColumnOrgID  = "org_id"
)

// ErrOrgQueryRequired is returned when a scope type needs org-tree traversal
// but no [OrgQuery] was configured.
var ErrOrgQueryRequired = errors.New("scope: org hierarchy query required")

// OrgQuery answers the org-tree lookups behind SelfAndSub and DeptAndSub.
type OrgQuery interface {
	// SubordinateUserIDs returns the user ids of subordinates within the
	// given org.
	SubordinateUserIDs(ctx context.Context, orgID string) ([]string, error)
	// DescendantOrgIDs returns all org ids below the given org, excluding
	// the org itself.
	DescendantOrgIDs(ctx context.Context, orgID string) ([]string, error)
}

// Filter is the row-filter descriptor handed to the data-access layer.
// Unrestricted filters match everything; otherwise the filter means
// "Column IN Values".
type Filter struct {
	Unrestricted bool
	Column       string
	Values       []string
}

// Resolver maps a principal's scope type to a [Filter].
type Resolver struct {
	orgs OrgQuery
}

// NewResolver creates a [Resolver]. orgs may be nil when only Self, Dept,
// and All scopes are in use.
func NewResolver(orgs OrgQuery) *Resolver {
	return &Resolver{orgs: orgs}
}

// Resolve returns the filter for the given subject. An empty scope type
// resolves to Self, the most restrictive policy.
func (r *Resolver) Resolve(ctx context.Context, userID, orgID string, t Type) (Filter, error) {
	switch t {
	case All:
		return Filter{Unrestricted: true}, nil
	case Self, "":
		return Filter{Column: ColumnUserID, Values: []string{userID}}, nil
	case Dept:
		return Filter{Column: ColumnOrgID, Values: []string{orgID}}, nil
	case SelfAndSub:
		if r.orgs == nil {
			return Filter{}, ErrOrgQueryRequired
		}
		subs, err := r.orgs.SubordinateUserIDs(ctx, orgID)
		if err != nil {
			return Filter{}, fmt.Errorf("scope: subordinate lookup: %w", err)
		}
		return Filter{Column: ColumnUserID, Values: append([]string{userID}, subs...)}, nil
	case DeptAndSub:
		if r.orgs == nil {
			return Filter{}, ErrOrgQueryRequired
		}
		descendants, err := r.orgs.DescendantOrgIDs(ctx, orgID)
		if err != nil {
			return Filter{}, fmt.Errorf("scope: descendant org lookup: %w", err)
		}
		return Filter{Column: ColumnOrgID, Values: append([]string{orgID}, descendants...)}, nil
	default:
		return Filter{}, fmt.Errorf("scope: unknown data scope %q", t)
	}
}

// Matches reports whether a row with the given owner and org passes the
// filter. Intended for in-process collaborators; SQL-backed ones translate
// Column/Values instead.
func (f Filter) Matches(userID, orgID string) bool {
	if f.Unrestricted {
		return true
	}
	candidate := userID
	if f.Column == ColumnOrgID {
		candidate = orgID
	}
	for _, v := range f.Values {
		if v == candidate {
			return true
		}
	}
	return false
}
