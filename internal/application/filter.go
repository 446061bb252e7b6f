package application

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ListFilter narrows a listing. Zero-valued fields apply no restriction.
type ListFilter struct {
	Statuses  []Status
	Query     string
	Role      Role
	StudentID *uuid.UUID
}

var roleScopes = map[Role][]Status{
	RoleReviewer: {StatusPendingSAG, StatusApprovedBySAG, StatusRejectedBySAG, StatusPendingFinance},
	RoleFinance:  {StatusPendingFinance, StatusPaid, StatusRejectedByFinance},
}

// Scope returns the statuses a role may list, or nil when the role is not status-scoped.
func Scope(role Role) []Status {
	return slices.Clone(roleScopes[role])
}

// ResolveStatuses combines the requested statuses with the role scope.
// restricted is false when any status is acceptable; an empty, restricted
// result means nothing can match.
func (f ListFilter) ResolveStatuses() (statuses []Status, restricted bool) {
	scope, scoped := roleScopes[f.Role]

	switch {
	case len(f.Statuses) == 0 && !scoped:
		return nil, false
	case len(f.Statuses) == 0:
		return slices.Clone(scope), true
	case !scoped:
		return slices.Clone(f.Statuses), true
	}

	for _, s := range f.Statuses {
		if slices.Contains(scope, s) && !slices.Contains(statuses, s) {
			statuses = append(statuses, s)
		}
	}

	return statuses, true
}

// Matches reports whether app passes the filter. Stores that cannot push the
// filter down to a query language use it directly.
func (f ListFilter) Matches(app *Application) bool {
	if statuses, restricted := f.ResolveStatuses(); restricted && !slices.Contains(statuses, app.Status) {
		return false
	}

	if f.StudentID != nil && app.StudentID != *f.StudentID {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}

	return strings.Contains(strings.ToLower(app.ScholarshipTitle), q) ||
		strings.Contains(strings.ToLower(app.URN), q)
}
