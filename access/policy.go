package access

import "fmt"

// Role enumerates the closed set of user roles. String role comparisons from
// the legacy app are replaced by this enum so that an unrecognized role fails
// loudly at the boundary and closed everywhere else.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleSalesManager Role = "sales_manager"
	RoleSalesRep     Role = "sales_rep"
	RoleCanvasser    Role = "canvasser"
	RoleConfirmation Role = "confirmation"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("access: unknown role %q", raw)
	}
	return role, nil
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSalesManager, RoleSalesRep, RoleCanvasser, RoleConfirmation:
		return true
	}
	return false
}

type fieldSet map[string]struct{}

func fields(names ...string) fieldSet {
	set := make(fieldSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// editableFields is the permission table as data. Admin is handled as a
// wildcard in CanEditField rather than enumerated here. The confirmation and
// sales rows grant exactly their listed fields; the legacy app returned the
// field list itself from its permission check, which coerced to "allow
// everything" for those roles, and that behavior is not carried over.
var editableFields = map[Role]fieldSet{
	RoleCanvasser:    fields("name", "address", "foundationType", "phone", "email", "sourceOfLead", "notes"),
	RoleConfirmation: fields("verified", "inspectionScheduled", "inspectionDate"),
	RoleSalesRep:     fields("workStartDate", "workEndDate", "workNotes"),
	RoleSalesManager: fields("workStartDate", "workEndDate", "workNotes"),
}

// CanEditField reports whether role may edit the named lead field.
// Unknown roles are denied.
func CanEditField(role Role, field string) bool {
	if role == RoleAdmin {
		return true
	}
	allowed, ok := editableFields[role]
	if !ok {
		return false
	}
	_, ok = allowed[field]
	return ok
}

// CanAccessLead reports whether role may read an individual lead outside the
// creator-scoped list. Sales reps only reach leads assigned to them; the
// canvasser restriction (own leads only) is applied by the lead store when
// listing, so canvassers are denied here.
func CanAccessLead(role Role, actorID, assignedRepID string) bool {
	switch role {
	case RoleAdmin, RoleSalesManager, RoleConfirmation:
		return true
	case RoleSalesRep:
		return assignedRepID != "" && assignedRepID == actorID
	default:
		return false
	}
}
