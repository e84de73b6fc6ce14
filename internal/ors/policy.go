package ors

import "roadward.org/internal/identity"

// Operation classifies the record operations subject to the capability table.
type Operation string

const (
	OpCreate    Operation = "ors.create"
	OpRead      Operation = "ors.read"
	OpUpdate    Operation = "ors.update"
	OpDelete    Operation = "ors.delete"
	OpReadStats Operation = "ors.stats.read"
)

// capabilities is the fixed role/operation table. Viewers are read-only;
// admins and inspectors may mutate, subject to the ownership check below.
var capabilities = map[Operation]map[identity.Role]bool{
	OpCreate:    {identity.RoleAdmin: true, identity.RoleInspector: true},
	OpUpdate:    {identity.RoleAdmin: true, identity.RoleInspector: true},
	OpDelete:    {identity.RoleAdmin: true, identity.RoleInspector: true},
	OpRead:      {identity.RoleAdmin: true, identity.RoleInspector: true, identity.RoleViewer: true},
	OpReadStats: {identity.RoleAdmin: true, identity.RoleInspector: true, identity.RoleViewer: true},
}

// Allowed reports whether the role may perform the operation class at all.
// For update and delete this check is necessary but not sufficient: Editable
// must also pass for the specific record.
func Allowed(role identity.Role, op Operation) bool {
	return capabilities[op][role]
}

// Editable decides whether the acting user may mutate the record owned by
// inspectorID: admins may mutate anything, inspectors only their own records.
// Ownership is recomputed from the stored record on every mutation; it is not
// a persisted ACL.
func Editable(inspectorID string, actor identity.User) bool {
	if actor.Role == identity.RoleAdmin {
		return true
	}
	return inspectorID != "" && inspectorID == actor.ID
}
