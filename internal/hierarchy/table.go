// Package hierarchy maps role tags to the permission codes they are granted.
package hierarchy

import (
	"github.com/medocupa/access-backend/internal/model"
)

// table is the static role to permission mapping. It is never mutated;
// Resolve hands out fresh copies.
var table = map[model.RoleTag][]string{
	model.RoleSuperAdmin: {model.Wildcard},
	model.RoleEnterpriseAdmin: {
		"dashboard:full", "patients:full", "appointments:full", "medical_records:read",
		"occupational_exams:full", "ergonomics:full", "billing:full", "inventory:full",
		"reports:full", "users:full", "settings:full",
	},
	model.RoleSiteAdmin: {
		"dashboard:full", "patients:full", "appointments:full", "inventory:full",
		"medical_records:read", "billing:read", "reports:read", "users:read", "settings:read",
	},
	model.RolePhysicianGeneralist: {
		"patients:full", "appointments:full", "medical_records:full", "occupational_exams:full",
		"dashboard:read", "ergonomics:read", "reports:read", "inventory:read",
	},
	model.RolePhysicianSpecialist: {
		"medical_records:full", "occupational_exams:full", "ergonomics:full",
		"dashboard:read", "patients:read", "appointments:read", "reports:read",
	},
	model.RoleNurse: {
		"patients:full", "occupational_exams:full",
		"dashboard:read", "appointments:read", "medical_records:read", "inventory:read",
	},
	model.RoleLabTechnician: {
		"occupational_exams:full",
		"dashboard:read", "patients:read", "inventory:read",
	},
	model.RoleReceptionist: {
		"patients:full", "appointments:full",
		"dashboard:read", "billing:read",
	},
	model.RoleBillingClerk: {
		"billing:full",
		"dashboard:read", "patients:read", "reports:read",
	},
	model.RolePatient: {
		"appointments:read", "medical_records:read",
	},
}

// Resolve returns the permission set of role. Unknown roles resolve to an
// empty set.
func Resolve(role model.RoleTag) model.PermissionSet {
	return model.ParsePermissionSet(table[role])
}

// Codes returns a copy of the raw permission codes of role.
func Codes(role model.RoleTag) []string {
	codes := table[role]
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// IsWildcard reports whether role carries the wildcard.
func IsWildcard(role model.RoleTag) bool {
	return Resolve(role).Wildcard
}

// Roles lists every role with its permission codes.
func Roles() []model.RoleWithPermissions {
	out := make([]model.RoleWithPermissions, 0, len(model.AllRoles))
	for _, role := range model.AllRoles {
		out = append(out, model.RoleWithPermissions{Role: role, Permissions: Codes(role)})
	}
	return out
}
