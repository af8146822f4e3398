package model

// RoleTag is the job-function classification an identity signs in with.
type RoleTag string

const (
	RoleSuperAdmin          RoleTag = "super_admin"
	RoleEnterpriseAdmin     RoleTag = "enterprise_admin"
	RoleSiteAdmin           RoleTag = "site_admin"
	RolePhysicianGeneralist RoleTag = "physician_generalist"
	RolePhysicianSpecialist RoleTag = "physician_specialist"
	RoleNurse               RoleTag = "nurse"
	RoleLabTechnician       RoleTag = "lab_technician"
	RoleReceptionist        RoleTag = "receptionist"
	RoleBillingClerk        RoleTag = "billing_clerk"
	RolePatient             RoleTag = "patient"
)

// AllRoles is the closed set of role tags, most privileged first.
var AllRoles = []RoleTag{
	RoleSuperAdmin,
	RoleEnterpriseAdmin,
	RoleSiteAdmin,
	RolePhysicianGeneralist,
	RolePhysicianSpecialist,
	RoleNurse,
	RoleLabTechnician,
	RoleReceptionist,
	RoleBillingClerk,
	RolePatient,
}

// Valid reports whether r belongs to the closed set.
func (r RoleTag) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// RoleWithPermissions pairs a role with the permission codes it resolves to.
type RoleWithPermissions struct {
	Role        RoleTag  `json:"role"`
	Permissions []string `json:"permissions"`
}
