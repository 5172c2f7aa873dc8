package policy

import "marketadmin/internal/domain"

// RoleFlags returns the staff and superuser mirrors for role.
func RoleFlags(role domain.Role) (staff, superuser bool) {
	return role.IsAdminTier(), role == domain.RoleSuperAdmin
}

// ProviderOwnerRole is the role an owner gets when their provider profile is
// created, updated or approved. Admin-tier roles are never downgraded.
func ProviderOwnerRole(current domain.Role) domain.Role {
	if current.IsAdminTier() || current == domain.RoleProvider {
		return current
	}
	return domain.RoleProvider
}
