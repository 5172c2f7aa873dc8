package domain

type Role string

const (
	RoleUser       Role = "user"
	RoleProvider   Role = "provider"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Roles lists every role from lowest to highest privilege.
var Roles = []Role{RoleUser, RoleProvider, RoleModerator, RoleAdmin, RoleSuperAdmin}

func (r Role) Valid() bool {
	return r.level() > 0
}

// IsAdminTier reports membership in {moderator, admin, super_admin}.
func (r Role) IsAdminTier() bool {
	return r.level() >= RoleModerator.level()
}

func (r Role) level() int {
	switch r {
	case RoleSuperAdmin:
		return 50
	case RoleAdmin:
		return 40
	case RoleModerator:
		return 30
	case RoleProvider:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
