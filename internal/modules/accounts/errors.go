package accounts

import "marketadmin/internal/pkg/apperror"

const (
	minUserPassword  = 10
	minAdminPassword = 12
)

var (
	ErrAdminNotFound    = apperror.NotFound("admin")
	ErrAdminRoleNeeded  = apperror.Validation("Admin accounts need a moderator, admin or super_admin role", map[string]any{"role": "admin_tier"})
	ErrAdminPasswordLen = apperror.Validation("Admin passwords must be at least 12 characters", map[string]any{"password": "min"})
)
