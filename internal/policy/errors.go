package policy

import (
	"marketadmin/internal/domain"
	"marketadmin/internal/pkg/apperror"
)

func invalidRole(r domain.Role) error {
	allowed := make([]string, 0, len(domain.Roles))
	for _, role := range domain.Roles {
		allowed = append(allowed, string(role))
	}
	return apperror.Validation("invalid role", map[string]any{
		"role":    string(r),
		"allowed": allowed,
	})
}
