package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketadmin/internal/domain"
)

func TestRoleFlags(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role             domain.Role
		staff, superuser bool
	}{
		{domain.RoleUser, false, false},
		{domain.RoleProvider, false, false},
		{domain.RoleModerator, true, false},
		{domain.RoleAdmin, true, false},
		{domain.RoleSuperAdmin, true, true},
	}
	for _, tc := range cases {
		staff, superuser := RoleFlags(tc.role)
		assert.Equal(t, tc.staff, staff, tc.role)
		assert.Equal(t, tc.superuser, superuser, tc.role)
	}
}

func TestProviderOwnerRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.RoleProvider, ProviderOwnerRole(domain.RoleUser))
	assert.Equal(t, domain.RoleProvider, ProviderOwnerRole(domain.RoleProvider))
	assert.Equal(t, domain.RoleProvider, ProviderOwnerRole(""))
	assert.Equal(t, domain.RoleModerator, ProviderOwnerRole(domain.RoleModerator))
	assert.Equal(t, domain.RoleAdmin, ProviderOwnerRole(domain.RoleAdmin))
	assert.Equal(t, domain.RoleSuperAdmin, ProviderOwnerRole(domain.RoleSuperAdmin))
}
