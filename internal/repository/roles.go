package repository

import (
	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/policy"
)

// applyRole writes a profile role together with the account's staff and
// superuser mirrors. Callers must have authorized the change already.
func applyRole(tx *gorm.DB, accountID int64, role domain.Role) error {
	staff, superuser := policy.RoleFlags(role)

	res := tx.Model(&domain.Profile{}).
		Where("account_id = ?", accountID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return tx.Model(&domain.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"is_staff":     staff,
			"is_superuser": superuser,
		}).Error
}

// elevateOwner makes the account a provider unless it already holds an admin-tier role.
func elevateOwner(tx *gorm.DB, accountID int64) error {
	var profile domain.Profile
	if err := tx.Where("account_id = ?", accountID).First(&profile).Error; err != nil {
		return err
	}
	next := policy.ProviderOwnerRole(profile.Role)
	if next == profile.Role {
		return nil
	}
	return applyRole(tx, accountID, next)
}

// ElevateOwner is elevateOwner for callers that manage their own transaction.
func ElevateOwner(tx *gorm.DB, accountID int64) error {
	return elevateOwner(tx, accountID)
}
