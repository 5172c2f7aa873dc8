package repository

import (
	"gorm.io/gorm"

	"marketadmin/internal/domain"
)

// Weak references are plain nullable ids. They are cleared explicitly in the
// same transaction that deletes the referenced row.

func nullWeakRefsToAccount(tx *gorm.DB, accountID int64) error {
	if err := tx.Model(&domain.ProviderProfile{}).
		Where("reviewed_by = ?", accountID).
		Update("reviewed_by", nil).Error; err != nil {
		return err
	}
	for _, col := range []string{"created_by", "updated_by", "approved_by"} {
		if err := tx.Model(&domain.Service{}).
			Where(col+" = ?", accountID).
			Update(col, nil).Error; err != nil {
			return err
		}
	}
	return nil
}

func nullWeakRefsToProvider(tx *gorm.DB, providerID int64) error {
	return tx.Model(&domain.Service{}).
		Where("provider_id = ?", providerID).
		Update("provider_id", nil).Error
}

func nullWeakRefsToCategory(tx *gorm.DB, categoryID int64) error {
	return tx.Model(&domain.Service{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
}
