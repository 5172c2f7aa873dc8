package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketadmin/internal/domain"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

type ProviderFilter struct {
	Search string
	Status domain.ProviderStatus
	Pagination
}

// Create inserts the profile and makes its owner a provider in one
// transaction. hooks run after the insert, with p.ID set.
func (r *ProviderRepository) Create(ctx context.Context, p *domain.ProviderProfile, hooks ...TxHook) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Account{}).Where("id = ?", p.AccountID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		if p.Status == "" {
			p.Status = domain.ProviderPending
		}
		p.Account = nil
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		if err := elevateOwner(tx, p.AccountID); err != nil {
			return err
		}
		return runHooks(tx, hooks)
	})
}

func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (*domain.ProviderProfile, error) {
	var p domain.ProviderProfile
	if err := r.db.WithContext(ctx).
		Preload("Account.Profile").
		First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProviderForUpdate loads and locks a provider profile. Call it inside a transaction.
func GetProviderForUpdate(tx *gorm.DB, id int64) (*domain.ProviderProfile, error) {
	var p domain.ProviderProfile
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProviderRepository) List(ctx context.Context, f ProviderFilter) ([]domain.ProviderProfile, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.ProviderProfile{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		p := likePattern(s)
		owners := r.db.WithContext(ctx).Model(&domain.Account{}).Select("id").Where("LOWER(username) LIKE ?", p)
		q = q.Where("LOWER(display_name) LIKE ? OR LOWER(contact_email) LIKE ? OR account_id IN (?)", p, p, owners)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Pagination.Normalize()
	var out []domain.ProviderProfile
	if err := q.Preload("Account.Profile").
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update locks the row, runs hooks, writes fields and re-applies the owner
// role elevation in one transaction.
func (r *ProviderRepository) Update(ctx context.Context, id int64, fields map[string]any, hooks ...TxHook) (*domain.ProviderProfile, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := GetProviderForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := runHooks(tx, hooks); err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.Model(&domain.ProviderProfile{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}
		return elevateOwner(tx, current.AccountID)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the profile and detaches services that referenced it.
func (r *ProviderRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nullWeakRefsToProvider(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&domain.ProviderProfile{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ProviderRepository) CountByStatus(ctx context.Context) (map[domain.ProviderStatus]int64, error) {
	type row struct {
		Status domain.ProviderStatus
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.ProviderProfile{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.ProviderStatus]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Count
	}
	return out, nil
}
