package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketadmin/internal/domain"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

type ServiceFilter struct {
	Search     string
	Status     domain.ServiceStatus
	CategoryID *int64
	ProviderID *int64
	Pagination
}

// Create inserts the listing. hooks run in the same transaction after the
// insert, with s.ID set.
func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service, hooks ...TxHook) error {
	if s.Status == "" {
		s.Status = domain.ServiceDraft
	}
	s.Category = nil
	s.Provider = nil
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(s).Error; err != nil {
			return err
		}
		return runHooks(tx, hooks)
	})
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Provider").
		First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GetServiceForUpdate loads and locks a service. Call it inside a transaction.
func GetServiceForUpdate(tx *gorm.DB, id int64) (*domain.Service, error) {
	var s domain.Service
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&domain.Service{}).Where("slug = ?", slug)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ServiceRepository) List(ctx context.Context, f ServiceFilter) ([]domain.Service, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Service{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.ProviderID != nil {
		q = q.Where("provider_id = ?", *f.ProviderID)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		p := likePattern(s)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(summary) LIKE ? OR LOWER(description) LIKE ?", p, p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Pagination.Normalize()
	var out []domain.Service
	if err := q.Preload("Category").
		Preload("Provider").
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update locks the row, runs hooks and then writes fields, all in one transaction.
func (r *ServiceRepository) Update(ctx context.Context, id int64, fields map[string]any, hooks ...TxHook) (*domain.Service, error) {
	if len(fields) == 0 && len(hooks) == 0 {
		return r.GetByID(ctx, id)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := GetServiceForUpdate(tx, id); err != nil {
			return err
		}
		if err := runHooks(tx, hooks); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&domain.Service{}).Where("id = ?", id).Updates(fields).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Service{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ServiceRepository) CountByStatus(ctx context.Context) (map[domain.ServiceStatus]int64, error) {
	type row struct {
		Status domain.ServiceStatus
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.Service{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.ServiceStatus]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Count
	}
	return out, nil
}
