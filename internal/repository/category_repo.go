package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"marketadmin/internal/domain"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

type CategoryFilter struct {
	Search string
	Pagination
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.ServiceCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceCategory, error) {
	var c domain.ServiceCategory
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ServiceCategory{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CategoryRepository) List(ctx context.Context, f CategoryFilter) ([]domain.ServiceCategory, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.ServiceCategory{})
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		p := likePattern(s)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Pagination.Normalize()
	var out []domain.ServiceCategory
	if err := q.Order("name ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id int64, fields map[string]any) (*domain.ServiceCategory, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	res := r.db.WithContext(ctx).Model(&domain.ServiceCategory{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the category and detaches its services.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nullWeakRefsToCategory(tx, id); err != nil {
			return err
		}
		res := tx.Delete(&domain.ServiceCategory{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
