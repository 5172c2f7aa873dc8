package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketadmin/internal/domain"
)

// RefreshTokenRepository provides DB access for admin session tokens.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) DB() *gorm.DB { return r.db }

// Transaction runs fn with a repository bound to a single database transaction.
func (r *RefreshTokenRepository) Transaction(ctx context.Context, fn func(repo *RefreshTokenRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RefreshTokenRepository{db: tx})
	})
}

func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RefreshTokenRepository) GetByHashForUpdate(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token_hash = ?", hash).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkUsed consumes a token during rotation.
func (r *RefreshTokenRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ?", id).
		Updates(map[string]any{"used_at": at, "revoked_at": at}).Error
}

// MarkReuse flags a replayed token and revokes its whole family.
func (r *RefreshTokenRepository) MarkReuse(ctx context.Context, t *domain.RefreshToken, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ?", t.ID).
		Update("reuse_detected_at", at).Error; err != nil {
		return err
	}
	return r.RevokeFamily(ctx, t.FamilyID, at)
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

func (r *RefreshTokenRepository) RevokeFamily(ctx context.Context, familyID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Update("revoked_at", at).Error
}

func (r *RefreshTokenRepository) RevokeByAccount(ctx context.Context, accountID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("account_id = ? AND revoked_at IS NULL", accountID).
		Update("revoked_at", at).Error
}

// DeleteStale removes tokens that expired, or were revoked, before cutoff.
func (r *RefreshTokenRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", cutoff, cutoff).
		Delete(&domain.RefreshToken{})
	return res.RowsAffected, res.Error
}
