package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketadmin/internal/domain"
	"marketadmin/internal/policy"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Transaction runs fn with a repository bound to a single database transaction.
func (r *AccountRepository) Transaction(ctx context.Context, fn func(repo *AccountRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AccountRepository{db: tx})
	})
}

type AccountFilter struct {
	Search        string
	Role          domain.Role
	IsActive      *bool
	AdminTierOnly bool
	Pagination
}

// AccountUpdate lists the columns to change. Nil maps and a nil Role are skipped.
type AccountUpdate struct {
	Account map[string]any
	Profile map[string]any
	Role    *domain.Role
}

// CreateWithProfile inserts an account and its profile atomically. Staff and
// superuser flags are derived from the profile role.
func (r *AccountRepository) CreateWithProfile(ctx context.Context, acc *domain.Account, profile *domain.Profile) error {
	if profile.Role == "" {
		profile.Role = domain.RoleUser
	}
	acc.Username = strings.TrimSpace(acc.Username)
	acc.Email = strings.ToLower(strings.TrimSpace(acc.Email))
	acc.IsStaff, acc.IsSuperuser = policy.RoleFlags(profile.Role)
	acc.Profile = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inactive := !acc.IsActive
		if err := tx.Omit(clause.Associations).Create(acc).Error; err != nil {
			return err
		}
		// is_active carries a default, so a false value is skipped on insert.
		if inactive {
			if err := tx.Model(acc).Update("is_active", false).Error; err != nil {
				return err
			}
			acc.IsActive = false
		}

		profile.AccountID = acc.ID
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		acc.Profile = profile
		return nil
	})
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	var acc domain.Account
	if err := r.db.WithContext(ctx).Preload("Profile").First(&acc, id).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetForUpdate loads an account and locks its row until the transaction ends.
func (r *AccountRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	var acc domain.Account
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Profile").
		First(&acc, id).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	var acc domain.Account
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("username = ?", strings.TrimSpace(username)).
		First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetByLogin finds an account by username or case-insensitive email.
func (r *AccountRepository) GetByLogin(ctx context.Context, login string) (*domain.Account, error) {
	login = strings.TrimSpace(login)
	var acc domain.Account
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("username = ? OR LOWER(email) = ?", login, strings.ToLower(login)).
		First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *AccountRepository) List(ctx context.Context, f AccountFilter) ([]domain.Account, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Account{})

	if f.Role != "" || f.AdminTierOnly {
		roles := r.db.WithContext(ctx).Model(&domain.Profile{}).Select("account_id")
		if f.Role != "" {
			roles = roles.Where("role = ?", f.Role)
		}
		if f.AdminTierOnly {
			roles = roles.Where("role IN ?", []domain.Role{domain.RoleModerator, domain.RoleAdmin, domain.RoleSuperAdmin})
		}
		q = q.Where("accounts.id IN (?)", roles)
	}
	if f.IsActive != nil {
		q = q.Where("accounts.is_active = ?", *f.IsActive)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		p := likePattern(s)
		q = q.Where(
			"LOWER(accounts.username) LIKE ? OR LOWER(accounts.email) LIKE ? OR LOWER(accounts.first_name) LIKE ? OR LOWER(accounts.last_name) LIKE ?",
			p, p, p, p,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Pagination.Normalize()
	var accounts []domain.Account
	if err := q.Preload("Profile").
		Order("accounts.date_joined DESC, accounts.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// AccountGuard inspects the locked account before a write. A non-nil error
// aborts the transaction.
type AccountGuard func(current *domain.Account) error

// Update locks the account, runs guards against it and applies u in one
// transaction, then returns the reloaded account.
func (r *AccountRepository) Update(ctx context.Context, id int64, u AccountUpdate, guards ...AccountGuard) (*domain.Account, error) {
	err := r.Transaction(ctx, func(repo *AccountRepository) error {
		if err := repo.lockAndGuard(ctx, id, guards); err != nil {
			return err
		}
		return repo.apply(id, u)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *AccountRepository) lockAndGuard(ctx context.Context, id int64, guards []AccountGuard) error {
	current, err := r.GetForUpdate(ctx, id)
	if err != nil {
		return err
	}
	for _, guard := range guards {
		if err := guard(current); err != nil {
			return err
		}
	}
	return nil
}

func (r *AccountRepository) apply(id int64, u AccountUpdate) error {
	if len(u.Account) > 0 {
		if err := r.db.Model(&domain.Account{}).Where("id = ?", id).Updates(u.Account).Error; err != nil {
			return err
		}
	}
	if len(u.Profile) > 0 {
		if err := r.db.Model(&domain.Profile{}).Where("account_id = ?", id).Updates(u.Profile).Error; err != nil {
			return err
		}
	}
	if u.Role != nil {
		return applyRole(r.db, id, *u.Role)
	}
	return nil
}

// SetRole writes role and its derived flags.
func (r *AccountRepository) SetRole(ctx context.Context, id int64, role domain.Role) error {
	return applyRole(r.db.WithContext(ctx), id, role)
}

// Delete locks the account, runs guards against it, then removes it with its
// owned rows and clears weak references to it.
func (r *AccountRepository) Delete(ctx context.Context, id int64, guards ...AccountGuard) error {
	return r.Transaction(ctx, func(repo *AccountRepository) error {
		if err := repo.lockAndGuard(ctx, id, guards); err != nil {
			return err
		}
		return repo.deleteRows(id)
	})
}

func (r *AccountRepository) deleteRows(id int64) error {
	tx := r.db
	var providerIDs []int64
	if err := tx.Model(&domain.ProviderProfile{}).
		Where("account_id = ?", id).
		Pluck("id", &providerIDs).Error; err != nil {
		return err
	}
	for _, pid := range providerIDs {
		if err := nullWeakRefsToProvider(tx, pid); err != nil {
			return err
		}
	}
	if err := nullWeakRefsToAccount(tx, id); err != nil {
		return err
	}

	if err := tx.Where("account_id = ?", id).Delete(&domain.ProviderProfile{}).Error; err != nil {
		return err
	}
	if err := tx.Where("account_id = ?", id).Delete(&domain.RefreshToken{}).Error; err != nil {
		return err
	}
	if err := tx.Where("account_id = ?", id).Delete(&domain.Profile{}).Error; err != nil {
		return err
	}

	res := tx.Delete(&domain.Account{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AccountRepository) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	type row struct {
		Role  domain.Role
		Count int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.Profile{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[domain.Role]int64, len(rows))
	for _, rw := range rows {
		out[rw.Role] = rw.Count
	}
	return out, nil
}

func (r *AccountRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}
