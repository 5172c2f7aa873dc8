// Package bootstrap ensures the initial super admin exists.
package bootstrap

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketadmin/internal/config"
	"marketadmin/internal/domain"
	"marketadmin/internal/repository"
)

type Result string

const (
	Skipped Result = "skipped"
	Created Result = "created"
	Updated Result = "updated"
)

var ErrPasswordRequired = errors.New("INITIAL_SUPER_ADMIN_PASSWORD or INITIAL_SUPER_ADMIN_PASSWORD_HASH must be set for a new account")

type accountStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	CreateWithProfile(ctx context.Context, acc *domain.Account, profile *domain.Profile) error
	Update(ctx context.Context, id int64, u repository.AccountUpdate, guards ...repository.AccountGuard) (*domain.Account, error)
}

// EnsureSuperAdmin creates the configured account, or brings an existing one
// back to an active super_admin. A configured hash wins over a plaintext
// password; neither is needed when the account already exists.
func EnsureSuperAdmin(ctx context.Context, accounts accountStore, cfg config.BootstrapConfig, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	username := strings.TrimSpace(cfg.Username)
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if username == "" || email == "" {
		log.Warn("super admin env vars not provided; skipping")
		return Skipped, nil
	}

	hash, err := passwordHash(cfg)
	if err != nil {
		return "", err
	}

	existing, err := accounts.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	if existing == nil {
		if hash == "" {
			return "", ErrPasswordRequired
		}
		acc := &domain.Account{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := accounts.CreateWithProfile(ctx, acc, &domain.Profile{Role: domain.RoleSuperAdmin}); err != nil {
			return "", err
		}
		log.Info("created super admin", zap.String("username", username), zap.Int64("account_id", acc.ID))
		return Created, nil
	}

	role := domain.RoleSuperAdmin
	u := repository.AccountUpdate{
		Account: map[string]any{"email": email, "is_active": true},
		Role:    &role,
	}
	if hash != "" {
		u.Account["password_hash"] = hash
	}
	if _, err := accounts.Update(ctx, existing.ID, u); err != nil {
		return "", err
	}
	log.Info("super admin already exists; attributes ensured", zap.String("username", username), zap.Int64("account_id", existing.ID))
	return Updated, nil
}

func passwordHash(cfg config.BootstrapConfig) (string, error) {
	if h := strings.TrimSpace(cfg.PasswordHash); h != "" {
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return "", errors.New("INITIAL_SUPER_ADMIN_PASSWORD_HASH is not a bcrypt hash")
		}
		return h, nil
	}
	if cfg.Password == "" {
		return "", nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
