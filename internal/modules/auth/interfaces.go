package auth

import (
	"context"
	"time"

	"marketadmin/internal/domain"
	"marketadmin/internal/repository"
)

// AccountRepository — only the methods the auth service uses
type AccountRepository interface {
	GetByLogin(ctx context.Context, login string) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	Update(ctx context.Context, id int64, u repository.AccountUpdate, guards ...repository.AccountGuard) (*domain.Account, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// RefreshTokenRepository — storage for refresh tokens
type RefreshTokenRepository interface {
	Transaction(ctx context.Context, fn func(repo *repository.RefreshTokenRepository) error) error
	Create(ctx context.Context, t *domain.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id int64, at time.Time) error
}

type jwtService interface {
	GenerateToken(accountID int64, role string) (string, error)
	TTL() time.Duration
}
