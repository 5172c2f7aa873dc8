package accounts

import (
	"context"

	"marketadmin/internal/domain"
	"marketadmin/internal/repository"
)

type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	List(ctx context.Context, f repository.AccountFilter) ([]domain.Account, int64, error)
	CreateWithProfile(ctx context.Context, acc *domain.Account, profile *domain.Profile) error
	Update(ctx context.Context, id int64, u repository.AccountUpdate, guards ...repository.AccountGuard) (*domain.Account, error)
	Delete(ctx context.Context, id int64, guards ...repository.AccountGuard) error
}
