package providers

import (
	"context"

	"marketadmin/internal/domain"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"

	"gorm.io/gorm"
)

type ProviderRepository interface {
	List(ctx context.Context, f repository.ProviderFilter) ([]domain.ProviderProfile, int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ProviderProfile, error)
	Create(ctx context.Context, p *domain.ProviderProfile, hooks ...repository.TxHook) error
	Update(ctx context.Context, id int64, fields map[string]any, hooks ...repository.TxHook) (*domain.ProviderProfile, error)
	Delete(ctx context.Context, id int64) error
}

// Moderator applies provider status transitions.
type Moderator interface {
	TransitionProvider(ctx context.Context, actor policy.Actor, id int64, status domain.ProviderStatus, notes string) (*domain.ProviderProfile, error)
	ApplyProviderStatus(tx *gorm.DB, actor policy.Actor, id int64, status domain.ProviderStatus, notes string) error
	Committed(actor policy.Actor, entity string, id int64, status string)
}
