package catalog

import (
	"context"

	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
)

type ServiceRepository interface {
	List(ctx context.Context, f repository.ServiceFilter) ([]domain.Service, int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	Create(ctx context.Context, s *domain.Service, hooks ...repository.TxHook) error
	Update(ctx context.Context, id int64, fields map[string]any, hooks ...repository.TxHook) (*domain.Service, error)
	Delete(ctx context.Context, id int64) error
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	CountByStatus(ctx context.Context) (map[domain.ServiceStatus]int64, error)
}

type CategoryRepository interface {
	List(ctx context.Context, f repository.CategoryFilter) ([]domain.ServiceCategory, int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ServiceCategory, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, c *domain.ServiceCategory) error
	Update(ctx context.Context, id int64, fields map[string]any) (*domain.ServiceCategory, error)
	Delete(ctx context.Context, id int64) error
}

type ProviderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ProviderProfile, error)
	CountByStatus(ctx context.Context) (map[domain.ProviderStatus]int64, error)
}

type AccountCounter interface {
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}

// Moderator applies service status transitions.
type Moderator interface {
	TransitionService(ctx context.Context, actor policy.Actor, id int64, status domain.ServiceStatus, notes string) (*domain.Service, error)
	ApplyServiceStatus(tx *gorm.DB, actor policy.Actor, id int64, status domain.ServiceStatus, notes string) error
	Committed(actor policy.Actor, entity string, id int64, status string)
}
