package catalog

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/pkg/slug"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
)

type Service struct {
	services   ServiceRepository
	categories CategoryRepository
	providers  ProviderRepository
	accounts   AccountCounter
	moderator  Moderator
	enforcer   *policy.Enforcer
	log        *zap.Logger
}

func NewService(
	services ServiceRepository,
	categories CategoryRepository,
	providers ProviderRepository,
	accounts AccountCounter,
	moderator Moderator,
	enforcer *policy.Enforcer,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		services:   services,
		categories: categories,
		providers:  providers,
		accounts:   accounts,
		moderator:  moderator,
		enforcer:   enforcer,
		log:        log,
	}
}

/* ---------- SERVICES ---------- */

func (s *Service) ListServices(ctx context.Context, actor policy.Actor, q ServiceQuery) ([]domain.Service, int64, error) {
	if err := s.enforcer.Check(actor, policy.ServiceList, policy.Target{}); err != nil {
		return nil, 0, err
	}
	return s.services.List(ctx, repository.ServiceFilter{
		Search:     q.Search,
		Status:     q.Status,
		CategoryID: q.CategoryID,
		ProviderID: q.ProviderID,
		Pagination: repository.Pagination{Page: q.Page, Limit: q.Limit},
	})
}

func (s *Service) GetService(ctx context.Context, actor policy.Actor, id int64) (*domain.Service, error) {
	if err := s.enforcer.Check(actor, policy.ServiceGet, policy.Target{}); err != nil {
		return nil, err
	}
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromStore(err, "service")
	}
	return svc, nil
}

// CreateService stores a listing as draft unless another status is requested,
// in which case the status is stamped as a transition by the same actor in
// the same transaction.
func (s *Service) CreateService(ctx context.Context, actor policy.Actor, req CreateServiceRequest) (*domain.Service, error) {
	if err := s.enforcer.Check(actor, policy.ServiceCreate, policy.Target{}); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, apperror.InvalidStatus(string(req.Status), serviceStatusNames()...)
		}
		if err := s.enforcer.Check(actor, policy.ServiceTransition(req.Status), policy.Target{}); err != nil {
			return nil, err
		}
	}

	sl, err := s.resolveSlug(ctx, req.Slug, req.Name, 0)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.CategoryID, req.ProviderID); err != nil {
		return nil, err
	}

	svc := &domain.Service{
		Name:        strings.TrimSpace(req.Name),
		Slug:        sl,
		Summary:     strings.TrimSpace(req.Summary),
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ProviderID:  req.ProviderID,
		CreatedBy:   &actor.ID,
		UpdatedBy:   &actor.ID,
		Status:      domain.ServiceDraft,
	}
	var hooks []repository.TxHook
	transition := req.Status != "" && req.Status != domain.ServiceDraft
	if transition {
		hooks = append(hooks, func(tx *gorm.DB) error {
			return s.moderator.ApplyServiceStatus(tx, actor, svc.ID, req.Status, req.ApprovalNotes)
		})
	}
	if err := s.services.Create(ctx, svc, hooks...); err != nil {
		return nil, apperror.FromStore(err, "service")
	}

	if transition {
		s.moderator.Committed(actor, "service", svc.ID, string(req.Status))
	}
	return s.GetService(ctx, actor, svc.ID)
}

// UpdateService applies a partial update. A status change goes through the
// same approver stamping as the transition endpoints.
func (s *Service) UpdateService(ctx context.Context, actor policy.Actor, id int64, req UpdateServiceRequest) (*domain.Service, error) {
	if err := s.enforcer.Check(actor, policy.ServiceUpdate, policy.Target{}); err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_by": actor.ID}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		name := ""
		if req.Name != nil {
			name = *req.Name
		}
		sl, err := s.resolveSlug(ctx, *req.Slug, name, id)
		if err != nil {
			return nil, err
		}
		fields["slug"] = sl
	}
	if req.Summary != nil {
		fields["summary"] = strings.TrimSpace(*req.Summary)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	categoryID, providerID := nonZero(req.CategoryID), nonZero(req.ProviderID)
	if err := s.checkRefs(ctx, categoryID, providerID); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		fields["category_id"] = nullable(categoryID)
	}
	if req.ProviderID != nil {
		fields["provider_id"] = nullable(providerID)
	}

	var hooks []repository.TxHook
	changed := false
	if req.Status != nil {
		status := *req.Status
		if !status.Valid() {
			return nil, apperror.InvalidStatus(string(status), serviceStatusNames()...)
		}
		if err := s.enforcer.Check(actor, policy.ServiceTransition(status), policy.Target{}); err != nil {
			return nil, err
		}
		notes := ""
		if req.ApprovalNotes != nil {
			notes = *req.ApprovalNotes
		}
		hooks = append(hooks, func(tx *gorm.DB) error {
			current, err := repository.GetServiceForUpdate(tx, id)
			if err != nil {
				return err
			}
			if current.Status == status {
				if req.ApprovalNotes != nil {
					return tx.Model(&domain.Service{}).Where("id = ?", id).Update("approval_notes", notes).Error
				}
				return nil
			}
			changed = true
			return s.moderator.ApplyServiceStatus(tx, actor, id, status, notes)
		})
	} else if req.ApprovalNotes != nil {
		fields["approval_notes"] = *req.ApprovalNotes
	}

	svc, err := s.services.Update(ctx, id, fields, hooks...)
	if err != nil {
		return nil, apperror.FromStore(err, "service")
	}
	if changed {
		s.moderator.Committed(actor, "service", id, string(svc.Status))
	}
	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, actor policy.Actor, id int64) error {
	if err := s.enforcer.Check(actor, policy.ServiceDelete, policy.Target{}); err != nil {
		return err
	}
	if err := s.services.Delete(ctx, id); err != nil {
		return apperror.FromStore(err, "service")
	}
	s.log.Info("audit",
		zap.String("event", "service_deleted"),
		zap.Int64("service_id", id),
		zap.Int64("actor_id", actor.ID),
	)
	return nil
}

func (s *Service) TransitionService(ctx context.Context, actor policy.Actor, id int64, status domain.ServiceStatus, notes string) (*domain.Service, error) {
	return s.moderator.TransitionService(ctx, actor, id, status, notes)
}

// resolveSlug normalises an explicit slug, or derives one from name, and
// checks it is not used by another service.
func (s *Service) resolveSlug(ctx context.Context, explicit, name string, excludeID int64) (string, error) {
	sl := slug.Make(explicit)
	if sl == "" {
		sl = slug.Make(name)
	}
	if sl == "" {
		return "", ErrEmptySlug
	}
	taken, err := s.services.SlugExists(ctx, sl, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrSlugTaken
	}
	return sl, nil
}

func (s *Service) checkRefs(ctx context.Context, categoryID, providerID *int64) error {
	if categoryID != nil {
		ok, err := s.categories.Exists(ctx, *categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCategoryNotFound
		}
	}
	if providerID != nil {
		if _, err := s.providers.GetByID(ctx, *providerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProviderNotFound
			}
			return err
		}
	}
	return nil
}

// nonZero maps an explicit 0 to nil.
func nonZero(id *int64) *int64 {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func nullable(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

/* ---------- CATEGORIES ---------- */

func (s *Service) ListCategories(ctx context.Context, actor policy.Actor, search string, page, limit int) ([]domain.ServiceCategory, int64, error) {
	if err := s.enforcer.Check(actor, policy.CategoryList, policy.Target{}); err != nil {
		return nil, 0, err
	}
	return s.categories.List(ctx, repository.CategoryFilter{
		Search:     search,
		Pagination: repository.Pagination{Page: page, Limit: limit},
	})
}

func (s *Service) GetCategory(ctx context.Context, actor policy.Actor, id int64) (*domain.ServiceCategory, error) {
	if err := s.enforcer.Check(actor, policy.CategoryGet, policy.Target{}); err != nil {
		return nil, err
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromStore(err, "category")
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, actor policy.Actor, req CreateCategoryRequest) (*domain.ServiceCategory, error) {
	if err := s.enforcer.Check(actor, policy.CategoryCreate, policy.Target{}); err != nil {
		return nil, err
	}
	sl := slug.Make(req.Slug)
	if sl == "" {
		sl = slug.Make(req.Name)
	}
	if sl == "" {
		return nil, ErrEmptySlug
	}

	c := &domain.ServiceCategory{
		Name:        strings.TrimSpace(req.Name),
		Slug:        sl,
		Description: req.Description,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, apperror.FromStore(err, "category")
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, actor policy.Actor, id int64, req UpdateCategoryRequest) (*domain.ServiceCategory, error) {
	if err := s.enforcer.Check(actor, policy.CategoryUpdate, policy.Target{}); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		sl := slug.Make(*req.Slug)
		if sl == "" && req.Name != nil {
			sl = slug.Make(*req.Name)
		}
		if sl == "" {
			return nil, ErrEmptySlug
		}
		fields["slug"] = sl
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	c, err := s.categories.Update(ctx, id, fields)
	if err != nil {
		return nil, apperror.FromStore(err, "category")
	}
	return c, nil
}

// DeleteCategory removes the category. Its services stay, uncategorised.
func (s *Service) DeleteCategory(ctx context.Context, actor policy.Actor, id int64) error {
	if err := s.enforcer.Check(actor, policy.CategoryDelete, policy.Target{}); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return apperror.FromStore(err, "category")
	}
	return nil
}

/* ---------- STATS ---------- */

func (s *Service) Stats(ctx context.Context, actor policy.Actor) (*Stats, error) {
	if err := s.enforcer.Check(actor, policy.StatsRead, policy.Target{}); err != nil {
		return nil, err
	}

	providers, err := s.providers.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	services, err := s.services.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		PendingProviders: providers[domain.ProviderPending],
		PendingServices:  services[domain.ServicePending],
		Providers:        providers,
		Services:         services,
		Accounts:         accounts,
	}, nil
}

func serviceStatusNames() []string {
	out := make([]string, 0, len(domain.ServiceStatuses))
	for _, st := range domain.ServiceStatuses {
		out = append(out, string(st))
	}
	return out
}
