package providers

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
)

type Service struct {
	providers ProviderRepository
	moderator Moderator
	enforcer  *policy.Enforcer
	log       *zap.Logger
}

func NewService(providers ProviderRepository, moderator Moderator, enforcer *policy.Enforcer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{providers: providers, moderator: moderator, enforcer: enforcer, log: log}
}

type ListQuery struct {
	Search string
	Status domain.ProviderStatus
	Page   int
	Limit  int
}

func (s *Service) List(ctx context.Context, actor policy.Actor, q ListQuery) ([]domain.ProviderProfile, int64, error) {
	if err := s.enforcer.Check(actor, policy.ProviderList, policy.Target{}); err != nil {
		return nil, 0, err
	}
	return s.providers.List(ctx, repository.ProviderFilter{
		Search:     q.Search,
		Status:     q.Status,
		Pagination: repository.Pagination{Page: q.Page, Limit: q.Limit},
	})
}

func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*domain.ProviderProfile, error) {
	if err := s.enforcer.Check(actor, policy.ProviderGet, policy.Target{}); err != nil {
		return nil, err
	}
	p, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromStore(err, "provider")
	}
	return p, nil
}

// Create registers a provider profile for an existing account and makes the
// owner a provider. A status other than pending is stamped as a transition in
// the same transaction.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req CreateRequest) (*domain.ProviderProfile, error) {
	if err := s.enforcer.Check(actor, policy.ProviderCreate, policy.Target{}); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, apperror.InvalidStatus(string(req.Status), statusNames()...)
		}
		if err := s.enforcer.Check(actor, policy.ProviderTransition(req.Status), policy.Target{}); err != nil {
			return nil, err
		}
	}

	p := &domain.ProviderProfile{
		AccountID:    req.UserID,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		ContactEmail: strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Website:      strings.TrimSpace(req.Website),
		Description:  req.Description,
		Address:      strings.TrimSpace(req.Address),
		Status:       domain.ProviderPending,
	}
	var hooks []repository.TxHook
	transition := req.Status != "" && req.Status != domain.ProviderPending
	if transition {
		hooks = append(hooks, func(tx *gorm.DB) error {
			return s.moderator.ApplyProviderStatus(tx, actor, p.ID, req.Status, req.Notes)
		})
	}
	if err := s.providers.Create(ctx, p, hooks...); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, apperror.FromStore(err, "provider")
	}

	s.log.Info("audit",
		zap.String("event", "provider_created"),
		zap.Int64("provider_id", p.ID),
		zap.Int64("account_id", p.AccountID),
		zap.Int64("actor_id", actor.ID),
	)

	if transition {
		s.moderator.Committed(actor, "provider", p.ID, string(req.Status))
	}
	return s.Get(ctx, actor, p.ID)
}

// Update applies a partial update. A status change is authorized as the
// matching transition and stamped with the reviewer in the same transaction.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, req UpdateRequest) (*domain.ProviderProfile, error) {
	if err := s.enforcer.Check(actor, policy.ProviderUpdate, policy.Target{}); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.DisplayName != nil {
		fields["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.ContactEmail != nil {
		fields["contact_email"] = strings.ToLower(strings.TrimSpace(*req.ContactEmail))
	}
	if req.PhoneNumber != nil {
		fields["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Website != nil {
		fields["website"] = strings.TrimSpace(*req.Website)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Address != nil {
		fields["address"] = strings.TrimSpace(*req.Address)
	}

	var hooks []repository.TxHook
	changed := false
	if req.Status != nil {
		status := *req.Status
		if !status.Valid() {
			return nil, apperror.InvalidStatus(string(status), statusNames()...)
		}
		if err := s.enforcer.Check(actor, policy.ProviderTransition(status), policy.Target{}); err != nil {
			return nil, err
		}
		notes := ""
		if req.Notes != nil {
			notes = *req.Notes
		}
		hooks = append(hooks, func(tx *gorm.DB) error {
			current, err := repository.GetProviderForUpdate(tx, id)
			if err != nil {
				return err
			}
			if current.Status == status {
				if req.Notes != nil {
					return tx.Model(&domain.ProviderProfile{}).Where("id = ?", id).Update("review_notes", notes).Error
				}
				return nil
			}
			changed = true
			return s.moderator.ApplyProviderStatus(tx, actor, id, status, notes)
		})
	} else if req.Notes != nil {
		fields["review_notes"] = *req.Notes
	}

	p, err := s.providers.Update(ctx, id, fields, hooks...)
	if err != nil {
		return nil, apperror.FromStore(err, "provider")
	}
	if changed {
		s.moderator.Committed(actor, "provider", id, string(p.Status))
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if err := s.enforcer.Check(actor, policy.ProviderDelete, policy.Target{}); err != nil {
		return err
	}
	if err := s.providers.Delete(ctx, id); err != nil {
		return apperror.FromStore(err, "provider")
	}
	s.log.Info("audit",
		zap.String("event", "provider_deleted"),
		zap.Int64("provider_id", id),
		zap.Int64("actor_id", actor.ID),
	)
	return nil
}

func (s *Service) Transition(ctx context.Context, actor policy.Actor, id int64, status domain.ProviderStatus, notes string) (*domain.ProviderProfile, error) {
	return s.moderator.TransitionProvider(ctx, actor, id, status, notes)
}

func statusNames() []string {
	out := make([]string, 0, len(domain.ProviderStatuses))
	for _, st := range domain.ProviderStatuses {
		out = append(out, string(st))
	}
	return out
}
