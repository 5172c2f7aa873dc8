package accounts

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"marketadmin/internal/domain"
	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
)

// scope selects between the user directory and the super_admin only admin directory.
type scope int

const (
	scopeUsers scope = iota
	scopeAdmins
)

type Service struct {
	accounts   AccountRepository
	enforcer   *policy.Enforcer
	log        *zap.Logger
	bcryptCost int
}

func NewService(accounts AccountRepository, enforcer *policy.Enforcer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		accounts:   accounts,
		enforcer:   enforcer,
		log:        log,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// -------------------- Users --------------------

func (s *Service) List(ctx context.Context, actor policy.Actor, q ListQuery) ([]domain.Account, int64, error) {
	return s.list(ctx, actor, scopeUsers, q)
}

func (s *Service) Get(ctx context.Context, actor policy.Actor, id int64) (*domain.Account, error) {
	if err := s.enforcer.Check(actor, policy.AccountGet, policy.Target{}); err != nil {
		return nil, err
	}
	return s.load(ctx, scopeUsers, id)
}

// Create registers an account. The role defaults to user; admin-tier roles
// are reserved to super admins.
func (s *Service) Create(ctx context.Context, actor policy.Actor, req CreateRequest) (*domain.Account, error) {
	return s.create(ctx, actor, scopeUsers, req)
}

func (s *Service) Update(ctx context.Context, actor policy.Actor, id int64, req UpdateRequest) (*domain.Account, error) {
	return s.update(ctx, actor, scopeUsers, id, req)
}

func (s *Service) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	return s.delete(ctx, actor, scopeUsers, id)
}

// -------------------- Admins --------------------

func (s *Service) ListAdmins(ctx context.Context, actor policy.Actor, q ListQuery) ([]domain.Account, int64, error) {
	return s.list(ctx, actor, scopeAdmins, q)
}

func (s *Service) GetAdmin(ctx context.Context, actor policy.Actor, id int64) (*domain.Account, error) {
	if err := s.enforcer.Check(actor, policy.AdminList, policy.Target{}); err != nil {
		return nil, err
	}
	return s.load(ctx, scopeAdmins, id)
}

// CreateAdmin registers an admin-tier account with a stronger password requirement.
func (s *Service) CreateAdmin(ctx context.Context, actor policy.Actor, req CreateRequest) (*domain.Account, error) {
	return s.create(ctx, actor, scopeAdmins, req)
}

func (s *Service) UpdateAdmin(ctx context.Context, actor policy.Actor, id int64, req UpdateRequest) (*domain.Account, error) {
	return s.update(ctx, actor, scopeAdmins, id, req)
}

func (s *Service) DeleteAdmin(ctx context.Context, actor policy.Actor, id int64) error {
	return s.delete(ctx, actor, scopeAdmins, id)
}

// -------------------- shared --------------------

// precheck authorizes op without a target, so callers that may never act on
// accounts are refused before the target is looked up.
func (s *Service) precheck(actor policy.Actor, sc scope, op policy.Operation) error {
	if sc == scopeAdmins {
		if err := s.enforcer.Check(actor, policy.AdminList, policy.Target{}); err != nil {
			return err
		}
	}
	return s.enforcer.Check(actor, op, policy.Target{})
}

func (s *Service) list(ctx context.Context, actor policy.Actor, sc scope, q ListQuery) ([]domain.Account, int64, error) {
	op := policy.AccountList
	if sc == scopeAdmins {
		op = policy.AdminList
	}
	if err := s.enforcer.Check(actor, op, policy.Target{}); err != nil {
		return nil, 0, err
	}

	f := repository.AccountFilter{
		Search:        q.Search,
		Role:          q.Role,
		IsActive:      q.IsActive,
		AdminTierOnly: sc == scopeAdmins,
		Pagination:    repository.Pagination{Page: q.Page, Limit: q.Limit},
	}
	return s.accounts.List(ctx, f)
}

func (s *Service) load(ctx context.Context, sc scope, id int64) (*domain.Account, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(sc, err)
	}
	if err := s.inScope(sc, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// inScope hides accounts outside the admin directory from admin operations.
func (s *Service) inScope(sc scope, acc *domain.Account) error {
	if sc == scopeAdmins && !acc.Role().IsAdminTier() {
		return ErrAdminNotFound
	}
	return nil
}

func (s *Service) storeError(sc scope, err error) error {
	err = apperror.FromStore(err, "account")
	if sc == scopeAdmins && errors.Is(err, apperror.ErrNotFound) {
		return ErrAdminNotFound
	}
	return err
}

func (s *Service) create(ctx context.Context, actor policy.Actor, sc scope, req CreateRequest) (*domain.Account, error) {
	if err := s.precheck(actor, sc, policy.AccountCreate); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" && sc == scopeUsers {
		role = domain.RoleUser
	}
	if sc == scopeAdmins {
		if !role.IsAdminTier() {
			return nil, ErrAdminRoleNeeded
		}
		if len(req.Password) < minAdminPassword {
			return nil, ErrAdminPasswordLen
		}
	}
	if err := s.enforcer.CheckRole(actor, policy.AccountCreate, policy.Target{}, role); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	acc := &domain.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		IsActive:     isActive,
	}
	profile := &domain.Profile{
		Role:         role,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		JobTitle:     strings.TrimSpace(req.JobTitle),
		Organisation: strings.TrimSpace(req.Organisation),
		Notes:        req.Notes,
	}
	if err := s.accounts.CreateWithProfile(ctx, acc, profile); err != nil {
		return nil, apperror.FromStore(err, "account")
	}

	s.log.Info("audit",
		zap.String("event", "account_created"),
		zap.Int64("account_id", acc.ID),
		zap.String("role", string(role)),
		zap.Int64("actor_id", actor.ID),
	)
	return acc, nil
}

// update authorizes against the locked row inside the write transaction, so a
// role change committed after the request arrived is still seen.
func (s *Service) update(ctx context.Context, actor policy.Actor, sc scope, id int64, req UpdateRequest) (*domain.Account, error) {
	if err := s.precheck(actor, sc, policy.AccountUpdate); err != nil {
		return nil, err
	}

	newRole := req.requestedRole()
	if sc == scopeAdmins && newRole != "" && !newRole.IsAdminTier() {
		return nil, ErrAdminRoleNeeded
	}
	if sc == scopeAdmins && req.Password != nil && len(*req.Password) < minAdminPassword {
		return nil, ErrAdminPasswordLen
	}

	u, err := s.buildUpdate(req)
	if err != nil {
		return nil, err
	}

	var before domain.Role
	updated, err := s.accounts.Update(ctx, id, u, func(current *domain.Account) error {
		if err := s.inScope(sc, current); err != nil {
			return err
		}
		before = current.Role()
		return s.enforcer.CheckRole(actor, policy.AccountUpdate, policy.AccountTarget(current), newRole)
	})
	if err != nil {
		return nil, s.storeError(sc, err)
	}

	if newRole != "" && newRole != before {
		s.log.Info("audit",
			zap.String("event", "role_changed"),
			zap.Int64("account_id", id),
			zap.String("from", string(before)),
			zap.String("to", string(newRole)),
			zap.Int64("actor_id", actor.ID),
		)
	}
	return updated, nil
}

func (s *Service) buildUpdate(req UpdateRequest) (repository.AccountUpdate, error) {
	u := repository.AccountUpdate{
		Account: map[string]any{},
		Profile: map[string]any{},
		Role:    req.Role,
	}

	if req.Username != nil {
		u.Account["username"] = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		u.Account["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.FirstName != nil {
		u.Account["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.Account["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.IsActive != nil {
		u.Account["is_active"] = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return u, apperror.Internal(err)
		}
		u.Account["password_hash"] = string(hash)
	}

	if req.PhoneNumber != nil {
		u.Profile["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.JobTitle != nil {
		u.Profile["job_title"] = strings.TrimSpace(*req.JobTitle)
	}
	if req.Organisation != nil {
		u.Profile["organisation"] = strings.TrimSpace(*req.Organisation)
	}
	if req.Notes != nil {
		u.Profile["notes"] = *req.Notes
	}
	return u, nil
}

func (s *Service) delete(ctx context.Context, actor policy.Actor, sc scope, id int64) error {
	if err := s.precheck(actor, sc, policy.AccountDelete); err != nil {
		return err
	}

	var role domain.Role
	err := s.accounts.Delete(ctx, id, func(current *domain.Account) error {
		if err := s.inScope(sc, current); err != nil {
			return err
		}
		role = current.Role()
		return s.enforcer.Check(actor, policy.AccountDelete, policy.AccountTarget(current))
	})
	if err != nil {
		return s.storeError(sc, err)
	}

	s.log.Info("audit",
		zap.String("event", "account_deleted"),
		zap.Int64("account_id", id),
		zap.String("role", string(role)),
		zap.Int64("actor_id", actor.ID),
	)
	return nil
}
