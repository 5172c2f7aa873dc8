package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
)

/* ==================== MOCKS ==================== */

// MockAccountRepository records calls. Update and Delete run their guards
// against the rows in stored first, the way the store does under lock.
type MockAccountRepository struct {
	mock.Mock
	stored map[int64]*domain.Account
}

func (m *MockAccountRepository) store(acc *domain.Account) {
	if m.stored == nil {
		m.stored = map[int64]*domain.Account{}
	}
	m.stored[acc.ID] = acc
}

func (m *MockAccountRepository) guard(id int64, guards []repository.AccountGuard) error {
	current, ok := m.stored[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, g := range guards {
		if err := g(current); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, f repository.AccountFilter) ([]domain.Account, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) CreateWithProfile(ctx context.Context, acc *domain.Account, profile *domain.Profile) error {
	args := m.Called(ctx, acc, profile)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, id int64, u repository.AccountUpdate, guards ...repository.AccountGuard) (*domain.Account, error) {
	if err := m.guard(id, guards); err != nil {
		return nil, err
	}
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id int64, guards ...repository.AccountGuard) error {
	if err := m.guard(id, guards); err != nil {
		return err
	}
	args := m.Called(ctx, id)
	return args.Error(0)
}

/* ==================== HELPERS ==================== */

func actor(id int64, role domain.Role) policy.Actor {
	return policy.Actor{ID: id, Role: role, HasProfile: true}
}

func account(id int64, role domain.Role) *domain.Account {
	return &domain.Account{
		ID:       id,
		Username: "acc",
		IsActive: true,
		Profile:  &domain.Profile{AccountID: id, Role: role},
	}
}

func newTestService(repo *MockAccountRepository) *Service {
	s := NewService(repo, policy.NewEnforcer(nil, nil), nil)
	s.bcryptCost = bcrypt.MinCost
	return s
}

/* ==================== TESTS ==================== */

func TestCreate_DefaultsToUserAndHashesPassword(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	repo.On("CreateWithProfile", mock.Anything,
		mock.MatchedBy(func(a *domain.Account) bool {
			return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("longenough1")) == nil && a.IsActive
		}),
		mock.MatchedBy(func(p *domain.Profile) bool { return p.Role == domain.RoleUser }),
	).Return(nil).Once()

	acc, err := svc.Create(context.Background(), actor(1, domain.RoleAdmin), CreateRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "longenough1",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "longenough1", acc.PasswordHash)
	repo.AssertExpectations(t)
}

func TestCreate_AdminTierRoleNeedsSuperAdmin(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), actor(1, domain.RoleAdmin), CreateRequest{
		Username: "mod",
		Email:    "mod@example.com",
		Password: "longenough1",
		Role:     domain.RoleModerator,
	})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	repo.AssertNotCalled(t, "CreateWithProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_ModeratorRefused(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), actor(1, domain.RoleModerator), CreateRequest{
		Username: "plain",
		Email:    "plain@example.com",
		Password: "longenough1",
	})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	repo.AssertNotCalled(t, "CreateWithProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_UnknownRoleIsValidationError(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), actor(1, domain.RoleSuperAdmin), CreateRequest{
		Username: "x",
		Email:    "x@example.com",
		Password: "longenough1",
		Role:     "owner",
	})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestCreate_DuplicateIsConflict(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	repo.On("CreateWithProfile", mock.Anything, mock.Anything, mock.Anything).
		Return(gorm.ErrDuplicatedKey).Once()

	_, err := svc.Create(context.Background(), actor(1, domain.RoleAdmin), CreateRequest{
		Username: "dup",
		Email:    "dup@example.com",
		Password: "longenough1",
	})
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestCreateAdmin_Requirements(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)
	super := actor(1, domain.RoleSuperAdmin)

	_, err := svc.CreateAdmin(context.Background(), super, CreateRequest{
		Username: "u", Email: "u@example.com", Password: "longenough-12", Role: domain.RoleUser,
	})
	assert.ErrorIs(t, err, ErrAdminRoleNeeded)

	_, err = svc.CreateAdmin(context.Background(), super, CreateRequest{
		Username: "m", Email: "m@example.com", Password: "short-pw-1", Role: domain.RoleModerator,
	})
	assert.ErrorIs(t, err, ErrAdminPasswordLen)

	_, err = svc.CreateAdmin(context.Background(), actor(2, domain.RoleAdmin), CreateRequest{
		Username: "m", Email: "m@example.com", Password: "longenough-12", Role: domain.RoleModerator,
	})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	repo.On("CreateWithProfile", mock.Anything, mock.Anything,
		mock.MatchedBy(func(p *domain.Profile) bool { return p.Role == domain.RoleModerator }),
	).Return(nil).Once()
	_, err = svc.CreateAdmin(context.Background(), super, CreateRequest{
		Username: "m", Email: "m@example.com", Password: "longenough-12", Role: domain.RoleModerator,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdate_ModeratorRefusedBeforeLookup(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	repo.store(account(999, domain.RoleUser))

	_, err := svc.Update(context.Background(), actor(1, domain.RoleModerator), 999, UpdateRequest{})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_MissingAccountIsNotFound(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), actor(1, domain.RoleAdmin), 42, UpdateRequest{})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = svc.UpdateAdmin(context.Background(), actor(1, domain.RoleSuperAdmin), 42, UpdateRequest{})
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestUpdate_SelfRoleChangeRefused(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	repo.store(account(1, domain.RoleSuperAdmin))

	role := domain.RoleAdmin
	_, err := svc.Update(context.Background(), actor(1, domain.RoleSuperAdmin), 1, UpdateRequest{Role: &role})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_AdminCannotTouchAdminTier(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	repo.store(account(5, domain.RoleModerator))

	name := "renamed"
	_, err := svc.Update(context.Background(), actor(1, domain.RoleAdmin), 5, UpdateRequest{FirstName: &name})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_BuildsColumnMaps(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	repo.store(account(5, domain.RoleUser))
	repo.On("Update", mock.Anything, int64(5), mock.MatchedBy(func(u repository.AccountUpdate) bool {
		return u.Account["email"] == "new@example.com" &&
			u.Account["is_active"] == false &&
			u.Profile["job_title"] == "Ops" &&
			u.Role != nil && *u.Role == domain.RoleProvider
	})).Return(account(5, domain.RoleProvider), nil).Once()

	email := " New@Example.com "
	inactive := false
	title := "Ops"
	role := domain.RoleProvider
	acc, err := svc.Update(context.Background(), actor(1, domain.RoleAdmin), 5, UpdateRequest{
		Email:    &email,
		IsActive: &inactive,
		JobTitle: &title,
		Role:     &role,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProvider, acc.Role())
	repo.AssertExpectations(t)
}

func TestDelete_SelfRefused(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	repo.store(account(3, domain.RoleAdmin))

	err := svc.Delete(context.Background(), actor(3, domain.RoleAdmin), 3)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestGetAdmin_NonAdminIsNotFound(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	repo.On("GetByID", mock.Anything, int64(8)).Return(account(8, domain.RoleUser), nil).Once()

	_, err := svc.GetAdmin(context.Background(), actor(1, domain.RoleSuperAdmin), 8)
	assert.ErrorIs(t, err, ErrAdminNotFound)

	_, err = svc.GetAdmin(context.Background(), actor(2, domain.RoleAdmin), 8)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestListAdmins_FiltersAdminTier(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := newTestService(repo)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.AccountFilter) bool {
		return f.AdminTierOnly && f.Search == "ann"
	})).Return([]domain.Account{*account(1, domain.RoleSuperAdmin)}, int64(1), nil).Once()

	list, total, err := svc.ListAdmins(context.Background(), actor(1, domain.RoleSuperAdmin), ListQuery{Search: "ann"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), total)
	repo.AssertExpectations(t)
}
