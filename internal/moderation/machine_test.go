package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/observability"
	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
	"marketadmin/internal/testutil"
)

type fixture struct {
	db      *gorm.DB
	machine *Machine
	metrics *observability.Metrics
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	f := &fixture{
		db:      db,
		metrics: metrics,
		clock:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.machine = NewMachine(db, policy.NewEnforcer(zap.NewNop(), metrics), zap.NewNop(), metrics)
	f.machine.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) actor(t *testing.T, username string, role domain.Role) policy.Actor {
	t.Helper()
	return policy.NewActor(testutil.CreateAccount(t, f.db, username, role))
}

func TestTransitionProvider_ApproveElevatesOwnerAndStamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reviewer := f.actor(t, "admin", domain.RoleAdmin)

	owner := testutil.CreateAccount(t, f.db, "owner", domain.RoleUser)
	p := testutil.CreateProvider(t, f.db, owner, domain.ProviderPending)

	got, err := f.machine.TransitionProvider(ctx, reviewer, p.ID, domain.ProviderApproved, "docs ok")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderApproved, got.Status)
	assert.Equal(t, "docs ok", got.ReviewNotes)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, reviewer.ID, *got.ReviewedBy)
	require.NotNil(t, got.ReviewedAt)
	assert.True(t, got.ReviewedAt.Equal(f.clock))

	require.NotNil(t, got.Account)
	assert.Equal(t, domain.RoleProvider, got.Account.Role())
	assert.False(t, got.Account.IsStaff)

	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ModerationTransitionsTotal.WithLabelValues("provider", "approved")))
}

func TestTransitionProvider_ApproveKeepsAdminTierOwner(t *testing.T) {
	f := newFixture(t)
	reviewer := f.actor(t, "root", domain.RoleSuperAdmin)
	owner := testutil.CreateAccount(t, f.db, "mod", domain.RoleModerator)
	p := testutil.CreateProvider(t, f.db, owner, domain.ProviderPending)

	got, err := f.machine.TransitionProvider(context.Background(), reviewer, p.ID, domain.ProviderApproved, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, got.Account.Role())
	assert.True(t, got.Account.IsStaff)
}

func TestTransitionProvider_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.actor(t, "first", domain.RoleAdmin)
	second := f.actor(t, "second", domain.RoleModerator)
	p := testutil.CreateProvider(t, f.db, testutil.CreateAccount(t, f.db, "owner", domain.RoleUser), domain.ProviderPending)

	_, err := f.machine.TransitionProvider(ctx, first, p.ID, domain.ProviderApproved, "one")
	require.NoError(t, err)

	f.clock = f.clock.Add(time.Hour)
	got, err := f.machine.TransitionProvider(ctx, second, p.ID, domain.ProviderApproved, "two")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderApproved, got.Status)
	assert.Equal(t, second.ID, *got.ReviewedBy)
	assert.True(t, got.ReviewedAt.Equal(f.clock))
	assert.Equal(t, "two", got.ReviewNotes)
}

func TestTransitionProvider_AnyStateToAnyState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.actor(t, "admin", domain.RoleAdmin)
	p := testutil.CreateProvider(t, f.db, testutil.CreateAccount(t, f.db, "owner", domain.RoleUser), domain.ProviderPending)

	for _, from := range domain.ProviderStatuses {
		for _, to := range domain.ProviderStatuses {
			require.NoError(t, f.db.Model(p).Update("status", from).Error)
			got, err := f.machine.TransitionProvider(ctx, admin, p.ID, to, "")
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, to, got.Status)
		}
	}
}

func TestTransitionProvider_ModeratorCannotReject(t *testing.T) {
	f := newFixture(t)
	mod := f.actor(t, "mod", domain.RoleModerator)
	p := testutil.CreateProvider(t, f.db, testutil.CreateAccount(t, f.db, "owner", domain.RoleUser), domain.ProviderPending)

	_, err := f.machine.TransitionProvider(context.Background(), mod, p.ID, domain.ProviderRejected, "")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	var stored domain.ProviderProfile
	require.NoError(t, f.db.First(&stored, p.ID).Error)
	assert.Equal(t, domain.ProviderPending, stored.Status)
	assert.Nil(t, stored.ReviewedBy)

	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.AuthzDenialsTotal.WithLabelValues(string(policy.ProviderReject), string(policy.RuleAdminTransition))))
}

func TestTransitionProvider_ModeratorApprovesAndDisables(t *testing.T) {
	f := newFixture(t)
	mod := f.actor(t, "mod", domain.RoleModerator)
	p := testutil.CreateProvider(t, f.db, testutil.CreateAccount(t, f.db, "owner", domain.RoleUser), domain.ProviderPending)

	_, err := f.machine.TransitionProvider(context.Background(), mod, p.ID, domain.ProviderApproved, "")
	require.NoError(t, err)
	got, err := f.machine.TransitionProvider(context.Background(), mod, p.ID, domain.ProviderDisabled, "complaints")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderDisabled, got.Status)
}

func TestTransitionProvider_ErrorOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.actor(t, "user", domain.RoleUser)
	admin := f.actor(t, "admin", domain.RoleAdmin)

	_, err := f.machine.TransitionProvider(ctx, user, 999, domain.ProviderStatus("archived"), "")
	assert.True(t, errors.Is(err, apperror.ErrInvalidStatus))

	_, err = f.machine.TransitionProvider(ctx, user, 999, domain.ProviderApproved, "")
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = f.machine.TransitionProvider(ctx, policy.Actor{}, 999, domain.ProviderApproved, "")
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))

	_, err = f.machine.TransitionProvider(ctx, admin, 999, domain.ProviderApproved, "")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestTransitionProvider_RoleRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, "root", domain.RoleSuperAdmin)
	owner := testutil.CreateAccount(t, f.db, "owner", domain.RoleUser)
	p := testutil.CreateProvider(t, f.db, owner, domain.ProviderPending)
	accounts := repository.NewAccountRepository(f.db)

	_, err := f.machine.TransitionProvider(ctx, root, p.ID, domain.ProviderApproved, "")
	require.NoError(t, err)
	acc, err := accounts.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProvider, acc.Role())

	require.NoError(t, accounts.SetRole(ctx, owner.ID, domain.RoleUser))
	_, err = f.machine.TransitionProvider(ctx, root, p.ID, domain.ProviderDisabled, "")
	require.NoError(t, err)
	acc, err = accounts.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, acc.Role())
}

func TestTransitionService_ApproveStamps(t *testing.T) {
	f := newFixture(t)
	mod := f.actor(t, "mod", domain.RoleModerator)
	s := testutil.CreateService(t, f.db, "house-cleaning", domain.ServicePending)

	got, err := f.machine.TransitionService(context.Background(), mod, s.ID, domain.ServiceApproved, "looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceApproved, got.Status)
	assert.Equal(t, "looks good", got.ApprovalNotes)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, mod.ID, *got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(f.clock))
}

func TestTransitionService_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := f.actor(t, "mod", domain.RoleModerator)
	admin := f.actor(t, "admin", domain.RoleAdmin)
	s := testutil.CreateService(t, f.db, "window-washing", domain.ServicePending)

	_, err := f.machine.TransitionService(ctx, mod, s.ID, domain.ServiceApproved, "first pass")
	require.NoError(t, err)

	f.clock = f.clock.Add(2 * time.Hour)
	got, err := f.machine.TransitionService(ctx, admin, s.ID, domain.ServiceApproved, "second pass")
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, admin.ID, *got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(f.clock))
	assert.Equal(t, "second pass", got.ApprovalNotes)
	assert.Equal(t, 2.0, promtest.ToFloat64(f.metrics.ModerationTransitionsTotal.WithLabelValues("service", string(domain.ServiceApproved))))
}

func TestNewMachine_UsesGivenEnforcer(t *testing.T) {
	db := testutil.NewDB(t)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	core, logs := observer.New(zap.InfoLevel)
	machine := NewMachine(db, policy.NewEnforcer(zap.New(core), metrics), nil, nil)

	mod := policy.NewActor(testutil.CreateAccount(t, db, "mod", domain.RoleModerator))
	s := testutil.CreateService(t, db, "gutter-cleaning", domain.ServicePending)

	_, err := machine.TransitionService(context.Background(), mod, s.ID, domain.ServiceRejected, "")
	require.True(t, errors.Is(err, apperror.ErrForbidden))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.AuthzDenialsTotal.WithLabelValues(string(policy.ServiceReject), string(policy.RuleAdminTransition))))
	assert.Equal(t, 1, logs.FilterField(zap.String("event", "denied")).Len())
}

func TestTransitionService_ModeratorLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mod := f.actor(t, "mod", domain.RoleModerator)
	admin := f.actor(t, "admin", domain.RoleAdmin)
	s := testutil.CreateService(t, f.db, "dog-walking", domain.ServicePending)

	for _, status := range []domain.ServiceStatus{domain.ServiceRejected, domain.ServiceDraft, domain.ServicePending} {
		_, err := f.machine.TransitionService(ctx, mod, s.ID, status, "")
		assert.True(t, errors.Is(err, apperror.ErrForbidden), status)
	}

	_, err := f.machine.TransitionService(ctx, mod, s.ID, domain.ServiceDisabled, "")
	require.NoError(t, err)

	got, err := f.machine.TransitionService(ctx, admin, s.ID, domain.ServiceRejected, "spam")
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceRejected, got.Status)
	assert.Equal(t, admin.ID, *got.ApprovedBy)
}

func TestTransitionService_InvalidStatusAndMissing(t *testing.T) {
	f := newFixture(t)
	admin := f.actor(t, "admin", domain.RoleAdmin)

	_, err := f.machine.TransitionService(context.Background(), admin, 1, domain.ServiceStatus("live"), "")
	require.True(t, errors.Is(err, apperror.ErrInvalidStatus))
	assert.Contains(t, apperror.As(err).Details["allowed"], "draft")

	_, err = f.machine.TransitionService(context.Background(), admin, 404, domain.ServiceApproved, "")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
