// Package moderation applies status transitions to provider profiles and
// service listings and records who reviewed them and when.
//
// Every transition follows the same sequence: the requested status is
// validated, the actor is authorized for the matching operation, the row is
// loaded and locked, and status, reviewer, timestamp and notes are written in
// a single transaction. Any state may move to any other state; repeating a
// transition succeeds and refreshes the reviewer and timestamp.
package moderation

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketadmin/internal/domain"
	"marketadmin/internal/observability"
	"marketadmin/internal/pkg/apperror"
	"marketadmin/internal/policy"
	"marketadmin/internal/repository"
)

type Machine struct {
	db       *gorm.DB
	log      *zap.Logger
	metrics  *observability.Metrics
	enforcer *policy.Enforcer
	now      func() time.Time
}

// NewMachine builds a Machine that authorizes through enforcer. A nil
// enforcer gets one that shares log and metrics.
func NewMachine(db *gorm.DB, enforcer *policy.Enforcer, log *zap.Logger, metrics *observability.Metrics) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	if enforcer == nil {
		enforcer = policy.NewEnforcer(log, metrics)
	}
	return &Machine{
		db:       db,
		log:      log,
		metrics:  metrics,
		enforcer: enforcer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TransitionProvider moves a provider profile to status. Approval makes the
// owner a provider unless they hold an admin-tier role.
func (m *Machine) TransitionProvider(ctx context.Context, actor policy.Actor, id int64, status domain.ProviderStatus, notes string) (*domain.ProviderProfile, error) {
	if !status.Valid() {
		return nil, apperror.InvalidStatus(string(status), providerStatusNames()...)
	}

	op := policy.ProviderTransition(status)
	if err := m.enforcer.Check(actor, op, policy.Target{}); err != nil {
		return nil, err
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.applyProvider(tx, actor, id, status, notes)
	})
	if err != nil {
		return nil, apperror.FromStore(err, "provider")
	}

	m.committed(actor, "provider", id, string(status))
	return repository.NewProviderRepository(m.db).GetByID(ctx, id)
}

// ApplyProviderStatus stamps a provider status change inside tx. The caller
// must have authorized the transition.
func (m *Machine) ApplyProviderStatus(tx *gorm.DB, actor policy.Actor, id int64, status domain.ProviderStatus, notes string) error {
	if !status.Valid() {
		return apperror.InvalidStatus(string(status), providerStatusNames()...)
	}
	return m.applyProvider(tx, actor, id, status, notes)
}

func (m *Machine) applyProvider(tx *gorm.DB, actor policy.Actor, id int64, status domain.ProviderStatus, notes string) error {
	p, err := repository.GetProviderForUpdate(tx, id)
	if err != nil {
		return err
	}

	now := m.now()
	if err := tx.Model(&domain.ProviderProfile{}).Where("id = ?", p.ID).Updates(map[string]any{
		"status":       status,
		"review_notes": notes,
		"reviewed_by":  actor.ID,
		"reviewed_at":  now,
	}).Error; err != nil {
		return err
	}

	if status == domain.ProviderApproved {
		return repository.ElevateOwner(tx, p.AccountID)
	}
	return nil
}

// TransitionService moves a service listing to status and records the approver.
func (m *Machine) TransitionService(ctx context.Context, actor policy.Actor, id int64, status domain.ServiceStatus, notes string) (*domain.Service, error) {
	if !status.Valid() {
		return nil, apperror.InvalidStatus(string(status), serviceStatusNames()...)
	}

	op := policy.ServiceTransition(status)
	if err := m.enforcer.Check(actor, op, policy.Target{}); err != nil {
		return nil, err
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.applyService(tx, actor, id, status, notes)
	})
	if err != nil {
		return nil, apperror.FromStore(err, "service")
	}

	m.committed(actor, "service", id, string(status))
	return repository.NewServiceRepository(m.db).GetByID(ctx, id)
}

// ApplyServiceStatus stamps a service status change inside tx. The caller
// must have authorized the transition.
func (m *Machine) ApplyServiceStatus(tx *gorm.DB, actor policy.Actor, id int64, status domain.ServiceStatus, notes string) error {
	if !status.Valid() {
		return apperror.InvalidStatus(string(status), serviceStatusNames()...)
	}
	return m.applyService(tx, actor, id, status, notes)
}

func (m *Machine) applyService(tx *gorm.DB, actor policy.Actor, id int64, status domain.ServiceStatus, notes string) error {
	s, err := repository.GetServiceForUpdate(tx, id)
	if err != nil {
		return err
	}

	return tx.Model(&domain.Service{}).Where("id = ?", s.ID).Updates(map[string]any{
		"status":         status,
		"approval_notes": notes,
		"approved_by":    actor.ID,
		"approved_at":    m.now(),
		"updated_by":     actor.ID,
	}).Error
}

// Committed records a status change made outside TransitionProvider or TransitionService.
func (m *Machine) Committed(actor policy.Actor, entity string, id int64, status string) {
	m.committed(actor, entity, id, status)
}

func (m *Machine) committed(actor policy.Actor, entity string, id int64, status string) {
	m.metrics.Transition(entity, status)
	m.log.Info("audit",
		zap.String("event", "transition"),
		zap.String("entity", entity),
		zap.Int64("entity_id", id),
		zap.String("status", status),
		zap.Int64("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
	)
}

func providerStatusNames() []string {
	out := make([]string, 0, len(domain.ProviderStatuses))
	for _, s := range domain.ProviderStatuses {
		out = append(out, string(s))
	}
	return out
}

func serviceStatusNames() []string {
	out := make([]string, 0, len(domain.ServiceStatuses))
	for _, s := range domain.ServiceStatuses {
		out = append(out, string(s))
	}
	return out
}
