package policy

import (
	"go.uber.org/zap"

	"marketadmin/internal/domain"
	"marketadmin/internal/observability"
)

// Enforcer wraps Authorize and records every denial in the audit log and metrics.
type Enforcer struct {
	log     *zap.Logger
	metrics *observability.Metrics
}

func NewEnforcer(log *zap.Logger, metrics *observability.Metrics) *Enforcer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enforcer{log: log, metrics: metrics}
}

// Check returns nil when actor may perform op on target.
func (e *Enforcer) Check(actor Actor, op Operation, target Target) error {
	d := Authorize(actor, op, target)
	if d.Allowed {
		return nil
	}
	e.metrics.Denied(string(op), string(d.Rule))
	e.log.Info("audit",
		zap.String("event", "denied"),
		zap.String("operation", string(op)),
		zap.String("rule", string(d.Rule)),
		zap.Int64("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
		zap.Int64("target_account_id", target.AccountID),
	)
	return d.Err()
}

// CheckRole validates a role carried in a mutation payload and authorizes it.
// Flags must only be applied after it returns nil.
func (e *Enforcer) CheckRole(actor Actor, op Operation, target Target, newRole domain.Role) error {
	if newRole != "" && !newRole.Valid() {
		return invalidRole(newRole)
	}
	return e.Check(actor, op, target.WithNewRole(newRole))
}
