package policy

import (
	"marketadmin/internal/domain"
	"marketadmin/internal/pkg/apperror"
)

// Rule identifies which rule produced a decision.
type Rule string

const (
	RuleAllowed         Rule = "allowed"
	RuleUnauthenticated Rule = "unauthenticated"
	RuleAdminTier       Rule = "admin_tier_required"
	RuleUnknownOp       Rule = "unknown_operation"
	RuleSuperAdminOnly  Rule = "super_admin_only"
	RuleAdminAccounts   Rule = "admin_accounts_super_admin_only"
	RuleModeratorRead   Rule = "moderator_read_only_accounts"
	RuleModeratorLimit  Rule = "moderator_limited"
	RuleSelfProtection  Rule = "self_protection"
	RuleAdminTransition Rule = "transition_requires_admin"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Rule    Rule
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true, Rule: RuleAllowed}
}

func deny(rule Rule, reason string) Decision {
	return Decision{Rule: rule, Reason: reason}
}

// Err converts a denial into an apperror; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Rule == RuleUnauthenticated {
		return apperror.Unauthenticated(d.Reason)
	}
	return apperror.Forbidden(d.Reason)
}

// Authorize evaluates the rules documented on the package.
func Authorize(actor Actor, op Operation, target Target) Decision {
	// 1
	if !actor.Authenticated() {
		return deny(RuleUnauthenticated, "Authentication with an administrator profile is required.")
	}
	// 2
	if !actor.Role.IsAdminTier() {
		return deny(RuleAdminTier, "Administrator access required.")
	}

	info, ok := operations[op]
	if !ok {
		return deny(RuleUnknownOp, "Unknown operation.")
	}

	if info.verb == verbSuperRead && actor.Role != domain.RoleSuperAdmin {
		return deny(RuleSuperAdminOnly, "Only super admins can manage admin accounts.")
	}

	switch info.resource {
	case resourceAccount:
		return authorizeAccount(actor, info.verb, target)
	case resourceProvider:
		return authorizeProvider(actor, info.verb)
	case resourceService:
		return authorizeService(actor, info.verb)
	case resourceCategory:
		return authorizeCategory(actor, info.verb)
	}
	return allow()
}

func authorizeAccount(actor Actor, v verb, target Target) Decision {
	if v == verbRead || v == verbSuperRead {
		return allow()
	}

	// 3
	if (target.Role.IsAdminTier() || target.NewRole.IsAdminTier()) && actor.Role != domain.RoleSuperAdmin {
		if v == verbCreate {
			return deny(RuleAdminAccounts, "Only super admins can create admin accounts.")
		}
		return deny(RuleAdminAccounts, "Only super admins can manage admin accounts.")
	}
	// 4
	if actor.Role == domain.RoleModerator {
		return deny(RuleModeratorRead, "Moderators cannot modify user accounts.")
	}
	// 6
	if target.AccountID != 0 && target.AccountID == actor.ID {
		if v == verbDelete {
			return deny(RuleSelfProtection, "You cannot delete your own account.")
		}
		if v == verbUpdate && target.NewRole != "" && target.NewRole != target.Role {
			return deny(RuleSelfProtection, "You cannot change your own role.")
		}
	}
	return allow()
}

func authorizeProvider(actor Actor, v verb) Decision {
	if actor.Role == domain.RoleModerator {
		// 5
		switch v {
		case verbCreate:
			return deny(RuleModeratorLimit, "Moderators cannot manually create providers.")
		case verbDelete:
			return deny(RuleModeratorLimit, "Moderators cannot delete providers.")
		case verbReject, verbSetStatus:
			// 7
			return deny(RuleAdminTransition, "Moderators may only approve or disable providers.")
		}
	}
	return allow()
}

func authorizeService(actor Actor, v verb) Decision {
	if actor.Role == domain.RoleModerator {
		// 5
		switch v {
		case verbCreate:
			return deny(RuleModeratorLimit, "Moderators cannot create services.")
		case verbUpdate:
			return deny(RuleModeratorLimit, "Moderators cannot update services directly.")
		case verbDelete:
			return deny(RuleModeratorLimit, "Moderators cannot delete services.")
		case verbReject, verbSetStatus:
			// 7
			return deny(RuleAdminTransition, "Moderators may only approve or disable services.")
		}
	}
	return allow()
}

func authorizeCategory(actor Actor, v verb) Decision {
	if actor.Role == domain.RoleModerator {
		switch v {
		case verbCreate:
			return deny(RuleModeratorLimit, "Moderators cannot create categories.")
		case verbDelete:
			return deny(RuleModeratorLimit, "Moderators cannot delete categories.")
		}
	}
	return allow()
}

// ProviderTransition maps a requested provider status to its operation.
func ProviderTransition(s domain.ProviderStatus) Operation {
	switch s {
	case domain.ProviderApproved:
		return ProviderApprove
	case domain.ProviderDisabled:
		return ProviderDisable
	case domain.ProviderRejected:
		return ProviderReject
	}
	return ProviderSetStatus
}

// ServiceTransition maps a requested service status to its operation.
func ServiceTransition(s domain.ServiceStatus) Operation {
	switch s {
	case domain.ServiceApproved:
		return ServiceApprove
	case domain.ServiceDisabled:
		return ServiceDisable
	case domain.ServiceRejected:
		return ServiceReject
	}
	return ServiceSetStatus
}
