package policy

import "marketadmin/internal/domain"

// Actor is the authenticated identity performing an operation. It is resolved
// once per request and passed explicitly to every policy and service call.
type Actor struct {
	ID         int64
	Role       domain.Role
	HasProfile bool
}

// NewActor builds an actor from a loaded account.
func NewActor(a *domain.Account) Actor {
	if a == nil {
		return Actor{}
	}
	return Actor{
		ID:         a.ID,
		Role:       a.Role(),
		HasProfile: a.Profile != nil,
	}
}

func (a Actor) Authenticated() bool {
	return a.ID > 0 && a.HasProfile
}

// Target describes the resource an operation acts on. Only the fields the
// operation needs are read: account operations use AccountID, Role and NewRole.
type Target struct {
	AccountID int64
	// Role is the target account's current role.
	Role domain.Role
	// NewRole is the role requested by a create or update, empty when unchanged.
	NewRole domain.Role
}

// AccountTarget describes an existing account.
func AccountTarget(a *domain.Account) Target {
	if a == nil {
		return Target{}
	}
	return Target{AccountID: a.ID, Role: a.Role()}
}

// WithNewRole returns t with the requested role set.
func (t Target) WithNewRole(r domain.Role) Target {
	t.NewRole = r
	return t
}
