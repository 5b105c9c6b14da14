package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Role is the authorization role of an actor.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleWarehouse  Role = "warehouse"
	RoleSalesRep   Role = "sales_rep"
	RoleAccounting Role = "accounting"
	RoleCustomer   Role = "customer"
	// RoleSystem is used by scheduled jobs such as the transfer expiry sweep.
	RoleSystem Role = "system"
)

var validRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleWarehouse:  {},
	RoleSalesRep:   {},
	RoleAccounting: {},
	RoleCustomer:   {},
	RoleSystem:     {},
}

func (r Role) Validate() error {
	if _, ok := validRoles[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("unknown role %q", string(r)))
	}
	return nil
}

func (r Role) String() string {
	return string(r)
}

var ErrActorIsNotConstructed = errs.NewValueIsRequiredError("actor must be created via NewActor")

// Actor is the authenticated caller of an operation. Authentication happens
// outside this service; the actor arrives already resolved.
type Actor struct {
	id    UUID
	role  Role
	guard guard.ConstructorGuard
}

func NewActor(id UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{id: id, role: role, guard: guard.NewConstructorGuard()}, nil
}

// SystemActor returns the actor used by background jobs.
func SystemActor(id UUID) Actor {
	return Actor{id: id, role: RoleSystem, guard: guard.NewConstructorGuard()}
}

func (a Actor) ID() UUID {
	return a.id
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}
