package order

import (
	"fmt"
	"slices"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// EntityName identifies orders in InvalidTransitionError.
const EntityName = "order"

// Transition is a (from, to) key of the transition table.
type Transition struct {
	From Status
	To   Status
}

func (t Transition) String() string {
	return fmt.Sprintf("%s->%s", t.From, t.To)
}

// Rule describes who may perform a transition.
type Rule struct {
	Roles          []kernel.Role
	ReasonRequired bool
}

// Allows reports whether role is listed in the rule.
func (r Rule) Allows(role kernel.Role) bool {
	return slices.Contains(r.Roles, role)
}

// TransitionTable is the data-driven matrix of legal order transitions.
// A pair absent from the table is illegal for every role. The table is an
// immutable value: With and Without return modified copies, so a tuned table
// can be built at start-up and injected into the use cases.
type TransitionTable struct {
	rules map[Transition]Rule
}

// NewTransitionTable returns an empty table that rejects every transition.
func NewTransitionTable() TransitionTable {
	return TransitionTable{rules: map[Transition]Rule{}}
}

// DefaultTransitionTable returns the standard fulfillment matrix.
//
//	pending            -> on_hold              admin, warehouse   reason required
//	on_hold            -> pending              admin, warehouse
//	pending|on_hold|approved|preparing
//	                   -> ready_for_handover   admin, warehouse
//	ready_for_handover -> handed_to_sales_rep  admin, sales_rep
//	handed_to_sales_rep-> completed            admin, sales_rep
//	pre-handover       -> cancelled            admin, warehouse   reason required
//	handed_to_sales_rep-> cancelled            admin              reason required
func DefaultTransitionTable() TransitionTable {
	staff := []kernel.Role{kernel.RoleAdmin, kernel.RoleWarehouse}
	field := []kernel.Role{kernel.RoleAdmin, kernel.RoleSalesRep}

	t := NewTransitionTable().
		With(Pending, OnHold, Rule{Roles: staff, ReasonRequired: true}).
		With(OnHold, Pending, Rule{Roles: staff}).
		With(ReadyForHandover, HandedToSalesRep, Rule{Roles: field}).
		With(HandedToSalesRep, Completed, Rule{Roles: field}).
		With(HandedToSalesRep, Cancelled, Rule{Roles: []kernel.Role{kernel.RoleAdmin}, ReasonRequired: true})

	for _, from := range []Status{Pending, OnHold, Approved, Preparing} {
		t = t.With(from, ReadyForHandover, Rule{Roles: staff})
	}
	for _, from := range []Status{Pending, OnHold, Approved, Preparing, ReadyForHandover} {
		t = t.With(from, Cancelled, Rule{Roles: staff, ReasonRequired: true})
	}

	return t
}

// With returns a copy of the table with the rule for (from, to) set.
func (t TransitionTable) With(from, to Status, rule Rule) TransitionTable {
	next := t.clone()
	rule.Roles = slices.Clone(rule.Roles)
	next.rules[Transition{From: from, To: to}] = rule
	return next
}

// Without returns a copy of the table with (from, to) removed.
func (t TransitionTable) Without(from, to Status) TransitionTable {
	next := t.clone()
	delete(next.rules, Transition{From: from, To: to})
	return next
}

// Lookup returns the rule for (from, to), if any.
func (t TransitionTable) Lookup(from, to Status) (Rule, bool) {
	rule, ok := t.rules[Transition{From: from, To: to}]
	return rule, ok
}

// Transitions returns every pair in the table in a stable order.
func (t TransitionTable) Transitions() []Transition {
	out := make([]Transition, 0, len(t.rules))
	for tr := range t.rules {
		out = append(out, tr)
	}
	slices.SortFunc(out, func(a, b Transition) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

// Check validates a transition request against the table.
//
// Returns:
//   - nil when (from, to) is present, role is allowed and a required reason is given
//   - InvalidTransitionError otherwise
func (t TransitionTable) Check(from, to Status, role kernel.Role, reason string) error {
	if err := to.Validate(); err != nil {
		return err
	}
	rule, ok := t.Lookup(from, to)
	if !ok {
		return errs.NewInvalidTransitionError(EntityName, from.String(), to.String())
	}
	if !rule.Allows(role) {
		return errs.NewInvalidTransitionErrorWithDetail(EntityName, from.String(), to.String(),
			fmt.Sprintf("role %s is not permitted", role))
	}
	if rule.ReasonRequired && strings.TrimSpace(reason) == "" {
		return errs.NewInvalidTransitionErrorWithDetail(EntityName, from.String(), to.String(), "reason is required")
	}
	return nil
}

func (t TransitionTable) clone() TransitionTable {
	rules := make(map[Transition]Rule, len(t.rules)+1)
	for k, v := range t.rules {
		rules[k] = v
	}
	return TransitionTable{rules: rules}
}
