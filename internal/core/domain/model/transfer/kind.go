package transfer

import (
	"fmt"
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"
)

// Kind is the workflow tag of a transfer request.
type Kind string

const (
	// KindLoad moves stock from the warehouse into an agent's van.
	// The warehouse keeper initiates, the agent is the counterparty.
	KindLoad Kind = "load"
	// KindReturn moves stock from an agent's van back to the warehouse.
	// The agent initiates, the warehouse keeper is the counterparty.
	KindReturn Kind = "return"
	// KindAdjustment corrects an agent's van stock by signed quantities.
	// The agent initiates, an admin or warehouse keeper is the counterparty.
	KindAdjustment Kind = "adjustment"
)

// operatorRoles may act as the party opposite the van's agent.
var operatorRoles = []kernel.Role{kernel.RoleAdmin, kernel.RoleWarehouse}

var kinds = map[Kind]struct {
	reason     stock.Reason
	ttl        time.Duration
	agentParty PartyRole
	signed     bool
}{
	KindLoad:       {reason: stock.ReasonLoad, ttl: 30 * time.Minute, agentParty: Counterparty},
	KindReturn:     {reason: stock.ReasonReturn, ttl: 2 * time.Hour, agentParty: Initiator},
	KindAdjustment: {reason: stock.ReasonAdjustment, ttl: 15 * time.Minute, agentParty: Initiator, signed: true},
}

func (k Kind) Validate() error {
	if _, ok := kinds[k]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("unknown transfer kind %q", string(k)))
	}
	return nil
}

func (k Kind) String() string {
	return string(k)
}

// Reason is the movement reason stamped on every ledger entry of the workflow.
func (k Kind) Reason() stock.Reason {
	return kinds[k].reason
}

// DefaultTTL is the request lifetime used when the caller supplies none.
func (k Kind) DefaultTTL() time.Duration {
	return kinds[k].ttl
}

// AgentParty is the role held by the van's agent.
func (k Kind) AgentParty() PartyRole {
	return kinds[k].agentParty
}

// AllowsRole reports whether an actor holding role may act as party. The
// agent's side is bound by identity only; the other side must be a warehouse
// keeper or an admin.
func (k Kind) AllowsRole(party PartyRole, role kernel.Role) bool {
	if party == k.AgentParty() {
		return true
	}
	return slices.Contains(operatorRoles, role)
}

// SignedLines reports whether line quantities may be negative.
func (k Kind) SignedLines() bool {
	return kinds[k].signed
}

// Kinds lists every workflow tag.
func Kinds() []Kind {
	return []Kind{KindLoad, KindReturn, KindAdjustment}
}
