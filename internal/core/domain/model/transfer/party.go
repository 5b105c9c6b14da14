package transfer

import (
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// PartyRole names one side of the confirmation protocol.
type PartyRole string

const (
	Initiator    PartyRole = "initiator"
	Counterparty PartyRole = "counterparty"
)

func (r PartyRole) Validate() error {
	if r != Initiator && r != Counterparty {
		return errs.NewValueIsInvalidErrorWithCause("party role", fmt.Errorf("unknown role %q", string(r)))
	}
	return nil
}

func (r PartyRole) String() string {
	return string(r)
}

// Party is one confirming human: who they are, the hash of their code and
// when they confirmed.
type Party struct {
	actorID     kernel.UUID
	codeHash    string
	confirmedAt *time.Time
}

// RestoreParty rebuilds a party from storage.
func RestoreParty(actorID kernel.UUID, codeHash string, confirmedAt *time.Time) Party {
	return Party{actorID: actorID, codeHash: codeHash, confirmedAt: copyTime(confirmedAt)}
}

func (p Party) ActorID() kernel.UUID     { return p.actorID }
func (p Party) CodeHash() string         { return p.codeHash }
func (p Party) ConfirmedAt() *time.Time  { return copyTime(p.confirmedAt) }
func (p Party) IsConfirmed() bool        { return p.confirmedAt != nil }

func (p Party) validate(name string) error {
	if err := p.actorID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	if p.codeHash == "" {
		return errs.NewValueIsRequiredError(name + " code hash")
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
