package order

import (
	"errors"
	"maps"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Metadata keys written by the use cases.
const (
	MetaAvailability = "availability"
	MetaMovementIDs  = "movement_ids"
)

var ErrActionLogIsNotConstructed = errors.New("ActionLog must be created via NewActionLog")

// ActionLog is the append-only audit row written for every order action.
// From is empty for the creation entry.
type ActionLog struct {
	id        kernel.UUID
	orderID   kernel.UUID
	from      Status
	to        Status
	actorID   kernel.UUID
	actorRole kernel.Role
	reason    string
	notes     string
	metadata  map[string]any
	createdAt time.Time

	isConstructed bool
}

func NewActionLog(
	orderID kernel.UUID,
	from, to Status,
	actor kernel.Actor,
	reason, notes string,
	metadata map[string]any,
	now time.Time,
) (*ActionLog, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	return RestoreActionLog(kernel.NewUUID(), orderID, from, to, actor.ID(), actor.Role(), reason, notes, metadata, now)
}

func RestoreActionLog(
	id, orderID kernel.UUID,
	from, to Status,
	actorID kernel.UUID,
	actorRole kernel.Role,
	reason, notes string,
	metadata map[string]any,
	createdAt time.Time,
) (*ActionLog, error) {
	var fromErr error
	if from != "" {
		fromErr = from.Validate()
	}
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		fromErr,
		to.Validate(),
		actorID.Validate(),
		actorRole.Validate(),
	); err != nil {
		return nil, err
	}

	if metadata == nil {
		metadata = map[string]any{}
	}

	return &ActionLog{
		id:            id,
		orderID:       orderID,
		from:          from,
		to:            to,
		actorID:       actorID,
		actorRole:     actorRole,
		reason:        reason,
		notes:         notes,
		metadata:      maps.Clone(metadata),
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

func (a *ActionLog) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrActionLogIsNotConstructed
	}
	return nil
}

func (a *ActionLog) ID() kernel.UUID        { return a.id }
func (a *ActionLog) OrderID() kernel.UUID   { return a.orderID }
func (a *ActionLog) From() Status           { return a.from }
func (a *ActionLog) To() Status             { return a.to }
func (a *ActionLog) ActorID() kernel.UUID   { return a.actorID }
func (a *ActionLog) ActorRole() kernel.Role { return a.actorRole }
func (a *ActionLog) Reason() string         { return a.reason }
func (a *ActionLog) Notes() string          { return a.notes }
func (a *ActionLog) CreatedAt() time.Time   { return a.createdAt }

// Metadata returns a shallow copy of the metadata object.
func (a *ActionLog) Metadata() map[string]any {
	return maps.Clone(a.metadata)
}
