package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/transfer"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateTransferCommandIsNotConstructed = errors.New(
		"CreateTransferCommand must be created via NewCreateTransferCommand constructor",
	)
	ErrConfirmTransferCommandIsNotConstructed = errors.New(
		"ConfirmTransferCommand must be created via NewConfirmTransferCommand constructor",
	)
	ErrCompleteTransferCommandIsNotConstructed = errors.New(
		"CompleteTransferCommand must be created via NewCompleteTransferCommand constructor",
	)
	ErrCancelTransferCommandIsNotConstructed = errors.New(
		"CancelTransferCommand must be created via NewCancelTransferCommand constructor",
	)
	ErrExpireTransfersCommandIsNotConstructed = errors.New(
		"ExpireTransfersCommand must be created via NewExpireTransfersCommand constructor",
	)
)

// CreateTransferCommand opens a dual-confirmation request. The actor is the
// initiator.
type CreateTransferCommand struct { //nolint:recvcheck //using for validation
	kind           transfer.Kind
	agentID        kernel.UUID
	actor          kernel.Actor
	counterpartyID kernel.UUID
	lines          []transfer.Line
	note           string
	ttl            time.Duration

	guard guard.ConstructorGuard
}

// NewCreateTransferCommand validates the request shape. ttl of zero selects the
// workflow default.
func NewCreateTransferCommand(
	kind transfer.Kind,
	agentID kernel.UUID,
	actor kernel.Actor,
	counterpartyID kernel.UUID,
	lines []transfer.Line,
	note string,
	ttl time.Duration,
) (CreateTransferCommand, error) {
	cmd := CreateTransferCommand{
		note:  strings.TrimSpace(note),
		guard: guard.NewConstructorGuard(),
	}

	var ttlErr error
	if ttl < 0 {
		ttlErr = errs.NewValueIsInvalidErrorWithCause("ttl", fmt.Errorf("%s is negative", ttl))
	}

	if err := errors.Join(
		kind.Validate(),
		agentID.Validate(),
		actor.Validate(),
		counterpartyID.Validate(),
		requireLines(lines),
		ttlErr,
	); err != nil {
		return CreateTransferCommand{}, err
	}

	cmd.kind = kind
	cmd.agentID = agentID
	cmd.actor = actor
	cmd.counterpartyID = counterpartyID
	cmd.lines = append([]transfer.Line(nil), lines...)
	cmd.ttl = ttl
	return cmd, nil
}

func (c CreateTransferCommand) Validate() error {
	return c.guard.Validate(ErrCreateTransferCommandIsNotConstructed)
}

func (c CreateTransferCommand) Kind() transfer.Kind         { return c.kind }
func (c CreateTransferCommand) AgentID() kernel.UUID        { return c.agentID }
func (c CreateTransferCommand) Actor() kernel.Actor         { return c.actor }
func (c CreateTransferCommand) CounterpartyID() kernel.UUID { return c.counterpartyID }
func (c CreateTransferCommand) Note() string                { return c.note }
func (c CreateTransferCommand) TTL() time.Duration          { return c.ttl }

func (c CreateTransferCommand) Lines() []transfer.Line {
	return append([]transfer.Line(nil), c.lines...)
}

func requireLines(lines []transfer.Line) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ConfirmTransferCommand submits one party's code.
type ConfirmTransferCommand struct { //nolint:recvcheck //using for validation
	requestID kernel.UUID
	role      transfer.PartyRole
	code      string
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewConfirmTransferCommand(
	requestID kernel.UUID,
	role transfer.PartyRole,
	code string,
	actor kernel.Actor,
) (ConfirmTransferCommand, error) {
	code = strings.TrimSpace(code)

	var codeErr error
	if code == "" {
		codeErr = errs.NewValueIsRequiredError("code")
	}

	if err := errors.Join(
		requestID.Validate(),
		role.Validate(),
		codeErr,
		actor.Validate(),
	); err != nil {
		return ConfirmTransferCommand{}, err
	}

	return ConfirmTransferCommand{
		requestID: requestID,
		role:      role,
		code:      code,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmTransferCommand) Validate() error {
	return c.guard.Validate(ErrConfirmTransferCommandIsNotConstructed)
}

func (c ConfirmTransferCommand) RequestID() kernel.UUID   { return c.requestID }
func (c ConfirmTransferCommand) Role() transfer.PartyRole { return c.role }
func (c ConfirmTransferCommand) Code() string             { return c.code }
func (c ConfirmTransferCommand) Actor() kernel.Actor      { return c.actor }

// CompleteTransferCommand asks to apply a fully confirmed request. Operators
// use it to retry a completion that failed on insufficient stock.
type CompleteTransferCommand struct { //nolint:recvcheck //using for validation
	requestID kernel.UUID
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewCompleteTransferCommand(requestID kernel.UUID, actor kernel.Actor) (CompleteTransferCommand, error) {
	if err := errors.Join(requestID.Validate(), actor.Validate()); err != nil {
		return CompleteTransferCommand{}, err
	}
	return CompleteTransferCommand{requestID: requestID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c CompleteTransferCommand) Validate() error {
	return c.guard.Validate(ErrCompleteTransferCommandIsNotConstructed)
}

func (c CompleteTransferCommand) RequestID() kernel.UUID { return c.requestID }
func (c CompleteTransferCommand) Actor() kernel.Actor    { return c.actor }

type CancelTransferCommand struct { //nolint:recvcheck //using for validation
	requestID kernel.UUID
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewCancelTransferCommand(requestID kernel.UUID, actor kernel.Actor) (CancelTransferCommand, error) {
	if err := errors.Join(requestID.Validate(), actor.Validate()); err != nil {
		return CancelTransferCommand{}, err
	}
	return CancelTransferCommand{requestID: requestID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelTransferCommand) Validate() error {
	return c.guard.Validate(ErrCancelTransferCommandIsNotConstructed)
}

func (c CancelTransferCommand) RequestID() kernel.UUID { return c.requestID }
func (c CancelTransferCommand) Actor() kernel.Actor    { return c.actor }

// ExpireTransfersCommand stamps up to limit overdue requests as expired.
type ExpireTransfersCommand struct { //nolint:recvcheck //using for validation
	limit int

	guard guard.ConstructorGuard
}

func NewExpireTransfersCommand(limit int) (ExpireTransfersCommand, error) {
	if limit <= 0 {
		return ExpireTransfersCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return ExpireTransfersCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireTransfersCommand) Validate() error {
	return c.guard.Validate(ErrExpireTransfersCommandIsNotConstructed)
}

func (c ExpireTransfersCommand) Limit() int { return c.limit }
