package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/model/transfer"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// Transfer stages reported to metrics.
const (
	stageCreate   = "create"
	stageConfirm  = "confirm"
	stageComplete = "complete"
	stageCancel   = "cancel"
	stageExpire   = "expire"
)

// LineApplier books one request line through the ledger and returns the
// movements it wrote.
type LineApplier func(
	ctx context.Context,
	ledger *services.StockLedger,
	van kernel.StockLocation,
	line transfer.Line,
	reason stock.Reason,
	correlationRef string,
) ([]*stock.Movement, error)

// TransferWorkflow is the variable part of the protocol: how long a request
// may wait for confirmations and what completing one does to stock.
type TransferWorkflow struct {
	TTL   time.Duration
	Apply LineApplier
}

// DefaultTransferWorkflows returns load, return and adjustment with their
// default lifetimes.
func DefaultTransferWorkflows() map[transfer.Kind]TransferWorkflow {
	return map[transfer.Kind]TransferWorkflow{
		transfer.KindLoad:       {TTL: transfer.KindLoad.DefaultTTL(), Apply: loadLine},
		transfer.KindReturn:     {TTL: transfer.KindReturn.DefaultTTL(), Apply: returnLine},
		transfer.KindAdjustment: {TTL: transfer.KindAdjustment.DefaultTTL(), Apply: adjustLine},
	}
}

func loadLine(
	ctx context.Context,
	ledger *services.StockLedger,
	van kernel.StockLocation,
	line transfer.Line,
	reason stock.Reason,
	ref string,
) ([]*stock.Movement, error) {
	res, err := ledger.Transfer(ctx, kernel.Warehouse(), van, line.ProductID(), line.Quantity(), reason, ref)
	if err != nil {
		return nil, err
	}
	return []*stock.Movement{res.Out, res.In}, nil
}

func returnLine(
	ctx context.Context,
	ledger *services.StockLedger,
	van kernel.StockLocation,
	line transfer.Line,
	reason stock.Reason,
	ref string,
) ([]*stock.Movement, error) {
	res, err := ledger.Transfer(ctx, van, kernel.Warehouse(), line.ProductID(), line.Quantity(), reason, ref)
	if err != nil {
		return nil, err
	}
	return []*stock.Movement{res.Out, res.In}, nil
}

func adjustLine(
	ctx context.Context,
	ledger *services.StockLedger,
	van kernel.StockLocation,
	line transfer.Line,
	reason stock.Reason,
	ref string,
) ([]*stock.Movement, error) {
	m, err := ledger.Adjust(ctx, van, line.ProductID(), line.Quantity(), reason, ref)
	if err != nil {
		return nil, err
	}
	return []*stock.Movement{m}, nil
}

type CreateTransferResult struct {
	Result

	RequestID kernel.UUID
	ExpiresAt time.Time
	// Codes are returned exactly once, for out-of-band delivery to each party.
	Codes transfer.Codes
}

type ConfirmTransferResult struct {
	Result

	// Confirmed is true once the party's confirmation is stored, even if the
	// completion it triggered failed.
	Confirmed bool
	Completed bool
}

type ExpireTransfersResult struct {
	Result

	Expired int
}

// TransferCoordinator runs the dual-confirmation protocol shared by every
// custody-changing transfer.
//
// Business rules:
//   - creation never touches stock
//   - each party confirms with its own code before the deadline
//   - the confirmation that makes both flags true triggers exactly one
//     completion, in a transaction of its own after the flag is committed
//   - completion re-checks stock under lock and applies every line or none
//   - a completed or cancelled request never changes again
type TransferCoordinator struct {
	uowFactory TransferUoWFactory
	workflows  map[transfer.Kind]TransferWorkflow
	now        func() time.Time
	log        zerolog.Logger
	metrics    *metrics.Recorder
}

func NewTransferCoordinator(
	uowFactory TransferUoWFactory,
	workflows map[transfer.Kind]TransferWorkflow,
	now func() time.Time,
	log zerolog.Logger,
	recorder *metrics.Recorder,
) *TransferCoordinator {
	return &TransferCoordinator{
		uowFactory: uowFactory,
		workflows:  workflows,
		now:        now,
		log:        log.With().Str("handler", "transfer_coordinator").Logger(),
		metrics:    recorder,
	}
}

func (c *TransferCoordinator) Create(ctx context.Context, cmd CreateTransferCommand) CreateTransferResult {
	r, codes, err := c.create(ctx, cmd)
	c.metrics.Transfer(cmd.Kind().String(), stageCreate, err)
	if err != nil {
		return CreateTransferResult{Result: resultFromError(c.log, err)}
	}

	c.log.Info().
		Str("request_id", r.ID().String()).
		Str("kind", r.Kind().String()).
		Time("expires_at", r.ExpiresAt()).
		Msg("transfer request created")
	return CreateTransferResult{
		Result:    succeeded("transfer request created"),
		RequestID: r.ID(),
		ExpiresAt: r.ExpiresAt(),
		Codes:     codes,
	}
}

func (c *TransferCoordinator) create(
	ctx context.Context,
	cmd CreateTransferCommand,
) (*transfer.Request, transfer.Codes, error) {
	if err := cmd.Validate(); err != nil {
		return nil, transfer.Codes{}, err
	}
	workflow, err := c.workflow(cmd.Kind())
	if err != nil {
		return nil, transfer.Codes{}, err
	}
	if role := cmd.Actor().Role(); !cmd.Kind().AllowsRole(transfer.Initiator, role) {
		return nil, transfer.Codes{}, errs.NewForbiddenError(role.String(),
			"initiate a "+cmd.Kind().String()+" transfer")
	}

	ttl := cmd.TTL()
	if ttl <= 0 {
		ttl = workflow.TTL
	}

	r, codes, err := transfer.NewRequest(cmd.Kind(), cmd.AgentID(), cmd.Actor().ID(), cmd.CounterpartyID(),
		cmd.Lines(), cmd.Note(), c.now(), ttl)
	if err != nil {
		return nil, transfer.Codes{}, err
	}

	uow := c.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, transfer.Codes{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.TransferRepository().Add(ctx, r); err != nil {
		return nil, transfer.Codes{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, transfer.Codes{}, err
	}

	return r, codes, nil
}

// Confirm records one party's confirmation. When it is the second one, the
// request is completed right after the confirmation commits; a failed
// completion leaves both flags set for an operator to retry with Complete.
// Confirming again after that never re-runs the completion.
func (c *TransferCoordinator) Confirm(ctx context.Context, cmd ConfirmTransferCommand) ConfirmTransferResult {
	log := c.log.With().Str("request_id", cmd.RequestID().String()).Str("role", cmd.Role().String()).Logger()

	r, both, err := c.confirm(ctx, cmd)
	c.metrics.Transfer(kindOf(r), stageConfirm, err)
	if err != nil {
		return ConfirmTransferResult{Result: resultFromError(log, err)}
	}
	log.Info().Bool("both_confirmed", both).Msg("transfer request confirmed")

	if !both {
		return ConfirmTransferResult{Result: succeeded("confirmation recorded"), Confirmed: true}
	}

	if err = c.complete(ctx, cmd.RequestID(), cmd.Actor()); err != nil {
		return ConfirmTransferResult{Result: resultFromError(log, err), Confirmed: true}
	}
	return ConfirmTransferResult{Result: succeeded("transfer completed"), Confirmed: true, Completed: true}
}

func (c *TransferCoordinator) confirm(
	ctx context.Context,
	cmd ConfirmTransferCommand,
) (*transfer.Request, bool, error) {
	if err := cmd.Validate(); err != nil {
		return nil, false, err
	}

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.TransferRepository()
	r, err := repo.GetForUpdate(ctx, cmd.RequestID())
	if err != nil {
		return nil, false, err
	}

	party := r.Initiator()
	if cmd.Role() == transfer.Counterparty {
		party = r.Counterparty()
	}
	if !party.ActorID().IsEqual(cmd.Actor().ID()) || !r.Kind().AllowsRole(cmd.Role(), cmd.Actor().Role()) {
		return r, false, errs.NewForbiddenError(cmd.Actor().Role().String(),
			"confirm as "+cmd.Role().String()+" of this request")
	}

	both, err := r.Confirm(cmd.Role(), cmd.Code(), c.now())
	if err != nil {
		return r, false, err
	}
	if err = repo.Update(ctx, r); err != nil {
		return r, false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return r, false, err
	}

	return r, both, nil
}

// Complete applies a fully confirmed request. Calling it on a completed request
// reports AlreadyCompletedError and writes nothing.
func (c *TransferCoordinator) Complete(ctx context.Context, cmd CompleteTransferCommand) Result {
	log := c.log.With().Str("request_id", cmd.RequestID().String()).Logger()

	if err := cmd.Validate(); err != nil {
		return resultFromError(log, err)
	}
	if role := cmd.Actor().Role(); role != kernel.RoleAdmin && role != kernel.RoleWarehouse &&
		role != kernel.RoleSystem {
		return resultFromError(log, errs.NewForbiddenError(role.String(), "complete a transfer request"))
	}

	if err := c.complete(ctx, cmd.RequestID(), cmd.Actor()); err != nil {
		return resultFromError(log, err)
	}
	return succeeded("transfer completed")
}

func (c *TransferCoordinator) complete(ctx context.Context, requestID kernel.UUID, actor kernel.Actor) error {
	var (
		kind  string
		moved int
	)
	err := func() error {
		uow := c.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer func() {
			_ = uow.Rollback(ctx)
		}()

		repo := uow.TransferRepository()
		r, err := repo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		kind = r.Kind().String()

		if err = r.EnsureCompletable(); err != nil {
			return err
		}
		workflow, err := c.workflow(r.Kind())
		if err != nil {
			return err
		}
		van, err := r.Van()
		if err != nil {
			return err
		}

		lines := r.Lines()
		slices.SortFunc(lines, func(a, b transfer.Line) int {
			return strings.Compare(a.ProductID().String(), b.ProductID().String())
		})

		ledger := services.NewStockLedger(uow, uow.StockRepository(), uow.MovementRepository(), actor.ID(), c.now)
		movementIDs := make([]string, 0, 2*len(lines))
		for _, line := range lines {
			movements, applyErr := workflow.Apply(ctx, ledger, van, line, r.Kind().Reason(), r.ID().String())
			if applyErr != nil {
				return applyErr
			}
			for _, m := range movements {
				movementIDs = append(movementIDs, m.ID().String())
			}
		}

		now := c.now()
		if err = r.MarkCompleted(now); err != nil {
			return err
		}
		if err = repo.Update(ctx, r); err != nil {
			return err
		}

		msg, err := outbox.NewMessage(outbox.TopicTransferCompleted, r.ID().String(), outbox.TransferCompleted{
			RequestID:   r.ID().String(),
			Kind:        kind,
			AgentID:     r.AgentID().String(),
			MovementIDs: movementIDs,
			OccurredAt:  now,
		}, now)
		if err != nil {
			return err
		}
		if err = uow.OutboxRepository().Add(ctx, msg); err != nil {
			return err
		}

		if err = uow.Commit(ctx); err != nil {
			return err
		}
		moved = len(movementIDs)
		return nil
	}()

	c.metrics.Transfer(kind, stageComplete, err)
	if err != nil {
		return err
	}

	c.metrics.Movements(transfer.Kind(kind).Reason().String(), moved)
	c.log.Info().Str("request_id", requestID.String()).Str("kind", kind).Int("movements", moved).
		Msg("transfer request completed")
	return nil
}

// Cancel ends a pending request without stock effect. Either party or an
// admin may cancel.
func (c *TransferCoordinator) Cancel(ctx context.Context, cmd CancelTransferCommand) Result {
	log := c.log.With().Str("request_id", cmd.RequestID().String()).Logger()

	r, err := c.cancel(ctx, cmd)
	c.metrics.Transfer(kindOf(r), stageCancel, err)
	if err != nil {
		return resultFromError(log, err)
	}

	log.Info().Str("actor_id", cmd.Actor().ID().String()).Msg("transfer request cancelled")
	return succeeded("transfer request cancelled")
}

func (c *TransferCoordinator) cancel(ctx context.Context, cmd CancelTransferCommand) (*transfer.Request, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.TransferRepository()
	r, err := repo.GetForUpdate(ctx, cmd.RequestID())
	if err != nil {
		return nil, err
	}

	actor := cmd.Actor()
	if actor.Role() != kernel.RoleAdmin &&
		!r.Initiator().ActorID().IsEqual(actor.ID()) &&
		!r.Counterparty().ActorID().IsEqual(actor.ID()) {
		return r, errs.NewForbiddenError(actor.Role().String(), "cancel this transfer request")
	}

	if err = r.Cancel(c.now()); err != nil {
		return r, err
	}
	if err = repo.Update(ctx, r); err != nil {
		return r, err
	}

	return r, uow.Commit(ctx)
}

// ExpireOverdue stamps expired_at on pending requests past their deadline. The
// stamp is informative; Confirm compares against the deadline on its own.
func (c *TransferCoordinator) ExpireOverdue(ctx context.Context, cmd ExpireTransfersCommand) ExpireTransfersResult {
	expired, err := c.expireOverdue(ctx, cmd)
	if err != nil {
		c.metrics.Transfer("", stageExpire, err)
		return ExpireTransfersResult{Result: resultFromError(c.log, err)}
	}

	for _, r := range expired {
		c.metrics.Transfer(r.Kind().String(), stageExpire, nil)
	}
	if len(expired) > 0 {
		c.log.Info().Int("count", len(expired)).Msg("transfer requests expired")
	}
	return ExpireTransfersResult{
		Result:  succeeded(fmt.Sprintf("%d transfer requests expired", len(expired))),
		Expired: len(expired),
	}
}

func (c *TransferCoordinator) expireOverdue(
	ctx context.Context,
	cmd ExpireTransfersCommand,
) ([]*transfer.Request, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.TransferRepository()
	now := c.now()

	overdue, err := repo.ListOverdue(ctx, now, cmd.Limit())
	if err != nil {
		return nil, err
	}

	expired := make([]*transfer.Request, 0, len(overdue))
	for _, r := range overdue {
		if !r.MarkExpired(now) {
			continue
		}
		if err = repo.Update(ctx, r); err != nil {
			return nil, err
		}
		expired = append(expired, r)
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return expired, nil
}

func (c *TransferCoordinator) workflow(kind transfer.Kind) (TransferWorkflow, error) {
	w, ok := c.workflows[kind]
	if !ok || w.Apply == nil {
		return TransferWorkflow{}, errs.NewValueIsInvalidErrorWithCause("kind",
			fmt.Errorf("no workflow registered for %q", kind))
	}
	return w, nil
}

func kindOf(r *transfer.Request) string {
	if r == nil {
		return ""
	}
	return r.Kind().String()
}
