package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

var ErrDrainOutboxCommandIsNotConstructed = errors.New(
	"DrainOutboxCommand must be created via NewDrainOutboxCommand constructor",
)

// DrainOutboxCommand relays up to batchSize pending outbox messages.
type DrainOutboxCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

func NewDrainOutboxCommand(batchSize int) (DrainOutboxCommand, error) {
	if batchSize <= 0 {
		return DrainOutboxCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	return DrainOutboxCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

func (c DrainOutboxCommand) Validate() error {
	return c.guard.Validate(ErrDrainOutboxCommandIsNotConstructed)
}

func (c DrainOutboxCommand) BatchSize() int { return c.batchSize }

type DrainOutboxResult struct {
	Result

	Sent   int
	Failed int
}

// DrainOutboxCommandHandler hands pending outbox messages to the broker.
// Delivery is at least once: a message is marked sent only after the broker
// accepted it, and a failed publish bumps the retry counter. Repositories list
// messages with fewer retries first, so a message that keeps failing is
// retried behind fresh ones instead of holding up the batch.
type DrainOutboxCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.EventPublisher
	now        func() time.Time
	log        zerolog.Logger
	metrics    *metrics.Recorder
}

func NewDrainOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.EventPublisher,
	now func() time.Time,
	log zerolog.Logger,
	recorder *metrics.Recorder,
) *DrainOutboxCommandHandler {
	return &DrainOutboxCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        now,
		log:        log.With().Str("handler", "drain_outbox").Logger(),
		metrics:    recorder,
	}
}

func (h *DrainOutboxCommandHandler) Handle(ctx context.Context, cmd DrainOutboxCommand) DrainOutboxResult {
	sent, failed, err := h.handle(ctx, cmd)
	if err != nil {
		return DrainOutboxResult{Result: resultFromError(h.log, err)}
	}

	if sent+failed > 0 {
		h.log.Info().Int("sent", sent).Int("failed", failed).Msg("outbox drained")
	}
	return DrainOutboxResult{
		Result: succeeded(fmt.Sprintf("%d messages sent", sent)),
		Sent:   sent,
		Failed: failed,
	}
}

func (h *DrainOutboxCommandHandler) handle(ctx context.Context, cmd DrainOutboxCommand) (int, int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OutboxRepository()
	pending, err := repo.ListPending(ctx, cmd.BatchSize())
	if err != nil {
		return 0, 0, err
	}

	var sent, failed int
	for _, msg := range pending {
		pubErr := h.publisher.Publish(ctx, msg.Topic(), msg.Key(), msg.Payload())
		h.metrics.Published(msg.Topic(), pubErr)

		if pubErr != nil {
			h.log.Warn().Err(pubErr).Str("message_id", msg.ID().String()).Str("topic", msg.Topic()).
				Msg("publish failed")
			if err = repo.IncrementRetries(ctx, msg.ID()); err != nil {
				return 0, 0, err
			}
			failed++
			continue
		}

		if err = repo.MarkSent(ctx, msg.ID(), h.now()); err != nil {
			return 0, 0, err
		}
		sent++
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return sent, failed, nil
}
