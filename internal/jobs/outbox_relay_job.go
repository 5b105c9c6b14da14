package jobs

import (
	"context"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/rs/zerolog"
)

const DefaultOutboxBatchSize = 100

// OutboxDrainer is satisfied by *commands.DrainOutboxCommandHandler.
type OutboxDrainer interface {
	Handle(ctx context.Context, cmd commands.DrainOutboxCommand) commands.DrainOutboxResult
}

// OutboxRelayJob hands pending outbox messages to the broker on a schedule.
type OutboxRelayJob struct {
	scheduledJob

	drainer   OutboxDrainer
	batchSize int
}

func NewOutboxRelayJob(schedule string, drainer OutboxDrainer, batchSize int, logger zerolog.Logger) *OutboxRelayJob {
	j := &OutboxRelayJob{drainer: drainer, batchSize: batchSize}
	j.scheduledJob = newScheduledJob("outbox_relay_job", schedule, j.RunOnce, logger)
	return j
}

// RunOnce drains one batch.
func (j *OutboxRelayJob) RunOnce(ctx context.Context) {
	cmd, err := commands.NewDrainOutboxCommand(j.batchSize)
	if err != nil {
		j.logger.Error().Err(err).Msg("outbox relay misconfigured")
		return
	}

	res := j.drainer.Handle(ctx, cmd)
	if !res.Success {
		j.logger.Error().Err(res.Err()).Str("result", res.Message).Msg("outbox relay failed")
		return
	}
	if res.Failed > 0 {
		j.logger.Warn().Int("sent", res.Sent).Int("failed", res.Failed).Msg("outbox relay left messages for retry")
	}
}
