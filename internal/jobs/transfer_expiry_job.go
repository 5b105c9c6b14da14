package jobs

import (
	"context"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/rs/zerolog"
)

const DefaultExpiryBatchSize = 500

// TransferExpirer is satisfied by *commands.TransferCoordinator.
type TransferExpirer interface {
	ExpireOverdue(ctx context.Context, cmd commands.ExpireTransfersCommand) commands.ExpireTransfersResult
}

// TransferExpiryJob marks overdue transfer requests as expired.
type TransferExpiryJob struct {
	scheduledJob

	expirer TransferExpirer
	limit   int
}

func NewTransferExpiryJob(schedule string, expirer TransferExpirer, limit int, logger zerolog.Logger) *TransferExpiryJob {
	j := &TransferExpiryJob{expirer: expirer, limit: limit}
	j.scheduledJob = newScheduledJob("transfer_expiry_job", schedule, j.RunOnce, logger)
	return j
}

func (j *TransferExpiryJob) RunOnce(ctx context.Context) {
	cmd, err := commands.NewExpireTransfersCommand(j.limit)
	if err != nil {
		j.logger.Error().Err(err).Msg("transfer expiry misconfigured")
		return
	}

	if res := j.expirer.ExpireOverdue(ctx, cmd); !res.Success {
		j.logger.Error().Err(res.Err()).Str("result", res.Message).Msg("transfer expiry failed")
	}
}
