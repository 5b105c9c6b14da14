package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Default cron expressions, with a leading seconds field.
const (
	DefaultOutboxRelaySchedule    = "*/2 * * * * *"
	DefaultTransferExpirySchedule = "0 * * * * *"
)

// Schedules overrides the default cron expressions. Empty fields keep the
// defaults.
type Schedules struct {
	OutboxRelay    string
	TransferExpiry string
}

func (s Schedules) withDefaults() Schedules {
	if s.OutboxRelay == "" {
		s.OutboxRelay = DefaultOutboxRelaySchedule
	}
	if s.TransferExpiry == "" {
		s.TransferExpiry = DefaultTransferExpirySchedule
	}
	return s
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	outboxRelayJob    *OutboxRelayJob
	transferExpiryJob *TransferExpiryJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	schedules Schedules,
	drainer OutboxDrainer,
	expirer TransferExpirer,
	logger zerolog.Logger,
) *JobManager {
	schedules = schedules.withDefaults()
	return &JobManager{
		outboxRelayJob:    NewOutboxRelayJob(schedules.OutboxRelay, drainer, DefaultOutboxBatchSize, logger),
		transferExpiryJob: NewTransferExpiryJob(schedules.TransferExpiry, expirer, DefaultExpiryBatchSize, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.outboxRelayJob.Start(); err != nil {
		return fmt.Errorf("failed to start outbox relay job: %w", err)
	}

	if err := jm.transferExpiryJob.Start(); err != nil {
		jm.outboxRelayJob.Stop()
		return fmt.Errorf("failed to start transfer expiry job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ones to finish.
func (jm *JobManager) StopAll() {
	jm.outboxRelayJob.Stop()
	jm.transferExpiryJob.Stop()
}

// scheduledJob runs one function on a cron schedule.
type scheduledJob struct {
	name     string
	schedule string
	run      func(ctx context.Context)
	cron     *cron.Cron
	logger   zerolog.Logger
}

func newScheduledJob(name, schedule string, run func(ctx context.Context), logger zerolog.Logger) scheduledJob {
	return scheduledJob{
		name:     name,
		schedule: schedule,
		run:      run,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With().Str("component", name).Logger(),
	}
}

func (j *scheduledJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", j.schedule).Msg("job started")
	return nil
}

func (j *scheduledJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info().Msg("job stopped")
}
