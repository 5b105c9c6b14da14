// Package jobs provides scheduled background tasks for the fulfillment service.
//
// Jobs are built on github.com/robfig/cron/v3 with second-level schedules.
// A run that is still going when its next tick fires is skipped, so a slow
// broker or database never piles up overlapping runs.
//
// # Available Jobs
//
//  1. OutboxRelayJob publishes pending outbox messages to Kafka
//  2. TransferExpiryJob stamps expired_at on transfer requests past their deadline
//
// # Usage
//
//	jobManager := jobs.NewJobManager(jobs.Schedules{}, drainHandler, coordinator, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal().Err(err).Msg("failed to start jobs")
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Handlers report failures in their Result; jobs log them and wait for the
// next tick. Failed job starts stop any already running jobs.
package jobs
