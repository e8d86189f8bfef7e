package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"marketplace-backend/internal/domains/auction/job"
	"marketplace-backend/internal/infrastructure/queue"
	"marketplace-backend/internal/shared"
	"marketplace-backend/pkg/container"
	"marketplace-backend/pkg/logger"
)

// RunWorker starts the asynq task server and the cron scheduler, and
// stops both cleanly on SIGINT/SIGTERM
func RunWorker(c *container.Container) error {
	redisOpt := asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 20,
		Queues: map[string]int{
			shared.QueueHigh:    20,
			shared.QueueDefault: 10,
			shared.QueueLow:     5,
		},
	})

	mux := asynq.NewServeMux()
	registerHandlers(mux, c)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})
	if err := queue.RegisterSchedules(scheduler); err != nil {
		return err
	}

	logger.Info("scheduler starting", nil)
	if err := scheduler.Start(); err != nil {
		return err
	}

	logger.Info("task server starting", nil)
	if err := srv.Start(mux); err != nil {
		scheduler.Shutdown()
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutdown signal received", map[string]interface{}{
		"signal": sig.String(),
	})

	scheduler.Shutdown()
	srv.Shutdown()

	logger.Info("worker stopped", nil)
	return nil
}

func registerHandlers(mux *asynq.ServeMux, c *container.Container) {
	finalize := job.NewFinalizeAuctionHandler(c.AuctionRepo)
	sweep := job.NewSweepAuctionsHandler(c.AuctionRepo)

	mux.Handle(shared.TypeFinalizeAuction, finalize)
	mux.HandleFunc(shared.TypeCloseEndedAuctions, sweep.CloseEnded)
	mux.HandleFunc(shared.TypeOpenScheduledAuctions, sweep.OpenScheduled)
}
