package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"marketplace-backend/internal/shared"
	"marketplace-backend/pkg/logger"
)

// FinalizeAuctionPayload identifies the auction a one-shot finalize
// task should close
type FinalizeAuctionPayload struct {
	AuctionID uuid.UUID `json:"auction_id"`
}

// TaskEnqueuer abstracts task scheduling so services can be tested
// without a running Redis
type TaskEnqueuer interface {
	// EnqueueFinalizeAuction schedules a finalize task to fire at the
	// auction's end time
	EnqueueFinalizeAuction(ctx context.Context, auctionID uuid.UUID, processAt time.Time) error
	Close() error
}

type asynqEnqueuer struct {
	client *asynq.Client
}

// NewTaskEnqueuer creates an enqueuer backed by asynq on Redis
func NewTaskEnqueuer(redisAddr, redisPassword string, redisDB int) TaskEnqueuer {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &asynqEnqueuer{client: client}
}

func (e *asynqEnqueuer) EnqueueFinalizeAuction(ctx context.Context, auctionID uuid.UUID, processAt time.Time) error {
	payload, err := json.Marshal(FinalizeAuctionPayload{AuctionID: auctionID})
	if err != nil {
		return fmt.Errorf("failed to marshal finalize payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeFinalizeAuction, payload)
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(processAt),
		asynq.Queue(shared.QueueHigh),
		asynq.MaxRetry(5),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue finalize task: %w", err)
	}

	logger.Info("finalize task scheduled", map[string]interface{}{
		"task_id":    info.ID,
		"auction_id": auctionID.String(),
		"process_at": processAt,
	})

	return nil
}

func (e *asynqEnqueuer) Close() error {
	return e.client.Close()
}
