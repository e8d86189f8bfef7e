package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"marketplace-backend/internal/domains/auction/repository"
	"marketplace-backend/pkg/logger"
)

// SweepAuctionsHandler runs the periodic status sweeps. These are the
// backstop behind the lazy request-path correction and the one-shot
// finalize tasks.
type SweepAuctionsHandler struct {
	auctionRepo repository.AuctionRepository
	now         func() time.Time
}

func NewSweepAuctionsHandler(auctionRepo repository.AuctionRepository) *SweepAuctionsHandler {
	return &SweepAuctionsHandler{
		auctionRepo: auctionRepo,
		now:         time.Now,
	}
}

// CloseEnded marks every auction past its end time as ended
func (h *SweepAuctionsHandler) CloseEnded(ctx context.Context, t *asynq.Task) error {
	count, err := h.auctionRepo.CloseEnded(ctx, h.now())
	if err != nil {
		return err
	}

	if count > 0 {
		logger.Info("ended auctions swept", map[string]interface{}{"count": count})
	}
	return nil
}

// OpenScheduled marks every upcoming auction past its start time as live
func (h *SweepAuctionsHandler) OpenScheduled(ctx context.Context, t *asynq.Task) error {
	count, err := h.auctionRepo.OpenScheduled(ctx, h.now())
	if err != nil {
		return err
	}

	if count > 0 {
		logger.Info("scheduled auctions opened", map[string]interface{}{"count": count})
	}
	return nil
}
