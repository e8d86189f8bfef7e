package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"marketplace-backend/internal/domains/auction/model"
	"marketplace-backend/internal/domains/auction/repository"
	"marketplace-backend/internal/infrastructure/queue"
	"marketplace-backend/internal/shared/utils"
	"marketplace-backend/pkg/logger"
)

// FinalizeAuctionHandler closes a single auction when its scheduled end
// time fires. The task is enqueued at creation with ProcessAt(end_time).
type FinalizeAuctionHandler struct {
	auctionRepo repository.AuctionRepository
	now         func() time.Time
}

func NewFinalizeAuctionHandler(auctionRepo repository.AuctionRepository) *FinalizeAuctionHandler {
	return &FinalizeAuctionHandler{
		auctionRepo: auctionRepo,
		now:         time.Now,
	}
}

func (h *FinalizeAuctionHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.FinalizeAuctionPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return err
	}

	auction, err := h.auctionRepo.GetByIDForUpdate(ctx, payload.AuctionID)
	if err != nil {
		if errors.Is(err, model.ErrAuctionNotFound) {
			// Nothing to finalize, do not retry
			logger.Info("finalize skipped, auction gone", map[string]interface{}{
				"auction_id": payload.AuctionID.String(),
			})
			return nil
		}
		return fmt.Errorf("failed to load auction %s: %w", payload.AuctionID, err)
	}

	// Idempotent: the lazy correction or a sweep may have closed it already,
	// and a cancelled auction stays cancelled
	if auction.Status == model.StatusEnded || auction.Status == model.StatusCancelled {
		return nil
	}

	now := h.now()
	if model.EffectiveStatus(auction, now) != model.StatusEnded {
		// Fired early (clock skew); retry later
		return fmt.Errorf("auction %s not yet past end time", payload.AuctionID)
	}

	err = h.auctionRepo.UpdateStatus(ctx, payload.AuctionID, model.StatusEnded, auction.Version)
	if err != nil {
		if errors.Is(err, model.ErrVersionMismatch) {
			// Someone else just wrote; let asynq retry against fresh state
			return err
		}
		return fmt.Errorf("failed to finalize auction %s: %w", payload.AuctionID, err)
	}

	logger.Info("auction finalized", map[string]interface{}{
		"auction_id": payload.AuctionID.String(),
	})

	return nil
}
