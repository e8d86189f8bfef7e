package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"marketplace-backend/internal/domains/auction/model"
	"marketplace-backend/internal/domains/auction/repository"
	userrepo "marketplace-backend/internal/domains/user/repository"
	"marketplace-backend/internal/infrastructure/queue"
	"marketplace-backend/pkg/cache"
	"marketplace-backend/pkg/logger"
)

const (
	// Optimistic-lock retry budget for the bid path. Contention beyond
	// this means the bidder lost the race fairly and should re-bid.
	maxBidAttempts = 3

	// Per-bidder per-auction rate limit
	bidRateLimit  = 20
	bidRateWindow = time.Minute
)

type auctionService struct {
	auctionRepo repository.AuctionRepository
	userRepo    userrepo.UserRepository
	cache       cache.Cache
	enqueuer    queue.TaskEnqueuer
	now         func() time.Time
}

// NewAuctionService creates a new auction service
func NewAuctionService(
	auctionRepo repository.AuctionRepository,
	userRepo userrepo.UserRepository,
	cache cache.Cache,
	enqueuer queue.TaskEnqueuer,
) AuctionService {
	return &auctionService{
		auctionRepo: auctionRepo,
		userRepo:    userRepo,
		cache:       cache,
		enqueuer:    enqueuer,
		now:         time.Now,
	}
}

// =====================================================
// CREATE
// =====================================================

func (s *auctionService) CreateAuction(ctx context.Context, sellerID uuid.UUID, req *model.CreateAuctionRequest) (*model.AuctionResponse, error) {
	now := s.now()

	// start_time defaults to creation time when omitted
	if req.StartTime.IsZero() {
		req.StartTime = now
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !req.EndTime.After(now) {
		return nil, &model.AuctionError{
			Code:    model.ErrCodeValidation,
			Message: "end_time must be in the future",
		}
	}

	// A listing whose start time has already passed opens immediately
	status := model.StatusUpcoming
	if !req.StartTime.After(now) {
		status = model.StatusLive
	}

	auction := &model.Auction{
		ID:           uuid.New(),
		SellerID:     sellerID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Condition:    req.Condition,
		Tags:         pq.StringArray(req.Tags),
		StartPrice:   req.StartPrice,
		CurrentPrice: req.StartPrice,
		ReservePrice: req.ReservePrice,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       status,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, img := range req.Images {
		auction.Images = append(auction.Images, model.AuctionImage{
			ID:         uuid.New(),
			AuctionID:  auction.ID,
			URL:        img.URL,
			StorageKey: img.StorageKey,
			AltText:    img.AltText,
			IsPrimary:  img.IsPrimary,
			SortOrder:  img.SortOrder,
		})
	}

	if err := s.auctionRepo.Create(ctx, auction); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	// Schedule the one-shot close at end time. Failure here is tolerable,
	// the periodic sweep picks the auction up within minutes.
	if err := s.enqueuer.EnqueueFinalizeAuction(ctx, auction.ID, auction.EndTime); err != nil {
		logger.Error("failed to schedule auction finalize task", err)
	}

	logger.Info("auction created", map[string]interface{}{
		"auction_id": auction.ID.String(),
		"seller_id":  sellerID.String(),
		"status":     status,
		"end_time":   auction.EndTime,
	})

	return auction.ToResponse(s.sellerInfo(ctx, sellerID), now), nil
}

// =====================================================
// READ
// =====================================================

func (s *auctionService) GetAuction(ctx context.Context, id uuid.UUID) (*model.AuctionResponse, error) {
	auction, err := s.auctionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrAuctionNotFound) {
			return nil, model.NewAuctionNotFoundError()
		}
		return nil, err
	}

	now := s.now()

	// Reads never block on persistence: the response carries the derived
	// status, and the stored row is corrected in the background.
	if effective := model.EffectiveStatus(auction, now); effective != auction.Status {
		s.correctStatusAsync(id, effective, auction.Version)
	}

	resp := auction.ToResponse(s.sellerInfo(ctx, auction.SellerID), now)
	resp.Bids = s.bidResponses(ctx, auction.Bids)
	return resp, nil
}

// correctStatusAsync persists a lazily observed status transition.
// Best effort: a version mismatch just means someone else already fixed it.
func (s *auctionService) correctStatusAsync(id uuid.UUID, status string, version int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := s.auctionRepo.UpdateStatus(ctx, id, status, version)
		if err != nil && !errors.Is(err, model.ErrVersionMismatch) {
			logger.Error("lazy status correction failed", err)
		}
	}()
}

func (s *auctionService) ListAuctions(ctx context.Context, req *model.ListAuctionsRequest) ([]model.AuctionResponse, model.PaginationMeta, error) {
	if err := req.Validate(); err != nil {
		return nil, model.PaginationMeta{}, err
	}
	req.Normalize()

	filter := repository.AuctionFilter{
		Status:   req.Status,
		Category: req.Category,
		Search:   req.Search,
		Page:     req.Page,
		Limit:    req.Limit,
	}
	if req.SellerID != "" {
		sellerID, err := uuid.Parse(req.SellerID)
		if err != nil {
			return nil, model.PaginationMeta{}, &model.AuctionError{
				Code:    model.ErrCodeValidation,
				Message: "invalid seller_id",
			}
		}
		filter.SellerID = &sellerID
	}

	now := s.now()
	auctions, total, err := s.auctionRepo.List(ctx, filter, now)
	if err != nil {
		return nil, model.PaginationMeta{}, fmt.Errorf("failed to list auctions: %w", err)
	}

	sellerIDs := make([]uuid.UUID, 0, len(auctions))
	for i := range auctions {
		sellerIDs = append(sellerIDs, auctions[i].SellerID)
	}
	names := s.resolveNames(ctx, sellerIDs)

	responses := make([]model.AuctionResponse, 0, len(auctions))
	for i := range auctions {
		seller := model.SellerInfo{
			ID:       auctions[i].SellerID,
			FullName: names[auctions[i].SellerID],
		}
		responses = append(responses, *auctions[i].ToResponse(seller, now))
	}

	return responses, model.NewPaginationMeta(req.Page, req.Limit, total), nil
}

func (s *auctionService) ListBids(ctx context.Context, auctionID uuid.UUID, req *model.ListBidsRequest) ([]model.BidResponse, model.PaginationMeta, error) {
	req.Normalize()

	// The auction must exist; a bare bids query cannot tell an unknown
	// auction from one with no bids
	if _, err := s.auctionRepo.GetByID(ctx, auctionID); err != nil {
		if errors.Is(err, model.ErrAuctionNotFound) {
			return nil, model.PaginationMeta{}, model.NewAuctionNotFoundError()
		}
		return nil, model.PaginationMeta{}, err
	}

	bids, total, err := s.auctionRepo.ListBids(ctx, auctionID, req.Page, req.Limit)
	if err != nil {
		return nil, model.PaginationMeta{}, fmt.Errorf("failed to list bids: %w", err)
	}

	bidderIDs := make([]uuid.UUID, 0, len(bids))
	for i := range bids {
		bidderIDs = append(bidderIDs, bids[i].BidderID)
	}
	names := s.resolveNames(ctx, bidderIDs)

	responses := make([]model.BidResponse, 0, len(bids))
	for i := range bids {
		responses = append(responses, bids[i].ToBidResponse(names[bids[i].BidderID]))
	}

	return responses, model.NewPaginationMeta(req.Page, req.Limit, total), nil
}

// =====================================================
// BID
// =====================================================

func (s *auctionService) PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, req *model.PlaceBidRequest) (*model.AuctionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkBidRate(ctx, auctionID, bidderID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxBidAttempts; attempt++ {
		auction, err := s.auctionRepo.GetByIDForUpdate(ctx, auctionID)
		if err != nil {
			if errors.Is(err, model.ErrAuctionNotFound) {
				return nil, model.NewAuctionNotFoundError()
			}
			return nil, err
		}

		now := s.now()

		// Preconditions are checked against the effective state, in order,
		// so the client always gets the most specific rejection
		switch status := model.EffectiveStatus(auction, now); status {
		case model.StatusLive:
			// proceed
		case model.StatusUpcoming:
			return nil, model.NewAuctionNotStartedError()
		case model.StatusEnded:
			return nil, model.NewAuctionEndedError()
		default:
			return nil, model.NewAuctionNotLiveError(status)
		}

		if auction.SellerID == bidderID {
			return nil, model.NewOwnAuctionBidError()
		}

		if !req.Amount.GreaterThan(auction.CurrentPrice) {
			return nil, model.NewBidTooLowError(auction.CurrentPrice)
		}

		bid := &model.Bid{
			ID:        uuid.New(),
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    req.Amount,
			CreatedAt: now,
		}

		// The write also repairs a stale stored status while it is here
		err = s.auctionRepo.PlaceBid(ctx, auction, bid, model.StatusLive)
		if err == nil {
			logger.Info("bid accepted", map[string]interface{}{
				"auction_id": auctionID.String(),
				"bidder_id":  bidderID.String(),
				"amount":     req.Amount.String(),
				"attempt":    attempt + 1,
			})

			auction.CurrentPrice = req.Amount
			auction.Status = model.StatusLive
			auction.Bids = append(auction.Bids, *bid)
			resp := auction.ToResponse(s.sellerInfo(ctx, auction.SellerID), now)
			resp.Bids = s.bidResponses(ctx, auction.Bids)
			return resp, nil
		}

		if !errors.Is(err, model.ErrVersionMismatch) {
			return nil, err
		}

		// Lost the race, reload and re-validate against the new price
	}

	logger.Info("bid retries exhausted", map[string]interface{}{
		"auction_id": auctionID.String(),
		"bidder_id":  bidderID.String(),
	})
	return nil, model.NewVersionConflictError()
}

// checkBidRate enforces the sliding per-minute bid cap using a Redis counter
func (s *auctionService) checkBidRate(ctx context.Context, auctionID, bidderID uuid.UUID) error {
	key := fmt.Sprintf("bid_rate:%s:%s", auctionID, bidderID)

	count, err := s.cache.Increment(ctx, key)
	if err != nil {
		// Rate limiting is protective, not load-bearing; fail open
		logger.Error("bid rate counter unavailable", err)
		return nil
	}
	if count == 1 {
		if err := s.cache.Expire(ctx, key, bidRateWindow); err != nil {
			logger.Error("bid rate expiry failed", err)
		}
	}
	if count > bidRateLimit {
		return model.NewBidRateLimitedError()
	}

	return nil
}

// =====================================================
// CANCEL
// =====================================================

func (s *auctionService) CancelAuction(ctx context.Context, auctionID, sellerID uuid.UUID) (*model.AuctionResponse, error) {
	auction, err := s.auctionRepo.GetByIDForUpdate(ctx, auctionID)
	if err != nil {
		if errors.Is(err, model.ErrAuctionNotFound) {
			return nil, model.NewAuctionNotFoundError()
		}
		return nil, err
	}

	if auction.SellerID != sellerID {
		return nil, model.NewUnauthorizedError("Only the seller can cancel this auction")
	}

	now := s.now()
	if !auction.CanBeCancelled(now) {
		return nil, model.NewCannotCancelError(model.EffectiveStatus(auction, now))
	}

	err = s.auctionRepo.UpdateStatus(ctx, auctionID, model.StatusCancelled, auction.Version)
	if err != nil {
		if errors.Is(err, model.ErrVersionMismatch) {
			return nil, model.NewVersionConflictError()
		}
		return nil, fmt.Errorf("failed to cancel auction: %w", err)
	}

	logger.Info("auction cancelled", map[string]interface{}{
		"auction_id": auctionID.String(),
		"seller_id":  sellerID.String(),
	})

	auction.Status = model.StatusCancelled
	auction.Version++
	return auction.ToResponse(s.sellerInfo(ctx, sellerID), now), nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *auctionService) sellerInfo(ctx context.Context, sellerID uuid.UUID) model.SellerInfo {
	info := model.SellerInfo{ID: sellerID}
	user, err := s.userRepo.GetByID(ctx, sellerID)
	if err == nil {
		info.FullName = user.FullName
	}
	return info
}

// bidResponses projects a bid history with bidder names attached
func (s *auctionService) bidResponses(ctx context.Context, bids []model.Bid) []model.BidResponse {
	if len(bids) == 0 {
		return nil
	}

	bidderIDs := make([]uuid.UUID, 0, len(bids))
	for i := range bids {
		bidderIDs = append(bidderIDs, bids[i].BidderID)
	}
	names := s.resolveNames(ctx, bidderIDs)

	out := make([]model.BidResponse, 0, len(bids))
	for i := range bids {
		out = append(out, bids[i].ToBidResponse(names[bids[i].BidderID]))
	}
	return out
}

func (s *auctionService) resolveNames(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]string {
	names, err := s.userRepo.GetNamesByIDs(ctx, ids)
	if err != nil {
		logger.Error("failed to resolve user names", err)
		return map[uuid.UUID]string{}
	}
	return names
}
