package service

import (
	"context"

	"github.com/google/uuid"

	"marketplace-backend/internal/domains/auction/model"
)

// AuctionService defines the business logic contract for auctions
type AuctionService interface {
	CreateAuction(ctx context.Context, sellerID uuid.UUID, req *model.CreateAuctionRequest) (*model.AuctionResponse, error)
	GetAuction(ctx context.Context, id uuid.UUID) (*model.AuctionResponse, error)
	ListAuctions(ctx context.Context, req *model.ListAuctionsRequest) ([]model.AuctionResponse, model.PaginationMeta, error)
	ListBids(ctx context.Context, auctionID uuid.UUID, req *model.ListBidsRequest) ([]model.BidResponse, model.PaginationMeta, error)
	PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, req *model.PlaceBidRequest) (*model.AuctionResponse, error)
	CancelAuction(ctx context.Context, auctionID, sellerID uuid.UUID) (*model.AuctionResponse, error)
}
