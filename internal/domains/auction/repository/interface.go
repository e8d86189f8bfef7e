package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"marketplace-backend/internal/domains/auction/model"
)

// AuctionFilter narrows a listing query. A Status filter is evaluated
// against the timestamps, not the stored status column.
type AuctionFilter struct {
	Status   string
	Category string
	SellerID *uuid.UUID
	Search   string
	Page     int
	Limit    int
}

// AuctionRepository defines the data access contract for auctions
type AuctionRepository interface {
	// Create persists the auction and its images in one transaction
	Create(ctx context.Context, auction *model.Auction) error

	// GetByID loads an auction with images and bids, cache-first
	GetByID(ctx context.Context, id uuid.UUID) (*model.Auction, error)

	// GetByIDForUpdate loads straight from the database, bypassing the
	// cache. The bid path must never act on stale reads.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Auction, error)

	// List returns one page of auctions matching the filter plus the
	// total match count
	List(ctx context.Context, filter AuctionFilter, now time.Time) ([]model.Auction, int64, error)

	// UpdateStatus transitions the auction status, conditioned on the
	// version the caller read. Returns model.ErrVersionMismatch when
	// another writer got there first.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, version int) error

	// PlaceBid atomically inserts the bid and raises current_price
	// (and optionally the cached status), conditioned on version.
	// Returns model.ErrVersionMismatch when the auction changed underneath.
	PlaceBid(ctx context.Context, auction *model.Auction, bid *model.Bid, newStatus string) error

	// ListBids returns one page of an auction's bid history, newest first
	ListBids(ctx context.Context, auctionID uuid.UUID, page, limit int) ([]model.Bid, int64, error)

	// CloseEnded marks every live/upcoming auction whose end time has
	// passed as ended. Returns the number of rows corrected.
	CloseEnded(ctx context.Context, now time.Time) (int64, error)

	// OpenScheduled marks every upcoming auction whose start time has
	// passed (and end time has not) as live. Returns rows corrected.
	OpenScheduled(ctx context.Context, now time.Time) (int64, error)
}
