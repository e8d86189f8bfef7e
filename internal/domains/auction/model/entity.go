package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Auction status constants. Transitions are forward-only:
// upcoming -> live -> ended; cancelled is terminal and reachable
// from upcoming or live only.
const (
	StatusUpcoming  = "upcoming"
	StatusLive      = "live"
	StatusEnded     = "ended"
	StatusCancelled = "cancelled"
)

// Item condition constants
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
)

// Auction represents an auction listing entity
type Auction struct {
	ID       uuid.UUID `json:"id"`
	SellerID uuid.UUID `json:"seller_id"`

	// Descriptive
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Condition   string         `json:"condition"`
	Tags        pq.StringArray `json:"tags"`
	Images      []AuctionImage `json:"images"`

	// Pricing
	StartPrice   decimal.Decimal  `json:"start_price"`
	CurrentPrice decimal.Decimal  `json:"current_price"`
	ReservePrice *decimal.Decimal `json:"reserve_price"`

	// Timing
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// Status is a cached value; the timestamps are the source of truth.
	// Read paths must go through EffectiveStatus.
	Status string `json:"status"`

	// Bids in chronological order, append-only
	Bids []Bid `json:"bids"`

	// Optimistic concurrency token; every mutating write is conditioned
	// on the version it read and increments it.
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuctionImage represents one image attached to an auction listing.
// Files live in external storage; only the URL and storage key are kept here.
type AuctionImage struct {
	ID         uuid.UUID `json:"id"`
	AuctionID  uuid.UUID `json:"auction_id"`
	URL        string    `json:"url"`
	StorageKey string    `json:"storage_key"`
	AltText    string    `json:"alt_text"`
	IsPrimary  bool      `json:"is_primary"`
	SortOrder  int       `json:"sort_order"`
}

// Bid represents a single accepted bid
type Bid struct {
	ID        uuid.UUID       `json:"id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReserveMet reports whether the reserve price has been reached.
// Returns nil when no reserve price is set.
func (a *Auction) ReserveMet() *bool {
	if a.ReservePrice == nil {
		return nil
	}
	met := len(a.Bids) > 0 && a.CurrentPrice.GreaterThanOrEqual(*a.ReservePrice)
	return &met
}

// CanBeCancelled checks if the auction is still in a cancellable state
func (a *Auction) CanBeCancelled(now time.Time) bool {
	status := EffectiveStatus(a, now)
	return status == StatusUpcoming || status == StatusLive
}
