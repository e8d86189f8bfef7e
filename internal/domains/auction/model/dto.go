package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// CreateAuctionRequest is the payload for creating an auction listing
type CreateAuctionRequest struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Category     string               `json:"category"`
	Condition    string               `json:"condition"`
	Tags         []string             `json:"tags"`
	Images       []CreateImageRequest `json:"images"`
	StartPrice   decimal.Decimal      `json:"start_price"`
	ReservePrice *decimal.Decimal     `json:"reserve_price"`
	StartTime    time.Time            `json:"start_time"`
	EndTime      time.Time            `json:"end_time"`
}

type CreateImageRequest struct {
	URL        string `json:"url"`
	StorageKey string `json:"storage_key"`
	AltText    string `json:"alt_text"`
	IsPrimary  bool   `json:"is_primary"`
	SortOrder  int    `json:"sort_order"`
}

func (r CreateAuctionRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.Category, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Condition, validation.Required, validation.In(
			ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor,
		)),
		validation.Field(&r.Tags, validation.Length(0, 20)),
		validation.Field(&r.Images, validation.Length(0, 10)),
		validation.Field(&r.StartTime, validation.Required),
		validation.Field(&r.EndTime, validation.Required),
	)
	if err != nil {
		return err
	}

	for _, img := range r.Images {
		if err := img.Validate(); err != nil {
			return err
		}
	}

	// Cross-field rules ozzo cannot express declaratively
	if !r.EndTime.After(r.StartTime) {
		return validation.Errors{"end_time": validation.NewError(
			"validation_end_time", "end_time must be after start_time")}
	}
	if r.StartPrice.IsNegative() {
		return validation.Errors{"start_price": validation.NewError(
			"validation_start_price", "start_price must not be negative")}
	}
	if r.ReservePrice != nil && r.ReservePrice.LessThan(r.StartPrice) {
		return validation.Errors{"reserve_price": validation.NewError(
			"validation_reserve_price", "reserve_price must be at least start_price")}
	}

	primaries := 0
	for _, img := range r.Images {
		if img.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return validation.Errors{"images": validation.NewError(
			"validation_images", "at most one image can be primary")}
	}

	return nil
}

func (r CreateImageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required),
		validation.Field(&r.StorageKey, validation.Required),
		validation.Field(&r.AltText, validation.Length(0, 300)),
	)
}

// ListAuctionsRequest holds the query parameters for browsing auctions
type ListAuctionsRequest struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	SellerID string `form:"seller_id"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

func (r ListAuctionsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.In(
			StatusUpcoming, StatusLive, StatusEnded, StatusCancelled,
		)),
		validation.Field(&r.Page, validation.Min(0)),
		validation.Field(&r.Limit, validation.Min(0), validation.Max(100)),
	)
}

// Normalize applies pagination defaults
func (r *ListAuctionsRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
}

// PlaceBidRequest is the payload for placing a bid
type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (r PlaceBidRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return validation.Errors{"amount": validation.NewError(
			"validation_amount", "amount must be positive")}
	}
	return nil
}

// ListBidsRequest holds pagination for the bid history endpoint
type ListBidsRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (r *ListBidsRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
}

// =====================================================
// RESPONSE DTOs
// =====================================================

// SellerInfo is the public seller projection embedded in responses
type SellerInfo struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
}

// AuctionResponse is the API representation of an auction.
// Status and time_remaining are always derived from the clock,
// never read straight from storage.
type AuctionResponse struct {
	ID            uuid.UUID        `json:"id"`
	Seller        SellerInfo       `json:"seller"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Condition     string           `json:"condition"`
	Tags          []string         `json:"tags"`
	Images        []ImageResponse  `json:"images"`
	StartPrice    decimal.Decimal  `json:"start_price"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
	ReservePrice  *decimal.Decimal `json:"reserve_price,omitempty"`
	ReserveMet    *bool            `json:"reserve_met,omitempty"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	Status        string           `json:"status"`
	TimeRemaining int64            `json:"time_remaining_seconds"`
	BidCount      int              `json:"bid_count"`
	Bids          []BidResponse    `json:"bids,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type ImageResponse struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text"`
	IsPrimary bool      `json:"is_primary"`
	SortOrder int       `json:"sort_order"`
}

// BidResponse is the API representation of a bid
type BidResponse struct {
	ID         uuid.UUID       `json:"id"`
	AuctionID  uuid.UUID       `json:"auction_id"`
	BidderID   uuid.UUID       `json:"bidder_id"`
	BidderName string          `json:"bidder_name,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PaginationMeta describes one page of a listing
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPaginationMeta computes derived pagination fields
func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}

// ToResponse converts an auction entity to its API representation at `now`
func (a *Auction) ToResponse(seller SellerInfo, now time.Time) *AuctionResponse {
	images := make([]ImageResponse, 0, len(a.Images))
	for _, img := range a.Images {
		images = append(images, ImageResponse{
			ID:        img.ID,
			URL:       img.URL,
			AltText:   img.AltText,
			IsPrimary: img.IsPrimary,
			SortOrder: img.SortOrder,
		})
	}

	return &AuctionResponse{
		ID:            a.ID,
		Seller:        seller,
		Title:         a.Title,
		Description:   a.Description,
		Category:      a.Category,
		Condition:     a.Condition,
		Tags:          []string(a.Tags),
		Images:        images,
		StartPrice:    a.StartPrice,
		CurrentPrice:  a.CurrentPrice,
		ReservePrice:  a.ReservePrice,
		ReserveMet:    a.ReserveMet(),
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Status:        EffectiveStatus(a, now),
		TimeRemaining: int64(TimeRemaining(a, now).Seconds()),
		BidCount:      len(a.Bids),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ToBidResponse converts a bid entity, attaching the bidder name when known
func (b *Bid) ToBidResponse(bidderName string) BidResponse {
	return BidResponse{
		ID:         b.ID,
		AuctionID:  b.AuctionID,
		BidderID:   b.BidderID,
		BidderName: bidderName,
		Amount:     b.Amount,
		CreatedAt:  b.CreatedAt,
	}
}
