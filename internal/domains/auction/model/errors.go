package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error codes
const (
	ErrCodeAuctionNotFound  = "AUC001"
	ErrCodeAuctionNotLive   = "AUC002"
	ErrCodeAuctionNotStarted = "AUC003"
	ErrCodeAuctionEnded     = "AUC004"
	ErrCodeBidTooLow        = "AUC005"
	ErrCodeVersionMismatch  = "AUC006"
	ErrCodeCannotCancel     = "AUC007"
	ErrCodeOwnAuctionBid    = "AUC008"
	ErrCodeBidRateLimited   = "AUC009"
	ErrCodeUnauthorized     = "AUC010"
	ErrCodeValidation       = "AUC011"
)

// Errors
var (
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrAuctionNotLive    = errors.New("cannot bid on non-live auction")
	ErrAuctionNotStarted = errors.New("auction not started")
	ErrAuctionEnded      = errors.New("auction ended")
	ErrBidTooLow         = errors.New("bid must be greater than the current price")
	ErrVersionMismatch   = errors.New("version mismatch - concurrent modification detected")
	ErrCannotCancel      = errors.New("auction can no longer be cancelled")
	ErrOwnAuctionBid     = errors.New("sellers cannot bid on their own auction")
	ErrBidRateLimited    = errors.New("too many bids, slow down")
	ErrUnauthorized      = errors.New("unauthorized to perform this action")
)

// AuctionError custom error type carrying a client-facing code
type AuctionError struct {
	Code    string
	Message string
	Err     error
	Details interface{}
}

func (e *AuctionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuctionError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewAuctionNotFoundError() *AuctionError {
	return &AuctionError{
		Code:    ErrCodeAuctionNotFound,
		Message: "Auction not found",
		Err:     ErrAuctionNotFound,
	}
}

func NewAuctionNotLiveError(status string) *AuctionError {
	return &AuctionError{
		Code:    ErrCodeAuctionNotLive,
		Message: fmt.Sprintf("Cannot bid on non-live auction (status: %s)", status),
		Err:     ErrAuctionNotLive,
	}
}

func NewAuctionNotStartedError() *AuctionError {
	return &AuctionError{
		Code:    ErrCodeAuctionNotStarted,
		Message: "Auction has not started yet",
		Err:     ErrAuctionNotStarted,
	}
}

func NewAuctionEndedError() *AuctionError {
	return &AuctionError{
		Code:    ErrCodeAuctionEnded,
		Message: "Auction has ended",
		Err:     ErrAuctionEnded,
	}
}

// NewBidTooLowError echoes the current price so clients can display it
func NewBidTooLowError(currentPrice decimal.Decimal) *AuctionError {
	return &AuctionError{
		Code:    ErrCodeBidTooLow,
		Message: fmt.Sprintf("Bid must be greater than the current price of %s", currentPrice.String()),
		Err:     ErrBidTooLow,
		Details: map[string]interface{}{"current_price": currentPrice},
	}
}

func NewVersionConflictError() *AuctionError {
	return &AuctionError{
		Code:    ErrCodeVersionMismatch,
		Message: "Auction was modified concurrently, please retry",
		Err:     ErrVersionMismatch,
	}
}

func NewCannotCancelError(status string) *AuctionError {
	return &AuctionError{
		Code:    ErrCodeCannotCancel,
		Message: fmt.Sprintf("Auction can no longer be cancelled (status: %s)", status),
		Err:     ErrCannotCancel,
	}
}

func NewOwnAuctionBidError() *AuctionError {
	return &AuctionError{
		Code:    ErrCodeOwnAuctionBid,
		Message: "Sellers cannot bid on their own auction",
		Err:     ErrOwnAuctionBid,
	}
}

func NewBidRateLimitedError() *AuctionError {
	return &AuctionError{
		Code:    ErrCodeBidRateLimited,
		Message: "Too many bids in a short period, please slow down",
		Err:     ErrBidRateLimited,
	}
}

func NewUnauthorizedError(message string) *AuctionError {
	return &AuctionError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Err:     ErrUnauthorized,
	}
}
