package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"marketplace-backend/internal/domains/auction/model"
	"marketplace-backend/internal/domains/auction/service"
	"marketplace-backend/internal/shared/response"
	"marketplace-backend/pkg/logger"
)

// AuctionHandler handles HTTP requests for auctions
type AuctionHandler struct {
	service service.AuctionService
}

// NewAuctionHandler creates a new auction handler
func NewAuctionHandler(service service.AuctionService) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuction handles POST /api/v1/auctions
func (h *AuctionHandler) CreateAuction(c *gin.Context) {
	sellerID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req model.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.CreateAuction(c.Request.Context(), sellerID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// GetAuction handles GET /api/v1/auctions/:id
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetAuction(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ListAuctions handles GET /api/v1/auctions
func (h *AuctionHandler) ListAuctions(c *gin.Context) {
	var req model.ListAuctionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	auctions, meta, err := h.service.ListAuctions(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, auctions, toResponseMeta(meta))
}

// PlaceBid handles POST /api/v1/auctions/:id/bid
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	bidderID, ok := h.getUserID(c)
	if !ok {
		return
	}
	auctionID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req model.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.PlaceBid(c.Request.Context(), auctionID, bidderID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// ListBids handles GET /api/v1/auctions/:id/bids
func (h *AuctionHandler) ListBids(c *gin.Context) {
	auctionID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req model.ListBidsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	bids, meta, err := h.service.ListBids(c.Request.Context(), auctionID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, bids, toResponseMeta(meta))
}

// CancelAuction handles POST /api/v1/auctions/:id/cancel
func (h *AuctionHandler) CancelAuction(c *gin.Context) {
	sellerID, ok := h.getUserID(c)
	if !ok {
		return
	}
	auctionID, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.service.CancelAuction(c.Request.Context(), auctionID, sellerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// =====================================================
// HELPERS
// =====================================================

func (h *AuctionHandler) getUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw.(string))
	if err != nil {
		response.Unauthorized(c, "Invalid authentication token")
		return uuid.Nil, false
	}

	return id, true
}

func (h *AuctionHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid auction ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondError translates domain errors into HTTP responses
func (h *AuctionHandler) respondError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest,
			model.ErrCodeValidation, "Validation failed", validationErrs)
		return
	}

	var auctionErr *model.AuctionError
	if errors.As(err, &auctionErr) {
		status := auctionErrorStatus(auctionErr)
		if auctionErr.Details != nil {
			response.ErrorWithDetails(c, status, auctionErr.Code, auctionErr.Message, auctionErr.Details)
		} else {
			response.ErrorResponse(c, status, auctionErr.Code, auctionErr.Message)
		}
		return
	}

	logger.Error("unhandled auction error", err)
	response.InternalServerError(c, "Something went wrong")
}

func auctionErrorStatus(err *model.AuctionError) int {
	switch err.Code {
	case model.ErrCodeAuctionNotFound:
		return http.StatusNotFound
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized, model.ErrCodeOwnAuctionBid:
		return http.StatusForbidden
	case model.ErrCodeBidRateLimited:
		return http.StatusTooManyRequests
	case model.ErrCodeVersionMismatch:
		return http.StatusConflict
	case model.ErrCodeAuctionNotLive,
		model.ErrCodeAuctionNotStarted,
		model.ErrCodeAuctionEnded,
		model.ErrCodeBidTooLow,
		model.ErrCodeCannotCancel:
		// Business-rule rejections are client errors, not conflicts
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toResponseMeta(meta model.PaginationMeta) *response.Meta {
	return &response.Meta{
		Page:       meta.Page,
		Limit:      meta.Limit,
		Total:      meta.Total,
		TotalPages: meta.TotalPages,
		HasNext:    meta.HasNext,
		HasPrev:    meta.HasPrev,
	}
}
