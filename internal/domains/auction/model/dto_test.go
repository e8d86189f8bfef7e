package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validCreateRequest() CreateAuctionRequest {
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return CreateAuctionRequest{
		Title:      "Vintage mechanical keyboard",
		Category:   "electronics",
		Condition:  ConditionGood,
		StartPrice: decimal.NewFromInt(50),
		StartTime:  start,
		EndTime:    start.Add(72 * time.Hour),
	}
}

func TestCreateAuctionRequestValidate(t *testing.T) {
	t.Run("valid request passes", func(t *testing.T) {
		req := validCreateRequest()
		assert.NoError(t, req.Validate())
	})

	t.Run("title too short", func(t *testing.T) {
		req := validCreateRequest()
		req.Title = "ab"
		assert.Error(t, req.Validate())
	})

	t.Run("unknown condition rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.Condition = "mint"
		assert.Error(t, req.Validate())
	})

	t.Run("end time not after start time rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.EndTime = req.StartTime
		assert.Error(t, req.Validate())

		req.EndTime = req.StartTime.Add(-time.Hour)
		assert.Error(t, req.Validate())
	})

	t.Run("negative start price rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.StartPrice = decimal.NewFromInt(-1)
		assert.Error(t, req.Validate())
	})

	t.Run("zero start price allowed", func(t *testing.T) {
		req := validCreateRequest()
		req.StartPrice = decimal.Zero
		assert.NoError(t, req.Validate())
	})

	t.Run("reserve below start price rejected", func(t *testing.T) {
		req := validCreateRequest()
		reserve := decimal.NewFromInt(10)
		req.ReservePrice = &reserve
		assert.Error(t, req.Validate())
	})

	t.Run("reserve equal to start price allowed", func(t *testing.T) {
		req := validCreateRequest()
		reserve := decimal.NewFromInt(50)
		req.ReservePrice = &reserve
		assert.NoError(t, req.Validate())
	})

	t.Run("image without url rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.Images = []CreateImageRequest{{StorageKey: "k1"}}
		assert.Error(t, req.Validate())
	})

	t.Run("two primary images rejected", func(t *testing.T) {
		req := validCreateRequest()
		req.Images = []CreateImageRequest{
			{URL: "https://cdn.example.com/a.jpg", StorageKey: "a", IsPrimary: true},
			{URL: "https://cdn.example.com/b.jpg", StorageKey: "b", IsPrimary: true},
		}
		assert.Error(t, req.Validate())
	})
}

func TestPlaceBidRequestValidate(t *testing.T) {
	t.Run("positive amount passes", func(t *testing.T) {
		req := PlaceBidRequest{Amount: decimal.NewFromInt(100)}
		assert.NoError(t, req.Validate())
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		req := PlaceBidRequest{Amount: decimal.Zero}
		assert.Error(t, req.Validate())
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		req := PlaceBidRequest{Amount: decimal.NewFromInt(-5)}
		assert.Error(t, req.Validate())
	})
}

func TestListAuctionsRequestNormalize(t *testing.T) {
	req := ListAuctionsRequest{}
	req.Normalize()
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.Limit)

	req = ListAuctionsRequest{Page: 3, Limit: 500}
	req.Normalize()
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 100, req.Limit)
}

func TestNewPaginationMeta(t *testing.T) {
	t.Run("empty result has zero pages", func(t *testing.T) {
		meta := NewPaginationMeta(1, 20, 0)
		assert.Equal(t, 0, meta.TotalPages)
		assert.False(t, meta.HasNext)
		assert.False(t, meta.HasPrev)
	})

	t.Run("partial last page rounds up", func(t *testing.T) {
		meta := NewPaginationMeta(1, 20, 45)
		assert.Equal(t, 3, meta.TotalPages)
		assert.True(t, meta.HasNext)
		assert.False(t, meta.HasPrev)
	})

	t.Run("last page has prev only", func(t *testing.T) {
		meta := NewPaginationMeta(3, 20, 45)
		assert.False(t, meta.HasNext)
		assert.True(t, meta.HasPrev)
	})
}

func TestReserveMet(t *testing.T) {
	t.Run("nil when no reserve set", func(t *testing.T) {
		a := &Auction{CurrentPrice: decimal.NewFromInt(100)}
		assert.Nil(t, a.ReserveMet())
	})

	t.Run("false with no bids even above reserve", func(t *testing.T) {
		reserve := decimal.NewFromInt(50)
		a := &Auction{CurrentPrice: decimal.NewFromInt(50), ReservePrice: &reserve}
		met := a.ReserveMet()
		if assert.NotNil(t, met) {
			assert.False(t, *met)
		}
	})

	t.Run("true once bids reach reserve", func(t *testing.T) {
		reserve := decimal.NewFromInt(50)
		a := &Auction{
			CurrentPrice: decimal.NewFromInt(60),
			ReservePrice: &reserve,
			Bids:         []Bid{{Amount: decimal.NewFromInt(60)}},
		}
		met := a.ReserveMet()
		if assert.NotNil(t, met) {
			assert.True(t, *met)
		}
	})
}
