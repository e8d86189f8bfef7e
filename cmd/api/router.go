package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/shared/middleware"
	"marketplace-backend/internal/shared/response"
	"marketplace-backend/pkg/container"
)

// SetupRouter builds the gin engine with middleware and routes
func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	router.GET("/api/v1/health", healthHandler(c))

	v1 := router.Group("/api/v1")
	{
		auctions := v1.Group("/auctions")
		{
			// Public reads
			auctions.GET("", c.AuctionHandler.ListAuctions)
			auctions.GET("/:id", c.AuctionHandler.GetAuction)
			auctions.GET("/:id/bids", c.AuctionHandler.ListBids)

			// Authenticated writes
			authed := auctions.Group("")
			authed.Use(middleware.AuthMiddleware(c.JWTManager))
			{
				authed.POST("", c.AuctionHandler.CreateAuction)
				authed.POST("/:id/bid", c.AuctionHandler.PlaceBid)
				authed.POST("/:id/cancel", c.AuctionHandler.CancelAuction)
			}
		}
	}

	return router
}

func healthHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := gin.H{"database": "ok", "cache": "ok"}
		healthy := true

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			checks["cache"] = err.Error()
			healthy = false
		}

		status := http.StatusOK
		overall := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		response.Success(ctx, status, gin.H{
			"status":  overall,
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
