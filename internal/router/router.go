// internal/router/router.go
package router

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/AK93-git/Base-NFT-Market/internal/config"
	"github.com/AK93-git/Base-NFT-Market/internal/handlers"
	"github.com/AK93-git/Base-NFT-Market/internal/ledger"
	"github.com/AK93-git/Base-NFT-Market/internal/middleware"
	"github.com/AK93-git/Base-NFT-Market/internal/services"
	"github.com/AK93-git/Base-NFT-Market/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, assets ledger.AssetLedger, payments ledger.PaymentProvider) *gin.Engine {
	// One mutex serializes every mutating marketplace operation.
	engineMu := &sync.Mutex{}

	// Initialize services
	notificationService := services.NewNotificationService()
	statsService := services.NewStatsService(db)
	payoutService := services.NewPayoutService(db, engineMu, payments, notificationService)
	configService := services.NewConfigService(db, engineMu, notificationService)
	listingService := services.NewListingService(db, engineMu, assets, payoutService, statsService, notificationService)
	auctionService := services.NewAuctionService(db, engineMu, assets, payoutService, statsService, notificationService, listingService)

	// Initialize handlers
	listingHandler := handlers.NewListingHandler(listingService)
	auctionHandler := handlers.NewAuctionHandler(auctionService)
	payoutHandler := handlers.NewPayoutHandler(payoutService)
	marketHandler := handlers.NewMarketHandler(statsService)
	adminHandler := handlers.NewAdminHandler(configService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Listing routes
		listings := v1.Group("/listings")
		{
			listings.GET("", middleware.OptionalAuth(), listingHandler.GetListings)
			listings.GET("/:asset_id", middleware.OptionalAuth(), listingHandler.GetListing)

			// Authenticated routes
			protected := listings.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", listingHandler.CreateListing)
				protected.DELETE("/:asset_id", listingHandler.CancelListing)
				protected.POST("/:asset_id/purchase", middleware.TradingRateLimit(), listingHandler.Purchase)
			}
		}

		// Auction routes
		auctions := v1.Group("/auctions")
		{
			auctions.GET("", middleware.OptionalAuth(), auctionHandler.GetAuctions)
			auctions.GET("/:asset_id", middleware.OptionalAuth(), auctionHandler.GetAuction)

			protected := auctions.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", auctionHandler.CreateAuction)
				protected.DELETE("/:asset_id", auctionHandler.CancelAuction)
				protected.POST("/:asset_id/bids", middleware.TradingRateLimit(), auctionHandler.PlaceBid)
				protected.POST("/:asset_id/finalize", auctionHandler.FinalizeAuction)
			}
		}

		// Payout routes
		payouts := v1.Group("/payouts")
		payouts.Use(middleware.AuthRequired())
		{
			payouts.GET("/pending", payoutHandler.GetPendingBalance)
			payouts.POST("/claim", payoutHandler.ClaimPending)
		}

		// Statistics routes (public)
		stats := v1.Group("/stats")
		{
			stats.GET("", marketHandler.GetMarketStats)
			stats.GET("/revenue", marketHandler.GetRevenueStats)
			stats.GET("/trending", marketHandler.GetTrendingNFTs)
		}

		// User activity routes (public)
		users := v1.Group("/users")
		{
			users.GET("", marketHandler.GetUserActivity)
			users.GET("/count", marketHandler.GetUserCount)
			users.GET("/:index", marketHandler.GetUser)
		}

		// Sale and event history (public)
		v1.GET("/sales", marketHandler.GetSales)
		v1.GET("/events", marketHandler.GetEvents)

		// Admin routes. Ownership is checked in the config service against
		// the stored owner, so a stale token cannot act after a transfer.
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRateLimit())
		{
			admin.GET("/config", adminHandler.GetConfig)
			admin.PUT("/config/platform-fee", adminHandler.SetPlatformFee)
			admin.PUT("/config/min-listing-price", adminHandler.SetMinListingPrice)
			admin.PUT("/config/max-royalty", adminHandler.SetMaxRoyalty)
			admin.PUT("/config/min-bid-increment", adminHandler.SetMinBidIncrement)
			admin.PUT("/config/fee-recipient", adminHandler.SetFeeRecipient)
			admin.PUT("/config/owner", adminHandler.TransferOwnership)
		}
	}

	return r
}
