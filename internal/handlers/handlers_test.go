// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AK93-git/Base-NFT-Market/internal/ledger"
	"github.com/AK93-git/Base-NFT-Market/internal/middleware"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
	"github.com/AK93-git/Base-NFT-Market/internal/services"
	"github.com/AK93-git/Base-NFT-Market/internal/utils"
)

const (
	testOwner  = "0x0000000000000000000000000000000000000001"
	testFee    = "0x0000000000000000000000000000000000000002"
	testSeller = "0x00000000000000000000000000000000000000a1"
	testBuyer  = "0x00000000000000000000000000000000000000b1"
)

type HandlersSuite struct {
	suite.Suite
	router *gin.Engine
	assets *ledger.MemoryLedger
}

func (s *HandlersSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", s.T().Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	s.Require().NoError(db.AutoMigrate(
		&models.MarketConfig{},
		&models.MarketStats{},
		&models.Listing{},
		&models.Auction{},
		&models.Bid{},
		&models.SaleRecord{},
		&models.UserRecord{},
		&models.PendingPayout{},
		&models.MarketEvent{},
	))
	s.Require().NoError(db.Create(&models.MarketConfig{
		ID:                 1,
		PlatformFeeBps:     250,
		MinListingPrice:    decimal.RequireFromString("0.001"),
		MaxRoyaltyBps:      1000,
		MinBidIncrementBps: 100,
		FeeRecipient:       testFee,
		Owner:              testOwner,
	}).Error)
	s.Require().NoError(db.Create(&models.MarketStats{
		ID:                  1,
		TotalVolume:         decimal.Zero,
		ListingPriceSum:     decimal.Zero,
		PlatformFeeTotal:    decimal.Zero,
		RoyaltyTotal:        decimal.Zero,
		SellerEarningsTotal: decimal.Zero,
	}).Error)

	mu := &sync.Mutex{}
	s.assets = ledger.NewMemoryLedger()
	payments := ledger.NewMemoryPayments()

	notifications := services.NewNotificationService()
	stats := services.NewStatsService(db)
	payouts := services.NewPayoutService(db, mu, payments, notifications)
	configService := services.NewConfigService(db, mu, notifications)
	listings := services.NewListingService(db, mu, s.assets, payouts, stats, notifications)

	listingHandler := NewListingHandler(listings)
	marketHandler := NewMarketHandler(stats)
	adminHandler := NewAdminHandler(configService)

	s.router = gin.New()
	v1 := s.router.Group("/v1")
	v1.GET("/stats", marketHandler.GetMarketStats)
	v1.GET("/listings", middleware.OptionalAuth(), listingHandler.GetListings)

	protected := v1.Group("")
	protected.Use(middleware.AuthRequired())
	protected.POST("/listings", listingHandler.CreateListing)
	protected.POST("/listings/:asset_id/purchase", listingHandler.Purchase)
	protected.PUT("/admin/config/platform-fee", adminHandler.SetPlatformFee)
}

func (s *HandlersSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersSuite) tokenFor(address string) string {
	token, err := utils.GenerateJWT(address, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *HandlersSuite) TestCreateListing() {
	s.assets.Mint(testSeller, 1)

	w := s.request("POST", "/v1/listings", s.tokenFor(testSeller), gin.H{
		"asset_id": 1,
		"price":    "0.1",
	})
	s.Equal(http.StatusCreated, w.Code)

	var resp utils.APIResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.Success)
}

func (s *HandlersSuite) TestCreateListingRequiresAuth() {
	w := s.request("POST", "/v1/listings", "", gin.H{
		"asset_id": 1,
		"price":    "0.1",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersSuite) TestPurchaseErrorMapping() {
	s.assets.Mint(testSeller, 1)
	w := s.request("POST", "/v1/listings", s.tokenFor(testSeller), gin.H{
		"asset_id": 1,
		"price":    "0.1",
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	// Underpayment surfaces as 402.
	w = s.request("POST", "/v1/listings/1/purchase", s.tokenFor(testBuyer), gin.H{
		"tendered_amount": "0.05",
	})
	s.Equal(http.StatusPaymentRequired, w.Code)

	// A missing listing surfaces as 409.
	w = s.request("POST", "/v1/listings/42/purchase", s.tokenFor(testBuyer), gin.H{
		"tendered_amount": "0.1",
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlersSuite) TestAdminForbiddenForNonOwner() {
	w := s.request("PUT", "/v1/admin/config/platform-fee", s.tokenFor(testSeller), gin.H{
		"bps": 500,
	})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request("PUT", "/v1/admin/config/platform-fee", s.tokenFor(testOwner), gin.H{
		"bps": 500,
	})
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersSuite) TestListingsReadableWithOrWithoutToken() {
	w := s.request("GET", "/v1/listings", "", nil)
	s.Equal(http.StatusOK, w.Code)

	// A bad token never blocks a public read.
	w = s.request("GET", "/v1/listings", "not-a-token", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request("GET", "/v1/listings", s.tokenFor(testBuyer), nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersSuite) TestStatsPublic() {
	w := s.request("GET", "/v1/stats", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}
