// internal/services/helpers_test.go
package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AK93-git/Base-NFT-Market/internal/ledger"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
)

const (
	addrOwner        = "0x0000000000000000000000000000000000000001"
	addrFeeRecipient = "0x0000000000000000000000000000000000000002"
	addrSeller       = "0x00000000000000000000000000000000000000a1"
	addrBuyer        = "0x00000000000000000000000000000000000000b1"
	addrBidder1      = "0x00000000000000000000000000000000000000c1"
	addrBidder2      = "0x00000000000000000000000000000000000000c2"
	addrRoyalty      = "0x00000000000000000000000000000000000000d1"
)

// testClock is an injectable time source so expiry and deadline behavior can
// be driven deterministically.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// testHarness wires the full service graph over an in-memory database and
// the in-process ledger fakes.
type testHarness struct {
	db       *gorm.DB
	clock    *testClock
	assets   *ledger.MemoryLedger
	payments *ledger.MemoryPayments

	notifications *NotificationService
	stats         *StatsService
	payouts       *PayoutService
	config        *ConfigService
	listings      *ListingService
	auctions      *AuctionService
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.MarketConfig{},
		&models.MarketStats{},
		&models.Listing{},
		&models.Auction{},
		&models.Bid{},
		&models.SaleRecord{},
		&models.UserRecord{},
		&models.PendingPayout{},
		&models.MarketEvent{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	// Genesis parameters
	require.NoError(t, db.Create(&models.MarketConfig{
		ID:                 1,
		PlatformFeeBps:     250,
		MinListingPrice:    decimal.RequireFromString("0.001"),
		MaxRoyaltyBps:      1000,
		MinBidIncrementBps: 100,
		FeeRecipient:       addrFeeRecipient,
		Owner:              addrOwner,
	}).Error)
	require.NoError(t, db.Create(&models.MarketStats{
		ID:                  1,
		TotalVolume:         decimal.Zero,
		ListingPriceSum:     decimal.Zero,
		PlatformFeeTotal:    decimal.Zero,
		RoyaltyTotal:        decimal.Zero,
		SellerEarningsTotal: decimal.Zero,
	}).Error)

	clock := &testClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
	mu := &sync.Mutex{}
	assets := ledger.NewMemoryLedger()
	payments := ledger.NewMemoryPayments()

	notifications := NewNotificationService()
	stats := NewStatsService(db)
	payouts := NewPayoutService(db, mu, payments, notifications)
	payouts.now = clock.Now
	config := NewConfigService(db, mu, notifications)
	listings := NewListingService(db, mu, assets, payouts, stats, notifications)
	listings.now = clock.Now
	auctions := NewAuctionService(db, mu, assets, payouts, stats, notifications, listings)
	auctions.now = clock.Now

	return &testHarness{
		db:            db,
		clock:         clock,
		assets:        assets,
		payments:      payments,
		notifications: notifications,
		stats:         stats,
		payouts:       payouts,
		config:        config,
		listings:      listings,
		auctions:      auctions,
	}
}

func (h *testHarness) mustList(t *testing.T, seller string, assetID uint64, price string, royaltyBps uint32) *models.Listing {
	t.Helper()
	h.assets.Mint(seller, assetID)
	req := &CreateListingRequest{
		AssetID:    assetID,
		Price:      decimal.RequireFromString(price),
		RoyaltyBps: royaltyBps,
	}
	if royaltyBps > 0 {
		req.RoyaltyReceiver = addrRoyalty
	}
	listing, err := h.listings.CreateListing(seller, req)
	require.NoError(t, err)
	return listing
}

func (h *testHarness) mustAuction(t *testing.T, seller string, assetID uint64, reserve string, durationSeconds int64, royaltyBps uint32) *models.Auction {
	t.Helper()
	h.assets.Mint(seller, assetID)
	req := &CreateAuctionRequest{
		AssetID:         assetID,
		ReservePrice:    decimal.RequireFromString(reserve),
		DurationSeconds: durationSeconds,
		RoyaltyBps:      royaltyBps,
	}
	if royaltyBps > 0 {
		req.RoyaltyReceiver = addrRoyalty
	}
	auction, err := h.auctions.CreateAuction(seller, req)
	require.NoError(t, err)
	return auction
}

func (h *testHarness) eventCount(t *testing.T, eventType models.EventType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.db.Model(&models.MarketEvent{}).
		Where("type = ?", eventType).Count(&count).Error)
	return count
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
