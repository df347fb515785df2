// internal/services/stats_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/AK93-git/Base-NFT-Market/internal/apperrors"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
)

type StatsServiceSuite struct {
	suite.Suite
	h *testHarness
}

func (s *StatsServiceSuite) SetupTest() {
	s.h = newTestHarness(s.T())
}

// insertSale writes a sale record with a controlled timestamp.
func (s *StatsServiceSuite) insertSale(assetID uint64, seller, buyer, price string, at time.Time) {
	sale := &models.SaleRecord{
		AssetID:        assetID,
		Kind:           models.SaleKindListing,
		Seller:         seller,
		Buyer:          buyer,
		Price:          d(price),
		PlatformFee:    d("0"),
		Royalty:        d("0"),
		SellerProceeds: d(price),
	}
	sale.CreatedAt = at
	s.Require().NoError(s.h.db.Create(sale).Error)
}

func (s *StatsServiceSuite) TestTrendingOrderAndTieBreak() {
	base := s.h.clock.Now()

	// Asset 1: two sales, last one old. Asset 2: two sales, last one newer.
	// Asset 3: one sale.
	s.insertSale(1, addrSeller, addrBuyer, "1", base.Add(-4*time.Hour))
	s.insertSale(1, addrBuyer, addrBidder1, "2", base.Add(-3*time.Hour))
	s.insertSale(2, addrSeller, addrBuyer, "3", base.Add(-2*time.Hour))
	s.insertSale(2, addrBuyer, addrBidder1, "4", base.Add(-1*time.Hour))
	s.insertSale(3, addrSeller, addrBuyer, "5", base)

	trending, err := s.h.stats.GetTrendingNFTs(10)
	s.Require().NoError(err)
	s.Require().Len(trending, 3)

	// Tied on count, asset 2 wins with the more recent sale.
	s.EqualValues(2, trending[0].AssetID)
	s.EqualValues(2, trending[0].SalesCount)
	s.True(trending[0].LastPrice.Equal(d("4")))
	s.Equal(addrBuyer, trending[0].LastSeller)

	s.EqualValues(1, trending[1].AssetID)
	s.EqualValues(3, trending[2].AssetID)
}

func (s *StatsServiceSuite) TestTrendingBound() {
	base := s.h.clock.Now()
	s.insertSale(1, addrSeller, addrBuyer, "1", base)
	s.insertSale(2, addrSeller, addrBuyer, "1", base)

	trending, err := s.h.stats.GetTrendingNFTs(1)
	s.Require().NoError(err)
	s.Len(trending, 1)

	_, err = s.h.stats.GetTrendingNFTs(0)
	s.Require().Error(err)
	s.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (s *StatsServiceSuite) TestListingCreationFlushesStatsCache() {
	// Warm the cache before anything is listed.
	stats, err := s.h.stats.GetMarketStats()
	s.Require().NoError(err)
	s.EqualValues(0, stats.TotalListings)

	s.h.mustList(s.T(), addrSeller, 1, "1", 0)

	stats, err = s.h.stats.GetMarketStats()
	s.Require().NoError(err)
	s.EqualValues(1, stats.TotalListings)
	s.True(stats.AvgListingPrice.Equal(d("1")))
}

func (s *StatsServiceSuite) TestAggregatesAcrossSales() {
	s.h.mustList(s.T(), addrSeller, 1, "1", 1000)
	_, err := s.h.listings.Purchase(addrBuyer, &PurchaseRequest{
		AssetID:        1,
		TenderedAmount: d("1"),
	})
	s.Require().NoError(err)

	s.h.mustList(s.T(), addrBuyer, 2, "3", 0)
	_, err = s.h.listings.Purchase(addrBidder1, &PurchaseRequest{
		AssetID:        2,
		TenderedAmount: d("3"),
	})
	s.Require().NoError(err)

	stats, err := s.h.stats.GetMarketStats()
	s.Require().NoError(err)
	s.EqualValues(2, stats.TotalListings)
	s.EqualValues(2, stats.TotalSales)
	s.True(stats.TotalVolume.Equal(d("4")))
	s.True(stats.AvgListingPrice.Equal(d("2")))
	s.EqualValues(3, stats.TotalUsers)

	revenue, err := s.h.stats.GetRevenueStats()
	s.Require().NoError(err)
	// Fees: 0.025 + 0.075. Royalty: 0.1 on the first sale only.
	s.True(revenue.PlatformFees.Equal(d("0.1")))
	s.True(revenue.Royalties.Equal(d("0.1")))
	s.True(revenue.SellerEarnings.Equal(d("3.8")))
	s.True(revenue.AvgTransactionValue.Equal(d("2")))
}

func (s *StatsServiceSuite) TestUserActivityOrdering() {
	s.h.mustList(s.T(), addrSeller, 1, "1", 0)
	_, err := s.h.listings.Purchase(addrBuyer, &PurchaseRequest{
		AssetID:        1,
		TenderedAmount: d("1"),
	})
	s.Require().NoError(err)

	// The seller has a listing and a sale, the buyer one purchase.
	users, err := s.h.stats.GetUserActivity(10)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal(addrSeller, users[0].Address)
	s.EqualValues(1, users[0].TotalListings)
	s.EqualValues(1, users[0].TotalSales)
	s.Equal(addrBuyer, users[1].Address)
	s.EqualValues(1, users[1].TotalPurchases)
}

func (s *StatsServiceSuite) TestGetUserByIndex() {
	s.h.mustList(s.T(), addrSeller, 1, "1", 0)

	user, err := s.h.stats.GetUser(1)
	s.Require().NoError(err)
	s.Equal(addrSeller, user.Address)

	_, err = s.h.stats.GetUser(99)
	s.Require().Error(err)
	s.Equal("user_not_found", apperrors.CodeOf(err))
}

func (s *StatsServiceSuite) TestUserCountedOnce() {
	s.h.mustList(s.T(), addrSeller, 1, "1", 0)
	s.h.mustList(s.T(), addrSeller, 2, "1", 0)

	count, err := s.h.stats.GetUserCount()
	s.Require().NoError(err)
	s.EqualValues(1, count)
}

func TestStatsServiceSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}
