// internal/services/auction_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/AK93-git/Base-NFT-Market/internal/apperrors"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
)

type AuctionServiceSuite struct {
	suite.Suite
	h *testHarness
}

func (s *AuctionServiceSuite) SetupTest() {
	s.h = newTestHarness(s.T())
}

func (s *AuctionServiceSuite) TestCreateAuction() {
	auction := s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 500)

	s.Equal(models.AuctionStatusActive, auction.Status)
	s.Equal(uint32(250), auction.PlatformFeeBps)
	s.Equal(uint32(100), auction.MinIncrementBps)
	s.Equal(s.h.clock.Now().Add(time.Hour), auction.EndTime)
	s.EqualValues(1, s.h.eventCount(s.T(), models.EventAuctionCreated))
}

func (s *AuctionServiceSuite) TestCreateAuctionMutualExclusion() {
	s.h.mustList(s.T(), addrSeller, 1, "0.1", 0)

	_, err := s.h.auctions.CreateAuction(addrSeller, &CreateAuctionRequest{
		AssetID:         1,
		ReservePrice:    d("1"),
		DurationSeconds: 3600,
	})
	s.Require().Error(err)
	s.Equal("already_listed", apperrors.CodeOf(err))
}

func (s *AuctionServiceSuite) TestFirstBidMustMeetReserve() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)

	_, err := s.h.auctions.PlaceBid(addrBidder1, &PlaceBidRequest{
		AssetID: 1,
		Amount:  d("0.99"),
	})
	s.Require().Error(err)
	s.Equal("bid_too_low", apperrors.CodeOf(err))

	auction, err := s.h.auctions.PlaceBid(addrBidder1, &PlaceBidRequest{
		AssetID: 1,
		Amount:  d("1"),
	})
	s.Require().NoError(err)
	s.True(auction.CurrentBid.Equal(d("1")))
	s.Equal(addrBidder1, auction.CurrentBidder)
	s.EqualValues(1, auction.BidCount)
}

func (s *AuctionServiceSuite) TestBidIncrementEnforced() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)

	_, err := s.h.auctions.PlaceBid(addrBidder1, &PlaceBidRequest{AssetID: 1, Amount: d("1")})
	s.Require().NoError(err)

	// Min increment is 100 bps, so the next bid must reach 1.01.
	_, err = s.h.auctions.PlaceBid(addrBidder2, &PlaceBidRequest{AssetID: 1, Amount: d("1.005")})
	s.Require().Error(err)
	s.Equal("bid_too_low", apperrors.CodeOf(err))

	auction, err := s.h.auctions.PlaceBid(addrBidder2, &PlaceBidRequest{AssetID: 1, Amount: d("1.01")})
	s.Require().NoError(err)
	s.Equal(addrBidder2, auction.CurrentBidder)
	s.EqualValues(2, auction.BidCount)
}

func (s *AuctionServiceSuite) TestDisplacedBidRefundIsQueued() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)

	_, err := s.h.auctions.PlaceBid(addrBidder1, &PlaceBidRequest{AssetID: 1, Amount: d("1")})
	s.Require().NoError(err)
	_, err = s.h.auctions.PlaceBid(addrBidder2, &PlaceBidRequest{AssetID: 1, Amount: d("1.01")})
	s.Require().NoError(err)

	// The refund is never pushed, only queued for claiming.
	s.True(s.h.payments.BalanceOf(addrBidder1).IsZero())
	pending, err := s.h.payouts.PendingBalance(addrBidder1)
	s.Require().NoError(err)
	s.True(pending.Equal(d("1")))

	claimed, err := s.h.payouts.ClaimPending(addrBidder1)
	s.Require().NoError(err)
	s.True(claimed.Equal(d("1")))
	s.True(s.h.payments.BalanceOf(addrBidder1).Equal(d("1")))
}

func (s *AuctionServiceSuite) TestSellerCannotBid() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)

	_, err := s.h.auctions.PlaceBid(addrSeller, &PlaceBidRequest{AssetID: 1, Amount: d("1")})
	s.Require().Error(err)
	s.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (s *AuctionServiceSuite) TestBidAfterEndRejected() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)
	s.h.clock.Advance(2 * time.Hour)

	_, err := s.h.auctions.PlaceBid(addrBidder1, &PlaceBidRequest{AssetID: 1, Amount: d("2")})
	s.Require().Error(err)
	s.Equal("auction_ended", apperrors.CodeOf(err))
}

func (s *AuctionServiceSuite) TestFinalizeSettles() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 500)

	_, err := s.h.auctions.PlaceBid(addrBidder1, &PlaceBidRequest{AssetID: 1, Amount: d("2")})
	s.Require().NoError(err)

	s.h.clock.Advance(2 * time.Hour)

	// Anyone may finalize an ended auction.
	auction, err := s.h.auctions.FinalizeAuction(addrBidder2, 1)
	s.Require().NoError(err)
	s.Equal(models.AuctionStatusSettled, auction.Status)

	owner, err := s.h.assets.OwnerOf(1)
	s.Require().NoError(err)
	s.Equal(addrBidder1, owner)

	// 2 split at 250/500 bps: fee 0.05, royalty 0.1, seller 1.85.
	s.True(s.h.payments.BalanceOf(addrFeeRecipient).Equal(d("0.05")))
	s.True(s.h.payments.BalanceOf(addrRoyalty).Equal(d("0.1")))
	s.True(s.h.payments.BalanceOf(addrSeller).Equal(d("1.85")))

	var sale models.SaleRecord
	s.Require().NoError(s.h.db.Where("asset_id = ?", 1).First(&sale).Error)
	s.Equal(models.SaleKindAuction, sale.Kind)
	s.Equal(addrBidder1, sale.Buyer)

	// Finalizing twice is a state error.
	_, err = s.h.auctions.FinalizeAuction(addrBidder2, 1)
	s.Require().Error(err)
	s.Equal(apperrors.KindState, apperrors.KindOf(err))
}

func (s *AuctionServiceSuite) TestFinalizeBeforeEndRejected() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)

	_, err := s.h.auctions.FinalizeAuction(addrSeller, 1)
	s.Require().Error(err)
	s.Equal("auction_not_ended", apperrors.CodeOf(err))
}

func (s *AuctionServiceSuite) TestFinalizeWithoutBidsCancels() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)
	s.h.clock.Advance(2 * time.Hour)

	auction, err := s.h.auctions.FinalizeAuction(addrSeller, 1)
	s.Require().NoError(err)
	s.Equal(models.AuctionStatusCancelled, auction.Status)

	// The seller keeps the asset and no sale was recorded.
	owner, err := s.h.assets.OwnerOf(1)
	s.Require().NoError(err)
	s.Equal(addrSeller, owner)

	var saleCount int64
	s.Require().NoError(s.h.db.Model(&models.SaleRecord{}).Count(&saleCount).Error)
	s.EqualValues(0, saleCount)
}

func (s *AuctionServiceSuite) TestCancelBeforeBids() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)

	auction, err := s.h.auctions.CancelAuction(addrSeller, 1)
	s.Require().NoError(err)
	s.Equal(models.AuctionStatusCancelled, auction.Status)

	// The asset is free again.
	_, err = s.h.listings.CreateListing(addrSeller, &CreateListingRequest{
		AssetID: 1,
		Price:   d("0.5"),
	})
	s.NoError(err)
}

func (s *AuctionServiceSuite) TestCancelWithBidsRejected() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)

	_, err := s.h.auctions.PlaceBid(addrBidder1, &PlaceBidRequest{AssetID: 1, Amount: d("1")})
	s.Require().NoError(err)

	_, err = s.h.auctions.CancelAuction(addrSeller, 1)
	s.Require().Error(err)
	s.Equal("auction_has_bids", apperrors.CodeOf(err))
}

func (s *AuctionServiceSuite) TestCancelAuthorization() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)

	_, err := s.h.auctions.CancelAuction(addrBidder1, 1)
	s.Require().Error(err)
	s.Equal(apperrors.KindAuthorization, apperrors.KindOf(err))
}

func (s *AuctionServiceSuite) TestSettlementUsesCapturedTerms() {
	s.h.mustAuction(s.T(), addrSeller, 1, "1", 3600, 0)

	// Raising the fee after creation must not affect this auction.
	s.Require().NoError(s.h.config.SetPlatformFee(addrOwner, 1000))

	_, err := s.h.auctions.PlaceBid(addrBidder1, &PlaceBidRequest{AssetID: 1, Amount: d("1")})
	s.Require().NoError(err)
	s.h.clock.Advance(2 * time.Hour)

	_, err = s.h.auctions.FinalizeAuction(addrSeller, 1)
	s.Require().NoError(err)

	// Still 250 bps of 1 = 0.025, not 0.1.
	s.True(s.h.payments.BalanceOf(addrFeeRecipient).Equal(d("0.025")))
}

func TestAuctionServiceSuite(t *testing.T) {
	suite.Run(t, new(AuctionServiceSuite))
}
