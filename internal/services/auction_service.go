// internal/services/auction_service.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AK93-git/Base-NFT-Market/internal/apperrors"
	"github.com/AK93-git/Base-NFT-Market/internal/ledger"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
	"github.com/AK93-git/Base-NFT-Market/internal/utils"
)

// AuctionService owns the English-auction lifecycle: creation, bidding,
// settlement and cancellation. Displaced bids are never pushed back to the
// outbid bidder; they always land in the pending-payout queue so a hostile
// bidder cannot block the auction by refusing a refund.
type AuctionService struct {
	db                  *gorm.DB
	mu                  *sync.Mutex
	assets              ledger.AssetLedger
	payoutService       *PayoutService
	statsService        *StatsService
	notificationService *NotificationService
	listingService      *ListingService
	now                 func() time.Time
}

type CreateAuctionRequest struct {
	AssetID         uint64          `json:"asset_id" validate:"required"`
	ReservePrice    decimal.Decimal `json:"reserve_price" validate:"required"`
	DurationSeconds int64           `json:"duration_seconds" validate:"required,gt=0"`
	RoyaltyReceiver string          `json:"royalty_receiver,omitempty"`
	RoyaltyBps      uint32          `json:"royalty_bps"`
}

type PlaceBidRequest struct {
	AssetID uint64          `json:"asset_id" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"required"`
}

type AuctionSearchParams struct {
	utils.PaginationParams
	Seller string
	Status *models.AuctionStatus
}

func NewAuctionService(db *gorm.DB, mu *sync.Mutex, assets ledger.AssetLedger,
	payoutService *PayoutService, statsService *StatsService,
	notificationService *NotificationService, listingService *ListingService) *AuctionService {
	return &AuctionService{
		db:                  db,
		mu:                  mu,
		assets:              assets,
		payoutService:       payoutService,
		statsService:        statsService,
		notificationService: notificationService,
		listingService:      listingService,
		now:                 time.Now,
	}
}

func (s *AuctionService) CreateAuction(caller string, req *CreateAuctionRequest) (*models.Auction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindValidation, "bad_request", "validation failed")
	}
	if !req.ReservePrice.IsPositive() {
		return nil, apperrors.Validation("reserve_not_positive", "reserve price must be positive")
	}
	if req.RoyaltyBps > 0 && req.RoyaltyReceiver == "" {
		return nil, apperrors.Validation("royalty_receiver_empty",
			"royalty of %d bps requires a royalty receiver", req.RoyaltyBps)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := assertCanSell(s.assets, req.AssetID, caller); err != nil {
		return nil, err
	}

	var auction *models.Auction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}

		if req.ReservePrice.LessThan(cfg.MinListingPrice) {
			return apperrors.Validation("reserve_too_low",
				"reserve %s below minimum listing price %s", req.ReservePrice, cfg.MinListingPrice)
		}
		if req.RoyaltyBps > cfg.MaxRoyaltyBps {
			return apperrors.Validation("royalty_too_high",
				"royalty %d bps exceeds maximum %d bps", req.RoyaltyBps, cfg.MaxRoyaltyBps)
		}

		if err := assertNoActiveSale(tx, req.AssetID); err != nil {
			return err
		}

		// Terms are frozen at creation, bid increment included.
		auction = &models.Auction{
			AssetID:         req.AssetID,
			Seller:          caller,
			ReservePrice:    req.ReservePrice,
			RoyaltyReceiver: req.RoyaltyReceiver,
			RoyaltyBps:      req.RoyaltyBps,
			PlatformFeeBps:  cfg.PlatformFeeBps,
			FeeRecipient:    cfg.FeeRecipient,
			MinIncrementBps: cfg.MinBidIncrementBps,
			EndTime:         s.now().Add(time.Duration(req.DurationSeconds) * time.Second),
			Status:          models.AuctionStatusActive,
		}
		if err := tx.Create(auction).Error; err != nil {
			return fmt.Errorf("failed to create auction: %w", err)
		}

		return s.notificationService.SendAuctionCreated(tx, auction)
	})
	if err != nil {
		return nil, err
	}

	return auction, nil
}

// PlaceBid records a new highest bid. The first bid must reach the reserve
// price; every later bid must top the current one by at least the auction's
// minimum increment. The displaced bidder's funds are queued for claiming,
// never pushed.
func (s *AuctionService) PlaceBid(caller string, req *PlaceBidRequest) (*models.Auction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindValidation, "bad_request", "validation failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var auction *models.Auction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		auction, err = activeAuction(tx, req.AssetID)
		if err != nil {
			return err
		}

		if auction.Ended(s.now()) {
			return apperrors.State("auction_ended", "auction for asset %d has ended", req.AssetID)
		}
		if caller == auction.Seller {
			return apperrors.Validation("self_bid", "seller cannot bid on their own auction")
		}

		minNext := auction.MinNextBid()
		if req.Amount.LessThan(minNext) {
			return apperrors.Validation("bid_too_low",
				"bid %s below minimum next bid %s", req.Amount, minNext)
		}

		displaced := auction.CurrentBidder
		var displacedAmount decimal.Decimal
		if auction.CurrentBid != nil {
			displacedAmount = *auction.CurrentBid
		}

		amount := req.Amount
		auction.CurrentBid = &amount
		auction.CurrentBidder = caller
		auction.BidCount++
		if err := tx.Save(auction).Error; err != nil {
			return fmt.Errorf("failed to update auction: %w", err)
		}

		bid := &models.Bid{
			AuctionID: auction.ID,
			AssetID:   auction.AssetID,
			Bidder:    caller,
			Amount:    req.Amount,
		}
		if err := tx.Create(bid).Error; err != nil {
			return fmt.Errorf("failed to record bid: %w", err)
		}

		if displaced != "" {
			if err := s.payoutService.queue(tx, displaced, displacedAmount,
				models.PayoutReasonBidRefund, auction.AssetID); err != nil {
				return err
			}
		}

		return s.notificationService.SendBidPlaced(tx, auction, caller, req.Amount, displaced)
	})
	if err != nil {
		return nil, err
	}

	return auction, nil
}

// FinalizeAuction settles an ended auction. Anyone may call it once the end
// time has passed. With a standing bid the asset transfers to the bidder and
// the bid splits three ways; without bids the auction is cancelled and the
// seller keeps the asset. Calling it twice yields a state error.
func (s *AuctionService) FinalizeAuction(caller string, assetID uint64) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var auction *models.Auction
	var sale *models.SaleRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		auction, err = activeAuction(tx, assetID)
		if err != nil {
			return err
		}

		if !auction.Ended(s.now()) {
			return apperrors.State("auction_not_ended",
				"auction for asset %d runs until %s", assetID, auction.EndTime.Format(time.RFC3339))
		}

		if auction.CurrentBid == nil {
			auction.Status = models.AuctionStatusCancelled
			if err := tx.Save(auction).Error; err != nil {
				return fmt.Errorf("failed to cancel auction: %w", err)
			}
			return s.notificationService.SendAuctionCancelled(tx, auction, caller)
		}

		split, err := SplitSalePrice(*auction.CurrentBid, auction.PlatformFeeBps, auction.RoyaltyBps)
		if err != nil {
			return err
		}

		now := s.now()
		auction.Status = models.AuctionStatusSettled
		auction.SettledAt = &now
		if err := tx.Save(auction).Error; err != nil {
			return fmt.Errorf("failed to settle auction: %w", err)
		}

		sale = &models.SaleRecord{
			AssetID:        auction.AssetID,
			Kind:           models.SaleKindAuction,
			Seller:         auction.Seller,
			Buyer:          auction.CurrentBidder,
			Price:          *auction.CurrentBid,
			PlatformFee:    split.PlatformFee,
			Royalty:        split.Royalty,
			SellerProceeds: split.SellerProceeds,
		}
		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}

		if err := s.assets.Transfer(auction.Seller, auction.CurrentBidder, auction.AssetID); err != nil {
			return apperrors.Transfer("transfer_refused", err)
		}

		if err := s.listingService.distributeProceeds(tx, auction.AssetID, auction.Seller,
			auction.RoyaltyReceiver, auction.FeeRecipient, split); err != nil {
			return err
		}

		// Aggregates update only once transfer and payouts went through.
		if err := s.statsService.recordSale(tx, sale); err != nil {
			return err
		}

		return s.notificationService.SendAuctionSettled(tx, auction, sale)
	})
	if err != nil {
		return nil, err
	}

	if sale != nil {
		logrus.WithFields(logrus.Fields{
			"asset_id": sale.AssetID,
			"seller":   sale.Seller,
			"winner":   sale.Buyer,
			"price":    sale.Price.String(),
		}).Info("Auction settled")
	}

	return auction, nil
}

// CancelAuction withdraws an auction that has received no bids. Once a bid
// stands the auction can only end by settlement.
func (s *AuctionService) CancelAuction(caller string, assetID uint64) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var auction *models.Auction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		auction, err = activeAuction(tx, assetID)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if caller != auction.Seller && caller != cfg.Owner {
			return apperrors.Authorization("not_seller_or_owner",
				"caller %s may not cancel auction of asset %d", caller, assetID)
		}
		if auction.BidCount > 0 {
			return apperrors.State("auction_has_bids",
				"auction for asset %d has %d bids and cannot be withdrawn", assetID, auction.BidCount)
		}

		auction.Status = models.AuctionStatusCancelled
		if err := tx.Save(auction).Error; err != nil {
			return fmt.Errorf("failed to cancel auction: %w", err)
		}

		return s.notificationService.SendAuctionCancelled(tx, auction, caller)
	})
	if err != nil {
		return nil, err
	}

	return auction, nil
}

func activeAuction(tx *gorm.DB, assetID uint64) (*models.Auction, error) {
	var auction models.Auction
	err := tx.Where("asset_id = ? AND status = ?", assetID, models.AuctionStatusActive).
		First(&auction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.State("no_active_auction", "asset %d has no active auction", assetID)
		}
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}
	return &auction, nil
}

// GetAuction returns the most recent auction of an asset with its bids.
func (s *AuctionService) GetAuction(assetID uint64) (*models.Auction, error) {
	var auction models.Auction
	err := s.db.Preload("Bids", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("asset_id = ?", assetID).
		Order("created_at DESC").
		First(&auction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.State("auction_not_found", "asset %d has never been auctioned", assetID)
		}
		return nil, fmt.Errorf("failed to load auction: %w", err)
	}
	return &auction, nil
}

// GetAuctions pages through auction history, newest first.
func (s *AuctionService) GetAuctions(params AuctionSearchParams) ([]models.Auction, int64, error) {
	query := s.db.Model(&models.Auction{})

	if params.Seller != "" {
		query = query.Where("seller = ?", params.Seller)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count auctions: %w", err)
	}

	var auctions []models.Auction
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params.PaginationParams).
		Find(&auctions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch auctions: %w", err)
	}

	return auctions, total, nil
}
