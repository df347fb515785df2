// internal/services/listing_service.go
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

// ListingService owns the fixed-price listing lifecycle. All mutating
// operations serialize on the shared engine mutex and run in a single
// database transaction: status transitions commit before outbound transfer
// and payment calls, and any failure rolls the whole operation back.
type ListingService struct {
	db                  *gorm.DB
	mu                  *sync.Mutex
	assets              ledger.AssetLedger
	payoutService       *PayoutService
	statsService        *StatsService
	notificationService *NotificationService
	now                 func() time.Time
}

type CreateListingRequest struct {
	AssetID         uint64          `json:"asset_id" validate:"required"`
	Price           decimal.Decimal `json:"price" validate:"required"`
	RoyaltyReceiver string          `json:"royalty_receiver,omitempty"`
	RoyaltyBps      uint32          `json:"royalty_bps"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
}

type PurchaseRequest struct {
	AssetID        uint64          `json:"asset_id" validate:"required"`
	TenderedAmount decimal.Decimal `json:"tendered_amount" validate:"required"`
}

type ListingSearchParams struct {
	utils.PaginationParams
	Seller string
	Status *models.ListingStatus
}

func NewListingService(db *gorm.DB, mu *sync.Mutex, assets ledger.AssetLedger,
	payoutService *PayoutService, statsService *StatsService,
	notificationService *NotificationService) *ListingService {
	return &ListingService{
		db:                  db,
		mu:                  mu,
		assets:              assets,
		payoutService:       payoutService,
		statsService:        statsService,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// assertCanSell verifies the caller currently owns the asset or holds
// transfer approval for it.
func assertCanSell(assets ledger.AssetLedger, assetID uint64, caller string) error {
	owner, err := assets.OwnerOf(assetID)
	if err != nil {
		return apperrors.Validation("unknown_asset", "asset %d: %v", assetID, err)
	}
	if owner == caller {
		return nil
	}

	approved, err := assets.IsApprovedForTransfer(assetID, caller)
	if err != nil {
		return apperrors.Validation("unknown_asset", "asset %d: %v", assetID, err)
	}
	if !approved {
		return apperrors.Authorization("not_owner_or_approved",
			"caller %s neither owns asset %d nor holds transfer approval", caller, assetID)
	}
	return nil
}

// assertNoActiveSale enforces the mutual-exclusion invariant: at most one
// active listing or auction per asset, never both.
func assertNoActiveSale(tx *gorm.DB, assetID uint64) error {
	var listingCount int64
	if err := tx.Model(&models.Listing{}).
		Where("asset_id = ? AND status = ?", assetID, models.ListingStatusActive).
		Count(&listingCount).Error; err != nil {
		return fmt.Errorf("failed to check active listings: %w", err)
	}
	if listingCount > 0 {
		return apperrors.State("already_listed", "asset %d already has an active listing", assetID)
	}

	var auctionCount int64
	if err := tx.Model(&models.Auction{}).
		Where("asset_id = ? AND status = ?", assetID, models.AuctionStatusActive).
		Count(&auctionCount).Error; err != nil {
		return fmt.Errorf("failed to check active auctions: %w", err)
	}
	if auctionCount > 0 {
		return apperrors.State("already_on_auction", "asset %d already has an active auction", assetID)
	}

	return nil
}

func (s *ListingService) CreateListing(caller string, req *CreateListingRequest) (*models.Listing, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindValidation, "bad_request", "validation failed")
	}
	if !req.Price.IsPositive() {
		return nil, apperrors.Validation("price_not_positive", "listing price must be positive")
	}
	if req.RoyaltyBps > 0 && req.RoyaltyReceiver == "" {
		return nil, apperrors.Validation("royalty_receiver_empty",
			"royalty of %d bps requires a royalty receiver", req.RoyaltyBps)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, apperrors.Validation("expiry_in_past", "expiry must lie in the future")
	}

	if err := assertCanSell(s.assets, req.AssetID, caller); err != nil {
		return nil, err
	}

	var listing *models.Listing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}

		if req.Price.LessThan(cfg.MinListingPrice) {
			return apperrors.Validation("price_too_low",
				"price %s below minimum listing price %s", req.Price, cfg.MinListingPrice)
		}
		if req.RoyaltyBps > cfg.MaxRoyaltyBps {
			return apperrors.Validation("royalty_too_high",
				"royalty %d bps exceeds maximum %d bps", req.RoyaltyBps, cfg.MaxRoyaltyBps)
		}

		if err := assertNoActiveSale(tx, req.AssetID); err != nil {
			return err
		}

		// Fee and royalty terms are captured here; later config changes do
		// not touch this listing.
		listing = &models.Listing{
			AssetID:         req.AssetID,
			Seller:          caller,
			Price:           req.Price,
			RoyaltyReceiver: req.RoyaltyReceiver,
			RoyaltyBps:      req.RoyaltyBps,
			PlatformFeeBps:  cfg.PlatformFeeBps,
			FeeRecipient:    cfg.FeeRecipient,
			Status:          models.ListingStatusActive,
			ExpiresAt:       req.ExpiresAt,
		}
		if err := tx.Create(listing).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}

		if err := s.statsService.recordListingCreated(tx, caller, req.Price); err != nil {
			return err
		}

		return s.notificationService.SendListed(tx, listing)
	})
	if err != nil {
		return nil, err
	}

	return listing, nil
}

// CancelListing cancels an active listing. Only the seller or the
// marketplace owner may cancel; asset ownership is untouched and the asset
// can be listed again afterwards.
func (s *ListingService) CancelListing(caller string, assetID uint64) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var listing *models.Listing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		listing, err = activeListing(tx, assetID)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if caller != listing.Seller && caller != cfg.Owner {
			return apperrors.Authorization("not_seller_or_owner",
				"caller %s may not cancel listing of asset %d", caller, assetID)
		}

		listing.Status = models.ListingStatusCancelled
		if err := tx.Save(listing).Error; err != nil {
			return fmt.Errorf("failed to cancel listing: %w", err)
		}

		return s.notificationService.SendListingCancelled(tx, listing, caller)
	})
	if err != nil {
		return nil, err
	}

	return listing, nil
}

// Purchase executes a fixed-price sale. The listing is flipped to sold
// before the asset transfer and payouts happen; if the transfer is refused
// the whole transaction rolls back and nothing is observable. Payouts to
// seller, royalty receiver and fee recipient are pushed and queued as
// pull-payments when the push fails, so an unresponsive recipient cannot
// unwind a valid sale.
func (s *ListingService) Purchase(caller string, req *PurchaseRequest) (*models.SaleRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindValidation, "bad_request", "validation failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var sale *models.SaleRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		listing, err := activeListing(tx, req.AssetID)
		if err != nil {
			return err
		}

		if listing.TimedOut(s.now()) {
			return apperrors.State("listing_expired", "listing of asset %d expired", req.AssetID)
		}
		if caller == listing.Seller {
			return apperrors.Validation("self_purchase", "seller cannot buy their own listing")
		}
		if req.TenderedAmount.LessThan(listing.Price) {
			return apperrors.Payment("insufficient_funds",
				"tendered %s below price %s", req.TenderedAmount, listing.Price)
		}

		split, err := SplitSalePrice(listing.Price, listing.PlatformFeeBps, listing.RoyaltyBps)
		if err != nil {
			return err
		}

		// Effects before interactions.
		now := s.now()
		listing.Status = models.ListingStatusSold
		listing.Buyer = caller
		listing.SoldAt = &now
		if err := tx.Save(listing).Error; err != nil {
			return fmt.Errorf("failed to mark listing sold: %w", err)
		}

		sale = &models.SaleRecord{
			AssetID:        listing.AssetID,
			Kind:           models.SaleKindListing,
			Seller:         listing.Seller,
			Buyer:          caller,
			Price:          listing.Price,
			PlatformFee:    split.PlatformFee,
			Royalty:        split.Royalty,
			SellerProceeds: split.SellerProceeds,
		}
		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}

		// Interactions. A refused transfer aborts and rolls back everything.
		if err := s.assets.Transfer(listing.Seller, caller, listing.AssetID); err != nil {
			return apperrors.Transfer("transfer_refused", err)
		}

		if err := s.distributeProceeds(tx, listing.AssetID, listing.Seller,
			listing.RoyaltyReceiver, listing.FeeRecipient, split); err != nil {
			return err
		}

		if excess := req.TenderedAmount.Sub(listing.Price); excess.IsPositive() {
			if err := s.payoutService.payOrQueue(tx, caller, excess,
				models.PayoutReasonOverpayment, listing.AssetID); err != nil {
				return err
			}
		}

		// Aggregates update only once transfer and payouts went through.
		if err := s.statsService.recordSale(tx, sale); err != nil {
			return err
		}

		return s.notificationService.SendSold(tx, sale)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"asset_id": sale.AssetID,
		"seller":   sale.Seller,
		"buyer":    sale.Buyer,
		"price":    sale.Price.String(),
	}).Info("Listing purchased")

	return sale, nil
}

// distributeProceeds pushes the three-way split, queueing each leg as a
// pull-payment when its push fails. Shared with auction settlement.
func (s *ListingService) distributeProceeds(tx *gorm.DB, assetID uint64,
	seller, royaltyReceiver, feeRecipient string, split FeeBreakdown) error {
	if err := s.payoutService.payOrQueue(tx, seller, split.SellerProceeds,
		models.PayoutReasonSaleProceeds, assetID); err != nil {
		return err
	}
	if err := s.payoutService.payOrQueue(tx, royaltyReceiver, split.Royalty,
		models.PayoutReasonRoyalty, assetID); err != nil {
		return err
	}
	return s.payoutService.payOrQueue(tx, feeRecipient, split.PlatformFee,
		models.PayoutReasonPlatformFee, assetID)
}

func activeListing(tx *gorm.DB, assetID uint64) (*models.Listing, error) {
	var listing models.Listing
	err := tx.Where("asset_id = ? AND status = ?", assetID, models.ListingStatusActive).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.State("no_active_listing", "asset %d has no active listing", assetID)
		}
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	return &listing, nil
}

// GetListing returns the most recent listing of an asset. A timed-out
// listing reads as expired even though its stored row is never mutated.
func (s *ListingService) GetListing(assetID uint64) (*models.Listing, error) {
	var listing models.Listing
	err := s.db.Where("asset_id = ?", assetID).
		Order("created_at DESC").
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.State("listing_not_found", "asset %d has never been listed", assetID)
		}
		return nil, fmt.Errorf("failed to load listing: %w", err)
	}
	listing.Status = listing.EffectiveStatus(s.now())
	return &listing, nil
}

// GetListings pages through listing history, newest first.
func (s *ListingService) GetListings(params ListingSearchParams) ([]models.Listing, int64, error) {
	query := s.db.Model(&models.Listing{})

	if params.Seller != "" {
		query = query.Where("seller = ?", params.Seller)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	var listings []models.Listing
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params.PaginationParams).
		Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}

	now := s.now()
	for i := range listings {
		listings[i].Status = listings[i].EffectiveStatus(now)
	}

	return listings, total, nil
}
