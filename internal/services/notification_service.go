// internal/services/notification_service.go
package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AK93-git/Base-NFT-Market/internal/models"
)

// NotificationService publishes the event feed external indexers and backup
// scripts consume. Every committed transition gets exactly one MarketEvent
// row, written through the same transaction as the transition itself, plus a
// structured log line once the write has been accepted.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (s *NotificationService) emit(tx *gorm.DB, event *models.MarketEvent) error {
	if err := tx.Create(event).Error; err != nil {
		return fmt.Errorf("failed to record %s event: %w", event.Type, err)
	}

	fields := logrus.Fields{
		"event":    string(event.Type),
		"asset_id": event.AssetID,
		"actor":    event.Actor,
	}
	if event.Counterparty != "" {
		fields["counterparty"] = event.Counterparty
	}
	if event.Amount != nil {
		fields["amount"] = event.Amount.String()
	}
	logrus.WithFields(fields).Info("Market event")
	return nil
}

func (s *NotificationService) SendListed(tx *gorm.DB, listing *models.Listing) error {
	price := listing.Price
	return s.emit(tx, &models.MarketEvent{
		Type:    models.EventListed,
		AssetID: listing.AssetID,
		Actor:   listing.Seller,
		Amount:  &price,
		Payload: models.JSONB{
			"royalty_receiver": listing.RoyaltyReceiver,
			"royalty_bps":      listing.RoyaltyBps,
			"platform_fee_bps": listing.PlatformFeeBps,
		},
	})
}

func (s *NotificationService) SendListingCancelled(tx *gorm.DB, listing *models.Listing, caller string) error {
	return s.emit(tx, &models.MarketEvent{
		Type:    models.EventListingCancelled,
		AssetID: listing.AssetID,
		Actor:   caller,
		Payload: models.JSONB{"seller": listing.Seller},
	})
}

func (s *NotificationService) SendSold(tx *gorm.DB, sale *models.SaleRecord) error {
	price := sale.Price
	return s.emit(tx, &models.MarketEvent{
		Type:         models.EventSold,
		AssetID:      sale.AssetID,
		Actor:        sale.Buyer,
		Counterparty: sale.Seller,
		Amount:       &price,
		Payload: models.JSONB{
			"platform_fee":    sale.PlatformFee.String(),
			"royalty":         sale.Royalty.String(),
			"seller_proceeds": sale.SellerProceeds.String(),
		},
	})
}

func (s *NotificationService) SendAuctionCreated(tx *gorm.DB, auction *models.Auction) error {
	reserve := auction.ReservePrice
	return s.emit(tx, &models.MarketEvent{
		Type:    models.EventAuctionCreated,
		AssetID: auction.AssetID,
		Actor:   auction.Seller,
		Amount:  &reserve,
		Payload: models.JSONB{
			"end_time":          auction.EndTime,
			"royalty_bps":       auction.RoyaltyBps,
			"platform_fee_bps":  auction.PlatformFeeBps,
			"min_increment_bps": auction.MinIncrementBps,
		},
	})
}

func (s *NotificationService) SendBidPlaced(tx *gorm.DB, auction *models.Auction, bidder string, amount decimal.Decimal, displaced string) error {
	return s.emit(tx, &models.MarketEvent{
		Type:         models.EventBidPlaced,
		AssetID:      auction.AssetID,
		Actor:        bidder,
		Counterparty: displaced,
		Amount:       &amount,
	})
}

func (s *NotificationService) SendAuctionSettled(tx *gorm.DB, auction *models.Auction, sale *models.SaleRecord) error {
	price := sale.Price
	return s.emit(tx, &models.MarketEvent{
		Type:         models.EventAuctionSettled,
		AssetID:      auction.AssetID,
		Actor:        sale.Buyer,
		Counterparty: sale.Seller,
		Amount:       &price,
		Payload: models.JSONB{
			"platform_fee":    sale.PlatformFee.String(),
			"royalty":         sale.Royalty.String(),
			"seller_proceeds": sale.SellerProceeds.String(),
			"bid_count":       auction.BidCount,
		},
	})
}

func (s *NotificationService) SendAuctionCancelled(tx *gorm.DB, auction *models.Auction, caller string) error {
	return s.emit(tx, &models.MarketEvent{
		Type:    models.EventAuctionCancelled,
		AssetID: auction.AssetID,
		Actor:   caller,
		Payload: models.JSONB{"seller": auction.Seller},
	})
}

func (s *NotificationService) SendPayoutQueued(tx *gorm.DB, payout *models.PendingPayout) error {
	amount := payout.Amount
	return s.emit(tx, &models.MarketEvent{
		Type:    models.EventPayoutQueued,
		AssetID: payout.AssetID,
		Actor:   payout.Recipient,
		Amount:  &amount,
		Payload: models.JSONB{"reason": string(payout.Reason)},
	})
}

func (s *NotificationService) SendPayoutClaimed(tx *gorm.DB, recipient string, amount decimal.Decimal) error {
	return s.emit(tx, &models.MarketEvent{
		Type:   models.EventPayoutClaimed,
		Actor:  recipient,
		Amount: &amount,
	})
}

func (s *NotificationService) SendConfigUpdated(tx *gorm.DB, owner, field string, oldValue, newValue interface{}) error {
	return s.emit(tx, &models.MarketEvent{
		Type:  models.EventConfigUpdated,
		Actor: owner,
		Payload: models.JSONB{
			"field": field,
			"old":   fmt.Sprintf("%v", oldValue),
			"new":   fmt.Sprintf("%v", newValue),
		},
	})
}

func (s *NotificationService) SendOwnershipTransferred(tx *gorm.DB, oldOwner, newOwner string) error {
	return s.emit(tx, &models.MarketEvent{
		Type:         models.EventOwnershipTransferred,
		Actor:        oldOwner,
		Counterparty: newOwner,
	})
}
