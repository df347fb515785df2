// internal/models/market.go
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AK93-git/Base-NFT-Market/internal/apperrors"
)

// MarketConfig is the owner-controlled parameter set. A single row holds the
// live values; operations read it once at the start and capture the terms
// they need onto the records they create.
type MarketConfig struct {
	ID                 uint            `json:"-" gorm:"primaryKey"`
	PlatformFeeBps     uint32          `json:"platform_fee_bps" gorm:"not null"`
	MinListingPrice    decimal.Decimal `json:"min_listing_price" gorm:"type:decimal(38,18);not null"`
	MaxRoyaltyBps      uint32          `json:"max_royalty_bps" gorm:"not null"`
	MinBidIncrementBps uint32          `json:"min_bid_increment_bps" gorm:"not null"`
	FeeRecipient       string          `json:"fee_recipient" gorm:"size:64;not null"`
	Owner              string          `json:"owner" gorm:"size:64;not null"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Validate enforces the construction invariants. A config that fails here is
// rejected outright; the previous configuration stays in force.
func (c *MarketConfig) Validate() error {
	if c.PlatformFeeBps > BpsDenominator {
		return apperrors.Validation("fee_out_of_range",
			"platform fee %d bps exceeds %d", c.PlatformFeeBps, BpsDenominator)
	}
	if c.MaxRoyaltyBps > BpsDenominator {
		return apperrors.Validation("royalty_out_of_range",
			"max royalty %d bps exceeds %d", c.MaxRoyaltyBps, BpsDenominator)
	}
	if c.PlatformFeeBps+c.MaxRoyaltyBps > BpsDenominator {
		return apperrors.Validation("fee_royalty_sum",
			"platform fee %d bps + max royalty %d bps exceeds %d",
			c.PlatformFeeBps, c.MaxRoyaltyBps, BpsDenominator)
	}
	if c.MinBidIncrementBps == 0 || c.MinBidIncrementBps > BpsDenominator {
		return apperrors.Validation("increment_out_of_range",
			"min bid increment %d bps outside (0, %d]", c.MinBidIncrementBps, BpsDenominator)
	}
	if c.MinListingPrice.IsNegative() {
		return apperrors.Validation("min_price_negative", "minimum listing price is negative")
	}
	if c.FeeRecipient == "" {
		return apperrors.Validation("fee_recipient_empty", "fee recipient is required")
	}
	if c.Owner == "" {
		return apperrors.Validation("owner_empty", "owner is required")
	}
	return nil
}

func (c *MarketConfig) String() string {
	return fmt.Sprintf("fee=%dbps minPrice=%s maxRoyalty=%dbps recipient=%s owner=%s",
		c.PlatformFeeBps, c.MinListingPrice, c.MaxRoyaltyBps, c.FeeRecipient, c.Owner)
}

// MarketStats is the incrementally maintained aggregate view. It is derived
// state only; ownership and payments are never reconstructed from it.
type MarketStats struct {
	ID                  uint            `json:"-" gorm:"primaryKey"`
	TotalListings       uint64          `json:"total_listings" gorm:"not null;default:0"`
	TotalSales          uint64          `json:"total_sales" gorm:"not null;default:0"`
	TotalVolume         decimal.Decimal `json:"total_volume" gorm:"type:decimal(38,18);not null"`
	ListingPriceSum     decimal.Decimal `json:"-" gorm:"type:decimal(38,18);not null"`
	PlatformFeeTotal    decimal.Decimal `json:"platform_fee_total" gorm:"type:decimal(38,18);not null"`
	RoyaltyTotal        decimal.Decimal `json:"royalty_total" gorm:"type:decimal(38,18);not null"`
	SellerEarningsTotal decimal.Decimal `json:"seller_earnings_total" gorm:"type:decimal(38,18);not null"`
	TotalUsers          uint64          `json:"total_users" gorm:"not null;default:0"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// AvgListingPrice derives the average price across all listings ever
// created. Zero when nothing has been listed.
func (s *MarketStats) AvgListingPrice() decimal.Decimal {
	if s.TotalListings == 0 {
		return decimal.Zero
	}
	return s.ListingPriceSum.
		DivRound(decimal.NewFromInt(int64(s.TotalListings)), AmountScale+1).
		RoundFloor(AmountScale)
}
