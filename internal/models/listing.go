// internal/models/listing.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a fixed-price offer to sell one asset. Fee and royalty terms
// are captured from the marketplace configuration at creation time and are
// never re-read from live config; later admin changes do not affect it.
type Listing struct {
	BaseModel
	AssetID         uint64          `json:"asset_id" gorm:"not null;index"`
	Seller          string          `json:"seller" gorm:"size:64;not null;index"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(38,18);not null"`
	RoyaltyReceiver string          `json:"royalty_receiver" gorm:"size:64"`
	RoyaltyBps      uint32          `json:"royalty_bps" gorm:"not null"`
	PlatformFeeBps  uint32          `json:"platform_fee_bps" gorm:"not null"`
	FeeRecipient    string          `json:"fee_recipient" gorm:"size:64;not null"`
	Status          ListingStatus   `json:"status" gorm:"type:varchar(20);not null;index"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	Buyer           string          `json:"buyer,omitempty" gorm:"size:64"`
	SoldAt          *time.Time      `json:"sold_at,omitempty"`
}

// TimedOut reports whether an optional expiry deadline has passed. Expiry is
// a deadline checked on call, not a timer; the row stays ListingStatusActive
// until an operation observes the deadline.
func (l *Listing) TimedOut(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

// EffectiveStatus folds deadline expiry into the stored status for the read
// surface. A timed-out listing reads as expired even though no operation has
// touched the row; purchase attempts against it fail without mutating it.
func (l *Listing) EffectiveStatus(now time.Time) ListingStatus {
	if l.Status == ListingStatusActive && l.TimedOut(now) {
		return ListingStatusExpired
	}
	return l.Status
}
