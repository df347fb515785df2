// internal/models/auction.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Auction is a timed, bid-based offer to sell one asset. Like Listing, the
// fee and royalty terms are captured at creation time.
type Auction struct {
	BaseModel
	AssetID         uint64           `json:"asset_id" gorm:"not null;index"`
	Seller          string           `json:"seller" gorm:"size:64;not null;index"`
	ReservePrice    decimal.Decimal  `json:"reserve_price" gorm:"type:decimal(38,18);not null"`
	CurrentBid      *decimal.Decimal `json:"current_bid,omitempty" gorm:"type:decimal(38,18)"`
	CurrentBidder   string           `json:"current_bidder,omitempty" gorm:"size:64"`
	BidCount        uint64           `json:"bid_count" gorm:"not null;default:0"`
	RoyaltyReceiver string           `json:"royalty_receiver" gorm:"size:64"`
	RoyaltyBps      uint32           `json:"royalty_bps" gorm:"not null"`
	PlatformFeeBps  uint32           `json:"platform_fee_bps" gorm:"not null"`
	FeeRecipient    string           `json:"fee_recipient" gorm:"size:64;not null"`
	MinIncrementBps uint32           `json:"min_increment_bps" gorm:"not null"`
	EndTime         time.Time        `json:"end_time" gorm:"not null"`
	Status          AuctionStatus    `json:"status" gorm:"type:varchar(20);not null;index"`
	SettledAt       *time.Time       `json:"settled_at,omitempty"`

	Bids []Bid `json:"bids,omitempty" gorm:"foreignKey:AuctionID"`
}

// Ended reports whether the bidding deadline has passed. An ended auction
// stays AuctionStatusActive until someone calls finalize; it is merely
// unbiddable in the meantime.
func (a *Auction) Ended(now time.Time) bool {
	return !now.Before(a.EndTime)
}

// MinNextBid is the lowest acceptable next bid: the reserve price while no
// bid exists, otherwise the current bid plus the minimum increment (floored
// bps of the current bid).
func (a *Auction) MinNextBid() decimal.Decimal {
	if a.CurrentBid == nil {
		return a.ReservePrice
	}
	increment := a.CurrentBid.
		Mul(decimal.New(int64(a.MinIncrementBps), -4)).
		RoundFloor(AmountScale)
	return a.CurrentBid.Add(increment)
}

// Bid is an audit record of a single accepted bid. Displaced bids live on as
// pull-payment refunds, never as mutations of these rows.
type Bid struct {
	BaseModel
	AuctionID uuid.UUID       `json:"auction_id" gorm:"type:uuid;not null;index"`
	AssetID   uint64          `json:"asset_id" gorm:"not null;index"`
	Bidder    string          `json:"bidder" gorm:"size:64;not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(38,18);not null"`
}
