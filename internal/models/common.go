// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return nil
	}
}

// Enums
type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusCancelled ListingStatus = "cancelled"
	ListingStatusExpired   ListingStatus = "expired"
)

type AuctionStatus string

const (
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusSettled   AuctionStatus = "settled"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

type SaleKind string

const (
	SaleKindListing SaleKind = "listing"
	SaleKindAuction SaleKind = "auction"
)

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusClaimed PayoutStatus = "claimed"
)

type PayoutReason string

const (
	PayoutReasonSaleProceeds PayoutReason = "sale_proceeds"
	PayoutReasonRoyalty      PayoutReason = "royalty"
	PayoutReasonPlatformFee  PayoutReason = "platform_fee"
	PayoutReasonBidRefund    PayoutReason = "bid_refund"
	PayoutReasonOverpayment  PayoutReason = "overpayment"
)

type EventType string

const (
	EventListed               EventType = "Listed"
	EventListingCancelled     EventType = "Cancelled"
	EventSold                 EventType = "Sold"
	EventAuctionCreated       EventType = "AuctionCreated"
	EventBidPlaced            EventType = "BidPlaced"
	EventAuctionSettled       EventType = "AuctionSettled"
	EventAuctionCancelled     EventType = "AuctionCancelled"
	EventPayoutQueued         EventType = "PayoutQueued"
	EventPayoutClaimed        EventType = "PayoutClaimed"
	EventConfigUpdated        EventType = "ConfigUpdated"
	EventOwnershipTransferred EventType = "OwnershipTransferred"
)

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

// AmountScale is the fractional resolution of monetary amounts (wei, 1e-18).
// All bps math floors at this scale so that splits sum exactly.
const AmountScale = 18
