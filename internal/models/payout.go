// internal/models/payout.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingPayout is a pull-payment obligation: funds the engine owes an
// address that could not (or must not) be pushed synchronously. Displaced
// auction bids always land here; sale payouts land here only when the push
// to the recipient fails. The recipient claims via claimPending.
type PendingPayout struct {
	BaseModel
	Recipient string          `json:"recipient" gorm:"size:64;not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(38,18);not null"`
	Reason    PayoutReason    `json:"reason" gorm:"type:varchar(20);not null"`
	AssetID   uint64          `json:"asset_id" gorm:"index"`
	Status    PayoutStatus    `json:"status" gorm:"type:varchar(20);not null;index"`
	ClaimedAt *time.Time      `json:"claimed_at,omitempty"`
}
