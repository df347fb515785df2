// internal/models/event.go
package models

import (
	"github.com/shopspring/decimal"
)

// MarketEvent is the notification feed for external indexers and backup
// tooling. One row per committed transition, written inside the committing
// transaction so the feed never shows a transition that rolled back.
type MarketEvent struct {
	BaseModel
	Type         EventType        `json:"type" gorm:"type:varchar(30);not null;index"`
	AssetID      uint64           `json:"asset_id" gorm:"index"`
	Actor        string           `json:"actor" gorm:"size:64;index"`
	Counterparty string           `json:"counterparty,omitempty" gorm:"size:64"`
	Amount       *decimal.Decimal `json:"amount,omitempty" gorm:"type:decimal(38,18)"`
	Payload      JSONB            `json:"payload,omitempty" gorm:"type:jsonb"`
}

// AuditLog records every mutating API call for the compliance surface.
type AuditLog struct {
	BaseModel
	Caller       string `json:"caller" gorm:"size:64;index"`
	Action       string `json:"action" gorm:"size:255;not null"`
	ResourceType string `json:"resource_type" gorm:"size:50;index"`
	IPAddress    string `json:"ip_address" gorm:"size:45"`
	UserAgent    string `json:"user_agent" gorm:"size:255"`
	RequestBody  JSONB  `json:"request_body,omitempty" gorm:"type:jsonb"`
	StatusCode   int    `json:"status_code"`
}
