// internal/models/sale.go
package models

import (
	"github.com/shopspring/decimal"
)

// SaleRecord is the permanent history of one completed sale, written in the
// same transaction as the terminal status transition. Backup and analytics
// tooling reads these rows; the engine never mutates them afterwards.
type SaleRecord struct {
	BaseModel
	AssetID        uint64          `json:"asset_id" gorm:"not null;index"`
	Kind           SaleKind        `json:"kind" gorm:"type:varchar(20);not null"`
	Seller         string          `json:"seller" gorm:"size:64;not null;index"`
	Buyer          string          `json:"buyer" gorm:"size:64;not null;index"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(38,18);not null"`
	PlatformFee    decimal.Decimal `json:"platform_fee" gorm:"type:decimal(38,18);not null"`
	Royalty        decimal.Decimal `json:"royalty" gorm:"type:decimal(38,18);not null"`
	SellerProceeds decimal.Decimal `json:"seller_proceeds" gorm:"type:decimal(38,18);not null"`
}
