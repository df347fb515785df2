// internal/models/user.go
package models

import (
	"time"
)

// UserRecord tracks per-address activity counters. Counters only ever move
// up; the record is created lazily the first time an address lists, buys or
// sells. The integer primary key doubles as the stable registration index
// exposed through getUser(index)/getUserCount.
type UserRecord struct {
	Index          uint64    `json:"index" gorm:"column:user_index;primaryKey;autoIncrement"`
	Address        string    `json:"address" gorm:"size:64;not null;uniqueIndex"`
	TotalListings  uint64    `json:"total_listings" gorm:"not null;default:0"`
	TotalSales     uint64    `json:"total_sales" gorm:"not null;default:0"`
	TotalPurchases uint64    `json:"total_purchases" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
