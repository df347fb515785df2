// internal/services/fee_calculator.go
package services

import (
	"github.com/shopspring/decimal"

	"github.com/AK93-git/Base-NFT-Market/internal/apperrors"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
)

// FeeBreakdown is the three-way split of a sale price. The split always sums
// back to the price exactly: both cuts are floored at wei resolution and any
// rounding remainder stays with the seller.
type FeeBreakdown struct {
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	Royalty        decimal.Decimal `json:"royalty"`
	SellerProceeds decimal.Decimal `json:"seller_proceeds"`
}

// SplitSalePrice computes the platform fee and royalty cuts of price.
//
//	fee     = floor(price * platformFeeBps / 10000)
//	royalty = floor(price * royaltyBps    / 10000)
//	seller  = price - fee - royalty
//
// Config invariants should make fee+royalty exceeding the price impossible;
// it is still re-verified here and reported as a fatal internal error, never
// clamped.
func SplitSalePrice(price decimal.Decimal, platformFeeBps, royaltyBps uint32) (FeeBreakdown, error) {
	if price.IsNegative() {
		return FeeBreakdown{}, apperrors.Validation("price_negative", "sale price %s is negative", price)
	}

	// Multiplying by bps*1e-4 keeps the product exact; Div would round at
	// shopspring's division precision before the floor is taken.
	fee := price.
		Mul(decimal.New(int64(platformFeeBps), -4)).
		RoundFloor(models.AmountScale)
	royalty := price.
		Mul(decimal.New(int64(royaltyBps), -4)).
		RoundFloor(models.AmountScale)

	if fee.Add(royalty).GreaterThan(price) {
		return FeeBreakdown{}, apperrors.Internal("fee_exceeds_price",
			"fee %s + royalty %s exceeds price %s (fee=%dbps royalty=%dbps)",
			fee, royalty, price, platformFeeBps, royaltyBps)
	}

	return FeeBreakdown{
		PlatformFee:    fee,
		Royalty:        royalty,
		SellerProceeds: price.Sub(fee).Sub(royalty),
	}, nil
}
