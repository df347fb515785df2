// internal/ledger/ledger.go

// Package ledger declares the external collaborators the marketplace engine
// depends on: the asset ownership ledger and the payment rail. The engine
// only ever queries ownership, requests transfers and pushes payments; it is
// never the source of truth for either.
package ledger

import (
	"github.com/shopspring/decimal"
)

// AssetLedger tracks which owner holds which asset and which spender is
// approved to move it.
type AssetLedger interface {
	OwnerOf(assetID uint64) (string, error)
	IsApprovedForTransfer(assetID uint64, spender string) (bool, error)
	Transfer(from, to string, assetID uint64) error
}

// PaymentProvider pushes funds to a recipient. A failed push is final from
// the engine's point of view; the engine converts it into a pull-payment
// obligation rather than retrying inline.
type PaymentProvider interface {
	Pay(recipient string, amount decimal.Decimal) error
}
