// internal/services/payout_service.go
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AK93-git/Base-NFT-Market/internal/apperrors"
	"github.com/AK93-git/Base-NFT-Market/internal/ledger"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
)

// PayoutService owns the pull-payment ledger. Sale payouts are pushed first
// and queued here only when the push fails; displaced auction bids are
// always queued, never pushed, so an unresponsive bidder can never block a
// later valid bid.
type PayoutService struct {
	db                  *gorm.DB
	mu                  *sync.Mutex
	payments            ledger.PaymentProvider
	notificationService *NotificationService
	now                 func() time.Time
}

func NewPayoutService(db *gorm.DB, mu *sync.Mutex, payments ledger.PaymentProvider, notificationService *NotificationService) *PayoutService {
	return &PayoutService{
		db:                  db,
		mu:                  mu,
		payments:            payments,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// queue records a pull-payment obligation inside the caller's transaction.
func (s *PayoutService) queue(tx *gorm.DB, recipient string, amount decimal.Decimal, reason models.PayoutReason, assetID uint64) error {
	if !amount.IsPositive() {
		return nil
	}

	payout := &models.PendingPayout{
		Recipient: recipient,
		Amount:    amount,
		Reason:    reason,
		AssetID:   assetID,
		Status:    models.PayoutStatusPending,
	}
	if err := tx.Create(payout).Error; err != nil {
		return fmt.Errorf("failed to queue payout: %w", err)
	}

	return s.notificationService.SendPayoutQueued(tx, payout)
}

// payOrQueue pushes a payout to a recipient who is not the transaction
// initiator. A failed push is converted into a queued obligation instead of
// aborting the surrounding operation.
func (s *PayoutService) payOrQueue(tx *gorm.DB, recipient string, amount decimal.Decimal, reason models.PayoutReason, assetID uint64) error {
	if !amount.IsPositive() {
		return nil
	}

	if err := s.payments.Pay(recipient, amount); err != nil {
		logrus.WithFields(logrus.Fields{
			"recipient": recipient,
			"amount":    amount.String(),
			"reason":    string(reason),
		}).WithError(err).Warn("Payout push failed, queueing for claim")
		return s.queue(tx, recipient, amount, reason, assetID)
	}

	return nil
}

// ClaimPending pays out everything currently owed to the caller and returns
// the claimed amount. The rows are flipped to claimed before the payment
// call; a failed payment rolls the flip back and is reported to the claimant
// only, leaving every other user's state untouched.
func (s *PayoutService) ClaimPending(caller string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var payouts []models.PendingPayout
		if err := tx.Where("recipient = ? AND status = ?", caller, models.PayoutStatusPending).
			Find(&payouts).Error; err != nil {
			return fmt.Errorf("failed to load pending payouts: %w", err)
		}

		if len(payouts) == 0 {
			return apperrors.State("nothing_pending", "no pending payouts for %s", caller)
		}

		claimedAt := s.now()
		for i := range payouts {
			total = total.Add(payouts[i].Amount)
			payouts[i].Status = models.PayoutStatusClaimed
			payouts[i].ClaimedAt = &claimedAt
			if err := tx.Save(&payouts[i]).Error; err != nil {
				return fmt.Errorf("failed to mark payout claimed: %w", err)
			}
		}

		if err := s.payments.Pay(caller, total); err != nil {
			return apperrors.Wrap(err, apperrors.KindPayment, "claim_failed", "payout to claimant failed")
		}

		return s.notificationService.SendPayoutClaimed(tx, caller, total)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

// PendingBalance returns the sum the recipient could claim right now.
func (s *PayoutService) PendingBalance(recipient string) (decimal.Decimal, error) {
	var payouts []models.PendingPayout
	if err := s.db.Where("recipient = ? AND status = ?", recipient, models.PayoutStatusPending).
		Find(&payouts).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to load pending payouts: %w", err)
	}

	total := decimal.Zero
	for i := range payouts {
		total = total.Add(payouts[i].Amount)
	}
	return total, nil
}
