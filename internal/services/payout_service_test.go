// internal/services/payout_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/AK93-git/Base-NFT-Market/internal/apperrors"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
)

type PayoutServiceSuite struct {
	suite.Suite
	h *testHarness
}

func (s *PayoutServiceSuite) SetupTest() {
	s.h = newTestHarness(s.T())
}

// queueFor records a pending payout directly, the way a failed push would.
func (s *PayoutServiceSuite) queueFor(recipient, amount string) {
	err := s.h.db.Transaction(func(tx *gorm.DB) error {
		return s.h.payouts.queue(tx, recipient, d(amount), models.PayoutReasonSaleProceeds, 1)
	})
	s.Require().NoError(err)
}

func (s *PayoutServiceSuite) TestClaimNothingPending() {
	_, err := s.h.payouts.ClaimPending(addrSeller)
	s.Require().Error(err)
	s.Equal(apperrors.KindState, apperrors.KindOf(err))
	s.Equal("nothing_pending", apperrors.CodeOf(err))
}

func (s *PayoutServiceSuite) TestClaimPaysAndFlips() {
	s.queueFor(addrSeller, "0.5")
	s.queueFor(addrSeller, "0.25")

	pending, err := s.h.payouts.PendingBalance(addrSeller)
	s.Require().NoError(err)
	s.True(pending.Equal(d("0.75")))

	claimed, err := s.h.payouts.ClaimPending(addrSeller)
	s.Require().NoError(err)
	s.True(claimed.Equal(d("0.75")))
	s.True(s.h.payments.BalanceOf(addrSeller).Equal(d("0.75")))

	// Everything flipped to claimed; a second claim finds nothing.
	pending, err = s.h.payouts.PendingBalance(addrSeller)
	s.Require().NoError(err)
	s.True(pending.IsZero())

	_, err = s.h.payouts.ClaimPending(addrSeller)
	s.Require().Error(err)
	s.Equal("nothing_pending", apperrors.CodeOf(err))

	s.EqualValues(1, s.h.eventCount(s.T(), models.EventPayoutClaimed))
}

func (s *PayoutServiceSuite) TestClaimOnlyTouchesCaller() {
	s.queueFor(addrSeller, "0.5")
	s.queueFor(addrBuyer, "0.3")

	_, err := s.h.payouts.ClaimPending(addrSeller)
	s.Require().NoError(err)

	pending, err := s.h.payouts.PendingBalance(addrBuyer)
	s.Require().NoError(err)
	s.True(pending.Equal(d("0.3")))
}

func (s *PayoutServiceSuite) TestClaimFailureRollsBack() {
	s.queueFor(addrSeller, "0.5")
	s.h.payments.RejectRecipient(addrSeller, true)

	_, err := s.h.payouts.ClaimPending(addrSeller)
	s.Require().Error(err)
	s.Equal(apperrors.KindPayment, apperrors.KindOf(err))

	// The rows are still pending and claimable later.
	pending, err := s.h.payouts.PendingBalance(addrSeller)
	s.Require().NoError(err)
	s.True(pending.Equal(d("0.5")))

	s.h.payments.RejectRecipient(addrSeller, false)
	claimed, err := s.h.payouts.ClaimPending(addrSeller)
	s.Require().NoError(err)
	s.True(claimed.Equal(d("0.5")))
}

func TestPayoutServiceSuite(t *testing.T) {
	suite.Run(t, new(PayoutServiceSuite))
}
