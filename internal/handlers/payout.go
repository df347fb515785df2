// internal/handlers/payout.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AK93-git/Base-NFT-Market/internal/services"
	"github.com/AK93-git/Base-NFT-Market/internal/utils"
)

type PayoutHandler struct {
	payoutService *services.PayoutService
}

func NewPayoutHandler(payoutService *services.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
	}
}

// GET /payouts/pending
func (h *PayoutHandler) GetPendingBalance(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	balance, err := h.payoutService.PendingBalance(caller)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"recipient": caller,
		"pending":   balance,
	})
}

// POST /payouts/claim
func (h *PayoutHandler) ClaimPending(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	claimed, err := h.payoutService.ClaimPending(caller)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"recipient": caller,
		"claimed":   claimed,
	})
}
