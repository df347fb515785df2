// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/AK93-git/Base-NFT-Market/internal/services"
	"github.com/AK93-git/Base-NFT-Market/internal/utils"
)

// AdminHandler exposes the marketplace configuration surface. Every change
// is owner-gated inside the config service against the live owner record,
// not the token.
type AdminHandler struct {
	configService *services.ConfigService
}

func NewAdminHandler(configService *services.ConfigService) *AdminHandler {
	return &AdminHandler{
		configService: configService,
	}
}

type setBpsRequest struct {
	Bps uint32 `json:"bps" validate:"max=10000"`
}

type setPriceRequest struct {
	Price decimal.Decimal `json:"price" validate:"required"`
}

type setAddressRequest struct {
	Address string `json:"address" validate:"required"`
}

// GET /admin/config
func (h *AdminHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configService.Get()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, cfg)
}

// PUT /admin/config/platform-fee
func (h *AdminHandler) SetPlatformFee(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req setBpsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.configService.SetPlatformFee(caller, req.Bps); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"platform_fee_bps": req.Bps})
}

// PUT /admin/config/min-listing-price
func (h *AdminHandler) SetMinListingPrice(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req setPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.configService.SetMinListingPrice(caller, req.Price); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"min_listing_price": req.Price})
}

// PUT /admin/config/max-royalty
func (h *AdminHandler) SetMaxRoyalty(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req setBpsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.configService.SetMaxRoyalty(caller, req.Bps); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"max_royalty_bps": req.Bps})
}

// PUT /admin/config/min-bid-increment
func (h *AdminHandler) SetMinBidIncrement(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req setBpsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.configService.SetMinBidIncrement(caller, req.Bps); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"min_bid_increment_bps": req.Bps})
}

// PUT /admin/config/fee-recipient
func (h *AdminHandler) SetFeeRecipient(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req setAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.configService.SetFeeRecipient(caller, req.Address); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"fee_recipient": req.Address})
}

// PUT /admin/config/owner
func (h *AdminHandler) TransferOwnership(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req setAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.configService.TransferOwnership(caller, req.Address); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"owner": req.Address})
}
