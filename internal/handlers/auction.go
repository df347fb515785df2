// internal/handlers/auction.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/AK93-git/Base-NFT-Market/internal/models"
	"github.com/AK93-git/Base-NFT-Market/internal/services"
	"github.com/AK93-git/Base-NFT-Market/internal/utils"
)

type AuctionHandler struct {
	auctionService *services.AuctionService
}

func NewAuctionHandler(auctionService *services.AuctionService) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
	}
}

// GET /auctions
func (h *AuctionHandler) GetAuctions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.AuctionSearchParams{
		PaginationParams: params,
	}

	if seller := c.Query("seller"); seller != "" {
		searchParams.Seller = seller
	}

	if status := c.Query("status"); status != "" {
		auctionStatus := models.AuctionStatus(status)
		searchParams.Status = &auctionStatus
	}

	auctions, total, err := h.auctionService.GetAuctions(searchParams)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(auctions, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /auctions/:asset_id
func (h *AuctionHandler) GetAuction(c *gin.Context) {
	assetID, err := parseAssetID(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	auction, err := h.auctionService.GetAuction(assetID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, auction)
}

// POST /auctions
func (h *AuctionHandler) CreateAuction(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	auction, err := h.auctionService.CreateAuction(caller, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, auction)
}

// POST /auctions/:asset_id/bids
func (h *AuctionHandler) PlaceBid(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, err := parseAssetID(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	var req services.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	req.AssetID = assetID

	auction, err := h.auctionService.PlaceBid(caller, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, auction)
}

// POST /auctions/:asset_id/finalize
func (h *AuctionHandler) FinalizeAuction(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, err := parseAssetID(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	auction, err := h.auctionService.FinalizeAuction(caller, assetID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, auction)
}

// DELETE /auctions/:asset_id
func (h *AuctionHandler) CancelAuction(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	assetID, err := parseAssetID(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	auction, err := h.auctionService.CancelAuction(caller, assetID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, auction)
}
