// internal/handlers/listing.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AK93-git/Base-NFT-Market/internal/models"
	"github.com/AK93-git/Base-NFT-Market/internal/services"
	"github.com/AK93-git/Base-NFT-Market/internal/utils"
)

type ListingHandler struct {
	listingService *services.ListingService
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// GET /listings
func (h *ListingHandler) GetListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.ListingSearchParams{
		PaginationParams: params,
	}

	if seller := c.Query("seller"); seller != "" {
		searchParams.Seller = seller
	}

	if status := c.Query("status"); status != "" {
		listingStatus := models.ListingStatus(status)
		searchParams.Status = &listingStatus
	}

	listings, total, err := h.listingService.GetListings(searchParams)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(listings, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /listings/:asset_id
func (h *ListingHandler) GetListing(c *gin.Context) {
	assetID, err := parseAssetID(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid asset ID", nil)
		return
	}

	listing, err := h.listingService.GetListing(assetID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	caller, exists := utils.GetCallerAddress(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	listing, err := h.listingService.CreateListing(caller, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, listing)
}

// DELETE /listings/:asset_id
func (h *ListingHandler) CancelListing(c *gin.Context) {
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

	listing, err := h.listingService.CancelListing(caller, assetID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, listing)
}

// POST /listings/:asset_id/purchase
func (h *ListingHandler) Purchase(c *gin.Context) {
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

	var req services.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	req.AssetID = assetID

	sale, err := h.listingService.Purchase(caller, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, sale)
}

func parseAssetID(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("asset_id"), 10, 64)
}
