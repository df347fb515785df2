// internal/handlers/market.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AK93-git/Base-NFT-Market/internal/services"
	"github.com/AK93-git/Base-NFT-Market/internal/utils"
)

type MarketHandler struct {
	statsService *services.StatsService
}

func NewMarketHandler(statsService *services.StatsService) *MarketHandler {
	return &MarketHandler{
		statsService: statsService,
	}
}

// GET /stats
func (h *MarketHandler) GetMarketStats(c *gin.Context) {
	stats, err := h.statsService.GetMarketStats()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /stats/revenue
func (h *MarketHandler) GetRevenueStats(c *gin.Context) {
	stats, err := h.statsService.GetRevenueStats()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /stats/trending
func (h *MarketHandler) GetTrendingNFTs(c *gin.Context) {
	k, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	trending, err := h.statsService.GetTrendingNFTs(k)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, trending)
}

// GET /users
func (h *MarketHandler) GetUserActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, err := h.statsService.GetUserActivity(limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, users)
}

// GET /users/:index
func (h *MarketHandler) GetUser(c *gin.Context) {
	index, err := strconv.ParseUint(c.Param("index"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user index", nil)
		return
	}

	user, err := h.statsService.GetUser(index)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// GET /users/count
func (h *MarketHandler) GetUserCount(c *gin.Context) {
	count, err := h.statsService.GetUserCount()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"total_users": count})
}

// GET /sales
func (h *MarketHandler) GetSales(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	sales, total, err := h.statsService.GetAllSales(params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(sales, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /events
func (h *MarketHandler) GetEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	eventType := c.Query("type")

	events, total, err := h.statsService.GetEvents(params, eventType)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(events, total, params)
	utils.PaginatedResponse(c, result)
}
