// internal/services/stats_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/AK93-git/Base-NFT-Market/internal/apperrors"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
	"github.com/AK93-git/Base-NFT-Market/internal/utils"
)

// StatsService maintains the aggregate counters alongside each committed
// sale and serves the read-only query surface. Everything here is a derived
// view; it is never consulted to decide ownership or payouts.
type StatsService struct {
	db    *gorm.DB
	cache *cache.Cache
}

const (
	statsCacheTTL    = 15 * time.Second
	trendingCacheTTL = 30 * time.Second
)

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		db:    db,
		cache: cache.New(statsCacheTTL, time.Minute),
	}
}

// MarketStatsView is the getMarketStats payload.
type MarketStatsView struct {
	TotalListings   uint64          `json:"total_listings"`
	TotalSales      uint64          `json:"total_sales"`
	TotalVolume     decimal.Decimal `json:"total_volume"`
	AvgListingPrice decimal.Decimal `json:"avg_listing_price"`
	TotalUsers      uint64          `json:"total_users"`
}

// RevenueStatsView is the getRevenueStats payload.
type RevenueStatsView struct {
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	PlatformFees        decimal.Decimal `json:"platform_fees"`
	Royalties           decimal.Decimal `json:"royalties"`
	SellerEarnings      decimal.Decimal `json:"seller_earnings"`
	AvgTransactionValue decimal.Decimal `json:"avg_transaction_value"`
}

// TrendingNFT is one entry of the trending top-K.
type TrendingNFT struct {
	AssetID    uint64          `json:"asset_id"`
	SalesCount uint64          `json:"sales_count"`
	LastSale   time.Time       `json:"last_sale"`
	LastPrice  decimal.Decimal `json:"last_price"`
	LastSeller string          `json:"last_seller"`
}

// --- transactional mutators, called by the managers inside their own
// committing transaction ---

func loadStats(tx *gorm.DB) (*models.MarketStats, error) {
	var stats models.MarketStats
	if err := tx.First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal("stats_missing", "market stats row not seeded")
		}
		return nil, fmt.Errorf("failed to load market stats: %w", err)
	}
	return &stats, nil
}

// ensureUser returns the activity record for an address, creating it (and
// bumping the global user count) on first contact.
func (s *StatsService) ensureUser(tx *gorm.DB, address string) (*models.UserRecord, error) {
	var user models.UserRecord
	err := tx.Where("address = ?", address).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}

	user = models.UserRecord{Address: address}
	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user record: %w", err)
	}

	stats, err := loadStats(tx)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers++
	if err := tx.Save(stats).Error; err != nil {
		return nil, fmt.Errorf("failed to update market stats: %w", err)
	}

	return &user, nil
}

func (s *StatsService) recordListingCreated(tx *gorm.DB, seller string, price decimal.Decimal) error {
	user, err := s.ensureUser(tx, seller)
	if err != nil {
		return err
	}
	user.TotalListings++
	if err := tx.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user record: %w", err)
	}

	stats, err := loadStats(tx)
	if err != nil {
		return err
	}
	stats.TotalListings++
	stats.ListingPriceSum = stats.ListingPriceSum.Add(price)
	if err := tx.Save(stats).Error; err != nil {
		return fmt.Errorf("failed to update market stats: %w", err)
	}

	s.invalidate()
	return nil
}

func (s *StatsService) recordSale(tx *gorm.DB, sale *models.SaleRecord) error {
	seller, err := s.ensureUser(tx, sale.Seller)
	if err != nil {
		return err
	}
	seller.TotalSales++
	if err := tx.Save(seller).Error; err != nil {
		return fmt.Errorf("failed to update seller record: %w", err)
	}

	buyer, err := s.ensureUser(tx, sale.Buyer)
	if err != nil {
		return err
	}
	buyer.TotalPurchases++
	if err := tx.Save(buyer).Error; err != nil {
		return fmt.Errorf("failed to update buyer record: %w", err)
	}

	stats, err := loadStats(tx)
	if err != nil {
		return err
	}
	stats.TotalSales++
	stats.TotalVolume = stats.TotalVolume.Add(sale.Price)
	stats.PlatformFeeTotal = stats.PlatformFeeTotal.Add(sale.PlatformFee)
	stats.RoyaltyTotal = stats.RoyaltyTotal.Add(sale.Royalty)
	stats.SellerEarningsTotal = stats.SellerEarningsTotal.Add(sale.SellerProceeds)
	if err := tx.Save(stats).Error; err != nil {
		return fmt.Errorf("failed to update market stats: %w", err)
	}

	s.invalidate()
	return nil
}

func (s *StatsService) invalidate() {
	s.cache.Flush()
}

// --- read-only query surface ---

func (s *StatsService) GetMarketStats() (*MarketStatsView, error) {
	if cached, ok := s.cache.Get("market_stats"); ok {
		view := cached.(MarketStatsView)
		return &view, nil
	}

	stats, err := loadStats(s.db)
	if err != nil {
		return nil, err
	}

	view := MarketStatsView{
		TotalListings:   stats.TotalListings,
		TotalSales:      stats.TotalSales,
		TotalVolume:     stats.TotalVolume,
		AvgListingPrice: stats.AvgListingPrice(),
		TotalUsers:      stats.TotalUsers,
	}
	s.cache.Set("market_stats", view, statsCacheTTL)
	return &view, nil
}

func (s *StatsService) GetRevenueStats() (*RevenueStatsView, error) {
	stats, err := loadStats(s.db)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if stats.TotalSales > 0 {
		avg = stats.TotalVolume.
			DivRound(decimal.NewFromInt(int64(stats.TotalSales)), models.AmountScale+1).
			RoundFloor(models.AmountScale)
	}

	return &RevenueStatsView{
		TotalRevenue:        stats.TotalVolume,
		PlatformFees:        stats.PlatformFeeTotal,
		Royalties:           stats.RoyaltyTotal,
		SellerEarnings:      stats.SellerEarningsTotal,
		AvgTransactionValue: avg,
	}, nil
}

// GetTrendingNFTs returns up to k assets ordered by sales count descending,
// ties broken by the most recent sale timestamp descending.
func (s *StatsService) GetTrendingNFTs(k int) ([]TrendingNFT, error) {
	if k <= 0 {
		return nil, apperrors.Validation("invalid_k", "trending bound must be positive, got %d", k)
	}

	cacheKey := fmt.Sprintf("trending:%d", k)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]TrendingNFT), nil
	}

	type trendingRow struct {
		AssetID    uint64
		SalesCount uint64
	}

	var rows []trendingRow
	err := s.db.Model(&models.SaleRecord{}).
		Select("asset_id, COUNT(*) AS sales_count").
		Group("asset_id").
		Order("sales_count DESC, MAX(created_at) DESC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query trending assets: %w", err)
	}

	trending := make([]TrendingNFT, 0, len(rows))
	for _, row := range rows {
		var last models.SaleRecord
		if err := s.db.Where("asset_id = ?", row.AssetID).
			Order("created_at DESC").
			First(&last).Error; err != nil {
			return nil, fmt.Errorf("failed to load last sale for asset %d: %w", row.AssetID, err)
		}

		trending = append(trending, TrendingNFT{
			AssetID:    row.AssetID,
			SalesCount: row.SalesCount,
			LastSale:   last.CreatedAt,
			LastPrice:  last.Price,
			LastSeller: last.Seller,
		})
	}

	s.cache.Set(cacheKey, trending, trendingCacheTTL)
	return trending, nil
}

// GetUserActivity returns the most active users, ordered by combined
// activity (sales + purchases + listings) descending.
func (s *StatsService) GetUserActivity(limit int) ([]models.UserRecord, error) {
	if limit <= 0 {
		return nil, apperrors.Validation("invalid_limit", "activity limit must be positive, got %d", limit)
	}

	var users []models.UserRecord
	err := s.db.
		Order("(total_sales + total_purchases + total_listings) DESC, user_index ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query user activity: %w", err)
	}
	return users, nil
}

// GetUser resolves a user by registration index.
func (s *StatsService) GetUser(index uint64) (*models.UserRecord, error) {
	var user models.UserRecord
	if err := s.db.Where("user_index = ?", index).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.State("user_not_found", "no user at index %d", index)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *StatsService) GetUserCount() (uint64, error) {
	stats, err := loadStats(s.db)
	if err != nil {
		return 0, err
	}
	return stats.TotalUsers, nil
}

// GetAllSales pages through the permanent sale history, newest first.
func (s *StatsService) GetAllSales(params utils.PaginationParams) ([]models.SaleRecord, int64, error) {
	query := s.db.Model(&models.SaleRecord{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	var sales []models.SaleRecord
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&sales).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sales: %w", err)
	}

	return sales, total, nil
}

// GetEvents pages through the notification feed, newest first.
func (s *StatsService) GetEvents(params utils.PaginationParams, eventType string) ([]models.MarketEvent, int64, error) {
	query := s.db.Model(&models.MarketEvent{})
	if eventType != "" {
		query = query.Where("type = ?", eventType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var events []models.MarketEvent
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch events: %w", err)
	}

	return events, total, nil
}
