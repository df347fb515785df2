// internal/services/config_service.go
package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/AK93-git/Base-NFT-Market/internal/apperrors"
	"github.com/AK93-git/Base-NFT-Market/internal/models"
)

// ConfigService is the configuration authority: owner-only setters over the
// live parameter row. Setters validate the would-be configuration as a whole
// before committing, so a rejected change leaves the previous configuration
// fully intact. Changes only affect listings and auctions created afterwards;
// existing records keep the terms captured at their creation.
type ConfigService struct {
	db                  *gorm.DB
	mu                  *sync.Mutex
	notificationService *NotificationService
}

func NewConfigService(db *gorm.DB, mu *sync.Mutex, notificationService *NotificationService) *ConfigService {
	return &ConfigService{
		db:                  db,
		mu:                  mu,
		notificationService: notificationService,
	}
}

// Get returns the current configuration.
func (s *ConfigService) Get() (*models.MarketConfig, error) {
	return loadConfig(s.db)
}

func loadConfig(tx *gorm.DB) (*models.MarketConfig, error) {
	var cfg models.MarketConfig
	if err := tx.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal("config_missing", "market config row not seeded")
		}
		return nil, fmt.Errorf("failed to load market config: %w", err)
	}
	return &cfg, nil
}

// update runs one owner-authorized mutation of the config row.
func (s *ConfigService) update(caller, field string, mutate func(cfg *models.MarketConfig) (old interface{}, new interface{})) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}

		if caller != cfg.Owner {
			return apperrors.Authorization("not_owner", "caller %s is not the marketplace owner", caller)
		}

		oldValue, newValue := mutate(cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := tx.Save(cfg).Error; err != nil {
			return fmt.Errorf("failed to persist market config: %w", err)
		}

		return s.notificationService.SendConfigUpdated(tx, caller, field, oldValue, newValue)
	})
}

func (s *ConfigService) SetPlatformFee(caller string, bps uint32) error {
	return s.update(caller, "platform_fee_bps", func(cfg *models.MarketConfig) (interface{}, interface{}) {
		old := cfg.PlatformFeeBps
		cfg.PlatformFeeBps = bps
		return old, bps
	})
}

func (s *ConfigService) SetMinListingPrice(caller string, price decimal.Decimal) error {
	return s.update(caller, "min_listing_price", func(cfg *models.MarketConfig) (interface{}, interface{}) {
		old := cfg.MinListingPrice
		cfg.MinListingPrice = price
		return old, price
	})
}

func (s *ConfigService) SetMaxRoyalty(caller string, bps uint32) error {
	return s.update(caller, "max_royalty_bps", func(cfg *models.MarketConfig) (interface{}, interface{}) {
		old := cfg.MaxRoyaltyBps
		cfg.MaxRoyaltyBps = bps
		return old, bps
	})
}

func (s *ConfigService) SetMinBidIncrement(caller string, bps uint32) error {
	return s.update(caller, "min_bid_increment_bps", func(cfg *models.MarketConfig) (interface{}, interface{}) {
		old := cfg.MinBidIncrementBps
		cfg.MinBidIncrementBps = bps
		return old, bps
	})
}

func (s *ConfigService) SetFeeRecipient(caller string, recipient string) error {
	return s.update(caller, "fee_recipient", func(cfg *models.MarketConfig) (interface{}, interface{}) {
		old := cfg.FeeRecipient
		cfg.FeeRecipient = recipient
		return old, recipient
	})
}

// TransferOwnership hands the configuration authority to a new owner
// address. Like every setter it is owner-only and atomic.
func (s *ConfigService) TransferOwnership(caller string, newOwner string) error {
	if newOwner == "" {
		return apperrors.Validation("owner_empty", "new owner is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}

		if caller != cfg.Owner {
			return apperrors.Authorization("not_owner", "caller %s is not the marketplace owner", caller)
		}

		oldOwner := cfg.Owner
		cfg.Owner = newOwner
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := tx.Save(cfg).Error; err != nil {
			return fmt.Errorf("failed to persist market config: %w", err)
		}

		return s.notificationService.SendOwnershipTransferred(tx, oldOwner, newOwner)
	})
}
