// internal/services/oracle_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/desoy/desoy-backend/internal/config"
	"github.com/desoy/desoy-backend/internal/models"
)

// OracleService pushes commodity reference prices on chain and keeps a
// queryable history of every push.
type OracleService struct {
	db    *gorm.DB
	cfg   *config.Config
	chain ChainRecorder
}

// PriceQuote is one commodity price in cents, matching the feed format
// consumed by the oracle command.
type PriceQuote struct {
	Commodity  string `json:"asset" validate:"required,max=30"`
	PriceCents int64  `json:"priceInCents" validate:"required,gt=0"`
}

func NewOracleService(db *gorm.DB, cfg *config.Config, chain ChainRecorder) *OracleService {
	return &OracleService{
		db:    db,
		cfg:   cfg,
		chain: chain,
	}
}

// PushPrice attests one commodity price on chain and records the push.
func (s *OracleService) PushPrice(ctx context.Context, quote PriceQuote) (*models.CommodityPrice, error) {
	if quote.Commodity == "" || quote.PriceCents <= 0 {
		return nil, errors.New("commodity and positive price are required")
	}

	message := fmt.Sprintf("%s:%s:%d", s.cfg.Solana.OracleProgramMemo, quote.Commodity, quote.PriceCents)
	signature, err := s.chain.SendMemo(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to push price on chain: %w", err)
	}

	price := &models.CommodityPrice{
		Commodity:   quote.Commodity,
		PriceCents:  quote.PriceCents,
		TxSignature: signature,
		PushedAt:    time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(price).Error; err != nil {
			return fmt.Errorf("failed to record price: %w", err)
		}

		event := &models.ContractEvent{
			Type:        models.EventTypeOracleUpdate,
			TxSignature: signature,
			Payload: models.JSONB{
				"commodity":      quote.Commodity,
				"price_in_cents": quote.PriceCents,
			},
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to record contract event: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"commodity":    quote.Commodity,
		"price_cents":  quote.PriceCents,
		"tx_signature": signature,
	}).Info("Oracle price pushed")

	return price, nil
}

// PushPrices pushes a batch of quotes, continuing past individual failures.
// It returns the successfully recorded prices and the first error seen.
func (s *OracleService) PushPrices(ctx context.Context, quotes []PriceQuote) ([]models.CommodityPrice, error) {
	var pushed []models.CommodityPrice
	var firstErr error

	for _, quote := range quotes {
		price, err := s.PushPrice(ctx, quote)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"commodity": quote.Commodity,
				"error":     err,
			}).Error("Failed to push oracle price")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		pushed = append(pushed, *price)
	}

	return pushed, firstErr
}

// LatestPrices returns the most recent push per commodity.
func (s *OracleService) LatestPrices() ([]models.CommodityPrice, error) {
	var prices []models.CommodityPrice
	err := s.db.Raw(`
		SELECT DISTINCT ON (commodity) *
		FROM commodity_prices
		WHERE deleted_at IS NULL
		ORDER BY commodity, pushed_at DESC
	`).Scan(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest prices: %w", err)
	}
	return prices, nil
}

// PriceHistory returns pushes for one commodity, newest first.
func (s *OracleService) PriceHistory(commodity string, limit int) ([]models.CommodityPrice, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var prices []models.CommodityPrice
	err := s.db.Where("commodity = ?", commodity).
		Order("pushed_at DESC").
		Limit(limit).
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	return prices, nil
}
