// internal/services/asset_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/desoy/desoy-backend/internal/config"
	"github.com/desoy/desoy-backend/internal/models"
	"github.com/desoy/desoy-backend/internal/utils"
)

type AssetService struct {
	db    *gorm.DB
	cfg   *config.Config
	chain ChainRecorder
}

type CreateAssetRequest struct {
	AssetType            models.AssetType       `json:"asset_type" validate:"required"`
	Quantity             decimal.Decimal        `json:"quantity" validate:"required"`
	PricePerUnit         decimal.Decimal        `json:"price_per_unit" validate:"required"`
	ExpectedHarvestDate  time.Time              `json:"expected_harvest_date" validate:"required"`
	ExpectedDeliveryDate time.Time              `json:"expected_delivery_date" validate:"required"`
	Location             map[string]interface{} `json:"location" validate:"required"`
	Metadata             map[string]interface{} `json:"metadata,omitempty"`
}

type UpdateAssetRequest struct {
	Quantity             *decimal.Decimal       `json:"quantity,omitempty"`
	PricePerUnit         *decimal.Decimal       `json:"price_per_unit,omitempty"`
	ExpectedHarvestDate  *time.Time             `json:"expected_harvest_date,omitempty"`
	ExpectedDeliveryDate *time.Time             `json:"expected_delivery_date,omitempty"`
	Location             map[string]interface{} `json:"location,omitempty"`
	Metadata             map[string]interface{} `json:"metadata,omitempty"`
}

type TokenizeAssetRequest struct {
	MintAddress string `json:"mint_address" validate:"required,wallet_address"`
	TotalSupply int64  `json:"total_supply" validate:"required,gt=0"`
	Decimals    int    `json:"decimals" validate:"gte=0,lte=9"`
}

type AssetStatusRequest struct {
	Status models.AssetStatus     `json:"status" validate:"required"`
	Reason string                 `json:"reason,omitempty" validate:"omitempty,max=500"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

type AssetUpdateRequest struct {
	Type       models.UpdateType      `json:"type" validate:"required"`
	UpdateDate time.Time              `json:"update_date"`
	Data       map[string]interface{} `json:"data" validate:"required"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type AssetFilters struct {
	Status           string
	AssetType        string
	ProducerID       string
	MinFundedPercent string
}

func NewAssetService(db *gorm.DB, cfg *config.Config, chain ChainRecorder) *AssetService {
	return &AssetService{
		db:    db,
		cfg:   cfg,
		chain: chain,
	}
}

func (s *AssetService) CreateAsset(producerID uuid.UUID, req *CreateAssetRequest) (*models.Asset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !req.Quantity.IsPositive() || !req.PricePerUnit.IsPositive() {
		return nil, errors.New("quantity and price per unit must be positive")
	}
	if req.ExpectedDeliveryDate.Before(req.ExpectedHarvestDate) {
		return nil, errors.New("expected delivery date must not precede harvest date")
	}

	var producer models.User
	if err := s.db.First(&producer, "id = ?", producerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if producer.Role != models.UserRoleProducer {
		return nil, ErrUnauthorized
	}

	asset := &models.Asset{
		AssetType:            req.AssetType,
		Quantity:             req.Quantity,
		PricePerUnit:         req.PricePerUnit,
		ExpectedHarvestDate:  req.ExpectedHarvestDate,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Status:               models.AssetStatusPending,
		FundedAmount:         decimal.Zero,
		FundedPercentage:     decimal.Zero,
		Location:             models.JSONB(req.Location),
		Metadata:             models.JSONB(req.Metadata),
		ProducerID:           producerID,
	}

	if err := s.db.Create(asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return asset, nil
}

func (s *AssetService) GetAsset(id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.Preload("Producer").
		Preload("Investments").
		Preload("Updates", func(db *gorm.DB) *gorm.DB {
			return db.Order("update_date DESC")
		}).
		First(&asset, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &asset, nil
}

func (s *AssetService) ListAssets(params utils.PaginationParams, filters AssetFilters) (*utils.PaginationResult, error) {
	var assets []models.Asset
	var total int64

	query := s.db.Model(&models.Asset{}).Preload("Producer")

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.AssetType != "" {
		query = query.Where("asset_type = ?", filters.AssetType)
	}
	if filters.ProducerID != "" {
		query = query.Where("producer_id = ?", filters.ProducerID)
	}
	if filters.MinFundedPercent != "" {
		if min, err := decimal.NewFromString(filters.MinFundedPercent); err == nil {
			query = query.Where("funded_percentage >= ?", min)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}

	allowedSortFields := []string{"created_at", "expected_delivery_date", "funded_percentage", "price_per_unit"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	if err := query.Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch assets: %w", err)
	}

	result := utils.CreatePaginationResult(assets, total, params)
	return &result, nil
}

// UpdateAsset edits the mutable fields of an asset. Quantity and unit price
// are frozen once any funding is recorded, because investment percentages
// were snapshotted against the original total value.
func (s *AssetService) UpdateAsset(id, producerID uuid.UUID, req *UpdateAssetRequest) (*models.Asset, error) {
	asset, err := s.ownedAsset(id, producerID)
	if err != nil {
		return nil, err
	}

	if (req.Quantity != nil || req.PricePerUnit != nil) && asset.FundedAmount.IsPositive() {
		return nil, ErrInvalidState
	}

	updates := make(map[string]interface{})
	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, errors.New("quantity must be positive")
		}
		updates["quantity"] = *req.Quantity
	}
	if req.PricePerUnit != nil {
		if !req.PricePerUnit.IsPositive() {
			return nil, errors.New("price per unit must be positive")
		}
		updates["price_per_unit"] = *req.PricePerUnit
	}
	if req.ExpectedHarvestDate != nil {
		updates["expected_harvest_date"] = *req.ExpectedHarvestDate
	}
	if req.ExpectedDeliveryDate != nil {
		updates["expected_delivery_date"] = *req.ExpectedDeliveryDate
	}
	if req.Location != nil {
		updates["location"] = models.JSONB(req.Location)
	}
	if req.Metadata != nil {
		updates["metadata"] = models.JSONB(req.Metadata)
	}

	if len(updates) > 0 {
		if err := s.db.Model(asset).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update asset: %w", err)
		}
	}

	return asset, nil
}

// TokenizeAsset records the on-chain mint for a pending asset and opens it
// for investment. The mint attestation is pushed as a memo transaction; if
// the chain is unreachable the asset stays pending.
func (s *AssetService) TokenizeAsset(ctx context.Context, id, producerID uuid.UUID, req *TokenizeAssetRequest) (*models.Asset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	asset, err := s.ownedAsset(id, producerID)
	if err != nil {
		return nil, err
	}
	if asset.Status != models.AssetStatusPending {
		return nil, ErrInvalidState
	}

	memo := fmt.Sprintf("desoy:mint:%s:%s:%d", asset.ID, req.MintAddress, req.TotalSupply)
	signature, err := s.chain.SendMemo(ctx, memo)
	if err != nil {
		return nil, fmt.Errorf("failed to record mint on chain: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":             models.AssetStatusTokenized,
			"token_mint_address": req.MintAddress,
			"token_metadata": models.JSONB{
				"total_supply": req.TotalSupply,
				"decimals":     req.Decimals,
			},
		}
		if err := tx.Model(asset).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update asset: %w", err)
		}

		assetID := asset.ID
		event := &models.ContractEvent{
			Type:        models.EventTypeTokenMinted,
			AssetID:     &assetID,
			TxSignature: signature,
			Payload: models.JSONB{
				"mint_address": req.MintAddress,
				"total_supply": req.TotalSupply,
				"decimals":     req.Decimals,
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
		"asset_id":     asset.ID,
		"mint_address": req.MintAddress,
		"tx_signature": signature,
	}).Info("Asset tokenized")

	return asset, nil
}

// UpdateAssetStatus applies a producer-triggered lifecycle transition and
// records it as an asset update, atomically.
func (s *AssetService) UpdateAssetStatus(id, producerID uuid.UUID, req *AssetStatusRequest) (*models.Asset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	asset, err := s.ownedAsset(id, producerID)
	if err != nil {
		return nil, err
	}

	if !asset.CanTransitionTo(req.Status) {
		return nil, ErrInvalidState
	}

	updateType := statusUpdateType(req.Status)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(asset).Update("status", req.Status).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		data := models.JSONB{"status": string(req.Status)}
		if req.Reason != "" {
			data["reason"] = req.Reason
		}
		for k, v := range req.Data {
			data[k] = v
		}

		update := &models.AssetUpdate{
			AssetID:    asset.ID,
			Type:       updateType,
			UpdateDate: time.Now(),
			Data:       data,
		}
		if err := tx.Create(update).Error; err != nil {
			return fmt.Errorf("failed to record asset update: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// RecordUpdate appends a progress update (weather, growth, harvest, ...)
// for an asset the producer owns.
func (s *AssetService) RecordUpdate(id, producerID uuid.UUID, req *AssetUpdateRequest) (*models.AssetUpdate, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	asset, err := s.ownedAsset(id, producerID)
	if err != nil {
		return nil, err
	}

	updateDate := req.UpdateDate
	if updateDate.IsZero() {
		updateDate = time.Now()
	}

	update := &models.AssetUpdate{
		AssetID:    asset.ID,
		Type:       req.Type,
		UpdateDate: updateDate,
		Data:       models.JSONB(req.Data),
		Metadata:   models.JSONB(req.Metadata),
	}
	if err := s.db.Create(update).Error; err != nil {
		return nil, fmt.Errorf("failed to record asset update: %w", err)
	}

	return update, nil
}

func (s *AssetService) ListUpdates(id uuid.UUID) ([]models.AssetUpdate, error) {
	var asset models.Asset
	if err := s.db.Select("id").First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var updates []models.AssetUpdate
	if err := s.db.Where("asset_id = ?", id).Order("update_date DESC").Find(&updates).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch updates: %w", err)
	}
	return updates, nil
}

func (s *AssetService) AddDocument(id, producerID uuid.UUID, url string) (*models.Asset, error) {
	asset, err := s.ownedAsset(id, producerID)
	if err != nil {
		return nil, err
	}

	asset.DocumentURLs = append(asset.DocumentURLs, url)
	if err := s.db.Model(asset).Update("document_urls", asset.DocumentURLs).Error; err != nil {
		return nil, fmt.Errorf("failed to attach document: %w", err)
	}

	return asset, nil
}

// DeleteAsset soft-deletes an asset that has not attracted any funding yet.
func (s *AssetService) DeleteAsset(id, producerID uuid.UUID) error {
	asset, err := s.ownedAsset(id, producerID)
	if err != nil {
		return err
	}

	if asset.FundedAmount.IsPositive() {
		return ErrInvalidState
	}
	switch asset.Status {
	case models.AssetStatusPending, models.AssetStatusTokenized:
	default:
		return ErrInvalidState
	}

	if err := s.db.Delete(asset).Error; err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

func (s *AssetService) ownedAsset(id, producerID uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.First(&asset, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if asset.ProducerID != producerID {
		return nil, ErrUnauthorized
	}
	return &asset, nil
}

func statusUpdateType(status models.AssetStatus) models.UpdateType {
	switch status {
	case models.AssetStatusReadyForDelivery:
		return models.UpdateTypeHarvest
	case models.AssetStatusDelivered:
		return models.UpdateTypeDelivery
	default:
		return models.UpdateTypeGrowth
	}
}
